package errors

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidOrganization = errors.New("invalid organization name")
	ErrInvalidAdminID      = errors.New("invalid admin user id")
	ErrUpstreamUnavailable = errors.New("membership oracle unavailable")
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidSession      = errors.New("invalid session")
)
