package valueobjects

import (
	"errors"
	"strings"
)

// UserID is the canonical identifier of a session user.
// It is always compared as an opaque string, never as a number.
type UserID string

func NewUserID(v string) (UserID, error) {
	if strings.TrimSpace(v) == "" {
		return "", errors.New("user id is required")
	}
	return UserID(v), nil
}

func (id UserID) IsZero() bool {
	return id == ""
}

func (id UserID) String() string {
	return string(id)
}
