package valueobjects

import (
	"errors"
	"strings"
)

// OrganizationName identifies the external organization a member gate is bound to.
type OrganizationName string

func NewOrganizationName(v string) (OrganizationName, error) {
	value := strings.TrimSpace(v)
	if value == "" {
		return "", errors.New("organization name is required")
	}
	return OrganizationName(value), nil
}

func (n OrganizationName) String() string {
	return string(n)
}
