package domain

import dErrors "mintgate/pkg/domain-errors"

// Role classifies a participant. An address holds exactly one role for its
// lifetime; the registry keys participants by address, so holding two roles is
// structurally impossible.
type Role string

const (
	RolePremium Role = "premium"
	RoleNormal  Role = "normal"
	RoleAdmin   Role = "admin"
)

// validRoles is the single source of truth for recognized role tags.
var validRoles = map[Role]bool{
	RolePremium: true,
	RoleNormal:  true,
	RoleAdmin:   true,
}

// ErrUnknownRole rejects role tags outside the recognized set.
var ErrUnknownRole = dErrors.New(dErrors.CodeInvalidInput, "unknown role")

// ParseRole constructs a Role from external input.
//
// Errors: returns ErrUnknownRole when the value is empty or not one of the
// three recognized tags.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string {
	return string(r)
}
