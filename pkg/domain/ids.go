// Package domain holds the shared vocabulary of the minting engine: typed
// identifiers and the role classification. Construct values via the Parse
// helpers at trust boundaries; direct casting bypasses validation.
package domain

import (
	"strings"

	dErrors "mintgate/pkg/domain-errors"
)

// Address identifies a participant. It is assigned externally at registration
// and immutable afterwards. The zero value is never a valid participant.
type Address string

// ParseAddress constructs an Address from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or blank; the zero
// identity must never enter the registry.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address cannot be empty")
	}
	return Address(s), nil
}

func (a Address) IsZero() bool {
	return a == ""
}

func (a Address) String() string {
	return string(a)
}

// TokenID numbers an issued certificate. IDs are caller-supplied, unique
// across the system, and must lie in [1, maxMintingLimit].
type TokenID uint64

func (id TokenID) IsZero() bool {
	return id == 0
}

// InRange reports whether the ID lies in the valid id-space [1, max].
func (id TokenID) InRange(max uint64) bool {
	return id >= 1 && uint64(id) <= max
}
