package domain

import dErrors "mintgate/pkg/domain-errors"

// Capability errors shared across services. Owner-gated operations return
// ErrNotOwner when the caller is not the configured owner identity; the admin
// minting channel returns ErrNotAdmin for callers without the admin role.
var (
	ErrNotOwner = dErrors.New(dErrors.CodeUnauthorized, "caller is not the owner")
	ErrNotAdmin = dErrors.New(dErrors.CodeForbidden, "caller is not an admin")
)
