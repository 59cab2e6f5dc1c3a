package models

import dErrors "mintgate/pkg/domain-errors"

// Registry failures. These are sentinels: match with errors.Is, or classify
// with domain-errors HasCode at the HTTP boundary.
var (
	ErrAlreadyRegistered   = dErrors.New(dErrors.CodeConflict, "address already registered")
	ErrInvalidAddress      = dErrors.New(dErrors.CodeInvalidInput, "invalid address")
	ErrNotRegistered       = dErrors.New(dErrors.CodeNotFound, "address not registered")
	ErrAlreadyVerified     = dErrors.New(dErrors.CodeConflict, "address already verified")
	ErrNotVerified         = dErrors.New(dErrors.CodeForbidden, "address not verified")
	ErrBelowCurrentBalance = dErrors.New(dErrors.CodeInvalidInput, "limit must exceed current issued count")
)
