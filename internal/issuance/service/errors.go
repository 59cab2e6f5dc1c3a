package service

import dErrors "mintgate/pkg/domain-errors"

// Input validation errors for mint requests.
var (
	ErrEmptyBatch        = dErrors.New(dErrors.CodeBadRequest, "batch must contain at least one token id")
	ErrLengthMismatch    = dErrors.New(dErrors.CodeBadRequest, "token ids and handles length mismatch")
	ErrDuplicateTokenID  = dErrors.New(dErrors.CodeInvalidInput, "duplicate token id in batch")
	ErrTokenIDOutOfRange = dErrors.New(dErrors.CodeInvalidInput, "token id out of range")
)
