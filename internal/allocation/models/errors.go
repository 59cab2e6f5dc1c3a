package models

import dErrors "mintgate/pkg/domain-errors"

// Phase lifecycle failures.
var (
	ErrPhaseAlreadyCreated = dErrors.New(dErrors.CodeConflict, "phase already created")
	ErrPhaseAlreadyActive  = dErrors.New(dErrors.CodeConflict, "phase already active")
	ErrPhaseNotCreated     = dErrors.New(dErrors.CodeInvalidInput, "phase not created")
	ErrPhaseNotActive      = dErrors.New(dErrors.CodeInvalidInput, "phase not active")
	ErrZeroReservedLimit   = dErrors.New(dErrors.CodeInvalidInput, "phase reserved limit is zero")
	ErrZeroPremiumLimit    = dErrors.New(dErrors.CodeInvalidInput, "phase premium limit is zero")
	ErrMustExceedCurrent   = dErrors.New(dErrors.CodeInvalidInput, "new limit must exceed current limit")
)

// Quota failures. Any decrement that would underflow a counter fails closed
// with the matching limit error; counters never wrap.
var (
	ErrGlobalLimitExceeded      = dErrors.New(dErrors.CodeLimitExceeded, "participant global limit exceeded")
	ErrPhaseLimitExceeded       = dErrors.New(dErrors.CodeLimitExceeded, "participant phase limit exceeded")
	ErrUserMintingLimitExceeded = dErrors.New(dErrors.CodeLimitExceeded, "user minting limit exceeded")
	ErrReservedLimitExceeded    = dErrors.New(dErrors.CodeLimitExceeded, "phase reserved limit exceeded")
	ErrPlatformLimitExceeded    = dErrors.New(dErrors.CodeLimitExceeded, "platform minting limit exceeded")
)

// Transfer gate failures.
var (
	ErrTransfersAlreadyAllowed = dErrors.New(dErrors.CodeConflict, "transfers already allowed")
	ErrTransfersNotAllowed     = dErrors.New(dErrors.CodeForbidden, "transfers not allowed")
)
