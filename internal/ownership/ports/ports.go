// Package ports defines the contract the minting engine requires of the
// external ownership registry and content store.
package ports

import (
	"context"

	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// Registry records which address possesses each issued token and the opaque
// content handle bound to it. Implementations must enforce id uniqueness and
// consult the transfer gate before moving possession.
type Registry interface {
	// Assign marks a token as issued to an owner and binds its content
	// handle. Fails with ErrAlreadyAssigned if the id is taken.
	Assign(ctx context.Context, id domain.TokenID, owner domain.Address, handle string) error

	// OwnerOf returns the current possessor of a token.
	OwnerOf(ctx context.Context, id domain.TokenID) (domain.Address, error)

	// BalanceOf returns the number of tokens an address currently holds.
	BalanceOf(ctx context.Context, address domain.Address) (uint64, error)

	// IsAssigned reports whether a token id has been issued.
	IsAssigned(ctx context.Context, id domain.TokenID) (bool, error)

	// Transfer moves possession from one address to another. Fails when the
	// transfer gate is closed or from is not the current owner.
	Transfer(ctx context.Context, id domain.TokenID, from, to domain.Address) error

	// SetHandle rebinds the content handle; only the current owner may.
	SetHandle(ctx context.Context, id domain.TokenID, caller domain.Address, handle string) error

	// Handle returns the content handle bound to a token.
	Handle(ctx context.Context, id domain.TokenID) (string, error)
}

// TransferGate is the single global switch consulted before any transfer.
type TransferGate interface {
	TransfersAllowed() bool
}

// Registry failures.
var (
	ErrAlreadyAssigned = dErrors.New(dErrors.CodeConflict, "token id already issued")
	ErrNotAssigned     = dErrors.New(dErrors.CodeNotFound, "token id not issued")
	ErrNotTokenOwner   = dErrors.New(dErrors.CodeForbidden, "caller does not own token")
)
