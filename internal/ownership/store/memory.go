// Package store provides the in-memory and Postgres ownership registries.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	alloc "mintgate/internal/allocation/models"
	"mintgate/internal/ownership/ports"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/events"
)

type token struct {
	owner  domain.Address
	handle string
}

// InMemoryRegistry keeps token possession and content handles in maps.
type InMemoryRegistry struct {
	mu     sync.RWMutex
	tokens map[domain.TokenID]*token

	gate   ports.TransferGate
	logger *slog.Logger
	sink   events.Sink
}

type Option func(*InMemoryRegistry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *InMemoryRegistry) { r.logger = logger }
}

func WithEventSink(sink events.Sink) Option {
	return func(r *InMemoryRegistry) { r.sink = sink }
}

func NewInMemory(gate ports.TransferGate, opts ...Option) (*InMemoryRegistry, error) {
	if gate == nil {
		return nil, fmt.Errorf("transfer gate is required")
	}
	r := &InMemoryRegistry{
		tokens: make(map[domain.TokenID]*token),
		gate:   gate,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *InMemoryRegistry) Assign(_ context.Context, id domain.TokenID, owner domain.Address, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.tokens[id]; taken {
		return ports.ErrAlreadyAssigned
	}
	r.tokens[id] = &token{owner: owner, handle: handle}
	return nil
}

func (r *InMemoryRegistry) OwnerOf(_ context.Context, id domain.TokenID) (domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tokens[id]
	if !ok {
		return "", ports.ErrNotAssigned
	}
	return t.owner, nil
}

func (r *InMemoryRegistry) BalanceOf(_ context.Context, address domain.Address) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n uint64
	for _, t := range r.tokens {
		if t.owner == address {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRegistry) IsAssigned(_ context.Context, id domain.TokenID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.tokens[id]
	return ok, nil
}

func (r *InMemoryRegistry) Transfer(ctx context.Context, id domain.TokenID, from, to domain.Address) error {
	if !r.gate.TransfersAllowed() {
		return alloc.ErrTransfersNotAllowed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[id]
	if !ok {
		return ports.ErrNotAssigned
	}
	if t.owner != from {
		return ports.ErrNotTokenOwner
	}
	t.owner = to

	events.Emit(ctx, r.logger, r.sink, events.New(events.Transfer,
		fmt.Sprintf("token %d transferred from %s to %s", id, from, to), to, id))
	return nil
}

func (r *InMemoryRegistry) SetHandle(ctx context.Context, id domain.TokenID, caller domain.Address, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[id]
	if !ok {
		return ports.ErrNotAssigned
	}
	if t.owner != caller {
		return ports.ErrNotTokenOwner
	}
	t.handle = handle

	events.Emit(ctx, r.logger, r.sink, events.New(events.UpdatedURI,
		fmt.Sprintf("token %d content handle updated", id), caller, id))
	return nil
}

func (r *InMemoryRegistry) Handle(_ context.Context, id domain.TokenID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tokens[id]
	if !ok {
		return "", ports.ErrNotAssigned
	}
	return t.handle, nil
}
