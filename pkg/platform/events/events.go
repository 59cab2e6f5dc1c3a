// Package events defines the domain event model emitted by the minting engine.
// Delivery is best-effort: sinks may drop or fail without affecting the
// operation that produced the event. Keep the model transport-agnostic so
// publishers (Kafka, Redis, in-memory) can fan out freely.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mintgate/pkg/domain"
)

// Name identifies a domain event type.
type Name string

const (
	UserRegistered     Name = "user_registered"
	UserVerified       Name = "user_verified"
	PhaseCreated       Name = "phase_created"
	PhaseActivated     Name = "phase_activated"
	PhaseDeactivated   Name = "phase_deactivated"
	MintedSuccessfully Name = "minted_successfully"
	LimitUpdated       Name = "limit_updated"
	Transfer           Name = "transfer"
	UpdatedURI         Name = "updated_uri"
)

// Event captures one domain occurrence with a human-readable message and a
// timestamp. TokenIDs is populated for issuance and transfer events; batch
// issuance emits a single aggregate event carrying every ID.
type Event struct {
	ID        uuid.UUID        `json:"id"`
	Name      Name             `json:"name"`
	Message   string           `json:"message"`
	Address   domain.Address   `json:"address,omitempty"`
	TokenIDs  []domain.TokenID `json:"token_ids,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// New builds an event with a fresh ID and the current time.
func New(name Name, message string, addr domain.Address, tokenIDs ...domain.TokenID) Event {
	return Event{
		ID:        uuid.New(),
		Name:      name,
		Message:   message,
		Address:   addr,
		TokenIDs:  tokenIDs,
		Timestamp: time.Now().UTC(),
	}
}

// Sink receives domain events. Implementations must tolerate bursts and must
// not block domain operations on delivery.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// Emit is the shared best-effort helper: it logs the event and forwards it to
// the sink if one is configured. Publish failures are logged, never returned.
func Emit(ctx context.Context, logger *slog.Logger, sink Sink, event Event) {
	if logger != nil {
		logger.InfoContext(ctx, string(event.Name),
			"event_id", event.ID,
			"address", event.Address,
			"message", event.Message,
		)
	}
	if sink == nil {
		return
	}
	if err := sink.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit event",
			"event", event.Name,
			"error", err,
		)
	}
}

// Multi fans an event out to several sinks, returning the first error after
// attempting all of them.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, event Event) error {
	var firstErr error
	for _, sink := range m {
		if err := sink.Emit(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
