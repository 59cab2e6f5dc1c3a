// Package service coordinates token issuance. It is the only place where the
// identity registry, the allocation ledger and the ownership registry meet:
// a mint request is validated against all three, quota is reserved in a single
// ledger call, and only then are the ids bound to their owner.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	identity "mintgate/internal/identity/models"
	"mintgate/internal/ownership/ports"
	"mintgate/internal/platform/metrics"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/events"
)

const (
	channelUser     = "user"
	channelPlatform = "platform"
)

// Directory resolves callers to registered participants.
type Directory interface {
	Get(ctx context.Context, address domain.Address) (*identity.Participant, error)
}

// Quota is the slice of the allocation ledger issuance needs: atomic
// reservation on the user channel, the platform budget, and the id range.
type Quota interface {
	TryReserve(address domain.Address, role domain.Role, issued, globalLimit, count uint64) error
	ReservePlatform(count uint64) error
	MaxMintingLimit() uint64
}

type Service struct {
	directory Directory
	quota     Quota
	registry  ports.Registry
	logger    *slog.Logger
	sink      events.Sink
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithEventSink(sink events.Sink) Option {
	return func(s *Service) { s.sink = sink }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(directory Directory, quota Quota, registry ports.Registry, opts ...Option) (*Service, error) {
	if directory == nil {
		return nil, fmt.Errorf("issuance service: directory is required")
	}
	if quota == nil {
		return nil, fmt.Errorf("issuance service: quota is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("issuance service: registry is required")
	}
	s := &Service{
		directory: directory,
		quota:     quota,
		registry:  registry,
		logger:    slog.Default(),
		tracer:    otel.Tracer("mintgate/issuance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Mint issues a single token to the caller through the user channel.
func (s *Service) Mint(ctx context.Context, caller domain.Address, id domain.TokenID, handle string) error {
	return s.MintBatch(ctx, caller, []domain.TokenID{id}, []string{handle})
}

// MintBatch issues a batch of tokens to the caller through the user channel.
// The batch is all-or-nothing: quota for the whole batch is reserved in one
// ledger call, and every id is checked before any of them is assigned.
func (s *Service) MintBatch(ctx context.Context, caller domain.Address, ids []domain.TokenID, handles []string) error {
	ctx, span := s.tracer.Start(ctx, "issuance.MintBatch", trace.WithAttributes(
		attribute.String("caller", caller.String()),
		attribute.Int("batch_size", len(ids)),
	))
	defer span.End()

	if err := s.validateBatch(ctx, ids, handles); err != nil {
		s.recordFailure(channelUser)
		return err
	}

	participant, err := s.directory.Get(ctx, caller)
	if err != nil {
		s.recordFailure(channelUser)
		return err
	}
	if !participant.EligibleMinter() {
		// Admins issue through the platform channel and hold no user quota.
		s.recordFailure(channelUser)
		return identity.ErrNotRegistered
	}
	if participant.Role == domain.RolePremium && !participant.Verified {
		s.recordFailure(channelUser)
		return identity.ErrNotVerified
	}

	issued, err := s.registry.BalanceOf(ctx, caller)
	if err != nil {
		s.recordFailure(channelUser)
		return fmt.Errorf("reading issued count for %s: %w", caller, err)
	}

	if err := s.quota.TryReserve(caller, participant.Role, issued, participant.GlobalLimit, uint64(len(ids))); err != nil {
		s.recordFailure(channelUser)
		return err
	}

	return s.assign(ctx, caller, ids, handles, channelUser)
}

// MintPlatformBatch issues tokens from the platform reserve. Only admins may
// call it, and it bypasses the phase machinery entirely.
func (s *Service) MintPlatformBatch(ctx context.Context, caller domain.Address, ids []domain.TokenID, handles []string) error {
	ctx, span := s.tracer.Start(ctx, "issuance.MintPlatformBatch", trace.WithAttributes(
		attribute.String("caller", caller.String()),
		attribute.Int("batch_size", len(ids)),
	))
	defer span.End()

	participant, err := s.directory.Get(ctx, caller)
	if err != nil {
		s.recordFailure(channelPlatform)
		return err
	}
	if participant.Role != domain.RoleAdmin {
		s.recordFailure(channelPlatform)
		return domain.ErrNotAdmin
	}

	if err := s.validateBatch(ctx, ids, handles); err != nil {
		s.recordFailure(channelPlatform)
		return err
	}

	if err := s.quota.ReservePlatform(uint64(len(ids))); err != nil {
		s.recordFailure(channelPlatform)
		return err
	}

	return s.assign(ctx, caller, ids, handles, channelPlatform)
}

// validateBatch rejects a mint request before any quota is touched, so a
// request that can never complete does not consume allocation.
func (s *Service) validateBatch(ctx context.Context, ids []domain.TokenID, handles []string) error {
	if len(ids) == 0 {
		return ErrEmptyBatch
	}
	if len(ids) != len(handles) {
		return ErrLengthMismatch
	}
	max := s.quota.MaxMintingLimit()
	seen := make(map[domain.TokenID]struct{}, len(ids))
	for _, id := range ids {
		if !id.InRange(max) {
			return ErrTokenIDOutOfRange
		}
		if _, dup := seen[id]; dup {
			return ErrDuplicateTokenID
		}
		seen[id] = struct{}{}

		assigned, err := s.registry.IsAssigned(ctx, id)
		if err != nil {
			return fmt.Errorf("checking token %d: %w", id, err)
		}
		if assigned {
			return ports.ErrAlreadyAssigned
		}
	}
	return nil
}

func (s *Service) assign(ctx context.Context, caller domain.Address, ids []domain.TokenID, handles []string, channel string) error {
	for i, id := range ids {
		if err := s.registry.Assign(ctx, id, caller, handles[i]); err != nil {
			// Quota for the batch is already consumed. The ids were checked
			// unassigned above, so this only fires on a concurrent claim of
			// the same id; surface it rather than guess at compensation.
			s.logger.ErrorContext(ctx, "assign failed mid-batch",
				"token_id", id,
				"caller", caller,
				"error", err,
			)
			s.recordFailure(channel)
			return fmt.Errorf("assigning token %d: %w", id, err)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordMint(channel, len(ids))
	}
	events.Emit(ctx, s.logger, s.sink,
		events.New(events.MintedSuccessfully, fmt.Sprintf("minted %d tokens", len(ids)), caller, ids...))

	s.logger.InfoContext(ctx, "tokens minted",
		"caller", caller,
		"channel", channel,
		"count", len(ids),
	)
	return nil
}

func (s *Service) recordFailure(channel string) {
	if s.metrics != nil {
		s.metrics.RecordMintFailure(channel)
	}
}
