// Package service implements the identity registry: role classification,
// premium verification, and lifetime limit management. All mutating
// operations are owner-gated.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mintgate/internal/identity/models"
	"mintgate/internal/platform/metrics"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/events"
	"mintgate/pkg/platform/sentinel"
)

// Store persists participant records.
type Store interface {
	Create(ctx context.Context, p *models.Participant) error
	Get(ctx context.Context, address domain.Address) (*models.Participant, error)
	Execute(ctx context.Context, address domain.Address,
		validate func(*models.Participant) error,
		apply func(*models.Participant)) (*models.Participant, error)
	List(ctx context.Context) ([]*models.Participant, error)
}

// BalanceSource reports lifetime issued counts; backed by the ownership
// registry.
type BalanceSource interface {
	BalanceOf(ctx context.Context, address domain.Address) (uint64, error)
}

type Service struct {
	store    Store
	balances BalanceSource
	owner    domain.Address
	logger   *slog.Logger
	sink     events.Sink
	metrics  *metrics.Metrics
	now      func() time.Time
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

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store Store, balances BalanceSource, owner domain.Address, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("participant store is required")
	}
	if balances == nil {
		return nil, fmt.Errorf("balance source is required")
	}
	if owner.IsZero() {
		return nil, fmt.Errorf("owner address is required")
	}

	svc := &Service{
		store:    store,
		balances: balances,
		owner:    owner,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) requireOwner(caller domain.Address) error {
	if caller != s.owner {
		return domain.ErrNotOwner
	}
	return nil
}

// Register creates a new participant under exactly one role. Re-registration
// under any role fails: the address is the registry key, so the at-most-one-
// role invariant holds by construction.
func (s *Service) Register(ctx context.Context, caller, address domain.Address, role domain.Role, globalLimit uint64) (*models.Participant, error) {
	if err := s.requireOwner(caller); err != nil {
		return nil, err
	}

	p, err := models.NewParticipant(address, role, globalLimit, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, models.ErrAlreadyRegistered
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create participant")
	}

	if s.metrics != nil {
		s.metrics.IncrementParticipantsRegistered()
	}
	events.Emit(ctx, s.logger, s.sink, events.New(events.UserRegistered,
		fmt.Sprintf("registered %s as %s with limit %d", address, role, globalLimit), address))

	return p, nil
}

// VerifyPremium flips the one-shot verification flag on a premium participant.
func (s *Service) VerifyPremium(ctx context.Context, caller, address domain.Address) (*models.Participant, error) {
	if err := s.requireOwner(caller); err != nil {
		return nil, err
	}

	now := s.now()
	p, err := s.store.Execute(ctx, address,
		func(p *models.Participant) error { return p.CanVerify() },
		func(p *models.Participant) { p.ApplyVerification(now) },
	)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	events.Emit(ctx, s.logger, s.sink, events.New(events.UserVerified,
		fmt.Sprintf("verified premium participant %s", address), address))

	return p, nil
}

// UpdateGlobalLimit raises a participant's lifetime issuance ceiling. The new
// limit must exceed the participant's current issued count.
func (s *Service) UpdateGlobalLimit(ctx context.Context, caller, address domain.Address, newLimit uint64) (*models.Participant, error) {
	if err := s.requireOwner(caller); err != nil {
		return nil, err
	}

	issued, err := s.balances.BalanceOf(ctx, address)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read issued count")
	}

	now := s.now()
	p, err := s.store.Execute(ctx, address,
		func(p *models.Participant) error { return p.CanRaiseGlobalLimit(newLimit, issued) },
		func(p *models.Participant) { p.ApplyGlobalLimit(newLimit, now) },
	)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	events.Emit(ctx, s.logger, s.sink, events.New(events.LimitUpdated,
		fmt.Sprintf("global limit for %s set to %d", address, newLimit), address))

	return p, nil
}

// Get returns the participant record for an address.
func (s *Service) Get(ctx context.Context, address domain.Address) (*models.Participant, error) {
	p, err := s.store.Get(ctx, address)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return p, nil
}

// RoleOf is a pure lookup of the address's role classification.
func (s *Service) RoleOf(ctx context.Context, address domain.Address) (domain.Role, error) {
	p, err := s.Get(ctx, address)
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

// IsVerified is a pure lookup of the premium verification flag.
func (s *Service) IsVerified(ctx context.Context, address domain.Address) (bool, error) {
	p, err := s.Get(ctx, address)
	if err != nil {
		return false, err
	}
	return p.Verified, nil
}

func translateStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.ErrNotRegistered
	}
	return err
}
