// Package service exposes the owner-gated phase lifecycle and transfer gate
// operations on top of the allocation ledger.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"mintgate/internal/allocation/models"
	"mintgate/internal/allocation/store"
	"mintgate/internal/platform/metrics"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/events"
)

type Service struct {
	ledger  *store.Ledger
	owner   domain.Address
	logger  *slog.Logger
	sink    events.Sink
	metrics *metrics.Metrics
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

func New(ledger *store.Ledger, owner domain.Address, opts ...Option) (*Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("allocation ledger is required")
	}
	if owner.IsZero() {
		return nil, fmt.Errorf("owner address is required")
	}

	svc := &Service{ledger: ledger, owner: owner}
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

// CreatePhase sets up the current allocation window.
func (s *Service) CreatePhase(ctx context.Context, caller domain.Address, reservedLimit, premiumLimit, normalLimit uint64) (*models.Phase, error) {
	if err := s.requireOwner(caller); err != nil {
		return nil, err
	}

	p, err := s.ledger.CreatePhase(reservedLimit, premiumLimit, normalLimit)
	if err != nil {
		return nil, err
	}

	s.recordTransition("created", p.Index)
	events.Emit(ctx, s.logger, s.sink, events.New(events.PhaseCreated,
		fmt.Sprintf("phase %d created with reserved limit %d", p.Index, reservedLimit), caller))
	return p, nil
}

// ActivatePhase opens the current window for issuance.
func (s *Service) ActivatePhase(ctx context.Context, caller domain.Address) (*models.Phase, error) {
	if err := s.requireOwner(caller); err != nil {
		return nil, err
	}

	p, err := s.ledger.ActivatePhase()
	if err != nil {
		return nil, err
	}

	s.recordTransition("activated", p.Index)
	events.Emit(ctx, s.logger, s.sink, events.New(events.PhaseActivated,
		fmt.Sprintf("phase %d activated", p.Index), caller))
	return p, nil
}

// DeactivatePhase permanently closes the current window and advances the
// phase index.
func (s *Service) DeactivatePhase(ctx context.Context, caller domain.Address) (*models.Phase, error) {
	if err := s.requireOwner(caller); err != nil {
		return nil, err
	}

	p, err := s.ledger.DeactivatePhase()
	if err != nil {
		return nil, err
	}

	s.recordTransition("deactivated", p.Index+1)
	events.Emit(ctx, s.logger, s.sink, events.New(events.PhaseDeactivated,
		fmt.Sprintf("phase %d deactivated", p.Index), caller))
	return p, nil
}

// IncreaseReservedLimit raises the active window's aggregate budget.
func (s *Service) IncreaseReservedLimit(ctx context.Context, caller domain.Address, newLimit uint64) (*models.Phase, error) {
	if err := s.requireOwner(caller); err != nil {
		return nil, err
	}

	p, err := s.ledger.IncreaseReservedLimit(newLimit)
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.logger, s.sink, events.New(events.LimitUpdated,
		fmt.Sprintf("phase %d reserved limit raised to %d", p.Index, newLimit), caller))
	return p, nil
}

// AllowTransfer opens the one-way transfer gate.
func (s *Service) AllowTransfer(ctx context.Context, caller domain.Address) error {
	if err := s.requireOwner(caller); err != nil {
		return err
	}

	if err := s.ledger.AllowTransfer(); err != nil {
		return err
	}

	events.Emit(ctx, s.logger, s.sink, events.New(events.LimitUpdated,
		"transfers are now allowed", caller))
	return nil
}

// CurrentPhase returns a copy of the current window.
func (s *Service) CurrentPhase(context.Context) *models.Phase {
	return s.ledger.CurrentPhase()
}

// TransfersAllowed reports the transfer gate state.
func (s *Service) TransfersAllowed(context.Context) bool {
	return s.ledger.TransfersAllowed()
}

func (s *Service) recordTransition(transition string, phase uint64) {
	if s.metrics != nil {
		s.metrics.RecordPhaseTransition(transition, phase)
	}
}
