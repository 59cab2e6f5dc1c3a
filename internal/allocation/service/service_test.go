package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"mintgate/internal/allocation/models"
	"mintgate/internal/allocation/store"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/events"
)

const owner = domain.Address("owner")

type ServiceSuite struct {
	suite.Suite
	ledger   *store.Ledger
	recorder *events.Recorder
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	var err error
	s.ledger, err = store.NewLedger(100, 20)
	s.Require().NoError(err)
	s.recorder = events.NewRecorder()

	s.service, err = New(s.ledger, owner, WithEventSink(s.recorder))
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestOwnerGate() {
	ctx := context.Background()

	_, err := s.service.CreatePhase(ctx, "mallory", 10, 2, 2)
	s.ErrorIs(err, domain.ErrNotOwner)

	_, err = s.service.ActivatePhase(ctx, "mallory")
	s.ErrorIs(err, domain.ErrNotOwner)

	_, err = s.service.DeactivatePhase(ctx, "mallory")
	s.ErrorIs(err, domain.ErrNotOwner)

	_, err = s.service.IncreaseReservedLimit(ctx, "mallory", 20)
	s.ErrorIs(err, domain.ErrNotOwner)

	s.ErrorIs(s.service.AllowTransfer(ctx, "mallory"), domain.ErrNotOwner)
}

func (s *ServiceSuite) TestPhaseLifecycleEmitsEvents() {
	ctx := context.Background()

	_, err := s.service.CreatePhase(ctx, owner, 10, 2, 2)
	s.Require().NoError(err)
	_, err = s.service.ActivatePhase(ctx, owner)
	s.Require().NoError(err)
	_, err = s.service.DeactivatePhase(ctx, owner)
	s.Require().NoError(err)

	s.Len(s.recorder.ByName(events.PhaseCreated), 1)
	s.Len(s.recorder.ByName(events.PhaseActivated), 1)
	s.Len(s.recorder.ByName(events.PhaseDeactivated), 1)
	s.Equal(uint64(1), s.service.CurrentPhase(ctx).Index)
}

func (s *ServiceSuite) TestLedgerErrorsPassThrough() {
	ctx := context.Background()

	_, err := s.service.ActivatePhase(ctx, owner)
	s.ErrorIs(err, models.ErrPhaseNotCreated)
	s.Empty(s.recorder.Events(), "no event on failure")
}

func (s *ServiceSuite) TestIncreaseReservedLimit() {
	ctx := context.Background()

	_, err := s.service.CreatePhase(ctx, owner, 10, 2, 2)
	s.Require().NoError(err)
	_, err = s.service.ActivatePhase(ctx, owner)
	s.Require().NoError(err)

	p, err := s.service.IncreaseReservedLimit(ctx, owner, 25)
	s.NoError(err)
	s.Equal(uint64(25), p.ReservedLimit)
	s.Len(s.recorder.ByName(events.LimitUpdated), 1)
}

func (s *ServiceSuite) TestAllowTransfer() {
	ctx := context.Background()

	s.False(s.service.TransfersAllowed(ctx))
	s.NoError(s.service.AllowTransfer(ctx, owner))
	s.True(s.service.TransfersAllowed(ctx))
	s.ErrorIs(s.service.AllowTransfer(ctx, owner), models.ErrTransfersAlreadyAllowed)
}
