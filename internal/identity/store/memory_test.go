package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mintgate/internal/identity/models"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func (s *InMemoryStoreSuite) newParticipant(addr string, role domain.Role) *models.Participant {
	p, err := models.NewParticipant(domain.Address(addr), role, 5, time.Now())
	s.Require().NoError(err)
	return p
}

func (s *InMemoryStoreSuite) TestCreate() {
	ctx := context.Background()

	s.Run("stores a new participant", func() {
		p := s.newParticipant("alice", domain.RoleNormal)
		s.NoError(s.store.Create(ctx, p))

		got, err := s.store.Get(ctx, p.Address)
		s.NoError(err)
		s.Equal(domain.RoleNormal, got.Role)
	})

	s.Run("rejects duplicate address regardless of role", func() {
		p := s.newParticipant("bob", domain.RoleNormal)
		s.NoError(s.store.Create(ctx, p))

		dup := s.newParticipant("bob", domain.RolePremium)
		err := s.store.Create(ctx, dup)
		s.True(errors.Is(err, sentinel.ErrConflict))
	})

	s.Run("stores a copy, not the caller's pointer", func() {
		p := s.newParticipant("carol", domain.RolePremium)
		s.NoError(s.store.Create(ctx, p))
		p.Verified = true

		got, err := s.store.Get(ctx, p.Address)
		s.NoError(err)
		s.False(got.Verified)
	})
}

func (s *InMemoryStoreSuite) TestGet() {
	ctx := context.Background()

	s.Run("unknown address returns not found", func() {
		_, err := s.store.Get(ctx, domain.Address("ghost"))
		s.True(errors.Is(err, sentinel.ErrNotFound))
	})
}

func (s *InMemoryStoreSuite) TestExecute() {
	ctx := context.Background()

	s.Run("applies mutation when validation passes", func() {
		p := s.newParticipant("dave", domain.RolePremium)
		s.Require().NoError(s.store.Create(ctx, p))

		updated, err := s.store.Execute(ctx, p.Address,
			func(p *models.Participant) error { return p.CanVerify() },
			func(p *models.Participant) { p.ApplyVerification(time.Now()) },
		)
		s.NoError(err)
		s.True(updated.Verified)

		got, err := s.store.Get(ctx, p.Address)
		s.NoError(err)
		s.True(got.Verified)
	})

	s.Run("leaves record untouched when validation fails", func() {
		p := s.newParticipant("erin", domain.RoleNormal)
		s.Require().NoError(s.store.Create(ctx, p))

		_, err := s.store.Execute(ctx, p.Address,
			func(p *models.Participant) error { return p.CanVerify() },
			func(p *models.Participant) { p.ApplyVerification(time.Now()) },
		)
		s.ErrorIs(err, models.ErrNotRegistered)

		got, err := s.store.Get(ctx, p.Address)
		s.NoError(err)
		s.False(got.Verified)
	})

	s.Run("unknown address returns not found", func() {
		_, err := s.store.Execute(ctx, domain.Address("ghost"),
			func(*models.Participant) error { return nil },
			func(*models.Participant) {},
		)
		s.True(errors.Is(err, sentinel.ErrNotFound))
	})
}

func (s *InMemoryStoreSuite) TestList() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, s.newParticipant("a", domain.RoleNormal)))
	s.Require().NoError(s.store.Create(ctx, s.newParticipant("b", domain.RoleAdmin)))

	all, err := s.store.List(ctx)
	s.NoError(err)
	s.Len(all, 2)
}
