package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	alloc "mintgate/internal/allocation/models"
	allocstore "mintgate/internal/allocation/store"
	"mintgate/internal/ownership/ports"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/events"
)

type InMemoryRegistrySuite struct {
	suite.Suite
	gate     *allocstore.Ledger
	recorder *events.Recorder
	registry *InMemoryRegistry
}

func TestInMemoryRegistrySuite(t *testing.T) {
	suite.Run(t, new(InMemoryRegistrySuite))
}

func (s *InMemoryRegistrySuite) SetupTest() {
	var err error
	s.gate, err = allocstore.NewLedger(100, 10)
	s.Require().NoError(err)
	s.recorder = events.NewRecorder()

	s.registry, err = NewInMemory(s.gate, WithEventSink(s.recorder))
	s.Require().NoError(err)
}

func (s *InMemoryRegistrySuite) TestAssign() {
	ctx := context.Background()

	s.Run("assigns a fresh id with its handle", func() {
		s.NoError(s.registry.Assign(ctx, 1, "alice", "ipfs://a"))

		owner, err := s.registry.OwnerOf(ctx, 1)
		s.NoError(err)
		s.Equal(domain.Address("alice"), owner)

		handle, err := s.registry.Handle(ctx, 1)
		s.NoError(err)
		s.Equal("ipfs://a", handle)
	})

	s.Run("the same id always fails the second time, any caller", func() {
		s.ErrorIs(s.registry.Assign(ctx, 1, "alice", "ipfs://x"), ports.ErrAlreadyAssigned)
		s.ErrorIs(s.registry.Assign(ctx, 1, "bob", "ipfs://y"), ports.ErrAlreadyAssigned)
	})
}

func (s *InMemoryRegistrySuite) TestBalanceOf() {
	ctx := context.Background()

	s.Require().NoError(s.registry.Assign(ctx, 1, "alice", ""))
	s.Require().NoError(s.registry.Assign(ctx, 2, "alice", ""))
	s.Require().NoError(s.registry.Assign(ctx, 3, "bob", ""))

	n, err := s.registry.BalanceOf(ctx, "alice")
	s.NoError(err)
	s.Equal(uint64(2), n)

	n, err = s.registry.BalanceOf(ctx, "nobody")
	s.NoError(err)
	s.Zero(n)
}

func (s *InMemoryRegistrySuite) TestTransfer() {
	ctx := context.Background()
	s.Require().NoError(s.registry.Assign(ctx, 1, "alice", ""))

	s.Run("blocked while the gate is closed", func() {
		err := s.registry.Transfer(ctx, 1, "alice", "bob")
		s.ErrorIs(err, alloc.ErrTransfersNotAllowed)
	})

	s.Run("moves possession once the gate opens", func() {
		s.Require().NoError(s.gate.AllowTransfer())

		s.NoError(s.registry.Transfer(ctx, 1, "alice", "bob"))

		owner, err := s.registry.OwnerOf(ctx, 1)
		s.NoError(err)
		s.Equal(domain.Address("bob"), owner)
		s.Len(s.recorder.ByName(events.Transfer), 1)
	})

	s.Run("only the current owner may move a token", func() {
		err := s.registry.Transfer(ctx, 1, "alice", "carol")
		s.ErrorIs(err, ports.ErrNotTokenOwner)
	})

	s.Run("unknown ids are rejected", func() {
		err := s.registry.Transfer(ctx, 99, "alice", "bob")
		s.ErrorIs(err, ports.ErrNotAssigned)
	})
}

func (s *InMemoryRegistrySuite) TestSetHandle() {
	ctx := context.Background()
	s.Require().NoError(s.registry.Assign(ctx, 1, "alice", "ipfs://old"))

	s.Run("owner rebinds the handle", func() {
		s.NoError(s.registry.SetHandle(ctx, 1, "alice", "ipfs://new"))

		handle, err := s.registry.Handle(ctx, 1)
		s.NoError(err)
		s.Equal("ipfs://new", handle)
		s.Len(s.recorder.ByName(events.UpdatedURI), 1)
	})

	s.Run("non-owners are rejected", func() {
		err := s.registry.SetHandle(ctx, 1, "bob", "ipfs://steal")
		s.ErrorIs(err, ports.ErrNotTokenOwner)
	})
}
