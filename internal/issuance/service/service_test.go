package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	allocmodels "mintgate/internal/allocation/models"
	allocstore "mintgate/internal/allocation/store"
	identitymodels "mintgate/internal/identity/models"
	identityservice "mintgate/internal/identity/service"
	identitystore "mintgate/internal/identity/store"
	"mintgate/internal/issuance/service"
	"mintgate/internal/ownership/ports"
	ownstore "mintgate/internal/ownership/store"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/events"
)

const owner = domain.Address("0xowner")

// fixture wires a real ledger, registry and identity service together, the
// same way the server composes them. No mocks: issuance behaviour only makes
// sense against the real atomicity of the ledger.
type fixture struct {
	ledger   *allocstore.Ledger
	registry *ownstore.InMemoryRegistry
	identity *identityservice.Service
	recorder *events.Recorder
	svc      *service.Service
}

func newFixture(t *testing.T, maxLimit, platformLimit uint64) *fixture {
	t.Helper()

	ledger, err := allocstore.NewLedger(maxLimit, platformLimit)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	registry, err := ownstore.NewInMemory(ledger)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	identity, err := identityservice.New(identitystore.NewInMemory(), registry, owner)
	if err != nil {
		t.Fatalf("new identity service: %v", err)
	}
	recorder := events.NewRecorder()
	svc, err := service.New(identity, ledger, registry, service.WithEventSink(recorder))
	if err != nil {
		t.Fatalf("new issuance service: %v", err)
	}
	return &fixture{
		ledger:   ledger,
		registry: registry,
		identity: identity,
		recorder: recorder,
		svc:      svc,
	}
}

func (f *fixture) register(t *testing.T, address domain.Address, role domain.Role, limit uint64) {
	t.Helper()
	if _, err := f.identity.Register(context.Background(), owner, address, role, limit); err != nil {
		t.Fatalf("register %s: %v", address, err)
	}
}

func (f *fixture) openPhase(t *testing.T, reserved, premium, normal uint64) {
	t.Helper()
	if _, err := f.ledger.CreatePhase(reserved, premium, normal); err != nil {
		t.Fatalf("create phase: %v", err)
	}
	if _, err := f.ledger.ActivatePhase(); err != nil {
		t.Fatalf("activate phase: %v", err)
	}
}

type IssuanceSuite struct {
	suite.Suite
	f *fixture
}

func TestIssuanceSuite(t *testing.T) {
	suite.Run(t, new(IssuanceSuite))
}

func (s *IssuanceSuite) SetupTest() {
	s.f = newFixture(s.T(), 100, 10)
}

func (s *IssuanceSuite) balance(address domain.Address) uint64 {
	n, err := s.f.registry.BalanceOf(context.Background(), address)
	s.Require().NoError(err)
	return n
}

func (s *IssuanceSuite) TestPhaseCapBindsBeforeLifetimeCeiling() {
	ctx := context.Background()
	s.f.register(s.T(), "0xaaa", domain.RoleNormal, 3)
	s.f.openPhase(s.T(), 10, 5, 2)

	s.NoError(s.f.svc.Mint(ctx, "0xaaa", 1, "ipfs://1"))
	s.Equal(uint64(1), s.balance("0xaaa"))

	s.NoError(s.f.svc.Mint(ctx, "0xaaa", 2, "ipfs://2"))
	s.Equal(uint64(2), s.balance("0xaaa"))

	// The normal cap of 2 is exhausted even though the lifetime limit of 3
	// still has room.
	err := s.f.svc.Mint(ctx, "0xaaa", 3, "ipfs://3")
	s.ErrorIs(err, allocmodels.ErrPhaseLimitExceeded)
	s.Equal(uint64(2), s.balance("0xaaa"))
}

func (s *IssuanceSuite) TestPremiumRequiresVerification() {
	ctx := context.Background()
	s.f.register(s.T(), "0xbbb", domain.RolePremium, 5)
	s.f.openPhase(s.T(), 10, 3, 2)

	err := s.f.svc.Mint(ctx, "0xbbb", 4, "ipfs://4")
	s.ErrorIs(err, identitymodels.ErrNotVerified)
	s.Zero(s.balance("0xbbb"))

	_, err = s.f.identity.VerifyPremium(ctx, owner, "0xbbb")
	s.Require().NoError(err)

	s.NoError(s.f.svc.Mint(ctx, "0xbbb", 4, "ipfs://4"))
	s.Equal(uint64(1), s.balance("0xbbb"))
}

func (s *IssuanceSuite) TestPlatformChannelDrainsItsOwnBudget() {
	ctx := context.Background()
	f := newFixture(s.T(), 100, 2)
	f.register(s.T(), "0xccc", domain.RoleAdmin, 0)

	// No phase exists; the platform channel does not need one.
	s.NoError(f.svc.MintPlatformBatch(ctx, "0xccc", []domain.TokenID{10, 11}, []string{"a", "b"}))
	s.Equal(uint64(0), f.ledger.PlatformMintingLimit())

	err := f.svc.MintPlatformBatch(ctx, "0xccc", []domain.TokenID{12}, []string{"c"})
	s.ErrorIs(err, allocmodels.ErrPlatformLimitExceeded)

	owner10, err := f.registry.OwnerOf(ctx, 10)
	s.NoError(err)
	s.Equal(domain.Address("0xccc"), owner10)
}

func (s *IssuanceSuite) TestCallerChecks() {
	ctx := context.Background()
	s.f.openPhase(s.T(), 10, 5, 5)

	s.Run("unregistered caller", func() {
		err := s.f.svc.Mint(ctx, "0xghost", 1, "")
		s.ErrorIs(err, identitymodels.ErrNotRegistered)
	})

	s.Run("admin on the user channel", func() {
		s.f.register(s.T(), "0xadmin", domain.RoleAdmin, 0)
		err := s.f.svc.Mint(ctx, "0xadmin", 1, "")
		s.ErrorIs(err, identitymodels.ErrNotRegistered)
	})

	s.Run("non-admin on the platform channel", func() {
		s.f.register(s.T(), "0xnormal", domain.RoleNormal, 5)
		err := s.f.svc.MintPlatformBatch(ctx, "0xnormal", []domain.TokenID{1}, []string{""})
		s.ErrorIs(err, domain.ErrNotAdmin)
	})
}

func (s *IssuanceSuite) TestInactivePhaseRejectsUserMints() {
	ctx := context.Background()
	s.f.register(s.T(), "0xaaa", domain.RoleNormal, 5)

	err := s.f.svc.Mint(ctx, "0xaaa", 1, "")
	s.ErrorIs(err, allocmodels.ErrPhaseNotActive)
}

func (s *IssuanceSuite) TestBatchValidation() {
	ctx := context.Background()
	s.f.register(s.T(), "0xaaa", domain.RoleNormal, 50)
	s.f.openPhase(s.T(), 50, 10, 10)

	s.Run("empty batch", func() {
		err := s.f.svc.MintBatch(ctx, "0xaaa", nil, nil)
		s.ErrorIs(err, service.ErrEmptyBatch)
	})

	s.Run("length mismatch", func() {
		err := s.f.svc.MintBatch(ctx, "0xaaa", []domain.TokenID{1, 2}, []string{"only one"})
		s.ErrorIs(err, service.ErrLengthMismatch)
	})

	s.Run("duplicate id in batch", func() {
		err := s.f.svc.MintBatch(ctx, "0xaaa", []domain.TokenID{1, 1}, []string{"a", "b"})
		s.ErrorIs(err, service.ErrDuplicateTokenID)
	})

	s.Run("id zero is out of range", func() {
		err := s.f.svc.MintBatch(ctx, "0xaaa", []domain.TokenID{0}, []string{"a"})
		s.ErrorIs(err, service.ErrTokenIDOutOfRange)
	})

	s.Run("id above the ceiling is out of range", func() {
		err := s.f.svc.MintBatch(ctx, "0xaaa", []domain.TokenID{101}, []string{"a"})
		s.ErrorIs(err, service.ErrTokenIDOutOfRange)
	})

	s.Run("already assigned id", func() {
		s.Require().NoError(s.f.svc.Mint(ctx, "0xaaa", 7, "taken"))
		err := s.f.svc.MintBatch(ctx, "0xaaa", []domain.TokenID{8, 7}, []string{"a", "b"})
		s.ErrorIs(err, ports.ErrAlreadyAssigned)
	})
}

func (s *IssuanceSuite) TestBatchIsAllOrNothing() {
	ctx := context.Background()
	s.f.register(s.T(), "0xaaa", domain.RoleNormal, 50)
	s.f.openPhase(s.T(), 50, 10, 3)

	// Four ids against a role cap of 3: nothing may be issued or consumed.
	err := s.f.svc.MintBatch(ctx, "0xaaa",
		[]domain.TokenID{1, 2, 3, 4}, []string{"a", "b", "c", "d"})
	s.ErrorIs(err, allocmodels.ErrPhaseLimitExceeded)
	s.Zero(s.balance("0xaaa"))
	s.Equal(uint64(50), s.f.ledger.CurrentPhase().ReservedLimit)

	s.NoError(s.f.svc.MintBatch(ctx, "0xaaa",
		[]domain.TokenID{1, 2, 3}, []string{"a", "b", "c"}))
	s.Equal(uint64(3), s.balance("0xaaa"))
	s.Equal(uint64(47), s.f.ledger.CurrentPhase().ReservedLimit)
}

func (s *IssuanceSuite) TestFailedValidationLeavesQuotaUntouched() {
	ctx := context.Background()
	s.f.register(s.T(), "0xaaa", domain.RoleNormal, 50)
	s.f.openPhase(s.T(), 50, 10, 10)

	before := s.f.ledger.UserMintingLimit()
	err := s.f.svc.MintBatch(ctx, "0xaaa", []domain.TokenID{1, 1}, []string{"a", "b"})
	s.ErrorIs(err, service.ErrDuplicateTokenID)
	s.Equal(before, s.f.ledger.UserMintingLimit())
}

func (s *IssuanceSuite) TestMintEmitsOneEventPerBatch() {
	ctx := context.Background()
	s.f.register(s.T(), "0xaaa", domain.RoleNormal, 50)
	s.f.openPhase(s.T(), 50, 10, 10)

	s.Require().NoError(s.f.svc.MintBatch(ctx, "0xaaa",
		[]domain.TokenID{1, 2, 3}, []string{"a", "b", "c"}))

	minted := s.f.recorder.ByName(events.MintedSuccessfully)
	s.Require().Len(minted, 1)
	s.Equal(domain.Address("0xaaa"), minted[0].Address)
	s.Equal([]domain.TokenID{1, 2, 3}, minted[0].TokenIDs)
}
