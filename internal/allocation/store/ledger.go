// Package store holds the allocation ledger: the phase arena, the global
// minting budgets, and the transfer gate. Every public method is atomic; the
// ledger mutex is held across all reads and writes of an operation, so either
// the whole operation applies or none of it does.
package store

import (
	"fmt"
	"sync"

	"mintgate/internal/allocation/models"
	"mintgate/pkg/domain"
)

// Ledger owns all shared allocation state. Phases are an arena indexed by
// integer; only the current index is ever writable, earlier records are
// frozen for audit. The user budget is derived once at construction as
// maxMintingLimit - platformMintingLimit and only ever decremented.
type Ledger struct {
	mu sync.RWMutex

	phases  map[uint64]*models.Phase
	current uint64

	maxMintingLimit      uint64
	userMintingLimit     uint64
	platformMintingLimit uint64

	transferrable bool
}

func NewLedger(maxMintingLimit, platformMintingLimit uint64) (*Ledger, error) {
	if maxMintingLimit == 0 {
		return nil, fmt.Errorf("max minting limit must be positive")
	}
	if platformMintingLimit > maxMintingLimit {
		return nil, fmt.Errorf("platform minting limit %d exceeds max minting limit %d",
			platformMintingLimit, maxMintingLimit)
	}
	return &Ledger{
		phases:               make(map[uint64]*models.Phase),
		maxMintingLimit:      maxMintingLimit,
		userMintingLimit:     maxMintingLimit - platformMintingLimit,
		platformMintingLimit: platformMintingLimit,
	}, nil
}

// currentPhase returns the record for the current index, creating an empty
// (uncreated) record on first touch. Callers must hold mu.
func (l *Ledger) currentPhase() *models.Phase {
	p, ok := l.phases[l.current]
	if !ok {
		p = models.NewPhase(l.current)
		l.phases[l.current] = p
	}
	return p
}

// CreatePhase sets up the current allocation window. The reserved limit may
// not exceed the remaining user minting budget.
func (l *Ledger) CreatePhase(reservedLimit, premiumLimit, normalLimit uint64) (*models.Phase, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.currentPhase()
	if err := p.CanCreate(); err != nil {
		return nil, err
	}
	if reservedLimit > l.userMintingLimit {
		return nil, models.ErrUserMintingLimitExceeded
	}
	p.ApplyCreate(reservedLimit, premiumLimit, normalLimit)
	return p.Clone(), nil
}

// ActivatePhase opens the current window for issuance.
func (l *Ledger) ActivatePhase() (*models.Phase, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.currentPhase()
	if err := p.CanActivate(); err != nil {
		return nil, err
	}
	p.ApplyActivate()
	return p.Clone(), nil
}

// DeactivatePhase closes the current window permanently and advances the
// current index. The next window starts uncreated with empty consumption by
// construction; the closed record stays frozen for audit.
func (l *Ledger) DeactivatePhase() (*models.Phase, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.currentPhase()
	if err := p.CanDeactivate(); err != nil {
		return nil, err
	}
	p.ApplyDeactivate()
	l.current++
	return p.Clone(), nil
}

// IncreaseReservedLimit raises the aggregate budget of the active window.
func (l *Ledger) IncreaseReservedLimit(newLimit uint64) (*models.Phase, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.currentPhase()
	if !p.Active {
		return nil, models.ErrPhaseNotActive
	}
	if newLimit <= p.ReservedLimit {
		return nil, models.ErrMustExceedCurrent
	}
	p.ReservedLimit = newLimit
	return p.Clone(), nil
}

// TryReserve atomically checks and consumes quota for count issuances by one
// participant in the active window. Checks run in order: lifetime ceiling,
// per-role phase cap, user minting budget, phase reserved budget. If any
// check fails no counter is mutated. All limits are inclusive, attainable
// ceilings: a reservation is allowed iff the post-reservation total is <= the
// limit. Arithmetic is guarded so no counter can underflow or wrap.
func (l *Ledger) TryReserve(address domain.Address, role domain.Role, issued, globalLimit, count uint64) error {
	if count == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.currentPhase()
	if !p.Active {
		return models.ErrPhaseNotActive
	}

	roleLimit, err := p.RoleLimit(role)
	if err != nil {
		return err
	}

	if issued > globalLimit || count > globalLimit-issued {
		return models.ErrGlobalLimitExceeded
	}
	consumed := p.ConsumedBy(address)
	if consumed > roleLimit || count > roleLimit-consumed {
		return models.ErrPhaseLimitExceeded
	}
	if count > l.userMintingLimit {
		return models.ErrUserMintingLimitExceeded
	}
	if count > p.ReservedLimit {
		return models.ErrReservedLimitExceeded
	}

	p.Consumed[address] = consumed + count
	l.userMintingLimit -= count
	p.ReservedLimit -= count
	return nil
}

// ReservePlatform atomically consumes count units from the admin channel
// budget. The platform budget is independent of phases and never replenished.
func (l *Ledger) ReservePlatform(count uint64) error {
	if count == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if count > l.platformMintingLimit {
		return models.ErrPlatformLimitExceeded
	}
	l.platformMintingLimit -= count
	return nil
}

// AllowTransfer flips the one-way transfer gate.
func (l *Ledger) AllowTransfer() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.transferrable {
		return models.ErrTransfersAlreadyAllowed
	}
	l.transferrable = true
	return nil
}

// TransfersAllowed reports the transfer gate state.
func (l *Ledger) TransfersAllowed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.transferrable
}

// CurrentPhase returns a copy of the current window.
func (l *Ledger) CurrentPhase() *models.Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentPhase().Clone()
}

// Phase returns a copy of the window at index, frozen or current.
func (l *Ledger) Phase(index uint64) (*models.Phase, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.phases[index]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// UserMintingLimit returns the remaining shared budget for the premium and
// normal issuance paths.
func (l *Ledger) UserMintingLimit() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.userMintingLimit
}

// PlatformMintingLimit returns the remaining admin channel budget.
func (l *Ledger) PlatformMintingLimit() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.platformMintingLimit
}

// MaxMintingLimit returns the total id-space ceiling.
func (l *Ledger) MaxMintingLimit() uint64 {
	return l.maxMintingLimit
}
