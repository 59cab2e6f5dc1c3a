package models

import (
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// Phase is one allocation window in the ordered sequence.
//
// Invariants:
//   - lifecycle is uncreated → created → active → inactive, strictly in order;
//     a deactivated phase can never be touched again
//   - at most one phase is active at any time (the ledger only ever activates
//     the current index)
//   - ReservedLimit is non-increasing while active, except for an explicit
//     administrative raise
//   - Consumed starts empty for every new index; per-phase counters never
//     need a reset operation
type Phase struct {
	Index         uint64                    `json:"index"`
	ReservedLimit uint64                    `json:"reserved_limit"`
	PremiumLimit  uint64                    `json:"premium_limit"`
	NormalLimit   uint64                    `json:"normal_limit"`
	Created       bool                      `json:"created"`
	Active        bool                      `json:"active"`
	Consumed      map[domain.Address]uint64 `json:"-"`
}

func NewPhase(index uint64) *Phase {
	return &Phase{
		Index:    index,
		Consumed: make(map[domain.Address]uint64),
	}
}

// CanCreate checks that the window has not been set up yet.
func (p *Phase) CanCreate() error {
	if p.Created {
		return ErrPhaseAlreadyCreated
	}
	if p.Active {
		return ErrPhaseAlreadyActive
	}
	return nil
}

// ApplyCreate sets the three limits and marks the window created.
// Call CanCreate first to validate the transition.
func (p *Phase) ApplyCreate(reservedLimit, premiumLimit, normalLimit uint64) {
	p.ReservedLimit = reservedLimit
	p.PremiumLimit = premiumLimit
	p.NormalLimit = normalLimit
	p.Created = true
}

// CanActivate checks that the window is created, idle, and has budget left.
func (p *Phase) CanActivate() error {
	if !p.Created {
		return ErrPhaseNotCreated
	}
	if p.Active {
		return ErrPhaseAlreadyActive
	}
	if p.ReservedLimit == 0 {
		return ErrZeroReservedLimit
	}
	return nil
}

func (p *Phase) ApplyActivate() {
	p.Active = true
}

// CanDeactivate checks that the window is created, active, and carries a
// non-zero premium cap.
func (p *Phase) CanDeactivate() error {
	if !p.Created {
		return ErrPhaseNotCreated
	}
	if !p.Active {
		return ErrPhaseNotActive
	}
	if p.PremiumLimit == 0 {
		return ErrZeroPremiumLimit
	}
	return nil
}

// ApplyDeactivate closes the window permanently. The ledger advances the
// current index so this record is frozen for audit.
func (p *Phase) ApplyDeactivate() {
	p.Active = false
}

// RoleLimit returns the per-participant cap for a role within this phase.
func (p *Phase) RoleLimit(role domain.Role) (uint64, error) {
	switch role {
	case domain.RolePremium:
		return p.PremiumLimit, nil
	case domain.RoleNormal:
		return p.NormalLimit, nil
	default:
		return 0, dErrors.New(dErrors.CodeInvalidInput, "role has no phase limit")
	}
}

// ConsumedBy returns how many issuances the address has used in this phase.
func (p *Phase) ConsumedBy(address domain.Address) uint64 {
	return p.Consumed[address]
}

// Clone returns a deep copy so the ledger never hands out shared mutable state.
func (p *Phase) Clone() *Phase {
	cp := *p
	cp.Consumed = make(map[domain.Address]uint64, len(p.Consumed))
	for addr, n := range p.Consumed {
		cp.Consumed[addr] = n
	}
	return &cp
}
