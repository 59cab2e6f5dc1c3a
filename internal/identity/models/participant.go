package models

import (
	"time"

	"mintgate/pkg/domain"
)

// Participant is the aggregate root for a registered identity.
//
// Invariants:
//   - Address is non-zero and immutable after registration
//   - Role is one of premium/normal/admin and never changes; the registry keys
//     participants by address, so an address can never hold two roles
//   - GlobalLimit only moves upward, and only past the current issued count
//   - Verified starts false and can be set true exactly once, premium only
type Participant struct {
	Address      domain.Address `json:"address"`
	Role         domain.Role    `json:"role"`
	GlobalLimit  uint64         `json:"global_limit"`
	Verified     bool           `json:"verified"`
	RegisteredAt time.Time      `json:"registered_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func NewParticipant(address domain.Address, role domain.Role, globalLimit uint64, now time.Time) (*Participant, error) {
	if address.IsZero() {
		return nil, ErrInvalidAddress
	}
	if !role.IsValid() {
		return nil, domain.ErrUnknownRole
	}
	return &Participant{
		Address:      address,
		Role:         role,
		GlobalLimit:  globalLimit,
		RegisteredAt: now,
		UpdatedAt:    now,
	}, nil
}

// EligibleMinter reports whether the participant may use the user minting
// channel at all. Admins mint through the platform channel instead.
func (p *Participant) EligibleMinter() bool {
	return p.Role == domain.RolePremium || p.Role == domain.RoleNormal
}

// CanVerify checks that the verification flag may be set.
// Only premium participants carry a verification status.
func (p *Participant) CanVerify() error {
	if p.Role != domain.RolePremium {
		return ErrNotRegistered
	}
	if p.Verified {
		return ErrAlreadyVerified
	}
	return nil
}

// ApplyVerification flips the one-shot verified flag.
// Call CanVerify first to validate the transition.
func (p *Participant) ApplyVerification(now time.Time) {
	p.Verified = true
	p.UpdatedAt = now
}

// CanRaiseGlobalLimit checks that the new lifetime ceiling clears the
// participant's current issued count. Limits never shrink below what is
// already held.
func (p *Participant) CanRaiseGlobalLimit(newLimit, issued uint64) error {
	if newLimit <= issued {
		return ErrBelowCurrentBalance
	}
	return nil
}

// ApplyGlobalLimit sets the new lifetime ceiling.
// Call CanRaiseGlobalLimit first to validate the change.
func (p *Participant) ApplyGlobalLimit(newLimit uint64, now time.Time) {
	p.GlobalLimit = newLimit
	p.UpdatedAt = now
}

// Clone returns a copy so stores never hand out shared mutable state.
func (p *Participant) Clone() *Participant {
	cp := *p
	return &cp
}
