package domain

import "time"

// Role tags an account as a clinician with its own subscription or as an
// assistant acting on behalf of exactly one clinician.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleDelegate Role = "delegate"
)

// Tier is the subscription level of an owner. Ordered Basic < Standard < Premium.
type Tier int

const (
	TierBasic    Tier = 0
	TierStandard Tier = 1
	TierPremium  Tier = 2
)

var tierLabels = map[Tier]string{
	TierBasic:    "Basic",
	TierStandard: "Standard",
	TierPremium:  "Premium",
}

// Valid reports whether t is one of the three known tiers.
func (t Tier) Valid() bool {
	_, ok := tierLabels[t]
	return ok
}

// Label returns the human label shown to users for the tier.
func (t Tier) Label() string {
	if l, ok := tierLabels[t]; ok {
		return l
	}
	return "Basic"
}

// Account is a registered Telegram user.
type Account struct {
	ID         string    `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	FullName   string    `json:"full_name"`
	Role       Role      `json:"role"`
	OwnerID    string    `json:"owner_id,omitempty"` // empty for owners
	Tier       Tier      `json:"subscription_tier"`
	CreatedAt  time.Time `json:"created_at"`
	// SubscriptionEndsAt is nil for subscriptions without an end date.
	SubscriptionEndsAt *time.Time `json:"subscription_end_date,omitempty"`
}

// IsDelegate reports whether the account is bound to an owner.
func (a *Account) IsDelegate() bool {
	return a.Role == RoleDelegate
}

// EffectiveTier returns the tier the account is entitled to at now. An
// expired subscription falls back to Basic.
func (a *Account) EffectiveTier(now time.Time) Tier {
	if !a.Tier.Valid() {
		return TierBasic
	}
	if a.SubscriptionEndsAt != nil && now.After(*a.SubscriptionEndsAt) {
		return TierBasic
	}
	return a.Tier
}
