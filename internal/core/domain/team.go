package domain

import (
	"strings"
	"time"
)

// InviteCode is a single-use token an owner hands to an assistant. The
// permission snapshot becomes the link's initial map on redemption.
type InviteCode struct {
	Code        string        `json:"code"`
	OwnerID     string        `json:"owner_id"`
	Permissions PermissionMap `json:"permissions"`
	CreatedAt   time.Time     `json:"created_at"`
	ExpiresAt   *time.Time    `json:"expires_at,omitempty"`
}

// Expired reports whether the code can no longer be redeemed at now.
func (c *InviteCode) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// NormalizeInviteCode canonicalises user input: spaces removed, upper case.
func NormalizeInviteCode(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// DelegationLink binds one delegate to one owner and carries the
// authoritative permission map.
type DelegationLink struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	DelegateID  string        `json:"delegate_id"`
	Permissions PermissionMap `json:"permissions"`
	InviteCode  string        `json:"invite_code,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Requirement is what a single operation needs: a level on a feature and a
// minimum subscription tier of the effective owner.
type Requirement struct {
	Feature Feature
	Level   Level
	MinTier Tier
}
