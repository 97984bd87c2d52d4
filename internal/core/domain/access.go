package domain

// Access is the resolved authority of one account for one request.
type Access struct {
	Account        *Account      `json:"account"`
	EffectiveOwner *Account      `json:"effective_owner"`
	Permissions    PermissionMap `json:"permissions"`
	EffectiveTier  Tier          `json:"effective_tier"`
}

// IsOwnerScope reports whether the account operates on its own data.
func (a *Access) IsOwnerScope() bool {
	return a.EffectiveOwner != nil && a.Account != nil && a.EffectiveOwner.ID == a.Account.ID
}

// Authorize checks the tier gate first, then the permission map.
// A zero MinTier never blocks. A requirement without a feature is a tier-only
// gate; one with a feature but no level needs at least view.
func (a *Access) Authorize(req Requirement) error {
	if a.EffectiveTier < req.MinTier {
		return &TierError{Required: req.MinTier, Current: a.EffectiveTier}
	}
	if req.Feature == "" {
		return nil
	}
	level := req.Level
	if level == "" {
		level = LevelView
	}
	if !CanAccess(a.Permissions, req.Feature, level) {
		return ErrPermissionDenied
	}
	return nil
}
