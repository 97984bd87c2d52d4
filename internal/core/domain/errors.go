package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrForbidden       = errors.New("access forbidden")

	// ErrOrphanedDelegate means a delegate's owner or link no longer exists.
	// Resolution fails closed.
	ErrOrphanedDelegate = errors.New("delegate owner not found")

	ErrCodeNotFound = errors.New("invite code not found")
	// ErrCodeAlreadyRedeemed is returned to the loser of a concurrent
	// redemption. It matches ErrCodeNotFound with errors.Is.
	ErrCodeAlreadyRedeemed = fmt.Errorf("%w: already redeemed", ErrCodeNotFound)

	ErrNotBound     = errors.New("account is not bound to an owner")
	ErrAlreadyBound = errors.New("account is already bound to an owner")
	ErrSelfInvite   = errors.New("cannot redeem own invite code")
	ErrNotOwner     = errors.New("operation requires an owner account")
	// ErrHasDelegates blocks an owner with its own team from joining another.
	ErrHasDelegates = errors.New("account has delegates of its own")

	ErrInvalidPermission = errors.New("invalid permission")
	ErrInvalidTier       = errors.New("tier must be 0, 1 or 2")
	ErrInvalidDate       = errors.New("subscription_end_date must be YYYY-MM-DD")

	ErrPermissionDenied = errors.New("permission denied")
	ErrTierTooLow       = errors.New("subscription tier too low")
)

// TierError carries the tier a denied operation required.
type TierError struct {
	Required Tier
	Current  Tier
}

func (e *TierError) Error() string {
	return fmt.Sprintf("%s: requires %s, have %s", ErrTierTooLow, e.Required.Label(), e.Current.Label())
}

func (e *TierError) Unwrap() error { return ErrTierTooLow }
