package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/internal/core/ports"
)

type accessService struct {
	accounts ports.AccountRepository
	teams    ports.TeamRepository
	now      func() time.Time
	log      zerolog.Logger
}

// NewAccessService returns the access resolver. Nothing is cached: every
// call re-reads accounts and links.
func NewAccessService(
	accounts ports.AccountRepository,
	teams ports.TeamRepository,
	now func() time.Time,
	log zerolog.Logger,
) ports.AccessService {
	if now == nil {
		now = time.Now
	}
	return &accessService{accounts: accounts, teams: teams, now: now, log: log}
}

// Resolve maps account onto its effective owner and permission map.
// An orphaned delegate gets a closed Access alongside ErrOrphanedDelegate.
func (s *accessService) Resolve(ctx context.Context, account *domain.Account) (*domain.Access, error) {
	if !account.IsDelegate() {
		return &domain.Access{
			Account:        account,
			EffectiveOwner: account,
			Permissions:    domain.FullPermissions(),
			EffectiveTier:  account.EffectiveTier(s.now()),
		}, nil
	}

	owner, err := s.accounts.FindByID(ctx, account.OwnerID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return s.orphaned(account, "owner missing"), domain.ErrOrphanedDelegate
	}
	if err != nil {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}
	if owner.IsDelegate() {
		return s.orphaned(account, "owner is a delegate"), domain.ErrOrphanedDelegate
	}

	link, err := s.teams.FindLink(ctx, account.ID)
	if errors.Is(err, domain.ErrNotBound) {
		return s.orphaned(account, "link missing"), domain.ErrOrphanedDelegate
	}
	if err != nil {
		return nil, fmt.Errorf("resolve link: %w", err)
	}
	if link.OwnerID != owner.ID {
		return s.orphaned(account, "link points at another owner"), domain.ErrOrphanedDelegate
	}

	return &domain.Access{
		Account:        account,
		EffectiveOwner: owner,
		Permissions:    domain.NormalizePermissions(link.Permissions.Raw()),
		EffectiveTier:  owner.EffectiveTier(s.now()),
	}, nil
}

func (s *accessService) orphaned(account *domain.Account, why string) *domain.Access {
	s.log.Warn().
		Int64("telegram_id", account.TelegramID).
		Str("owner_id", account.OwnerID).
		Str("reason", why).
		Msg("orphaned delegate, access closed")
	return &domain.Access{
		Account:        account,
		EffectiveOwner: account,
		Permissions:    domain.NoPermissions(),
		EffectiveTier:  domain.TierBasic,
	}
}

func (s *accessService) ResolveTelegram(ctx context.Context, telegramID int64) (*domain.Access, error) {
	account, err := s.accounts.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, account)
}

func (s *accessService) Authorize(access *domain.Access, req domain.Requirement) error {
	if access == nil {
		return domain.ErrForbidden
	}
	return access.Authorize(req)
}

// Check resolves and authorizes in one step and renders the denial message
// shown by the bot.
func (s *accessService) Check(ctx context.Context, telegramID int64, req domain.Requirement) (ports.Decision, error) {
	access, err := s.ResolveTelegram(ctx, telegramID)
	switch {
	case errors.Is(err, domain.ErrOrphanedDelegate):
		return deny(err), nil
	case errors.Is(err, domain.ErrAccountNotFound):
		return deny(domain.ErrForbidden), nil
	case err != nil:
		return ports.Decision{}, err
	}

	if err := s.Authorize(access, req); err != nil {
		return deny(err), nil
	}
	return ports.Decision{Allowed: true}, nil
}

func deny(err error) ports.Decision {
	return ports.Decision{Allowed: false, Reason: err, Message: DenialMessage(err)}
}

// DenialMessage is the user-facing text for a denied operation.
func DenialMessage(err error) string {
	var tierErr *domain.TierError
	switch {
	case errors.As(err, &tierErr):
		return fmt.Sprintf("This feature is available only in the %s subscription. Your current plan: %s.",
			tierErr.Required.Label(), tierErr.Current.Label())
	case errors.Is(err, domain.ErrPermissionDenied):
		return "You do not have access to this section. Ask the clinic owner to grant it."
	case errors.Is(err, domain.ErrOrphanedDelegate):
		return "Your clinic owner account is no longer available. Leave the team to continue."
	default:
		return "Access denied."
	}
}
