package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/internal/core/ports"
	"github.com/DentShare/Mystom/pkg/initdata"
)

const (
	maxListLimit   = 200
	unknownName    = "Unknown"
	endDateLayout  = "2006-01-02"
	clearDateToken = "null"
)

type accountService struct {
	repo   ports.AccountRepository
	admins map[int64]struct{}
	now    func() time.Time
	log    zerolog.Logger
}

// NewAccountService returns an AccountService. adminIDs are the Telegram ids
// allowed to use the admin endpoints.
func NewAccountService(repo ports.AccountRepository, adminIDs []int64, log zerolog.Logger) ports.AccountService {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &accountService{repo: repo, admins: admins, now: time.Now, log: log}
}

func (s *accountService) EnsureAccount(ctx context.Context, p initdata.Principal) (*domain.Account, error) {
	account, err := s.repo.FindByTelegramID(ctx, p.ID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("ensure account: %w", err)
	}

	name := p.FullName()
	if name == "" {
		name = p.Username
	}
	if name == "" {
		name = unknownName
	}

	created, err := s.repo.Create(ctx, &domain.Account{
		TelegramID: p.ID,
		FullName:   name,
		Role:       domain.RoleOwner,
		Tier:       domain.TierBasic,
		CreatedAt:  s.now().UTC(),
	})
	if errors.Is(err, domain.ErrAccountExists) {
		// Lost a first-contact race; the other request created it.
		return s.repo.FindByTelegramID(ctx, p.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("ensure account: %w", err)
	}
	s.log.Info().Int64("telegram_id", p.ID).Msg("account registered")
	return created, nil
}

func (s *accountService) Delete(ctx context.Context, account *domain.Account) error {
	if err := s.repo.Delete(ctx, account.ID); err != nil {
		return err
	}
	s.log.Info().Int64("telegram_id", account.TelegramID).Msg("account deleted")
	return nil
}

func (s *accountService) DeleteByID(ctx context.Context, id string) error {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.Delete(ctx, account)
}

func (s *accountService) List(ctx context.Context, limit int) ([]*domain.Account, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.List(ctx, limit)
}

func (s *accountService) UpdateSubscription(ctx context.Context, id string, tier *int, endsAt *string) (*domain.Account, error) {
	var upd ports.SubscriptionUpdate

	if tier != nil {
		t := domain.Tier(*tier)
		if !t.Valid() {
			return nil, domain.ErrInvalidTier
		}
		upd.Tier = &t
	}

	if endsAt != nil {
		raw := strings.TrimSpace(*endsAt)
		if raw == "" || strings.EqualFold(raw, clearDateToken) {
			upd.ClearEndsAt = true
		} else {
			if len(raw) > len(endDateLayout) {
				raw = raw[:len(endDateLayout)]
			}
			d, err := time.Parse(endDateLayout, raw)
			if err != nil {
				return nil, domain.ErrInvalidDate
			}
			upd.EndsAt = &d
		}
	}

	return s.repo.UpdateSubscription(ctx, id, upd)
}

func (s *accountService) IsAdmin(telegramID int64) bool {
	_, ok := s.admins[telegramID]
	return ok
}
