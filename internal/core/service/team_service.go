package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/internal/core/ports"
)

const (
	inviteCodeBytes    = 3
	inviteCodeAttempts = 5
)

// TeamOptions tunes the team service.
type TeamOptions struct {
	// InviteTTL bounds invite lifetime. Zero means codes never expire.
	InviteTTL time.Duration
	Now       func() time.Time
	// NewCode overrides the invite code generator.
	NewCode func() (string, error)
}

type teamService struct {
	accounts ports.AccountRepository
	teams    ports.TeamRepository
	ttl      time.Duration
	now      func() time.Time
	newCode  func() (string, error)
	log      zerolog.Logger
}

func NewTeamService(
	accounts ports.AccountRepository,
	teams ports.TeamRepository,
	opts TeamOptions,
	log zerolog.Logger,
) ports.TeamService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewCode == nil {
		opts.NewCode = randomInviteCode
	}
	return &teamService{
		accounts: accounts,
		teams:    teams,
		ttl:      opts.InviteTTL,
		now:      opts.Now,
		newCode:  opts.NewCode,
		log:      log,
	}
}

// randomInviteCode returns six upper-case hex characters.
func randomInviteCode() (string, error) {
	b := make([]byte, inviteCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

func (s *teamService) CreateInvite(ctx context.Context, owner *domain.Account) (*domain.InviteCode, error) {
	if owner.IsDelegate() {
		return nil, domain.ErrNotOwner
	}

	now := s.now().UTC()
	invite := &domain.InviteCode{
		OwnerID:     owner.ID,
		Permissions: domain.DefaultPermissions(),
		CreatedAt:   now,
	}
	if s.ttl > 0 {
		exp := now.Add(s.ttl)
		invite.ExpiresAt = &exp
	}

	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("create invite: %w", err)
		}
		invite.Code = code

		err = s.teams.CreateInvite(ctx, invite)
		if errors.Is(err, ports.ErrDuplicateCode) {
			s.log.Debug().Str("code", code).Msg("invite code collision, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create invite: %w", err)
		}
		s.log.Info().Int64("owner", owner.TelegramID).Msg("invite created")
		return invite, nil
	}
	return nil, fmt.Errorf("create invite: %w", ports.ErrDuplicateCode)
}

// Redeem binds candidate to the owner of code.
func (s *teamService) Redeem(ctx context.Context, candidate *domain.Account, raw string) (*domain.DelegationLink, error) {
	code := domain.NormalizeInviteCode(raw)
	if code == "" {
		return nil, domain.ErrCodeNotFound
	}

	now := s.now().UTC()
	invite, err := s.teams.FindInvite(ctx, code)
	if err != nil {
		return nil, err
	}
	if invite.Expired(now) {
		return nil, domain.ErrCodeNotFound
	}
	if candidate.IsDelegate() {
		return nil, domain.ErrAlreadyBound
	}
	if invite.OwnerID == candidate.ID {
		return nil, domain.ErrSelfInvite
	}

	own, err := s.teams.ListLinks(ctx, candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("redeem: %w", err)
	}
	if len(own) > 0 {
		return nil, domain.ErrHasDelegates
	}

	link, err := s.teams.Redeem(ctx, code, candidate.ID, now)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Int64("delegate", candidate.TelegramID).
		Str("owner_id", link.OwnerID).
		Msg("invite redeemed")
	return link, nil
}

// member returns the delegate of owner identified by delegateTelegramID.
func (s *teamService) member(ctx context.Context, owner *domain.Account, delegateTelegramID int64) (*domain.Account, *domain.DelegationLink, error) {
	if owner.IsDelegate() {
		return nil, nil, domain.ErrNotOwner
	}
	delegate, err := s.accounts.FindByTelegramID(ctx, delegateTelegramID)
	if err != nil {
		return nil, nil, err
	}
	link, err := s.teams.FindLink(ctx, delegate.ID)
	if err != nil {
		return nil, nil, err
	}
	if link.OwnerID != owner.ID {
		return nil, nil, domain.ErrNotBound
	}
	return delegate, link, nil
}

func (s *teamService) UnbindDelegate(ctx context.Context, owner *domain.Account, delegateTelegramID int64) error {
	delegate, _, err := s.member(ctx, owner, delegateTelegramID)
	if err != nil {
		return err
	}
	if err := s.teams.Unbind(ctx, delegate.ID); err != nil {
		return err
	}
	s.log.Info().Int64("owner", owner.TelegramID).Int64("delegate", delegateTelegramID).Msg("delegate unbound")
	return nil
}

func (s *teamService) Leave(ctx context.Context, delegate *domain.Account) error {
	if !delegate.IsDelegate() {
		return domain.ErrNotBound
	}
	if err := s.teams.Unbind(ctx, delegate.ID); err != nil {
		return err
	}
	s.log.Info().Int64("delegate", delegate.TelegramID).Msg("delegate left team")
	return nil
}

// SetPermissions merges raw onto the delegate's current map. Every key and
// value in raw must be known.
func (s *teamService) SetPermissions(ctx context.Context, owner *domain.Account, delegateTelegramID int64, raw map[string]string) (domain.PermissionMap, error) {
	changes := make(domain.PermissionMap, len(raw))
	for k, v := range raw {
		f, ok := domain.ParseFeature(k)
		if !ok {
			return nil, fmt.Errorf("%w: unknown feature %q", domain.ErrInvalidPermission, k)
		}
		l, ok := domain.ParseLevel(v)
		if !ok {
			return nil, fmt.Errorf("%w: unknown level %q for %s", domain.ErrInvalidPermission, v, k)
		}
		changes[f] = l
	}

	delegate, link, err := s.member(ctx, owner, delegateTelegramID)
	if err != nil {
		return nil, err
	}

	perms := domain.NormalizePermissions(link.Permissions.Raw())
	for f, l := range changes {
		perms[f] = l
	}
	if err := s.teams.UpdateLinkPermissions(ctx, delegate.ID, perms); err != nil {
		return nil, fmt.Errorf("set permissions: %w", err)
	}
	return perms, nil
}

func (s *teamService) CyclePermission(ctx context.Context, owner *domain.Account, delegateTelegramID int64, feature domain.Feature) (domain.PermissionMap, error) {
	if _, ok := domain.ParseFeature(string(feature)); !ok {
		return nil, fmt.Errorf("%w: unknown feature %q", domain.ErrInvalidPermission, feature)
	}

	delegate, link, err := s.member(ctx, owner, delegateTelegramID)
	if err != nil {
		return nil, err
	}

	perms := domain.NormalizePermissions(link.Permissions.Raw())
	perms[feature] = perms.Level(feature).Next()
	if err := s.teams.UpdateLinkPermissions(ctx, delegate.ID, perms); err != nil {
		return nil, fmt.Errorf("cycle permission: %w", err)
	}
	return perms, nil
}

func (s *teamService) Team(ctx context.Context, account *domain.Account) (*ports.TeamView, error) {
	if account.IsDelegate() {
		owner, err := s.accounts.FindByID(ctx, account.OwnerID)
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrOrphanedDelegate
		}
		if err != nil {
			return nil, err
		}
		return &ports.TeamView{Role: domain.RoleDelegate, Owner: owner}, nil
	}

	links, err := s.teams.ListLinks(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("team: %w", err)
	}
	view := &ports.TeamView{Role: domain.RoleOwner, Members: []ports.TeamMember{}}
	for _, link := range links {
		member, err := s.accounts.FindByID(ctx, link.DelegateID)
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.log.Warn().Str("delegate_id", link.DelegateID).Msg("link without delegate account")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("team: %w", err)
		}
		view.Members = append(view.Members, ports.TeamMember{
			Account:     member,
			Permissions: domain.NormalizePermissions(link.Permissions.Raw()),
		})
	}

	invites, err := s.teams.ListInvites(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("team: %w", err)
	}
	now := s.now()
	for _, inv := range invites {
		if !inv.Expired(now) {
			view.Invites = append(view.Invites, inv)
		}
	}
	return view, nil
}
