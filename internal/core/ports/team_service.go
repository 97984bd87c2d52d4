package ports

import (
	"context"

	"github.com/DentShare/Mystom/internal/core/domain"
)

// TeamMember is a delegate as shown to its owner.
type TeamMember struct {
	Account     *domain.Account      `json:"account"`
	Permissions domain.PermissionMap `json:"permissions"`
}

// TeamView is the team as seen by an owner or a delegate.
type TeamView struct {
	Role    domain.Role          `json:"role"`
	Owner   *domain.Account      `json:"owner,omitempty"`
	Members []TeamMember         `json:"members,omitempty"`
	Invites []*domain.InviteCode `json:"invites,omitempty"`
}

type TeamService interface {
	CreateInvite(ctx context.Context, owner *domain.Account) (*domain.InviteCode, error)
	Redeem(ctx context.Context, candidate *domain.Account, code string) (*domain.DelegationLink, error)
	UnbindDelegate(ctx context.Context, owner *domain.Account, delegateTelegramID int64) error
	Leave(ctx context.Context, delegate *domain.Account) error
	SetPermissions(ctx context.Context, owner *domain.Account, delegateTelegramID int64, raw map[string]string) (domain.PermissionMap, error)
	CyclePermission(ctx context.Context, owner *domain.Account, delegateTelegramID int64, feature domain.Feature) (domain.PermissionMap, error)
	Team(ctx context.Context, account *domain.Account) (*TeamView, error)
}
