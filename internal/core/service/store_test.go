package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/internal/core/ports"
)

// memStore implements both repositories over maps, one lock per call.
type memStore struct {
	mu       sync.Mutex
	seq      int
	accounts map[string]*domain.Account
	links    map[string]*domain.DelegationLink
	invites  map[string]*domain.InviteCode
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[string]*domain.Account),
		links:    make(map[string]*domain.DelegationLink),
		invites:  make(map[string]*domain.InviteCode),
	}
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func cloneLink(l *domain.DelegationLink) *domain.DelegationLink {
	c := *l
	c.Permissions = l.Permissions.Clone()
	return &c
}

func (m *memStore) nextID() string {
	m.seq++
	return "id" + strconv.Itoa(m.seq)
}

// addOwner seeds an owner account.
func (m *memStore) addOwner(telegramID int64, tier domain.Tier) *domain.Account {
	a, _ := m.Create(context.Background(), &domain.Account{
		TelegramID: telegramID,
		FullName:   "user " + strconv.FormatInt(telegramID, 10),
		Role:       domain.RoleOwner,
		Tier:       tier,
		CreatedAt:  time.Now(),
	})
	return a
}

func (m *memStore) account(id string) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAccount(m.accounts[id])
}

// AccountRepository

func (m *memStore) FindByTelegramID(_ context.Context, telegramID int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.TelegramID == telegramID {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memStore) FindByID(_ context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (m *memStore) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.TelegramID == account.TelegramID {
			return nil, domain.ErrAccountExists
		}
	}
	c := cloneAccount(account)
	c.ID = m.nextID()
	m.accounts[c.ID] = c
	return cloneAccount(c), nil
}

func (m *memStore) List(_ context.Context, limit int) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) UpdateSubscription(_ context.Context, id string, upd ports.SubscriptionUpdate) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if upd.Tier != nil {
		a.Tier = *upd.Tier
	}
	if upd.ClearEndsAt {
		a.SubscriptionEndsAt = nil
	} else if upd.EndsAt != nil {
		t := *upd.EndsAt
		a.SubscriptionEndsAt = &t
	}
	return cloneAccount(a), nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	for delegateID, l := range m.links {
		if l.OwnerID == id {
			if d, ok := m.accounts[delegateID]; ok {
				d.Role, d.OwnerID = domain.RoleOwner, ""
			}
			delete(m.links, delegateID)
		}
	}
	delete(m.links, id)
	for code, inv := range m.invites {
		if inv.OwnerID == id {
			delete(m.invites, code)
		}
	}
	delete(m.accounts, id)
	return nil
}

// TeamRepository

func (m *memStore) FindLink(_ context.Context, delegateID string) (*domain.DelegationLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[delegateID]
	if !ok {
		return nil, domain.ErrNotBound
	}
	return cloneLink(l), nil
}

func (m *memStore) ListLinks(_ context.Context, ownerID string) ([]*domain.DelegationLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.DelegationLink
	for _, l := range m.links {
		if l.OwnerID == ownerID {
			out = append(out, cloneLink(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateLinkPermissions(_ context.Context, delegateID string, perms domain.PermissionMap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[delegateID]
	if !ok {
		return domain.ErrNotBound
	}
	l.Permissions = perms.Clone()
	return nil
}

func (m *memStore) CreateInvite(_ context.Context, invite *domain.InviteCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invites[invite.Code]; ok {
		return ports.ErrDuplicateCode
	}
	c := *invite
	c.Permissions = invite.Permissions.Clone()
	m.invites[c.Code] = &c
	return nil
}

func (m *memStore) FindInvite(_ context.Context, code string) (*domain.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[code]
	if !ok {
		return nil, domain.ErrCodeNotFound
	}
	c := *inv
	c.Permissions = inv.Permissions.Clone()
	return &c, nil
}

func (m *memStore) ListInvites(_ context.Context, ownerID string) ([]*domain.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.InviteCode
	for _, inv := range m.invites {
		if inv.OwnerID == ownerID {
			c := *inv
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memStore) Redeem(_ context.Context, code, delegateID string, now time.Time) (*domain.DelegationLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[code]
	if !ok {
		return nil, domain.ErrCodeAlreadyRedeemed
	}
	if _, bound := m.links[delegateID]; bound {
		return nil, domain.ErrAlreadyBound
	}
	if owner, ok := m.accounts[inv.OwnerID]; !ok || owner.IsDelegate() {
		return nil, domain.ErrCodeNotFound
	}
	for _, l := range m.links {
		if l.OwnerID == delegateID {
			return nil, domain.ErrHasDelegates
		}
	}
	delete(m.invites, code)
	for c, other := range m.invites {
		if other.OwnerID == delegateID {
			delete(m.invites, c)
		}
	}

	link := &domain.DelegationLink{
		ID:          m.nextID(),
		OwnerID:     inv.OwnerID,
		DelegateID:  delegateID,
		Permissions: inv.Permissions.Clone(),
		InviteCode:  code,
		CreatedAt:   now,
	}
	m.links[delegateID] = link
	a := m.accounts[delegateID]
	a.Role, a.OwnerID = domain.RoleDelegate, inv.OwnerID
	return cloneLink(link), nil
}

func (m *memStore) Unbind(_ context.Context, delegateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, linked := m.links[delegateID]
	a, ok := m.accounts[delegateID]
	if !linked && (!ok || a.Role != domain.RoleDelegate) {
		return domain.ErrNotBound
	}
	delete(m.links, delegateID)
	if ok {
		a.Role, a.OwnerID = domain.RoleOwner, ""
	}
	return nil
}
