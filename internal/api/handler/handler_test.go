package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/DentShare/Mystom/internal/api/middleware"
	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/internal/core/ports"
	"github.com/DentShare/Mystom/pkg/initdata"
)

type stubTeamService struct {
	ports.TeamService
	redeemFn func(ctx context.Context, candidate *domain.Account, code string) (*domain.DelegationLink, error)
	setFn    func(ctx context.Context, owner *domain.Account, id int64, raw map[string]string) (domain.PermissionMap, error)
	cycleFn  func(ctx context.Context, owner *domain.Account, id int64, f domain.Feature) (domain.PermissionMap, error)
}

func (s *stubTeamService) Redeem(ctx context.Context, candidate *domain.Account, code string) (*domain.DelegationLink, error) {
	return s.redeemFn(ctx, candidate, code)
}

func (s *stubTeamService) SetPermissions(ctx context.Context, owner *domain.Account, id int64, raw map[string]string) (domain.PermissionMap, error) {
	return s.setFn(ctx, owner, id, raw)
}

func (s *stubTeamService) CyclePermission(ctx context.Context, owner *domain.Account, id int64, f domain.Feature) (domain.PermissionMap, error) {
	return s.cycleFn(ctx, owner, id, f)
}

type stubAccessService struct {
	ports.AccessService
	checkFn func(ctx context.Context, telegramID int64, req domain.Requirement) (ports.Decision, error)
}

func (s *stubAccessService) Check(ctx context.Context, telegramID int64, req domain.Requirement) (ports.Decision, error) {
	return s.checkFn(ctx, telegramID, req)
}

type stubAccountService struct {
	ports.AccountService
	listFn   func(ctx context.Context, limit int) ([]*domain.Account, error)
	updateFn func(ctx context.Context, id string, tier *int, endsAt *string) (*domain.Account, error)
}

func (s *stubAccountService) List(ctx context.Context, limit int) ([]*domain.Account, error) {
	return s.listFn(ctx, limit)
}

func (s *stubAccountService) UpdateSubscription(ctx context.Context, id string, tier *int, endsAt *string) (*domain.Account, error) {
	return s.updateFn(ctx, id, tier, endsAt)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func withAccess(c echo.Context, access *domain.Access) {
	middleware.SetPrincipal(c, initdata.Principal{ID: access.Account.TelegramID})
	middleware.SetAccess(c, access)
}

func ownerAccess(tier domain.Tier) *domain.Access {
	owner := &domain.Account{ID: "o1", TelegramID: 1, Role: domain.RoleOwner, Tier: tier}
	return &domain.Access{Account: owner, EffectiveOwner: owner, Permissions: domain.FullPermissions(), EffectiveTier: tier}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
}

func TestAccessHandler_Menu(t *testing.T) {
	e := newEcho()
	owner := &domain.Account{ID: "o1", TelegramID: 1, Role: domain.RoleOwner}
	delegate := &domain.Account{ID: "d1", TelegramID: 2, Role: domain.RoleDelegate, OwnerID: "o1"}
	perms := domain.DefaultPermissions()
	perms[domain.FeatureFinance] = domain.LevelEdit
	access := &domain.Access{Account: delegate, EffectiveOwner: owner, Permissions: perms, EffectiveTier: domain.TierStandard}

	req := httptest.NewRequest(http.MethodGet, "/api/access", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withAccess(c, access)

	if err := NewAccessHandler(nil).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp accessResponse
	decode(t, rec, &resp)
	if resp.EffectiveOwnerID != "o1" || resp.TierLabel != "Standard" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	byFeature := make(map[domain.Feature]menuEntry)
	for _, m := range resp.Menu {
		byFeature[m.Feature] = m
	}
	if !byFeature[domain.FeaturePatients].Available {
		t.Fatalf("expected patients available at Standard with view")
	}
	if f := byFeature[domain.FeatureFinance]; f.Available || f.Reason != "tier" {
		t.Fatalf("expected finance blocked by tier despite edit, got %+v", f)
	}
	if s := byFeature[domain.FeatureSettings]; s.Available || s.Reason != "permission" {
		t.Fatalf("expected settings blocked by permission, got %+v", s)
	}
}

func TestAccessHandler_NoAccess(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/access", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := NewAccessHandler(nil).Get(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAccessHandler_Check(t *testing.T) {
	e := newEcho()
	stub := &stubAccessService{
		checkFn: func(_ context.Context, telegramID int64, req domain.Requirement) (ports.Decision, error) {
			if telegramID != 7 || req.Feature != domain.FeatureExport || req.Level != domain.LevelView || req.MinTier != domain.TierPremium {
				t.Fatalf("unexpected args: %d %+v", telegramID, req)
			}
			err := &domain.TierError{Required: domain.TierPremium, Current: domain.TierBasic}
			return ports.Decision{Allowed: false, Reason: err, Message: "upgrade"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/access/check?feature=export&level=view&min_tier=2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetPrincipal(c, initdata.Principal{ID: 7})

	if err := NewAccessHandler(stub).Check(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp checkResponse
	decode(t, rec, &resp)
	if resp.Allowed || resp.Reason != "tier" || resp.Message != "upgrade" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAccessHandler_Check_DefaultsToView(t *testing.T) {
	e := newEcho()
	var got domain.Requirement
	stub := &stubAccessService{
		checkFn: func(_ context.Context, _ int64, req domain.Requirement) (ports.Decision, error) {
			got = req
			return ports.Decision{Allowed: false, Reason: domain.ErrPermissionDenied}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/access/check?feature=finance", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetPrincipal(c, initdata.Principal{ID: 7})

	if err := NewAccessHandler(stub).Check(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Level != domain.LevelView {
		t.Fatalf("expected omitted level to require view, got %q", got.Level)
	}
	var resp checkResponse
	decode(t, rec, &resp)
	if resp.Allowed || resp.Reason != "permission" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAccessHandler_Check_RejectsNoneLevel(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/access/check?feature=finance&level=none", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetPrincipal(c, initdata.Principal{ID: 7})

	err := NewAccessHandler(&stubAccessService{}).Check(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAccessHandler_Check_UnknownFeature(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/access/check?feature=billing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetPrincipal(c, initdata.Principal{ID: 7})

	err := NewAccessHandler(&stubAccessService{}).Check(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestTeamHandler_Redeem(t *testing.T) {
	e := newEcho()
	stub := &stubTeamService{
		redeemFn: func(_ context.Context, candidate *domain.Account, code string) (*domain.DelegationLink, error) {
			if candidate.ID != "o1" || code != "ab12cd" {
				t.Fatalf("unexpected args: %s %s", candidate.ID, code)
			}
			return &domain.DelegationLink{OwnerID: "o9", Permissions: domain.DefaultPermissions()}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/team/redeem", strings.NewReader(`{"code":"ab12cd"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withAccess(c, ownerAccess(domain.TierBasic))

	if err := NewTeamHandler(stub).Redeem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp redeemResponse
	decode(t, rec, &resp)
	if resp.OwnerID != "o9" {
		t.Fatalf("unexpected owner: %s", resp.OwnerID)
	}
}

func TestTeamHandler_Redeem_Validation(t *testing.T) {
	e := newEcho()
	stub := &stubTeamService{}

	req := httptest.NewRequest(http.MethodPost, "/api/team/redeem", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withAccess(c, ownerAccess(domain.TierBasic))

	err := NewTeamHandler(stub).Redeem(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	if !strings.Contains(he.Message.(string), "code is required") {
		t.Fatalf("unexpected message: %v", he.Message)
	}
}

func TestTeamHandler_Redeem_PropagatesDomainError(t *testing.T) {
	e := newEcho()
	stub := &stubTeamService{
		redeemFn: func(context.Context, *domain.Account, string) (*domain.DelegationLink, error) {
			return nil, domain.ErrCodeAlreadyRedeemed
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/team/redeem", strings.NewReader(`{"code":"AAAAAA"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withAccess(c, ownerAccess(domain.TierBasic))

	if err := NewTeamHandler(stub).Redeem(c); err != domain.ErrCodeAlreadyRedeemed {
		t.Fatalf("expected ErrCodeAlreadyRedeemed, got %v", err)
	}
}

func TestTeamHandler_SetPermissions(t *testing.T) {
	e := newEcho()
	stub := &stubTeamService{
		setFn: func(_ context.Context, owner *domain.Account, id int64, raw map[string]string) (domain.PermissionMap, error) {
			if id != 55 || raw["finance"] != "edit" {
				t.Fatalf("unexpected args: %d %v", id, raw)
			}
			perms := domain.DefaultPermissions()
			perms[domain.FeatureFinance] = domain.LevelEdit
			return perms, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"permissions":{"finance":"edit"}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/team/delegates/:telegram_id/permissions")
	c.SetParamNames("telegram_id")
	c.SetParamValues("55")
	withAccess(c, ownerAccess(domain.TierBasic))

	if err := NewTeamHandler(stub).SetPermissions(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp permissionsResponse
	decode(t, rec, &resp)
	if resp.TelegramID != 55 || resp.Permissions[domain.FeatureFinance] != domain.LevelEdit {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTeamHandler_BadDelegateParam(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("telegram_id", "feature")
	c.SetParamValues("abc", "finance")
	withAccess(c, ownerAccess(domain.TierBasic))

	err := NewTeamHandler(&stubTeamService{}).CyclePermission(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAdminHandler_ListUsers(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		listFn: func(_ context.Context, limit int) ([]*domain.Account, error) {
			if limit != defaultUserListLimit {
				t.Fatalf("expected default limit, got %d", limit)
			}
			return []*domain.Account{{ID: "a1", TelegramID: 5, Tier: domain.TierPremium}}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := NewAdminHandler(stub).ListUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp []userResponse
	decode(t, rec, &resp)
	if len(resp) != 1 || resp[0].TierLabel != "Premium" || resp[0].SubscriptionEndDate != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAdminHandler_UpdateUser(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		updateFn: func(_ context.Context, id string, tier *int, endsAt *string) (*domain.Account, error) {
			if id != "a1" || tier == nil || *tier != 1 || endsAt == nil || *endsAt != "null" {
				t.Fatalf("unexpected args: %s %v %v", id, tier, endsAt)
			}
			return &domain.Account{ID: id, Tier: domain.TierStandard}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"subscription_tier":1,"subscription_end_date":"null"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("a1")

	if err := NewAdminHandler(stub).UpdateUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdminHandler_UpdateUser_TierOutOfRange(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"subscription_tier":5}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("a1")

	err := NewAdminHandler(&stubAccountService{}).UpdateUser(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	e := newEcho()
	h := NewHealthHandler(map[string]Check{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return context.DeadlineExceeded },
	})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	if err := h.Readiness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	decode(t, rec, &resp)
	if resp.Dependencies["mongodb"].Status != "ok" || resp.Dependencies["redis"].Status != "unhealthy" {
		t.Fatalf("unexpected dependencies: %+v", resp.Dependencies)
	}
}
