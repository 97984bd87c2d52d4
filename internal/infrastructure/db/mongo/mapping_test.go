package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/internal/core/ports"
)

func TestAccountMapping_RoundTrip(t *testing.T) {
	owner := primitive.NewObjectID()
	ends := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	in := &domain.Account{
		TelegramID:         42,
		FullName:           "Ann Lee",
		Role:               domain.RoleDelegate,
		OwnerID:            owner.Hex(),
		Tier:               domain.TierStandard,
		CreatedAt:          time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		SubscriptionEndsAt: &ends,
	}

	doc, err := accountFromDomain(in)
	if err != nil {
		t.Fatalf("accountFromDomain returned error: %v", err)
	}
	if doc.OwnerID == nil || *doc.OwnerID != owner {
		t.Fatalf("expected owner id to map to ObjectID")
	}

	out := doc.toDomain()
	if out.OwnerID != in.OwnerID || out.Role != in.Role || out.Tier != in.Tier || out.TelegramID != in.TelegramID {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestAccountMapping_BadOwnerID(t *testing.T) {
	if _, err := accountFromDomain(&domain.Account{OwnerID: "not-hex"}); err == nil {
		t.Fatalf("expected error for malformed owner id")
	}
}

func TestAccountMapping_UnknownRoleIsOwner(t *testing.T) {
	doc := mongoAccount{ID: primitive.NewObjectID(), Role: "assistant-legacy"}
	if got := doc.toDomain().Role; got != domain.RoleOwner {
		t.Fatalf("expected unknown role to read as owner, got %s", got)
	}
}

func TestSubscriptionUpdate(t *testing.T) {
	tier := domain.TierPremium
	ends := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := subscriptionUpdate(ports.SubscriptionUpdate{}); len(got) != 0 {
		t.Fatalf("expected empty update, got %v", got)
	}

	got := subscriptionUpdate(ports.SubscriptionUpdate{Tier: &tier, EndsAt: &ends})
	set, ok := got["$set"].(bson.M)
	if !ok || set["subscription_tier"] != 2 {
		t.Fatalf("unexpected $set: %v", got)
	}
	if d, ok := set["subscription_end_date"].(time.Time); !ok || !d.Equal(ends) {
		t.Fatalf("expected end date %v, got %v", ends, set["subscription_end_date"])
	}

	got = subscriptionUpdate(ports.SubscriptionUpdate{ClearEndsAt: true, EndsAt: &ends})
	if _, ok := got["$unset"]; !ok {
		t.Fatalf("expected $unset when clearing, got %v", got)
	}
	if _, ok := got["$set"]; ok {
		t.Fatalf("clearing must not also set the date, got %v", got)
	}
}

func TestPermissionsFromRaw_KeepsStoredValues(t *testing.T) {
	perms := permissionsFromRaw(map[string]string{"finance": "edit", "xray": "bogus"})
	if perms[domain.FeatureFinance] != domain.LevelEdit {
		t.Fatalf("expected finance edit")
	}
	if perms[domain.Feature("xray")] != domain.Level("bogus") {
		t.Fatalf("expected raw values to be preserved for the resolver to normalise")
	}
}

func TestInviteMapping(t *testing.T) {
	owner := primitive.NewObjectID()
	doc := mongoInvite{Code: "ABC123", OwnerID: owner, Permissions: domain.DefaultPermissions().Raw()}
	inv := doc.toDomain()
	if inv.Code != "ABC123" || inv.OwnerID != owner.Hex() {
		t.Fatalf("unexpected invite: %+v", inv)
	}
	if inv.Permissions.Level(domain.FeatureCalendar) != domain.LevelView {
		t.Fatalf("expected snapshot preserved")
	}
}
