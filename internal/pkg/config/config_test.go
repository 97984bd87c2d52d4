package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"BOT_TOKEN": "123:abcdef",
	}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.Port != "8080" || !cfg.IsDevelopment() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Telegram.InitDataMaxAge != 24*time.Hour {
		t.Fatalf("expected 24h max age, got %v", cfg.Telegram.InitDataMaxAge)
	}
	if cfg.Throttle.Rate != 5 || cfg.Throttle.Period != 10*time.Second {
		t.Fatalf("expected 5 per 10s throttle, got %+v", cfg.Throttle)
	}
	if cfg.Team.InviteTTL != 0 {
		t.Fatalf("expected unbounded invites by default, got %v", cfg.Team.InviteTTL)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"BOT_TOKEN":         "123:abcdef",
		"ENV":               "production",
		"ADMIN_IDS":         "11,22",
		"INIT_DATA_MAX_AGE": "1h",
		"INVITE_TTL":        "72h",
	}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("expected production")
	}
	if len(cfg.Telegram.AdminIDs) != 2 || cfg.Telegram.AdminIDs[0] != 11 || cfg.Telegram.AdminIDs[1] != 22 {
		t.Fatalf("unexpected admin ids: %v", cfg.Telegram.AdminIDs)
	}
	if cfg.Telegram.InitDataMaxAge != time.Hour || cfg.Team.InviteTTL != 72*time.Hour {
		t.Fatalf("unexpected durations: %+v %+v", cfg.Telegram, cfg.Team)
	}
}

func TestLoadFrom_RequiresBotToken(t *testing.T) {
	if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error without BOT_TOKEN")
	}
}

func TestLoadFrom_RejectsNonPositiveThrottle(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"BOT_TOKEN":     "123:abcdef",
		"THROTTLE_RATE": "0",
	}))
	if err == nil {
		t.Fatalf("expected error for zero throttle rate")
	}
}

func TestMaskToken(t *testing.T) {
	cases := map[string]string{
		"123456:ABCDEFwxyz": "123456:****wxyz",
		"nocolon":           "****",
		"1:abc":             "****",
	}
	for in, want := range cases {
		if got := MaskToken(in); got != want {
			t.Fatalf("MaskToken(%q): expected %q, got %q", in, want, got)
		}
	}
}
