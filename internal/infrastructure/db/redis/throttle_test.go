package redis

import (
	"testing"
	"time"
)

func TestThrottle_KeyBuckets(t *testing.T) {
	th := NewThrottle(nil, 5, 10*time.Second)
	base := time.Unix(1_700_000_000, 0)

	k1 := th.key("42", base)
	if k1 != th.key("42", base.Add(9*time.Second)) {
		t.Fatalf("expected hits within one window to share a key")
	}
	if k1 == th.key("42", base.Add(10*time.Second)) {
		t.Fatalf("expected the next window to use a new key")
	}
	if k1 == th.key("43", base) {
		t.Fatalf("expected identities to be counted separately")
	}
	if want := "throttle:42:170000000"; k1 != want {
		t.Fatalf("expected %q, got %q", want, k1)
	}
}

func TestNewThrottle_DefaultWindow(t *testing.T) {
	if th := NewThrottle(nil, 5, 0); th.window != 10*time.Second {
		t.Fatalf("expected 10s default window, got %v", th.window)
	}
}
