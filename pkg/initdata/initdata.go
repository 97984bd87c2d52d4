// Package initdata verifies the signed initData string a Telegram Mini App
// passes to its backend.
//
// The data-check-string is built from the raw credential split on '&', with
// each value URL-decoded exactly once after splitting, the hash pair removed,
// pairs sorted by key and joined as key=value lines. The signing key is
// HMAC-SHA256 keyed with the literal "WebAppData" over the bot token.
package initdata

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxAge is the freshness window applied when none is configured.
const DefaultMaxAge = 24 * time.Hour

const (
	webAppDataKey = "WebAppData"
	hashKey       = "hash"
	authDateKey   = "auth_date"
	userKey       = "user"

	// maxClockSkew is how far auth_date may run ahead of the verifier's clock.
	maxClockSkew = time.Minute
)

var (
	ErrMissingSignature = errors.New("initdata: missing hash")
	ErrInvalidSignature = errors.New("initdata: invalid signature")
	ErrExpired          = errors.New("initdata: auth_date outside freshness window")
	ErrMissingIdentity  = errors.New("initdata: missing user id")
)

// Principal is the identity carried by a verified credential.
type Principal struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// FullName joins first and last name.
func (p Principal) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type pair struct {
	key   string
	value string
}

// Options configures a Verifier.
type Options struct {
	// Secret is the bot token shared with the Mini App's bot.
	Secret string
	// MaxAge bounds now - auth_date. Defaults to DefaultMaxAge.
	MaxAge time.Duration
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Verifier checks credentials against one secret. Safe for concurrent use.
type Verifier struct {
	secret string
	maxAge time.Duration
	now    func() time.Time
}

// NewVerifier builds a Verifier. An empty secret is rejected.
func NewVerifier(opts Options) (*Verifier, error) {
	if opts.Secret == "" {
		return nil, errors.New("initdata: secret is required")
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Verifier{secret: opts.Secret, maxAge: opts.MaxAge, now: opts.Now}, nil
}

// Verify authenticates raw and returns its principal.
func (v *Verifier) Verify(raw string) (Principal, error) {
	return Verify(raw, v.secret, v.maxAge, v.now())
}

// Verify authenticates raw against secret at instant now. maxAge <= 0 means
// DefaultMaxAge. It never panics on malformed input.
func Verify(raw, secret string, maxAge time.Duration, now time.Time) (Principal, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	hash, pairs, err := parse(raw)
	if err != nil {
		return Principal{}, err
	}
	if secret == "" {
		return Principal{}, ErrInvalidSignature
	}

	expected := signPairs(pairs, secret)
	if !hmac.Equal([]byte(expected), []byte(hash)) {
		return Principal{}, ErrInvalidSignature
	}

	if authDate, ok := lookup(pairs, authDateKey); ok {
		// An unparsable auth_date skips the freshness check.
		if ts, perr := strconv.ParseInt(authDate, 10, 64); perr == nil {
			if ts <= 0 || ts > now.Add(maxClockSkew).Unix() || now.Unix()-ts > int64(maxAge/time.Second) {
				return Principal{}, ErrExpired
			}
		}
	}

	user, ok := lookup(pairs, userKey)
	if !ok {
		return Principal{}, ErrMissingIdentity
	}
	return parseUser(user)
}

// parse splits the raw credential before decoding anything. Duplicate keys
// make the credential non-canonical and are rejected.
func parse(raw string) (string, []pair, error) {
	var (
		hash      string
		hashFound bool
		pairs     []pair
	)
	seen := make(map[string]struct{})

	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		key, rawValue, _ := strings.Cut(part, "=")
		if _, dup := seen[key]; dup {
			return "", nil, ErrInvalidSignature
		}
		seen[key] = struct{}{}

		if key == hashKey {
			hash, hashFound = rawValue, true
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return "", nil, ErrInvalidSignature
		}
		pairs = append(pairs, pair{key: key, value: value})
	}

	if !hashFound || hash == "" {
		return "", nil, ErrMissingSignature
	}
	return hash, pairs, nil
}

// dataCheckString canonicalises decoded pairs: sorted by key, key=value, '\n' separated.
func dataCheckString(pairs []pair) string {
	sorted := make([]pair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].key < sorted[j].key })

	var b strings.Builder
	for i, p := range sorted {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(p.value)
	}
	return b.String()
}

// SecretKey derives the signing key: HMAC-SHA256 keyed with "WebAppData",
// message = secret.
func SecretKey(secret string) []byte {
	mac := hmac.New(sha256.New, []byte(webAppDataKey))
	mac.Write([]byte(secret))
	return mac.Sum(nil)
}

func signPairs(pairs []pair, secret string) string {
	mac := hmac.New(sha256.New, SecretKey(secret))
	mac.Write([]byte(dataCheckString(pairs)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign builds a credential for values signed with secret, in the same form a
// Telegram client produces. Any "hash" entry in values is replaced.
func Sign(values map[string]string, secret string) string {
	keys := make([]string, 0, len(values))
	pairs := make([]pair, 0, len(values))
	for k, v := range values {
		if k == hashKey {
			continue
		}
		keys = append(keys, k)
		pairs = append(pairs, pair{key: k, value: v})
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, k+"="+url.QueryEscape(values[k]))
	}
	parts = append(parts, hashKey+"="+signPairs(pairs, secret))
	return strings.Join(parts, "&")
}

func lookup(pairs []pair, key string) (string, bool) {
	for _, p := range pairs {
		if p.key == key {
			return p.value, true
		}
	}
	return "", false
}

type userPayload struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func parseUser(raw string) (Principal, error) {
	var u userPayload
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return Principal{}, ErrMissingIdentity
	}
	if u.ID <= 0 {
		return Principal{}, ErrMissingIdentity
	}
	return Principal{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}, nil
}

// Reason returns a short label for err, for logs and metrics only.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingSignature):
		return "missing_signature"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrMissingIdentity):
		return "missing_identity"
	default:
		return "unknown"
	}
}
