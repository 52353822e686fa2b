package onramp

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// AssertionTTL is the fixed validity window of a signed assertion. An
	// assertion must not be reused past its exp timestamp.
	AssertionTTL = 120 * time.Second

	// assertionIssuer is the fixed service name in the iss claim.
	assertionIssuer = "cdp"

	// assertionAudience is the fixed service audience in the aud claim.
	assertionAudience = "cdp_service"
)

// SigningRequest describes one assertion to mint. KeySecret is sensitive and
// never logged in full.
type SigningRequest struct {
	KeyID     string
	KeySecret string
	Method    string
	Host      string
	Path      string
	TTL       time.Duration
}

// BuildAssertion mints a short-lived ES256 assertion bound to exactly one
// upstream call via the uri claim. Every assertion carries a fresh random
// nonce in its header, so it is single-use in spirit, and the key id for
// rotation lookup.
func BuildAssertion(req SigningRequest) (string, error) {
	if req.KeyID == "" || req.KeySecret == "" {
		return "", fmt.Errorf("signing credentials are required")
	}

	key, err := ParseSigningKey(req.KeySecret)
	if err != nil {
		return "", err
	}

	ttl := req.TTL
	if ttl <= 0 || ttl > AssertionTTL {
		ttl = AssertionTTL
	}

	nonce, err := newNonce()
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": req.KeyID,
		"iss": assertionIssuer,
		"aud": []string{assertionAudience},
		"nbf": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"uri": fmt.Sprintf("%s %s%s", req.Method, req.Host, req.Path),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = req.KeyID
	token.Header["nonce"] = nonce

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}

// newNonce returns 16 random bytes hex encoded.
func newNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
