// Package webpush implements the sender side of the Web Push protocol:
// VAPID request signing (RFC 8292) and the legacy "aesgcm" message
// encryption content-coding. Only the protocol composition lives here;
// all primitives come from the standard crypto packages.
package webpush

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"time"
)

// Tokens are valid for 12 hours, half the 24h ceiling push services accept.
const vapidTokenLifetime = 12 * time.Hour

// VAPIDKeys holds the sender's P-256 key pair in the raw base64url form
// push services and browsers exchange: the public key is an uncompressed
// 65-byte point, the private key a 32-byte scalar.
type VAPIDKeys struct {
	PublicKey  string
	PrivateKey string
}

// VAPIDHeaders carries the two header values a signed delivery needs.
type VAPIDHeaders struct {
	// Authorization is the full header value: "vapid t=<jwt>, k=<pub>".
	Authorization string
	// PublicKey is the raw base64url public key for the Crypto-Key header.
	PublicKey string
}

// Audience derives the VAPID audience from a push endpoint: scheme and
// host only. The token authorizes the sender for the push service as a
// whole, never for one subscriber path.
func Audience(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no scheme or host", endpoint)
	}
	return u.Scheme + "://" + u.Host, nil
}

// Sign builds the VAPID authorization headers for one push service.
// audience is the endpoint's scheme://host, subject the sender contact
// (mailto: or https: URL). Errors affect only the recipient being signed
// for; callers skip that delivery and move on.
func Sign(audience, subject string, keys VAPIDKeys, now time.Time) (VAPIDHeaders, error) {
	priv, err := parsePrivateKey(keys.PrivateKey)
	if err != nil {
		return VAPIDHeaders{}, fmt.Errorf("import private key: %w", err)
	}

	header, _ := json.Marshal(map[string]string{"typ": "JWT", "alg": "ES256"})
	claims, _ := json.Marshal(map[string]any{
		"aud": audience,
		"sub": subject,
		"exp": now.Add(vapidTokenLifetime).Unix(),
	})

	signingInput := b64.EncodeToString(header) + "." + b64.EncodeToString(claims)

	digest := sha256.Sum256([]byte(signingInput))
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	if err != nil {
		return VAPIDHeaders{}, fmt.Errorf("sign token: %w", err)
	}

	// JOSE signature form: r and s left-padded to 32 bytes each.
	sig := make([]byte, 64)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])

	token := signingInput + "." + b64.EncodeToString(sig)
	return VAPIDHeaders{
		Authorization: "vapid t=" + token + ", k=" + keys.PublicKey,
		PublicKey:     keys.PublicKey,
	}, nil
}

var b64 = base64.RawURLEncoding

// parsePrivateKey imports a raw base64url-encoded P-256 scalar.
func parsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	scalar, err := decodeKey(raw)
	if err != nil {
		return nil, err
	}
	if len(scalar) != 32 {
		return nil, fmt.Errorf("private key is %d bytes, want 32", len(scalar))
	}

	curve := elliptic.P256()
	d := new(big.Int).SetBytes(scalar)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, fmt.Errorf("private key scalar out of range")
	}

	priv := &ecdsa.PrivateKey{D: d}
	priv.Curve = curve
	priv.X, priv.Y = curve.ScalarBaseMult(scalar)
	return priv, nil
}

// decodeKey accepts base64url with or without padding; browsers emit the
// unpadded form but stored keys are not always that tidy.
func decodeKey(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	if b, err := base64.URLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.StdEncoding.DecodeString(s)
}
