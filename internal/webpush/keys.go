package webpush

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
)

// GenerateVAPIDKeys creates a fresh P-256 sender key pair in the raw
// base64url encoding the rest of the protocol expects. Meant for one-time
// provisioning; the pair must stay stable across deploys or existing
// subscriptions go stale.
func GenerateVAPIDKeys() (VAPIDKeys, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return VAPIDKeys{}, fmt.Errorf("generate key pair: %w", err)
	}

	return VAPIDKeys{
		PublicKey:  b64.EncodeToString(priv.PublicKey().Bytes()),
		PrivateKey: b64.EncodeToString(priv.Bytes()),
	}, nil
}
