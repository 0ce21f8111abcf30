package models

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestNewTOTPKey(t *testing.T) {
	key, err := NewTOTPKey("alice")
	if err != nil {
		t.Fatalf("NewTOTPKey: %v", err)
	}
	if key.Issuer() != TOTPIssuer {
		t.Errorf("issuer = %q, want %q", key.Issuer(), TOTPIssuer)
	}
	if key.AccountName() != "alice" {
		t.Errorf("account = %q, want %q", key.AccountName(), "alice")
	}

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if !ValidTOTPCode(key.Secret(), code) {
		t.Error("current code rejected")
	}
	if ValidTOTPCode(key.Secret(), "000000") {
		t.Error("bogus code accepted")
	}
}

func TestTOTPKeyDataURI(t *testing.T) {
	key, err := NewTOTPKey("alice")
	if err != nil {
		t.Fatalf("NewTOTPKey: %v", err)
	}
	uri, err := TOTPKeyDataURI(key)
	if err != nil {
		t.Fatalf("TOTPKeyDataURI: %v", err)
	}

	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(uri, prefix) {
		t.Fatalf("uri does not start with %q", prefix)
	}
	raw, err := base64.StdEncoding.DecodeString(uri[len(prefix):])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(raw) < 8 || string(raw[:8]) != "\x89PNG\r\n\x1a\n" {
		t.Error("payload is not a PNG image")
	}
}
