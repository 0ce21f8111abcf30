package models

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTPIssuer is the name authenticator apps display next to the account.
const TOTPIssuer = "Daylog"

// NewTOTPKey provisions a fresh TOTP secret for the account, issued
// under the app's name.
func NewTOTPKey(username string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      TOTPIssuer,
		AccountName: username,
	})
}

// TOTPKeyDataURI renders the key's otpauth URL as a PNG QR code wrapped
// in a data URI, ready to drop into an <img> src.
func TOTPKeyDataURI(key *otp.Key) (string, error) {
	img, err := key.Image(256, 256)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ValidTOTPCode reports whether code is currently valid for secret.
func ValidTOTPCode(secret, code string) bool {
	return totp.Validate(code, secret)
}
