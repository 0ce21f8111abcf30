package webpush

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	saltLength   = 16
	authLength   = 16
	keyLength    = 16 // AES-128
	nonceLength  = 12
	maxPlaintext = 4078 // push services reject records over 4096 bytes
)

// EncryptedMessage is an aesgcm-encrypted push body plus the key-agreement
// values the push service relays to the browser. ServerPublicKey and Salt
// go in the Crypto-Key and Encryption headers; omitting either makes the
// message undecryptable.
type EncryptedMessage struct {
	Ciphertext      []byte
	ServerPublicKey []byte // uncompressed point, 65 bytes
	Salt            []byte // 16 bytes
}

// Encrypt seals plaintext for the subscriber identified by its base64url
// P-256 public key and 16-byte auth secret, per the aesgcm content-coding.
// A fresh ephemeral key pair and salt are generated for every message.
func Encrypt(clientPublicKey, clientAuthSecret string, plaintext []byte) (EncryptedMessage, error) {
	rawClientKey, err := decodeKey(clientPublicKey)
	if err != nil {
		return EncryptedMessage{}, fmt.Errorf("decode client key: %w", err)
	}
	authSecret, err := decodeKey(clientAuthSecret)
	if err != nil {
		return EncryptedMessage{}, fmt.Errorf("decode auth secret: %w", err)
	}

	serverPriv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return EncryptedMessage{}, fmt.Errorf("generate ephemeral key: %w", err)
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return EncryptedMessage{}, fmt.Errorf("generate salt: %w", err)
	}

	return encryptWithKeys(serverPriv, salt, rawClientKey, authSecret, plaintext)
}

// encryptWithKeys is Encrypt with the per-message randomness supplied by
// the caller. Split out so the key schedule is testable deterministically.
func encryptWithKeys(serverPriv *ecdh.PrivateKey, salt, rawClientKey, authSecret, plaintext []byte) (EncryptedMessage, error) {
	if len(authSecret) != authLength {
		return EncryptedMessage{}, fmt.Errorf("auth secret is %d bytes, want %d", len(authSecret), authLength)
	}
	if len(salt) != saltLength {
		return EncryptedMessage{}, fmt.Errorf("salt is %d bytes, want %d", len(salt), saltLength)
	}
	if len(plaintext) > maxPlaintext {
		return EncryptedMessage{}, fmt.Errorf("plaintext is %d bytes, limit %d", len(plaintext), maxPlaintext)
	}

	clientPub, err := ecdh.P256().NewPublicKey(rawClientKey)
	if err != nil {
		return EncryptedMessage{}, fmt.Errorf("import client key: %w", err)
	}

	sharedSecret, err := serverPriv.ECDH(clientPub)
	if err != nil {
		return EncryptedMessage{}, fmt.Errorf("derive shared secret: %w", err)
	}

	serverPub := serverPriv.PublicKey().Bytes()

	key, nonce, err := deriveKeyAndNonce(sharedSecret, authSecret, salt, rawClientKey, serverPub)
	if err != nil {
		return EncryptedMessage{}, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return EncryptedMessage{}, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return EncryptedMessage{}, err
	}

	// 2-byte big-endian pad length, zero: no padding.
	padded := make([]byte, 2+len(plaintext))
	copy(padded[2:], plaintext)

	return EncryptedMessage{
		Ciphertext:      gcm.Seal(nil, nonce, padded, nil),
		ServerPublicKey: serverPub,
		Salt:            salt,
	}, nil
}

// deriveKeyAndNonce runs the aesgcm key schedule: the auth secret is bound
// in as the HKDF salt of the first stage, then the content-encryption key
// and nonce are expanded under a context that names both public keys, so
// keys are never reusable across key pairs.
func deriveKeyAndNonce(sharedSecret, authSecret, salt, clientPub, serverPub []byte) (key, nonce []byte, err error) {
	prk := make([]byte, 32)
	if err := readHKDF(prk, sharedSecret, authSecret, []byte("Content-Encoding: auth\x00")); err != nil {
		return nil, nil, fmt.Errorf("derive prk: %w", err)
	}

	context := keyContext(clientPub, serverPub)

	key = make([]byte, keyLength)
	if err := readHKDF(key, prk, salt, append([]byte("Content-Encoding: aesgcm\x00"), context...)); err != nil {
		return nil, nil, fmt.Errorf("derive cek: %w", err)
	}

	nonce = make([]byte, nonceLength)
	if err := readHKDF(nonce, prk, salt, append([]byte("Content-Encoding: nonce\x00"), context...)); err != nil {
		return nil, nil, fmt.Errorf("derive nonce: %w", err)
	}

	return key, nonce, nil
}

// keyContext is "P-256" NUL, then each public key with a 2-byte length
// prefix, client key first.
func keyContext(clientPub, serverPub []byte) []byte {
	ctx := make([]byte, 0, 6+2+len(clientPub)+2+len(serverPub))
	ctx = append(ctx, []byte("P-256\x00")...)
	ctx = binary.BigEndian.AppendUint16(ctx, uint16(len(clientPub)))
	ctx = append(ctx, clientPub...)
	ctx = binary.BigEndian.AppendUint16(ctx, uint16(len(serverPub)))
	ctx = append(ctx, serverPub...)
	return ctx
}

func readHKDF(out, secret, salt, info []byte) error {
	_, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), out)
	return err
}
