// Package cryptox provides the hashing and encryption primitives used by the
// wallet: one-way hashing for passwords, transaction PINs, and security
// answers (argon2id), and AES-GCM encryption for stored payment-method
// numbers.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/revpay/internal/common"
	"golang.org/x/crypto/argon2"
)

const saltSize = 16

func deriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// HashSecret hashes a password, PIN, or security answer with argon2id and a
// random salt. The result is "salt$hash" with both parts hex-encoded.
func HashSecret(secret string) (string, error) {
	salt := common.GenerateRandByteArray(saltSize)
	hash := deriveKey([]byte(secret), salt)
	return fmt.Sprintf("%s$%s", hex.EncodeToString(salt), hex.EncodeToString(hash)), nil
}

// VerifySecret reports whether secret matches an encoded hash produced by
// HashSecret. The comparison is constant-time.
func VerifySecret(secret, encoded string) bool {
	saltHex, hashHex, ok := strings.Cut(encoded, "$")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}
	got := deriveKey([]byte(secret), salt)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// EncryptField encrypts a short sensitive string (card or bank account
// number) with AES-GCM. The key must be 16, 24, or 32 bytes. A fresh random
// nonce is generated per call and returned alongside the ciphertext.
func EncryptField(plaintext string, key []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext = aesgcm.Seal(nil, nonce, []byte(plaintext), nil)
	return ciphertext, nonce, nil
}

// DecryptField reverses EncryptField with the same key and nonce.
func DecryptField(ciphertext, nonce, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
