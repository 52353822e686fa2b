// Package onramp implements signed session-token issuance against the
// third-party onramp provider APIs.
package onramp

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"strings"
)

const (
	pemTypePKCS8 = "PRIVATE KEY"
	pemTypeEC    = "EC PRIVATE KEY"
)

// ParseSigningKey turns raw key material from configuration into an ECDSA
// private key. Environment variables cannot reliably hold literal newlines,
// so escaped "\n" sequences are unescaped first. PKCS#8 material is accepted
// directly; SEC1 EC material is re-wrapped into PKCS#8 before parsing. Any
// other PEM header is a key-format error.
func ParseSigningKey(secret string) (*ecdsa.PrivateKey, error) {
	normalized := strings.ReplaceAll(secret, `\n`, "\n")

	block, _ := pem.Decode([]byte(normalized))
	if block == nil {
		return nil, fmt.Errorf("signing key is not PEM encoded")
	}

	switch block.Type {
	case pemTypePKCS8:
	case pemTypeEC:
		converted, err := ecToPKCS8(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("convert EC key to PKCS#8: %w", err)
		}
		block = &pem.Block{Type: pemTypePKCS8, Bytes: converted}
	default:
		return nil, fmt.Errorf("unsupported key format %q", block.Type)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}

	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("signing key is %T, want ECDSA", parsed)
	}
	return key, nil
}

// ecToPKCS8 re-encodes a SEC1 EC private key into the PKCS#8 wrapper: the
// raw key bytes gain the standard version field and algorithm identifier.
func ecToPKCS8(sec1 []byte) ([]byte, error) {
	key, err := x509.ParseECPrivateKey(sec1)
	if err != nil {
		return nil, err
	}
	return x509.MarshalPKCS8PrivateKey(key)
}

// SecretFingerprint returns a short non-reversible identifier for key
// material. Secrets are never logged in full; log this instead.
func SecretFingerprint(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:4])
}
