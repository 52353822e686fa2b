package onramp

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateTestKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func pkcs8PEM(t *testing.T, key *ecdsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func sec1PEM(t *testing.T, key *ecdsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
}

func TestParseSigningKey_PKCS8(t *testing.T) {
	key := generateTestKey(t)

	parsed, err := ParseSigningKey(pkcs8PEM(t, key))
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(&parsed.PublicKey))
}

func TestParseSigningKey_SEC1ConvertsToPKCS8(t *testing.T) {
	key := generateTestKey(t)

	parsed, err := ParseSigningKey(sec1PEM(t, key))
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(&parsed.PublicKey))

	// The converted key must still sign verifiably against the original
	// public key.
	digest := sha256.Sum256([]byte("payload"))
	sig, err := ecdsa.SignASN1(rand.Reader, parsed, digest[:])
	require.NoError(t, err)
	assert.True(t, ecdsa.VerifyASN1(&key.PublicKey, digest[:], sig))
}

func TestParseSigningKey_UnescapesNewlines(t *testing.T) {
	key := generateTestKey(t)
	escaped := strings.ReplaceAll(pkcs8PEM(t, key), "\n", `\n`)

	parsed, err := ParseSigningKey(escaped)
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(&parsed.PublicKey))
}

func TestParseSigningKey_RejectsNonPEM(t *testing.T) {
	_, err := ParseSigningKey("not a key at all")
	assert.Error(t, err)
}

func TestParseSigningKey_RejectsUnknownPEMType(t *testing.T) {
	block := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{0x30}})

	_, err := ParseSigningKey(string(block))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported key format")
}

func TestSecretFingerprint_StableAndShort(t *testing.T) {
	a := SecretFingerprint("secret-a")
	b := SecretFingerprint("secret-b")

	assert.Len(t, a, 8)
	assert.Equal(t, a, SecretFingerprint("secret-a"))
	assert.NotEqual(t, a, b)
}
