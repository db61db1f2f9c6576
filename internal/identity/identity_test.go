package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/vote-ledger/internal/common"
)

// encodeArgon2id собирает хеш в том же формате, что scripts/generate_hash.go.
// Параметры лёгкие, чтобы тесты не тратили 64 МБ на каждую проверку.
func encodeArgon2id(t *testing.T, secret string) string {
	t.Helper()
	salt := make([]byte, 16)
	_, err := rand.Read(salt)
	require.NoError(t, err)

	var (
		memory      uint32 = 1024
		iterations  uint32 = 1
		parallelism uint8  = 1
	)
	hash := argon2.IDKey([]byte(secret), salt, iterations, memory, parallelism, 32)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
}

func TestKeyringVerifier(t *testing.T) {
	ctx := context.Background()
	hash := encodeArgon2id(t, "top-secret")
	verifier := NewKeyringVerifier(map[Principal]string{"content-service": hash})

	t.Run("верный секрет проходит", func(t *testing.T) {
		err := verifier.VerifyCaller(ctx, Caller{Principal: "content-service", Secret: "top-secret"})
		assert.NoError(t, err)
	})

	t.Run("неверный секрет отклоняется", func(t *testing.T) {
		err := verifier.VerifyCaller(ctx, Caller{Principal: "content-service", Secret: "wrong"})
		assert.ErrorIs(t, err, common.ErrAuthenticationFailed)
	})

	t.Run("незнакомый принципал отклоняется", func(t *testing.T) {
		err := verifier.VerifyCaller(ctx, Caller{Principal: "stranger", Secret: "top-secret"})
		assert.ErrorIs(t, err, common.ErrAuthenticationFailed)
	})

	t.Run("пустой принципал отклоняется", func(t *testing.T) {
		err := verifier.VerifyCaller(ctx, Caller{Secret: "top-secret"})
		assert.ErrorIs(t, err, common.ErrAuthenticationFailed)
	})
}

func TestParseKeyring(t *testing.T) {
	hashA := encodeArgon2id(t, "a")
	hashB := encodeArgon2id(t, "b")

	t.Run("пустая строка", func(t *testing.T) {
		keyring, err := ParseKeyring("")
		require.NoError(t, err)
		assert.Empty(t, keyring)
	})

	t.Run("две записи", func(t *testing.T) {
		keyring, err := ParseKeyring("svc-a:" + hashA + " ; svc-b:" + hashB)
		require.NoError(t, err)
		require.Len(t, keyring, 2)
		assert.Equal(t, hashA, keyring["svc-a"])
		assert.Equal(t, hashB, keyring["svc-b"])
	})

	t.Run("запись без хеша", func(t *testing.T) {
		_, err := ParseKeyring("svc-a:plaintext")
		assert.Error(t, err)
	})

	t.Run("запись без принципала", func(t *testing.T) {
		_, err := ParseKeyring(":" + hashA)
		assert.Error(t, err)
	})
}
