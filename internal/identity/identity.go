// Package identity отвечает на вопрос «действительно ли вызывающий
// владеет принципалом, от имени которого действует?».
// Леджер не доверяет никакой мутации без положительного ответа.
package identity

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/vote-ledger/internal/common"
)

// Principal — непрозрачный идентификатор участника платформы
// (пользователь, сервис контента, сервис авторизации).
type Principal string

// Caller — принципал плюс секрет, которым он доказывает владение.
type Caller struct {
	Principal Principal
	Secret    string
}

// Verifier проверяет подлинность вызывающего.
// Подменяется фейком в тестах.
type Verifier interface {
	VerifyCaller(ctx context.Context, caller Caller) error
}

// KeyringVerifier хранит связку «принципал → Argon2id-хеш секрета».
// Принципал, которого нет в связке, не пройдёт аутентификацию.
type KeyringVerifier struct {
	keyring map[Principal]string
}

// NewKeyringVerifier создаёт верификатор с заданной связкой.
func NewKeyringVerifier(keyring map[Principal]string) *KeyringVerifier {
	if keyring == nil {
		keyring = make(map[Principal]string)
	}
	return &KeyringVerifier{keyring: keyring}
}

// ParseKeyring разбирает строку вида "principal:$argon2id$...;principal:$argon2id$...".
// Разделитель пар — точка с запятой, потому что хеш сам содержит '$'.
func ParseKeyring(s string) (map[Principal]string, error) {
	keyring := make(map[Principal]string)
	s = strings.TrimSpace(s)
	if s == "" {
		return keyring, nil
	}
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, hash, ok := strings.Cut(pair, ":")
		if !ok || name == "" || !strings.HasPrefix(hash, "$argon2id$") {
			return nil, fmt.Errorf("некорректная запись связки ключей: %q", pair)
		}
		keyring[Principal(name)] = hash
	}
	return keyring, nil
}

// VerifyCaller сверяет секрет вызывающего с хешом из связки.
func (v *KeyringVerifier) VerifyCaller(_ context.Context, caller Caller) error {
	if caller.Principal == "" {
		return fmt.Errorf("%w: пустой принципал", common.ErrAuthenticationFailed)
	}
	hash, ok := v.keyring[caller.Principal]
	if !ok {
		return fmt.Errorf("%w: принципал %q не в связке ключей", common.ErrAuthenticationFailed, caller.Principal)
	}
	if !verifyArgon2id(caller.Secret, hash) {
		return fmt.Errorf("%w: неверный секрет принципала %q", common.ErrAuthenticationFailed, caller.Principal)
	}
	return nil
}

// verifyArgon2id проверяет секрет по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(secret, encodedHash string) bool {
	// Парсим хеш
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	// Извлекаем параметры
	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	// Декодируем соль
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}

	// Декодируем хеш
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	// Вычисляем хеш предъявленного секрета
	computedHash := argon2.IDKey([]byte(secret), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравниваем в постоянном времени (защита от timing attack)
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}
