// Package votingconfig хранит настройки голосования для каждой борды.
// models.go описывает структуру конфигурации и её значения по умолчанию.
package votingconfig

// Config — настройки голосования одной борды.
type Config struct {
	// Включено ли голосование на борде
	Enabled bool `db:"enabled"`
	// Разрешены ли минусы (если false — только плюсы)
	AllowDownvotes bool `db:"allow_downvotes"`
	// Ведётся ли учёт кармы
	KarmaEnabled bool `db:"karma_enabled"`
	// Множитель кармы (по умолчанию 1)
	KarmaMultiplier uint32 `db:"karma_multiplier"`
}

// DefaultConfig возвращает конфигурацию борды, для которой ничего не сохранено:
// всё включено, множитель 1.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		AllowDownvotes:  true,
		KarmaEnabled:    true,
		KarmaMultiplier: 1,
	}
}
