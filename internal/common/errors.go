// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях леджера.
// Эти ошибки позволяют вызывающим сервисам различать типы проблем:
// нарушение политики борды — это не то же самое, что ошибка программы.
package common

import "errors"

// Ошибки аутентификации и авторизации
var (
	// ErrAuthenticationFailed — вызывающий не смог доказать владение принципалом
	ErrAuthenticationFailed = errors.New("аутентификация не пройдена")
	// ErrUnauthorized — аутентифицирован, но роль недостаточна (нужен админ+)
	ErrUnauthorized = errors.New("недостаточно прав: требуется роль админа или владельца")
)

// Ошибки политики голосования
var (
	// ErrVotingDisabled — голосование отключено настройками борды
	ErrVotingDisabled = errors.New("голосование на этой борде отключено")
	// ErrDownvotesNotAllowed — борда разрешает только голоса «за»
	ErrDownvotesNotAllowed = errors.New("минусы на этой борде запрещены")
)

// Ошибки кармы и конфигурации
var (
	// ErrKarmaOverflow — переполнение при умножении дельты или накоплении кармы
	ErrKarmaOverflow = errors.New("переполнение счётчика кармы")
	// ErrInvalidMultiplier — множитель кармы должен быть больше нуля
	ErrInvalidMultiplier = errors.New("множитель кармы должен быть > 0")
)
