// Package votes реализует журнал голосов и агрегатор тэлли.
// models.go описывает направление голоса, таргет и агрегат.
package votes

// Direction — текущая позиция голосующего по таргету.
type Direction uint32

const (
	// DirectionNone — активного голоса нет; в хранилище не записывается,
	// выводится из отсутствия записи
	DirectionNone Direction = 0
	// DirectionUp — голос «за»
	DirectionUp Direction = 1
	// DirectionDown — голос «против»
	DirectionDown Direction = 2
)

// Valid сообщает, входит ли значение в допустимый набор.
func (d Direction) Valid() bool {
	return d == DirectionNone || d == DirectionUp || d == DirectionDown
}

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "none"
	}
}

// value — вклад направления в карму и счёт: +1, -1 или 0.
func (d Direction) value() int64 {
	switch d {
	case DirectionUp:
		return 1
	case DirectionDown:
		return -1
	default:
		return 0
	}
}

// KarmaDelta возвращает изменение кармы автора при смене голоса
// с prev на next: Up→Down даёт -2, None→Up даёт +1 и так далее.
// Сервис контента передаёт эту дельту в леджер кармы.
func KarmaDelta(prev, next Direction) int64 {
	return next.value() - prev.value()
}

// Target идентифицирует то, за что голосуют: тред или ответ.
// Треды и ответы живут в непересекающихся пространствах ключей,
// даже когда их числовые идентификаторы совпадают.
type Target struct {
	BoardID  uint64
	ThreadID uint64
	ReplyID  uint64
	IsReply  bool
}

// ThreadTarget — таргет-тред.
func ThreadTarget(boardID, threadID uint64) Target {
	return Target{BoardID: boardID, ThreadID: threadID}
}

// ReplyTarget — таргет-ответ внутри треда.
func ReplyTarget(boardID, threadID, replyID uint64) Target {
	return Target{BoardID: boardID, ThreadID: threadID, ReplyID: replyID, IsReply: true}
}

// Tally — агрегат голосов одного таргета.
// Инвариант: Score == Upvotes - Downvotes в любой момент времени.
// FirstVoteAt устанавливается ровно один раз — первым голосом — и больше не меняется.
type Tally struct {
	Upvotes     uint32 `db:"upvotes"`
	Downvotes   uint32 `db:"downvotes"`
	Score       int32  `db:"score"`
	FirstVoteAt uint64 `db:"first_vote_at"`
}

// undo снимает числовой эффект прежнего голоса.
// Беззнаковые счётчики вычитаются с насыщением в ноль.
func (t *Tally) undo(d Direction) {
	switch d {
	case DirectionUp:
		if t.Upvotes > 0 {
			t.Upvotes--
		}
		t.Score--
	case DirectionDown:
		if t.Downvotes > 0 {
			t.Downvotes--
		}
		t.Score++
	}
}

// apply добавляет числовой эффект нового голоса.
func (t *Tally) apply(d Direction) {
	switch d {
	case DirectionUp:
		t.Upvotes++
		t.Score++
	case DirectionDown:
		t.Downvotes++
		t.Score--
	}
}

// ThreadScore — пара «тред, счёт ранжирования» для батч-скоринга.
// Последовательность возвращается несортированной: поддержка
// отсортированных индексов — забота вызывающего сервиса.
type ThreadScore struct {
	ThreadID uint64 `json:"thread_id"`
	Score    int64  `json:"score"`
}
