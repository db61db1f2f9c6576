package votes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKarmaDelta(t *testing.T) {
	tests := []struct {
		name string
		prev Direction
		next Direction
		want int64
	}{
		{"нет -> плюс", DirectionNone, DirectionUp, 1},
		{"нет -> минус", DirectionNone, DirectionDown, -1},
		{"плюс -> минус", DirectionUp, DirectionDown, -2},
		{"минус -> плюс", DirectionDown, DirectionUp, 2},
		{"плюс -> нет", DirectionUp, DirectionNone, -1},
		{"минус -> нет", DirectionDown, DirectionNone, 1},
		{"плюс -> плюс", DirectionUp, DirectionUp, 0},
		{"нет -> нет", DirectionNone, DirectionNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KarmaDelta(tt.prev, tt.next))
		})
	}
}

func TestDirectionValid(t *testing.T) {
	assert.True(t, DirectionNone.Valid())
	assert.True(t, DirectionUp.Valid())
	assert.True(t, DirectionDown.Valid())
	assert.False(t, Direction(3).Valid())
}

func TestTallyUndoSaturates(t *testing.T) {
	// Вычитание из пустого тэлли не делает беззнаковые счётчики отрицательными
	var tally Tally
	tally.undo(DirectionUp)
	assert.Equal(t, uint32(0), tally.Upvotes)
	assert.Equal(t, int32(-1), tally.Score)

	tally = Tally{}
	tally.undo(DirectionDown)
	assert.Equal(t, uint32(0), tally.Downvotes)
	assert.Equal(t, int32(1), tally.Score)
}

func TestTargetKeySpaces(t *testing.T) {
	// Тред и ответ с совпадающими id — разные ключи
	thread := ThreadTarget(1, 7)
	reply := ReplyTarget(1, 7, 0)
	assert.NotEqual(t, thread, reply)
}
