package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const now = uint64(1_000_000)

func TestHotFresherRanksHigher(t *testing.T) {
	hourOld := Hot(10, now-3600, now)
	tenHoursOld := Hot(10, now-36000, now)

	assert.Greater(t, hourOld, tenHoursOld)
}

func TestHotExactValues(t *testing.T) {
	// Результат обязан совпадать бит в бит на любом узле
	tests := []struct {
		name      string
		score     int32
		createdAt uint64
		want      int64
	}{
		// возраст 1ч: ageHours = 1+2 = 3, decay = 3+9/100 = 3
		{"час назад", 10, now - 3600, 33333},
		// возраст 10ч: ageHours = 12, decay = 12+144/100 = 13
		{"десять часов назад", 10, now - 36000, 7692},
		// created_at в будущем (перекос часов): возраст насыщается в ноль
		{"будущее время", 10, now + 500, 50000},
		{"нулевой счёт", 0, now - 3600, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Hot(tt.score, tt.createdAt, now))
		})
	}
}

func TestHotNegativeScore(t *testing.T) {
	assert.Negative(t, Hot(-5, now-3600, now))
}

func TestHotMonotonicInAge(t *testing.T) {
	prev := Hot(100, now-3600, now)
	for hours := uint64(2); hours <= 200; hours += 7 {
		cur := Hot(100, now-hours*3600, now)
		assert.LessOrEqual(t, cur, prev, "hot-счёт вырос с возрастом на %d часах", hours)
		prev = cur
	}
}

func TestControversialEvenSplitWins(t *testing.T) {
	even := Controversial(50, 50)
	lopsided := Controversial(100, 10)

	assert.Greater(t, even, lopsided)
}

func TestControversialEdgeCases(t *testing.T) {
	assert.Equal(t, int64(0), Controversial(0, 0))
	assert.Equal(t, int64(0), Controversial(100, 0))
	assert.Equal(t, int64(0), Controversial(0, 100))
}

func TestControversialSymmetric(t *testing.T) {
	assert.Equal(t, Controversial(100, 10), Controversial(10, 100))
}

func TestControversialExactValues(t *testing.T) {
	// 100 голосов поровну: 100 * 50 * 1000 / 50
	assert.Equal(t, int64(100000), Controversial(50, 50))
	// 110 голосов с перекосом: 110 * 10 * 1000 / 100
	assert.Equal(t, int64(11000), Controversial(100, 10))
}

func TestTop(t *testing.T) {
	assert.Equal(t, int64(100), Top(100, 0))
	assert.Equal(t, int64(-50), Top(-50, now))
}
