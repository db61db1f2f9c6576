// Package ranking содержит алгоритмы ранжирования контента.
// Все функции чистые и целочисленные: независимые пересчёты на разных
// узлах обязаны совпадать бит в бит, поэтому никакой плавающей точки
// и никакого чтения часов — время приходит параметром.
package ranking

// Hot вычисляет «горячесть»: свежий контент с тем же счётом ранжируется выше.
//
// Возраст в часах получает минимум 2, чтобы не делить на ноль и дать
// новым постам ненулевой стартовый возраст. Затухание растёт квадратично:
// age + age²/100. Счёт умножается на 10000 для сохранения точности
// при целочисленном делении.
func Hot(score int32, createdAt, now uint64) int64 {
	var age uint64
	if now > createdAt {
		age = now - createdAt
	}
	ageHours := int64(age/3600) + 2

	decay := ageHours + ageHours*ageHours/100
	if decay < 1 {
		decay = 1
	}

	return int64(score) * 10000 / decay
}

// Controversial вычисляет «спорность»: много голосов, поровну разделённых
// между плюсами и минусами. Однобокий контент не спорный.
//
// Формула: объём × сбалансированность = total × min/max, масштаб 1000.
func Controversial(upvotes, downvotes uint32) int64 {
	total := int64(upvotes) + int64(downvotes)
	if total == 0 {
		return 0
	}

	minVotes := int64(upvotes)
	maxVotes := int64(downvotes)
	if minVotes > maxVotes {
		minVotes, maxVotes = maxVotes, minVotes
	}
	if maxVotes == 0 {
		return 0
	}

	return total * minVotes * 1000 / maxVotes
}

// Top возвращает чистый счёт. Место для будущего временного затухания.
func Top(score int32, _ uint64) int64 {
	return int64(score)
}
