package engine

import (
	"errors"
	"math"
)

var (
	ErrInvalidPlace        = errors.New("finish place must be positive")
	ErrInvalidParticipants = errors.New("participant count must be positive")
)

// perPlayerContribution — фиксированный вклад каждого участника в призовой фонд очков.
const perPlayerContribution = 75

// flatPoints начисляется за любое место ниже оплачиваемой зоны.
const flatPoints = 5

// placePercentages — доли фонда по местам 1..15. Сумма намеренно не равна 100:
// это константа дизайна начисления, а не распределение вероятностей.
var placePercentages = map[int]float64{
	1:  24,
	2:  17,
	3:  11,
	4:  8.5,
	5:  7.5,
	6:  6.6,
	7:  5.5,
	8:  5,
	9:  4.5,
	10: 3,
	11: 2,
	12: 1.5,
	13: 1.5,
	14: 1.5,
	15: 1,
}

// Points возвращает расчётные очки за место place при totalParticipants участниках.
// Фонд = totalParticipants * 75, доля места берётся из placePercentages.
// Округление — половина от нуля (math.Round). Функция чистая и безопасна
// для конкурентных вызовов.
func Points(place, totalParticipants int) (int, error) {
	if place < 1 {
		return 0, ErrInvalidPlace
	}
	if totalParticipants < 1 {
		return 0, ErrInvalidParticipants
	}
	pct, ok := placePercentages[place]
	if !ok {
		return flatPoints, nil
	}
	pool := float64(totalParticipants * perPlayerContribution)
	return int(math.Round(pool * pct / 100)), nil
}
