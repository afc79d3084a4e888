package services

import (
	"github.com/Dosada05/club-engine/engine"
	"github.com/Dosada05/club-engine/models"
	"github.com/shopspring/decimal"
)

// EventSink получает доменные события движка. Доставка — fire-and-forget:
// реализация не возвращает ошибок, сбой доставки никогда не откатывает
// состояние движка. Все вызовы происходят после коммита транзакции команды.
type EventSink interface {
	PaymentConfirmed(event PaymentConfirmedEvent)
	PlayerEliminated(event PlayerEliminatedEvent)
	SeatsRebalanced(event SeatsRebalancedEvent)
	TournamentFinished(event TournamentFinishedEvent)
}

type PaymentConfirmedEvent struct {
	TournamentID int             `json:"tournament_id"`
	PlayerID     int             `json:"player_id"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
}

type PlayerEliminatedEvent struct {
	TournamentID int `json:"tournament_id"`
	PlayerID     int `json:"player_id"`
	FinishPlace  int `json:"finish_place"`
	PointsEarned int `json:"points_earned"`
}

type SeatsRebalancedEvent struct {
	TournamentID int                 `json:"tournament_id"`
	Relocations  []engine.Relocation `json:"relocations"`
}

type TournamentFinishedEvent struct {
	TournamentID int                     `json:"tournament_id"`
	Standings    []models.LeaderboardRow `json:"standings"`
}
