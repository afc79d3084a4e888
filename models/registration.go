package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegistrationStatus представляет статус игрока в рамках одного турнира.
type RegistrationStatus string

const (
	StatusRegistered RegistrationStatus = "registered"
	StatusPaid       RegistrationStatus = "paid"
	StatusNoShow     RegistrationStatus = "no_show"
	StatusPlaying    RegistrationStatus = "playing"
	StatusEliminated RegistrationStatus = "eliminated"
)

// PaymentMethod — способ оплаты взноса. Только фиксация, без интеграции с платёжными шлюзами.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// Registration представляет участие игрока в турнире.
type Registration struct {
	ID           int                `json:"id" db:"id"`
	TournamentID int                `json:"tournament_id" db:"tournament_id"`
	PlayerID     int                `json:"player_id" db:"player_id"`
	Status       RegistrationStatus `json:"status" db:"status"`

	PaymentAmount *decimal.Decimal `json:"payment_amount,omitempty" db:"payment_amount"`
	PaymentMethod *PaymentMethod   `json:"payment_method,omitempty" db:"payment_method"`
	PaymentNotes  *string          `json:"payment_notes,omitempty" db:"payment_notes"`
	PaidAt        *time.Time       `json:"paid_at,omitempty" db:"paid_at"`

	FinishPlace  *int `json:"finish_place,omitempty" db:"finish_place"`
	PointsEarned int  `json:"points_earned" db:"points_earned"`
	BonusPoints  int  `json:"bonus_points" db:"bonus_points"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}

// TotalPoints возвращает сумму расчётных и бонусных очков.
func (r Registration) TotalPoints() int {
	return r.PointsEarned + r.BonusPoints
}
