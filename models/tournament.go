package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TournamentState представляет стадии жизненного цикла турнира, соответствующие ENUM в БД.
type TournamentState string

const (
	StateUpcoming         TournamentState = "upcoming"
	StateRegistrationOpen TournamentState = "registration_open"
	StateCheckIn          TournamentState = "check_in"
	StateStarted          TournamentState = "started"
	StateFinished         TournamentState = "finished"
)

// PointsMode определяет источник призовых очков: расчётная формула или ручная таблица.
type PointsMode string

const (
	PointsModeComputed PointsMode = "computed"
	PointsModeManual   PointsMode = "manual"
)

// PointsTable — ручная таблица место -> очки, хранится как JSONB.
type PointsTable map[int]int

func (t PointsTable) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *PointsTable) Scan(src interface{}) error {
	if src == nil {
		*t = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported scan type for PointsTable: %T", src)
	}
	return json.Unmarshal(b, t)
}

// Validate проверяет ручную таблицу при записи, а не доверяет ей при чтении.
func (t PointsTable) Validate() error {
	if len(t) == 0 {
		return errors.New("points table must not be empty")
	}
	for place, points := range t {
		if place < 1 {
			return fmt.Errorf("points table contains invalid place %d", place)
		}
		if points < 0 {
			return fmt.Errorf("points table contains negative points for place %d", place)
		}
	}
	return nil
}

// Tournament представляет турнир клуба.
type Tournament struct {
	ID            int             `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Capacity      int             `json:"capacity" db:"capacity"`
	BuyIn         decimal.Decimal `json:"buy_in" db:"buy_in"`
	SeatsPerTable int             `json:"seats_per_table" db:"seats_per_table"`
	StartsAt      time.Time       `json:"starts_at" db:"starts_at"`
	State         TournamentState `json:"state" db:"state"`
	PointsMode    PointsMode      `json:"points_mode" db:"points_mode"`
	PointsTable   PointsTable     `json:"points_table,omitempty" db:"points_table"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`

	// Опциональные связанные данные (не мапятся напрямую)
	Registrations []Registration   `json:"registrations,omitempty" db:"-"`
	Seats         []SeatAssignment `json:"seats,omitempty" db:"-"`
}
