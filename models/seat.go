package models

import "time"

// SeatAssignment привязывает активного игрока к физическому месту (стол, место).
// Запись существует только пока игрок в статусе playing.
type SeatAssignment struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	PlayerID     int       `json:"player_id" db:"player_id"`
	TableNumber  int       `json:"table_number" db:"table_number"`
	SeatNumber   int       `json:"seat_number" db:"seat_number"`
	AssignedAt   time.Time `json:"assigned_at" db:"assigned_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}
