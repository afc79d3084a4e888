package models

// StatusCounts — количество регистраций в каждом статусе.
type StatusCounts struct {
	Registered int `json:"registered"`
	Paid       int `json:"paid"`
	NoShow     int `json:"no_show"`
	Playing    int `json:"playing"`
	Eliminated int `json:"eliminated"`
}

// TableOccupancy — заполненность одного стола.
type TableOccupancy struct {
	TableNumber int `json:"table_number"`
	Occupied    int `json:"occupied"`
	Free        int `json:"free"`
}

// LeaderboardRow — вклад игрока в сезонный лидерборд.
type LeaderboardRow struct {
	PlayerID     int     `json:"player_id"`
	DisplayName  string  `json:"display_name,omitempty"`
	FinishPlace  *int    `json:"finish_place,omitempty"`
	PointsEarned int     `json:"points_earned"`
	BonusPoints  int     `json:"bonus_points"`
	TotalPoints  int     `json:"total_points"`
}

// TournamentStats — агрегированный снимок турнира, пересчитывается на каждое чтение.
type TournamentStats struct {
	TournamentID int              `json:"tournament_id"`
	State        TournamentState  `json:"state"`
	Counts       StatusCounts     `json:"counts"`
	Tables       []TableOccupancy `json:"tables"`
	Leaderboard  []LeaderboardRow `json:"leaderboard"`
}
