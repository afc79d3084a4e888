package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"

	"github.com/Dosada05/club-engine/models"
	"github.com/Dosada05/club-engine/repositories"
	"golang.org/x/sync/singleflight"
)

// StatsService строит агрегаты для дашбордов. Никакого собственного состояния:
// каждый вызов пересчитывает снимок из текущих данных леджера и рассадки.
type StatsService interface {
	Snapshot(ctx context.Context, tournamentID int) (*models.TournamentStats, error)
	Seating(ctx context.Context, tournamentID int) ([]*models.SeatAssignment, error)
}

type statsService struct {
	tx             Transactor
	tournamentRepo repositories.TournamentRepository
	regRepo        repositories.RegistrationRepository
	seatRepo       repositories.SeatRepository
	playerRepo     repositories.PlayerRepository
	logger         *slog.Logger

	// Табло опрашивают один турнир с нескольких экранов; одновременные
	// одинаковые запросы схлопываются в один пересчёт.
	group singleflight.Group
}

func NewStatsService(
	tx Transactor,
	tournamentRepo repositories.TournamentRepository,
	regRepo repositories.RegistrationRepository,
	seatRepo repositories.SeatRepository,
	playerRepo repositories.PlayerRepository,
	logger *slog.Logger,
) StatsService {
	return &statsService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		regRepo:        regRepo,
		seatRepo:       seatRepo,
		playerRepo:     playerRepo,
		logger:         logger,
	}
}

func (s *statsService) Snapshot(ctx context.Context, tournamentID int) (*models.TournamentStats, error) {
	v, err, _ := s.group.Do(strconv.Itoa(tournamentID), func() (interface{}, error) {
		return s.buildSnapshot(ctx, tournamentID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.TournamentStats), nil
}

func (s *statsService) buildSnapshot(ctx context.Context, tournamentID int) (*models.TournamentStats, error) {
	var tournament *models.Tournament
	var registrations []*models.Registration
	var seats []*models.SeatAssignment

	// Все чтения в одной транзакции: снимок не может увидеть наполовину
	// применённую команду (игрок уже выбит, но ещё числится за столом).
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		tournament, err = s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		registrations, err = s.regRepo.ListByTournament(ctx, exec, tournamentID, nil)
		if err != nil {
			return err
		}
		seats, err = s.seatRepo.ListByTournament(ctx, exec, tournamentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	stats := &models.TournamentStats{
		TournamentID: tournamentID,
		State:        tournament.State,
		Counts:       countStatuses(registrations),
		Tables:       tableOccupancy(seats, tournament.SeatsPerTable),
		Leaderboard:  s.leaderboard(ctx, registrations),
	}
	return stats, nil
}

func (s *statsService) Seating(ctx context.Context, tournamentID int) ([]*models.SeatAssignment, error) {
	seats, err := s.seatRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(seats))
	for _, seat := range seats {
		ids = append(ids, seat.PlayerID)
	}
	players, err := s.playerRepo.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to populate seating player details", slog.Any("error", err))
		return seats, nil
	}
	for _, seat := range seats {
		seat.Player = players[seat.PlayerID]
	}
	return seats, nil
}

func countStatuses(registrations []*models.Registration) models.StatusCounts {
	var counts models.StatusCounts
	for _, reg := range registrations {
		switch reg.Status {
		case models.StatusRegistered:
			counts.Registered++
		case models.StatusPaid:
			counts.Paid++
		case models.StatusNoShow:
			counts.NoShow++
		case models.StatusPlaying:
			counts.Playing++
		case models.StatusEliminated:
			counts.Eliminated++
		}
	}
	return counts
}

func tableOccupancy(seats []*models.SeatAssignment, seatsPerTable int) []models.TableOccupancy {
	occupied := make(map[int]int)
	for _, seat := range seats {
		occupied[seat.TableNumber]++
	}

	tables := make([]models.TableOccupancy, 0, len(occupied))
	for table, count := range occupied {
		tables = append(tables, models.TableOccupancy{
			TableNumber: table,
			Occupied:    count,
			Free:        seatsPerTable - count,
		})
	}
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].TableNumber < tables[j].TableNumber
	})
	return tables
}

// leaderboard сортирует: сначала занятые места по возрастанию, затем ещё
// играющие/не финишировавшие по убыванию суммарных очков.
func (s *statsService) leaderboard(ctx context.Context, registrations []*models.Registration) []models.LeaderboardRow {
	rows := make([]models.LeaderboardRow, 0, len(registrations))
	ids := make([]int, 0, len(registrations))
	for _, reg := range registrations {
		if reg.Status == models.StatusNoShow {
			continue
		}
		rows = append(rows, models.LeaderboardRow{
			PlayerID:     reg.PlayerID,
			FinishPlace:  reg.FinishPlace,
			PointsEarned: reg.PointsEarned,
			BonusPoints:  reg.BonusPoints,
			TotalPoints:  reg.TotalPoints(),
		})
		ids = append(ids, reg.PlayerID)
	}

	sort.Slice(rows, func(i, j int) bool {
		pi, pj := rows[i].FinishPlace, rows[j].FinishPlace
		switch {
		case pi != nil && pj != nil:
			return *pi < *pj
		case pi != nil:
			return true
		case pj != nil:
			return false
		default:
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
	})

	players, err := s.playerRepo.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to populate leaderboard player details", slog.Any("error", err))
		return rows
	}
	for i := range rows {
		if p, ok := players[rows[i].PlayerID]; ok {
			rows[i].DisplayName = p.DisplayName
		}
	}
	return rows
}
