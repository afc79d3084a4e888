package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/club-engine/models"
	"github.com/lib/pq"
)

var (
	ErrSeatAssignmentNotFound = errors.New("seat assignment not found")
	ErrSeatTaken              = errors.New("seat is already occupied")
)

type SeatRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, assignments []*models.SeatAssignment) error
	Create(ctx context.Context, exec SQLExecutor, assignment *models.SeatAssignment) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.SeatAssignment, error)
	// Relocate переносит игрока на новое место. Выполняется внутри транзакции
	// консолидации, поэтому промежуточных коллизий не видно снаружи.
	Relocate(ctx context.Context, exec SQLExecutor, tournamentID, playerID, tableNumber, seatNumber int) error
	DeleteByPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresSeatRepository struct {
	db *sql.DB
}

func NewPostgresSeatRepository(db *sql.DB) SeatRepository {
	return &postgresSeatRepository{db: db}
}

func (r *postgresSeatRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSeatRepository) handleSeatError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "seat_assignments_tournament_table_seat_key":
			return ErrSeatTaken
		case "seat_assignments_tournament_id_player_id_key":
			return ErrSeatTaken
		}
	}
	return err
}

func (r *postgresSeatRepository) Create(ctx context.Context, exec SQLExecutor, a *models.SeatAssignment) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO seat_assignments (tournament_id, player_id, table_number, seat_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, assigned_at`

	err := executor.QueryRowContext(ctx, query,
		a.TournamentID, a.PlayerID, a.TableNumber, a.SeatNumber,
	).Scan(&a.ID, &a.AssignedAt)
	if err != nil {
		if mapped := r.handleSeatError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create seat assignment: %w", err)
	}
	return nil
}

func (r *postgresSeatRepository) CreateBatch(ctx context.Context, exec SQLExecutor, assignments []*models.SeatAssignment) error {
	for _, a := range assignments {
		if err := r.Create(ctx, exec, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresSeatRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.SeatAssignment, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, player_id, table_number, seat_number, assigned_at
		FROM seat_assignments
		WHERE tournament_id = $1
		ORDER BY table_number ASC, seat_number ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seat assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]*models.SeatAssignment, 0)
	for rows.Next() {
		var a models.SeatAssignment
		if err := rows.Scan(&a.ID, &a.TournamentID, &a.PlayerID, &a.TableNumber, &a.SeatNumber, &a.AssignedAt); err != nil {
			return nil, fmt.Errorf("failed to scan seat assignment row: %w", err)
		}
		assignments = append(assignments, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seat assignment rows: %w", err)
	}
	return assignments, nil
}

func (r *postgresSeatRepository) Relocate(ctx context.Context, exec SQLExecutor, tournamentID, playerID, tableNumber, seatNumber int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE seat_assignments SET table_number = $1, seat_number = $2, assigned_at = NOW()
		WHERE tournament_id = $3 AND player_id = $4`
	result, err := executor.ExecContext(ctx, query, tableNumber, seatNumber, tournamentID, playerID)
	if err != nil {
		if mapped := r.handleSeatError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to relocate player %d: %w", playerID, err)
	}
	return checkAffectedRows(result, ErrSeatAssignmentNotFound)
}

func (r *postgresSeatRepository) DeleteByPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM seat_assignments WHERE tournament_id = $1 AND player_id = $2`
	result, err := executor.ExecContext(ctx, query, tournamentID, playerID)
	if err != nil {
		return fmt.Errorf("failed to delete seat assignment: %w", err)
	}
	return checkAffectedRows(result, ErrSeatAssignmentNotFound)
}

func (r *postgresSeatRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM seat_assignments WHERE tournament_id = $1`
	if _, err := executor.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to clear seat assignments: %w", err)
	}
	return nil
}
