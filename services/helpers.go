package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/club-engine/engine"
	"github.com/Dosada05/club-engine/models"
	"github.com/Dosada05/club-engine/repositories"
)

// Transactor выполняет функцию внутри одной транзакции БД. Выделен в интерфейс,
// чтобы сервисы можно было тестировать на фейковых репозиториях без Postgres.
type Transactor interface {
	InTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

type sqlTransactor struct {
	db *sql.DB
}

func NewSQLTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) InTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isValidStateTransition(current, next models.TournamentState) bool {
	allowed := map[models.TournamentState][]models.TournamentState{
		models.StateUpcoming:         {models.StateRegistrationOpen},
		models.StateRegistrationOpen: {models.StateCheckIn},
		models.StateCheckIn:          {models.StateStarted},
		// Отмена возвращает started обратно в upcoming для чистого перезапуска.
		models.StateStarted:  {models.StateFinished, models.StateUpcoming},
		models.StateFinished: {},
	}
	for _, s := range allowed[current] {
		if next == s {
			return true
		}
	}
	return false
}

func seatingToMap(assignments []*models.SeatAssignment) map[int]engine.Seat {
	m := make(map[int]engine.Seat, len(assignments))
	for _, a := range assignments {
		m[a.PlayerID] = engine.Seat{Table: a.TableNumber, Seat: a.SeatNumber}
	}
	return m
}
