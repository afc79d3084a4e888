package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/club-engine/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var (
	ErrRegistrationNotFound      = errors.New("registration not found")
	ErrRegistrationConflict      = errors.New("player is already registered for this tournament")
	ErrRegistrationPlayerInvalid = errors.New("registration references unknown player")
	ErrFinishPlaceConflict       = errors.New("finish place is already taken in this tournament")
)

// PaymentRecord — данные ручной фиксации оплаты взноса.
type PaymentRecord struct {
	Amount decimal.Decimal
	Method models.PaymentMethod
	Notes  *string
}

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	FindByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.Registration, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]*models.Registration, error)
	CountByStatuses(ctx context.Context, exec SQLExecutor, tournamentID int, statuses ...models.RegistrationStatus) (int, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error
	// Reopen возвращает no_show регистрацию в registered и стирает прежнюю
	// оплату: повторный вход игрока оплачивается заново.
	Reopen(ctx context.Context, exec SQLExecutor, id int) error
	// CheckInAllPaid переводит все оплаченные регистрации турнира в playing одним запросом.
	CheckInAllPaid(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	RecordPayment(ctx context.Context, exec SQLExecutor, id int, payment PaymentRecord) error
	SetEliminated(ctx context.Context, exec SQLExecutor, id int, finishPlace, pointsEarned int) error
	// ClearElimination возвращает выбывшего игрока в игру, снимая место и расчётные очки.
	ClearElimination(ctx context.Context, exec SQLExecutor, id int) error
	AddBonusPoints(ctx context.Context, exec SQLExecutor, id int, amount int) error
	// ResetRunState откатывает playing/eliminated обратно в paid и стирает
	// результаты прогона; no_show и бонусные очки не затрагиваются.
	ResetRunState(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `id, tournament_id, player_id, status, payment_amount, payment_method, payment_notes, paid_at, finish_place, points_earned, bonus_points, created_at`

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registrations (tournament_id, player_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, reg.TournamentID, reg.PlayerID, reg.Status).
		Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "registrations_tournament_id_player_id_key" {
					return ErrRegistrationConflict
				}
			case "23503":
				if pqErr.Constraint == "registrations_player_id_fkey" {
					return ErrRegistrationPlayerInvalid
				}
				if pqErr.Constraint == "registrations_tournament_id_fkey" {
					return ErrTournamentNotFound
				}
			}
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) scanRegistration(rowScanner interface {
	Scan(dest ...interface{}) error
}, reg *models.Registration) error {
	return rowScanner.Scan(
		&reg.ID, &reg.TournamentID, &reg.PlayerID, &reg.Status,
		&reg.PaymentAmount, &reg.PaymentMethod, &reg.PaymentNotes, &reg.PaidAt,
		&reg.FinishPlace, &reg.PointsEarned, &reg.BonusPoints, &reg.CreatedAt,
	)
}

func (r *postgresRegistrationRepository) FindByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.Registration, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE tournament_id = $1 AND player_id = $2`

	reg := &models.Registration{}
	err := r.scanRegistration(executor.QueryRowContext(ctx, query, tournamentID, playerID), reg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]*models.Registration, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE tournament_id = $1`
	args := []interface{}{tournamentID}

	if statusFilter != nil {
		query += " AND status = $2"
		args = append(args, *statusFilter)
	}
	query += " ORDER BY created_at ASC"

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		if err := r.scanRegistration(rows, &reg); err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		registrations = append(registrations, &reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}
	return registrations, nil
}

func (r *postgresRegistrationRepository) CountByStatuses(ctx context.Context, exec SQLExecutor, tournamentID int, statuses ...models.RegistrationStatus) (int, error) {
	executor := r.getExecutor(exec)
	statusValues := make([]string, len(statuses))
	for i, s := range statuses {
		statusValues[i] = string(s)
	}

	query := `SELECT COUNT(*) FROM registrations WHERE tournament_id = $1 AND status = ANY($2)`
	var count int
	err := executor.QueryRowContext(ctx, query, tournamentID, pq.Array(statusValues)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE registrations SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) Reopen(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE registrations SET
			status = $1,
			payment_amount = NULL,
			payment_method = NULL,
			payment_notes = NULL,
			paid_at = NULL
		WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, models.StatusRegistered, id)
	if err != nil {
		return fmt.Errorf("failed to reopen registration: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) CheckInAllPaid(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `UPDATE registrations SET status = $1 WHERE tournament_id = $2 AND status = $3`
	result, err := executor.ExecContext(ctx, query, models.StatusPlaying, tournamentID, models.StatusPaid)
	if err != nil {
		return 0, fmt.Errorf("failed to check in paid registrations: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(affected), nil
}

func (r *postgresRegistrationRepository) RecordPayment(ctx context.Context, exec SQLExecutor, id int, payment PaymentRecord) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE registrations SET
			status = $1,
			payment_amount = $2,
			payment_method = $3,
			payment_notes = $4,
			paid_at = NOW()
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query,
		models.StatusPaid, payment.Amount, payment.Method, payment.Notes, id)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) SetEliminated(ctx context.Context, exec SQLExecutor, id int, finishPlace, pointsEarned int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE registrations SET
			status = $1,
			finish_place = $2,
			points_earned = $3
		WHERE id = $4`
	result, err := executor.ExecContext(ctx, query, models.StatusEliminated, finishPlace, pointsEarned, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			// Уникальный индекс (tournament_id, finish_place) страхует от гонки
			// двух терминалов, выбивающих разных игроков на одно место.
			if pqErr.Constraint == "registrations_tournament_id_finish_place_key" {
				return ErrFinishPlaceConflict
			}
		}
		return fmt.Errorf("failed to set elimination: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) ClearElimination(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE registrations SET
			status = $1,
			finish_place = NULL,
			points_earned = 0
		WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, models.StatusPlaying, id)
	if err != nil {
		return fmt.Errorf("failed to clear elimination: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) AddBonusPoints(ctx context.Context, exec SQLExecutor, id int, amount int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE registrations SET bonus_points = bonus_points + $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to add bonus points: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) ResetRunState(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE registrations SET
			status = $1,
			finish_place = NULL,
			points_earned = 0
		WHERE tournament_id = $2 AND status = ANY($3)`
	_, err := executor.ExecContext(ctx, query,
		models.StatusPaid, tournamentID,
		pq.Array([]string{string(models.StatusPlaying), string(models.StatusEliminated)}))
	if err != nil {
		return fmt.Errorf("failed to reset registrations run state: %w", err)
	}
	return nil
}
