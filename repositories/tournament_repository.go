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
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTournamentInUse        = errors.New("tournament has registrations and cannot be deleted")
)

type ListTournamentsFilter struct {
	State  *models.TournamentState
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetByIDForUpdate читает турнир с блокировкой строки (SELECT ... FOR UPDATE),
	// сериализуя конкурентные мутации одного турнира на уровне БД.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	// Update принимает executor: внутри команды он обязан выполняться той же
	// транзакцией, что удерживает блокировку строки из GetByIDForUpdate.
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	UpdateState(ctx context.Context, exec SQLExecutor, id int, state models.TournamentState) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, name, capacity, buy_in, seats_per_table, starts_at, state, points_mode, points_table, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, capacity, buy_in, seats_per_table, starts_at, state, points_mode, points_table)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Capacity, t.BuyIn, t.SeatsPerTable, t.StartsAt, t.State, t.PointsMode, t.PointsTable,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) scanTournament(row *sql.Row) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Capacity, &t.BuyIn, &t.SeatsPerTable,
		&t.StartsAt, &t.State, &t.PointsMode, &t.PointsTable, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.State != nil {
		query += fmt.Sprintf(" AND state = $%d", argID)
		args = append(args, *filter.State)
		argID++
	}

	query += " ORDER BY starts_at DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.Capacity, &t.BuyIn, &t.SeatsPerTable,
			&t.StartsAt, &t.State, &t.PointsMode, &t.PointsTable, &t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET
			name = $1,
			capacity = $2,
			buy_in = $3,
			seats_per_table = $4,
			starts_at = $5,
			points_mode = $6,
			points_table = $7
		WHERE id = $8`

	result, err := executor.ExecContext(ctx, query,
		t.Name, t.Capacity, t.BuyIn, t.SeatsPerTable, t.StartsAt, t.PointsMode, t.PointsTable,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateState(ctx context.Context, exec SQLExecutor, id int, state models.TournamentState) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET state = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, state, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_name_key" {
				return ErrTournamentNameConflict
			}
		case "23503":
			// FK из registrations/seat_assignments при попытке удалить турнир с данными.
			return ErrTournamentInUse
		}
	}
	return err
}
