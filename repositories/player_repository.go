package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/club-engine/models"
	"github.com/lib/pq"
)

var ErrPlayerNotFound = errors.New("player not found")

// PlayerRepository — read-only доступ к справочнику игроков.
// Справочником владеет внешняя часть продукта.
type PlayerRepository interface {
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByIDs(ctx context.Context, ids []int) (map[int]*models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT id, display_name, avatar_key FROM players WHERE id = $1`

	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.DisplayName, &p.AvatarKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, ids []int) (map[int]*models.Player, error) {
	if len(ids) == 0 {
		return map[int]*models.Player{}, nil
	}

	query := `SELECT id, display_name, avatar_key FROM players WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make(map[int]*models.Player, len(ids))
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.AvatarKey); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players[p.ID] = &p
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}
