package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/repository"
)

type leagueRepository struct{ pool *pgxpool.Pool }

func NewLeagueRepository(pool *pgxpool.Pool) repository.LeagueRepository {
	return &leagueRepository{pool: pool}
}

func (r *leagueRepository) GetByID(ctx context.Context, id int64) (model.League, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.League{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT id, name, sport_type, friendlies_count, created_at, updated_at
		 FROM leagues WHERE id = $1`, id,
	)
	var out model.League
	if err := row.Scan(&out.ID, &out.Name, &out.SportType, &out.FriendliesCount, &out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.League{}, repository.ErrNotFound
		}
		return model.League{}, repository.MapPgError(err)
	}
	return out, nil
}

var _ repository.LeagueRepository = (*leagueRepository)(nil)
