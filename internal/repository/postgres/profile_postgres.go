package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/repository"
)

type profileRepository struct{ pool *pgxpool.Pool }

func NewProfileRepository(pool *pgxpool.Pool) repository.ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `id, player_id, league_id, season, overall, league, friendly,
	last_five, rating_trend, category_averages, version, created_at, updated_at`

func scanProfile(row pgx.Row) (model.PlayerRatingProfile, error) {
	var p model.PlayerRatingProfile
	err := row.Scan(
		&p.ID, &p.PlayerID, &p.LeagueID, &p.Season, &p.Overall, &p.League, &p.Friendly,
		&p.LastFiveRatings, &p.RatingTrend, &p.CategoryAverages, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *profileRepository) Get(ctx context.Context, playerID string, leagueID int64, season string) (model.PlayerRatingProfile, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.PlayerRatingProfile{}, err
	}
	exec := getQ(ctx, r.pool)
	out, err := scanProfile(exec.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM player_rating_profiles
		 WHERE player_id = $1 AND league_id = $2 AND season = $3`,
		playerID, leagueID, season,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PlayerRatingProfile{}, repository.ErrNotFound
		}
		return model.PlayerRatingProfile{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *profileRepository) Create(ctx context.Context, p model.PlayerRatingProfile) (model.PlayerRatingProfile, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.PlayerRatingProfile{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO player_rating_profiles
			(player_id, league_id, season, overall, league, friendly, last_five, rating_trend, category_averages, version)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,1)
		 RETURNING `+profileColumns,
		p.PlayerID, p.LeagueID, p.Season, p.Overall, p.League, p.Friendly,
		p.LastFiveRatings, p.RatingTrend, p.CategoryAverages,
	)
	out, err := scanProfile(row)
	if err != nil {
		return model.PlayerRatingProfile{}, repository.MapPgError(err)
	}
	return out, nil
}

// Update bumps Version; a stale Version means another writer won the race
// and the caller must re-read and re-apply its increment.
func (r *profileRepository) Update(ctx context.Context, p model.PlayerRatingProfile) (model.PlayerRatingProfile, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.PlayerRatingProfile{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`UPDATE player_rating_profiles SET
			overall = $3, league = $4, friendly = $5, last_five = $6,
			rating_trend = $7, category_averages = $8,
			version = version + 1, updated_at = NOW()
		 WHERE id = $1 AND version = $2
		 RETURNING `+profileColumns,
		p.ID, p.Version,
		p.Overall, p.League, p.Friendly, p.LastFiveRatings, p.RatingTrend, p.CategoryAverages,
	)
	out, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PlayerRatingProfile{}, repository.ErrConflict
		}
		return model.PlayerRatingProfile{}, repository.MapPgError(err)
	}
	return out, nil
}

var _ repository.ProfileRepository = (*profileRepository)(nil)
