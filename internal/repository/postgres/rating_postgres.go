package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/repository"
)

type ratingRepository struct{ pool *pgxpool.Pool }

func NewRatingRepository(pool *pgxpool.Pool) repository.RatingRepository {
	return &ratingRepository{pool: pool}
}

// Create relies on the unique index over (match_id, rater_id, rated_id);
// a duplicate triple surfaces as ErrAlreadyExists via MapPgError.
func (r *ratingRepository) Create(ctx context.Context, in model.MatchRating) (model.MatchRating, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.MatchRating{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO match_ratings (match_id, rater_id, rated_id, score, categories, anonymous, league_id, season)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING id, match_id, rater_id, rated_id, score, categories, anonymous, league_id, season, created_at`,
		in.MatchID, in.RaterID, in.RatedID, in.Score, in.Categories, in.Anonymous, in.LeagueID, in.Season,
	)
	var out model.MatchRating
	if err := row.Scan(&out.ID, &out.MatchID, &out.RaterID, &out.RatedID, &out.Score, &out.Categories,
		&out.Anonymous, &out.LeagueID, &out.Season, &out.CreatedAt); err != nil {
		return model.MatchRating{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *ratingRepository) ListByMatch(ctx context.Context, matchID int64) ([]model.MatchRating, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT id, match_id, rater_id, rated_id, score, categories, anonymous, league_id, season, created_at
		 FROM match_ratings WHERE match_id = $1 ORDER BY id`, matchID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.MatchRating, 0, 16)
	for rows.Next() {
		var it model.MatchRating
		if err := rows.Scan(&it.ID, &it.MatchID, &it.RaterID, &it.RatedID, &it.Score, &it.Categories,
			&it.Anonymous, &it.LeagueID, &it.Season, &it.CreatedAt); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, nil
}

func (r *ratingRepository) Exists(ctx context.Context, matchID int64, raterID, ratedID string) (bool, error) {
	if err := ensurePool(r.pool); err != nil {
		return false, err
	}
	var exists bool
	exec := getQ(ctx, r.pool)
	err := exec.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM match_ratings WHERE match_id = $1 AND rater_id = $2 AND rated_id = $3)`,
		matchID, raterID, ratedID,
	).Scan(&exists)
	if err != nil {
		return false, repository.MapPgError(err)
	}
	return exists, nil
}

func (r *ratingRepository) CountDistinctRaters(ctx context.Context, matchID int64) (int, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	var n int
	exec := getQ(ctx, r.pool)
	err := exec.QueryRow(ctx,
		`SELECT COUNT(DISTINCT rater_id) FROM match_ratings WHERE match_id = $1`, matchID,
	).Scan(&n)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return n, nil
}

var _ repository.RatingRepository = (*ratingRepository)(nil)
