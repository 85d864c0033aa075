package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/repository"
)

type standingsRepository struct{ pool *pgxpool.Pool }

func NewStandingsRepository(pool *pgxpool.Pool) repository.StandingsRepository {
	return &standingsRepository{pool: pool}
}

const standingColumns = `id, league_id, season, player_id,
	played, won, drawn, lost, goals_scored, goals_against, goal_difference, assists, points,
	rating, mvp_count, attendance_rate,
	friendly_played, friendly_won, friendly_drawn, friendly_lost, friendly_goals, friendly_assists,
	version, created_at, updated_at`

func scanStanding(row pgx.Row) (model.PlayerStandingRow, error) {
	var s model.PlayerStandingRow
	err := row.Scan(
		&s.ID, &s.LeagueID, &s.Season, &s.PlayerID,
		&s.Played, &s.Won, &s.Drawn, &s.Lost, &s.GoalsScored, &s.GoalsAgainst, &s.GoalDifference, &s.Assists, &s.Points,
		&s.Rating, &s.MVPCount, &s.AttendanceRate,
		&s.FriendlyPlayed, &s.FriendlyWon, &s.FriendlyDrawn, &s.FriendlyLost, &s.FriendlyGoals, &s.FriendlyAssists,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *standingsRepository) GetRow(ctx context.Context, leagueID int64, season, playerID string) (model.PlayerStandingRow, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.PlayerStandingRow{}, err
	}
	exec := getQ(ctx, r.pool)
	out, err := scanStanding(exec.QueryRow(ctx,
		`SELECT `+standingColumns+` FROM standings
		 WHERE league_id = $1 AND season = $2 AND player_id = $3`,
		leagueID, season, playerID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PlayerStandingRow{}, repository.ErrNotFound
		}
		return model.PlayerStandingRow{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *standingsRepository) CreateRow(ctx context.Context, row model.PlayerStandingRow) (model.PlayerStandingRow, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.PlayerStandingRow{}, err
	}
	exec := getQ(ctx, r.pool)
	out, err := scanStanding(exec.QueryRow(ctx,
		`INSERT INTO standings (
			league_id, season, player_id,
			played, won, drawn, lost, goals_scored, goals_against, goal_difference, assists, points,
			rating, mvp_count, attendance_rate,
			friendly_played, friendly_won, friendly_drawn, friendly_lost, friendly_goals, friendly_assists,
			version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,1)
		RETURNING `+standingColumns,
		row.LeagueID, row.Season, row.PlayerID,
		row.Played, row.Won, row.Drawn, row.Lost, row.GoalsScored, row.GoalsAgainst, row.GoalDifference, row.Assists, row.Points,
		row.Rating, row.MVPCount, row.AttendanceRate,
		row.FriendlyPlayed, row.FriendlyWon, row.FriendlyDrawn, row.FriendlyLost, row.FriendlyGoals, row.FriendlyAssists,
	))
	if err != nil {
		return model.PlayerStandingRow{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *standingsRepository) UpdateRow(ctx context.Context, row model.PlayerStandingRow) (model.PlayerStandingRow, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.PlayerStandingRow{}, err
	}
	exec := getQ(ctx, r.pool)
	out, err := scanStanding(exec.QueryRow(ctx,
		`UPDATE standings SET
			played = $3, won = $4, drawn = $5, lost = $6,
			goals_scored = $7, goals_against = $8, goal_difference = $9, assists = $10, points = $11,
			rating = $12, mvp_count = $13, attendance_rate = $14,
			friendly_played = $15, friendly_won = $16, friendly_drawn = $17, friendly_lost = $18,
			friendly_goals = $19, friendly_assists = $20,
			version = version + 1, updated_at = NOW()
		 WHERE id = $1 AND version = $2
		 RETURNING `+standingColumns,
		row.ID, row.Version,
		row.Played, row.Won, row.Drawn, row.Lost,
		row.GoalsScored, row.GoalsAgainst, row.GoalDifference, row.Assists, row.Points,
		row.Rating, row.MVPCount, row.AttendanceRate,
		row.FriendlyPlayed, row.FriendlyWon, row.FriendlyDrawn, row.FriendlyLost,
		row.FriendlyGoals, row.FriendlyAssists,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PlayerStandingRow{}, repository.ErrConflict
		}
		return model.PlayerStandingRow{}, repository.MapPgError(err)
	}
	return out, nil
}

// ListByLeagueSeason returns the table already in canonical order; the same
// tie-break chain lives in internal/stats for in-memory sorting.
func (r *standingsRepository) ListByLeagueSeason(ctx context.Context, leagueID int64, season string) ([]model.PlayerStandingRow, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+standingColumns+` FROM standings
		 WHERE league_id = $1 AND season = $2
		 ORDER BY points DESC, goal_difference DESC, goals_scored DESC, player_id`,
		leagueID, season,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.PlayerStandingRow, 0, 16)
	for rows.Next() {
		s, err := scanStanding(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, s)
	}
	return res, nil
}

var _ repository.StandingsRepository = (*standingsRepository)(nil)
