package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/repository"
)

type matchRepository struct{ pool *pgxpool.Pool }

func NewMatchRepository(pool *pgxpool.Pool) repository.MatchRepository {
	return &matchRepository{pool: pool}
}

const matchColumns = `id, sport_type, kind, league_id, season,
	registration_opens_at, registration_closes_at, starts_at, ends_at,
	squad_size, reserve_size, min_players_to_start, fee, organizer_id,
	pools, teams, team1_score, team2_score, ledger, payments, mvp_id,
	status, created_at, updated_at`

func scanMatch(row pgx.Row) (model.Match, error) {
	var m model.Match
	err := row.Scan(
		&m.ID, &m.SportType, &m.Kind, &m.LeagueID, &m.Season,
		&m.RegistrationOpensAt, &m.RegistrationClosesAt, &m.StartsAt, &m.EndsAt,
		&m.SquadSize, &m.ReserveSize, &m.MinPlayersToStart, &m.Fee, &m.OrganizerID,
		&m.Pools, &m.Teams, &m.Team1Score, &m.Team2Score, &m.Ledger, &m.Payments, &m.MVPID,
		&m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

func (r *matchRepository) Create(ctx context.Context, m model.Match) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO matches (
			sport_type, kind, league_id, season,
			registration_opens_at, registration_closes_at, starts_at, ends_at,
			squad_size, reserve_size, min_players_to_start, fee, organizer_id,
			pools, teams, team1_score, team2_score, ledger, payments, mvp_id, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		RETURNING `+matchColumns,
		m.SportType, m.Kind, m.LeagueID, m.Season,
		m.RegistrationOpensAt, m.RegistrationClosesAt, m.StartsAt, m.EndsAt,
		m.SquadSize, m.ReserveSize, m.MinPlayersToStart, m.Fee, m.OrganizerID,
		m.Pools, m.Teams, m.Team1Score, m.Team2Score, m.Ledger, m.Payments, m.MVPID, m.Status,
	)
	out, err := scanMatch(row)
	if err != nil {
		return model.Match{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id int64) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	exec := getQ(ctx, r.pool)
	out, err := scanMatch(exec.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, repository.ErrNotFound
		}
		return model.Match{}, repository.MapPgError(err)
	}
	return out, nil
}

// Update is optimistic: the row must still carry the updated_at the caller
// read. A vanished row maps to ErrNotFound, a stale one to ErrConflict.
func (r *matchRepository) Update(ctx context.Context, m model.Match) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`UPDATE matches SET
			registration_opens_at = $3, registration_closes_at = $4, starts_at = $5, ends_at = $6,
			squad_size = $7, reserve_size = $8, min_players_to_start = $9, fee = $10,
			pools = $11, teams = $12, team1_score = $13, team2_score = $14,
			ledger = $15, payments = $16, mvp_id = $17, status = $18,
			updated_at = NOW()
		WHERE id = $1 AND updated_at = $2
		RETURNING `+matchColumns,
		m.ID, m.UpdatedAt,
		m.RegistrationOpensAt, m.RegistrationClosesAt, m.StartsAt, m.EndsAt,
		m.SquadSize, m.ReserveSize, m.MinPlayersToStart, m.Fee,
		m.Pools, m.Teams, m.Team1Score, m.Team2Score,
		m.Ledger, m.Payments, m.MVPID, m.Status,
	)
	out, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, r.missingOrStale(ctx, m.ID)
		}
		return model.Match{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *matchRepository) missingOrStale(ctx context.Context, id int64) error {
	var exists bool
	exec := getQ(ctx, r.pool)
	if err := exec.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM matches WHERE id = $1)`, id).Scan(&exists); err != nil {
		return repository.MapPgError(err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

func (r *matchRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Match], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Match]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+matchColumns+`, COUNT(*) OVER() AS total
		 FROM matches
		 ORDER BY starts_at DESC, id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Match]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Match]{Items: make([]model.Match, 0, limit)}
	for rows.Next() {
		var m model.Match
		var total int
		if err := rows.Scan(
			&m.ID, &m.SportType, &m.Kind, &m.LeagueID, &m.Season,
			&m.RegistrationOpensAt, &m.RegistrationClosesAt, &m.StartsAt, &m.EndsAt,
			&m.SquadSize, &m.ReserveSize, &m.MinPlayersToStart, &m.Fee, &m.OrganizerID,
			&m.Pools, &m.Teams, &m.Team1Score, &m.Team2Score, &m.Ledger, &m.Payments, &m.MVPID,
			&m.Status, &m.CreatedAt, &m.UpdatedAt, &total,
		); err != nil {
			return repository.PageResult[model.Match]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, m)
		res.Total = total
	}
	return res, nil
}

var _ repository.MatchRepository = (*matchRepository)(nil)
