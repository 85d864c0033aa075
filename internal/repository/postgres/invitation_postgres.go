package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/repository"
)

type invitationRepository struct{ pool *pgxpool.Pool }

func NewInvitationRepository(pool *pgxpool.Pool) repository.InvitationRepository {
	return &invitationRepository{pool: pool}
}

const invitationColumns = `id, match_id, match_kind, inviter_id, invitee_id,
	status, message, sent_at, responded_at, expires_at`

func scanInvitation(row pgx.Row) (model.Invitation, error) {
	var inv model.Invitation
	err := row.Scan(
		&inv.ID, &inv.MatchID, &inv.MatchKind, &inv.InviterID, &inv.InviteeID,
		&inv.Status, &inv.Message, &inv.SentAt, &inv.RespondedAt, &inv.ExpiresAt,
	)
	return inv, err
}

func (r *invitationRepository) Create(ctx context.Context, inv model.Invitation) (model.Invitation, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Invitation{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO invitations (match_id, match_kind, inviter_id, invitee_id, status, message, sent_at, expires_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING `+invitationColumns,
		inv.MatchID, inv.MatchKind, inv.InviterID, inv.InviteeID, inv.Status, inv.Message, inv.SentAt, inv.ExpiresAt,
	)
	out, err := scanInvitation(row)
	if err != nil {
		return model.Invitation{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id int64) (model.Invitation, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Invitation{}, err
	}
	exec := getQ(ctx, r.pool)
	out, err := scanInvitation(exec.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Invitation{}, repository.ErrNotFound
		}
		return model.Invitation{}, repository.MapPgError(err)
	}
	return out, nil
}

// UpdateStatus only moves rows that are still pending, so two concurrent
// responders cannot both win: the loser sees ErrConflict.
func (r *invitationRepository) UpdateStatus(ctx context.Context, id int64, status model.InvitationStatus, respondedAt time.Time) (model.Invitation, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Invitation{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`UPDATE invitations SET status = $2, responded_at = $3
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+invitationColumns,
		id, status, respondedAt,
	)
	out, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if qerr := exec.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM invitations WHERE id = $1)`, id).Scan(&exists); qerr != nil {
				return model.Invitation{}, repository.MapPgError(qerr)
			}
			if !exists {
				return model.Invitation{}, repository.ErrNotFound
			}
			return model.Invitation{}, repository.ErrConflict
		}
		return model.Invitation{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *invitationRepository) ListByMatch(ctx context.Context, matchID int64) ([]model.Invitation, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE match_id = $1 ORDER BY id`, matchID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.Invitation, 0, 8)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, inv)
	}
	return res, nil
}

// FindActive applies passive expiry in the query itself: a pending row whose
// expires_at has passed does not count as active.
func (r *invitationRepository) FindActive(ctx context.Context, matchID int64, inviteeID string, now time.Time) (model.Invitation, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Invitation{}, err
	}
	exec := getQ(ctx, r.pool)
	out, err := scanInvitation(exec.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE match_id = $1 AND invitee_id = $2 AND status = 'pending'
		   AND (expires_at IS NULL OR expires_at > $3)
		 ORDER BY id DESC LIMIT 1`,
		matchID, inviteeID, now,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Invitation{}, repository.ErrNotFound
		}
		return model.Invitation{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *invitationRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`UPDATE invitations SET status = 'expired'
		 WHERE status = 'pending' AND expires_at IS NOT NULL AND expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return tag.RowsAffected(), nil
}

var _ repository.InvitationRepository = (*invitationRepository)(nil)
