package repository

import (
	"context"
	"time"

	"github.com/nelalmis/league-match-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// Mutations spanning more than one record (invitation accept + pool update,
// profile + standings writes) go through here so they commit or fail as one.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// MatchRepository declares persistence operations for matches.
// Update performs an optimistic write: the stored row must still carry the
// UpdatedAt the caller read, otherwise ErrConflict comes back and the caller
// retries its read-modify-write.
type MatchRepository interface {
	Create(ctx context.Context, m model.Match) (model.Match, error)
	GetByID(ctx context.Context, id int64) (model.Match, error)
	Update(ctx context.Context, m model.Match) (model.Match, error)
	List(ctx context.Context, p Page) (PageResult[model.Match], error)
}

// InvitationRepository declares persistence operations for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv model.Invitation) (model.Invitation, error)
	GetByID(ctx context.Context, id int64) (model.Invitation, error)
	// UpdateStatus moves a pending invitation to a terminal status; a row
	// that is no longer pending yields ErrConflict.
	UpdateStatus(ctx context.Context, id int64, status model.InvitationStatus, respondedAt time.Time) (model.Invitation, error)
	ListByMatch(ctx context.Context, matchID int64) ([]model.Invitation, error)
	// FindActive returns the pending, unexpired invitation for the
	// (match, invitee) pair, or ErrNotFound.
	FindActive(ctx context.Context, matchID int64, inviteeID string, now time.Time) (model.Invitation, error)
	// MarkExpired sweeps pending invitations whose expiry has passed and
	// reports how many rows were updated.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

// RatingRepository declares persistence operations for peer ratings.
// Create surfaces ErrAlreadyExists for a duplicate (match, rater, rated)
// triple; the unique index is the source of truth, not a read-then-write.
type RatingRepository interface {
	Create(ctx context.Context, r model.MatchRating) (model.MatchRating, error)
	ListByMatch(ctx context.Context, matchID int64) ([]model.MatchRating, error)
	Exists(ctx context.Context, matchID int64, raterID, ratedID string) (bool, error)
	CountDistinctRaters(ctx context.Context, matchID int64) (int, error)
}

// ProfileRepository declares persistence for rolling player rating profiles.
// Profiles are created lazily; Get returns ErrNotFound before the first
// contribution. Update is optimistic on Version.
type ProfileRepository interface {
	Get(ctx context.Context, playerID string, leagueID int64, season string) (model.PlayerRatingProfile, error)
	Create(ctx context.Context, p model.PlayerRatingProfile) (model.PlayerRatingProfile, error)
	Update(ctx context.Context, p model.PlayerRatingProfile) (model.PlayerRatingProfile, error)
}

// StandingsRepository declares persistence for league-table rows.
// Row updates are optimistic on Version, same contract as profiles.
type StandingsRepository interface {
	GetRow(ctx context.Context, leagueID int64, season, playerID string) (model.PlayerStandingRow, error)
	CreateRow(ctx context.Context, row model.PlayerStandingRow) (model.PlayerStandingRow, error)
	UpdateRow(ctx context.Context, row model.PlayerStandingRow) (model.PlayerStandingRow, error)
	ListByLeagueSeason(ctx context.Context, leagueID int64, season string) ([]model.PlayerStandingRow, error)
}

// LeagueRepository exposes the league settings the aggregators consult.
type LeagueRepository interface {
	GetByID(ctx context.Context, id int64) (model.League, error)
}
