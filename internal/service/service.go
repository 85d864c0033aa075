// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/nelalmis/league-match-service/internal/lifecycle"
	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// Domain errors beyond plain validation. Handlers translate these through
// pkg/response; none of them is ever retried, since retrying an invalid
// mutation cannot succeed.
var (
	ErrUnauthorized        = errors.New("actor lacks the required role for this action")
	ErrDuplicateInvitation = errors.New("an active invitation already exists for this player")
	ErrDuplicateRating     = errors.New("rating already submitted for this player in this match")
	ErrCapacityExceeded    = errors.New("squad and reserve capacity exhausted")
)

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// NewInvalidInputError is the exported constructor for layers that shape
// validation errors themselves (handlers parsing path params, mostly).
func NewInvalidInputError(fe []FieldError) error { return newInvalidInput(fe) }

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	if v, ok := err.(feIface); ok && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// CreateMatchInput carries everything needed to schedule a match.
type CreateMatchInput struct {
	SportType            string
	Kind                 model.MatchKind
	LeagueID             int64
	Season               string
	RegistrationOpensAt  time.Time
	RegistrationClosesAt time.Time
	StartsAt             time.Time
	EndsAt               time.Time
	SquadSize            int
	ReserveSize          int
	MinPlayersToStart    int
	Fee                  float64
	Premium              []string
	Direct               []string
	TeamBuilders         []string
}

// ScoreInput is the organizer's score entry for a played match.
// Goal/assist ledger entries start unconfirmed.
type ScoreInput struct {
	Team1Score int
	Team2Score int
	Goals      map[string]int
	Assists    map[string]int
}

// SendInvitationInput is the payload for a point-to-point invite.
type SendInvitationInput struct {
	MatchID   int64
	InviteeID string
	Message   string
	// TTLHours overrides the configured default when > 0.
	TTLHours int
}

// SubmitRatingInput is one peer rating for one player of a match.
type SubmitRatingInput struct {
	MatchID    int64
	RatedID    string
	Score      float64
	Categories map[string]float64
	Anonymous  bool
}

// MatchService owns the match lifecycle: creation, transitions, squads and scores.
type MatchService interface {
	CreateMatch(ctx context.Context, actorID string, in CreateMatchInput) (model.Match, error)
	GetMatch(ctx context.Context, id int64) (model.Match, error)
	ListMatches(ctx context.Context, page repository.Page) (repository.PageResult[model.Match], error)
	Transition(ctx context.Context, actorID string, matchID int64, action lifecycle.Action) (model.Match, error)
	BuildSquad(ctx context.Context, actorID string, matchID int64) (model.Match, error)
	JoinMatch(ctx context.Context, actorID string, matchID int64) (model.Match, error)
	AddGuest(ctx context.Context, actorID string, matchID int64, name string) (model.Match, string, error)
	EnterScore(ctx context.Context, actorID string, matchID int64, in ScoreInput) (model.Match, error)
}

// InvitationService owns the invite workflow feeding the registration pool.
type InvitationService interface {
	Send(ctx context.Context, actorID string, in SendInvitationInput) (model.Invitation, error)
	Respond(ctx context.Context, actorID string, invitationID int64, accept bool) (model.Invitation, error)
	ListByMatch(ctx context.Context, matchID int64) ([]model.Invitation, error)
	ExpireSweep(ctx context.Context) (int64, error)
}

// RatingService owns rating submission and the per-player rolling profiles.
type RatingService interface {
	SubmitRating(ctx context.Context, actorID string, in SubmitRatingInput) (model.MatchRating, error)
	GetProfile(ctx context.Context, playerID string, leagueID int64, season string) (model.PlayerRatingProfile, error)
}

// StandingsService owns the league table.
type StandingsService interface {
	GetStandings(ctx context.Context, leagueID int64, season string) ([]model.PlayerStandingRow, error)
	// ApplyMatchResult folds a finalized match into every participant's row.
	// ratingAvgs carries each player's updated bucket average for mirroring
	// into the table; mvpID credits the match MVP.
	ApplyMatchResult(ctx context.Context, m model.Match, ratingAvgs map[string]float64, mvpID string) error
}
