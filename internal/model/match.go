// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import (
	"fmt"
	"time"
)

// MatchKind distinguishes league fixtures from ad-hoc friendlies.
type MatchKind string

const (
	KindLeague   MatchKind = "league"
	KindFriendly MatchKind = "friendly"
)

// MatchStatus is the closed set of lifecycle states for a match.
// Transitions between them live in internal/lifecycle, not here.
type MatchStatus string

const (
	StatusCreated              MatchStatus = "created"
	StatusRegistrationOpen     MatchStatus = "registration_open"
	StatusTeamsBuilt           MatchStatus = "teams_built"
	StatusPlaying              MatchStatus = "playing"
	StatusScorePendingApproval MatchStatus = "score_pending_approval"
	StatusPaymentPending       MatchStatus = "payment_pending"
	StatusRatingPending        MatchStatus = "rating_pending"
	StatusCompleted            MatchStatus = "completed"
	StatusCancelled            MatchStatus = "cancelled"
)

// MatchPools groups the heterogeneous player pools a squad is built from.
// Player ids are opaque strings supplied by the identity collaborator.
type MatchPools struct {
	Registered   []string `json:"registered"`
	Guests       []string `json:"guests"`
	Premium      []string `json:"premium"`
	Direct       []string `json:"direct"`
	TeamBuilders []string `json:"team_builders"`
}

// MatchTeams holds the rosters once teams are built.
type MatchTeams struct {
	Team1     []string          `json:"team1"`
	Team2     []string          `json:"team2"`
	Reserves  []string          `json:"reserves"`
	Positions map[string]string `json:"positions,omitempty"`
}

// ScoreEntry is one player's goal/assist line, confirmed by the organizer
// before the match can advance to payment.
type ScoreEntry struct {
	Goals     int  `json:"goals"`
	Assists   int  `json:"assists"`
	Confirmed bool `json:"confirmed"`
}

// PaymentEntry is one participant's share of the match fee.
type PaymentEntry struct {
	Amount    float64 `json:"amount"`
	Paid      bool    `json:"paid"`
	Confirmed bool    `json:"confirmed"`
}

// Match represents a single scheduled contest and all state the lifecycle
// engine owns for it.
type Match struct {
	ID        int64     `json:"id"`
	SportType string    `json:"sport_type"`
	Kind      MatchKind `json:"kind"`
	LeagueID  int64     `json:"league_id,omitempty"`
	Season    string    `json:"season,omitempty"`

	RegistrationOpensAt  time.Time `json:"registration_opens_at"`
	RegistrationClosesAt time.Time `json:"registration_closes_at"`
	StartsAt             time.Time `json:"starts_at"`
	EndsAt               time.Time `json:"ends_at"`

	SquadSize         int     `json:"squad_size"`
	ReserveSize       int     `json:"reserve_size"`
	MinPlayersToStart int     `json:"min_players_to_start"`
	Fee               float64 `json:"fee"`

	OrganizerID string     `json:"organizer_id"`
	Pools       MatchPools `json:"pools"`
	Teams       MatchTeams `json:"teams"`

	Team1Score *int                    `json:"team1_score,omitempty"`
	Team2Score *int                    `json:"team2_score,omitempty"`
	Ledger     map[string]ScoreEntry   `json:"ledger,omitempty"`
	Payments   map[string]PaymentEntry `json:"payments,omitempty"`
	MVPID      string                  `json:"mvp_id,omitempty"`

	Status    MatchStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ScoreDisplay renders the canonical "2 - 1" form, empty until a score is set.
func (m Match) ScoreDisplay() string {
	if m.Team1Score == nil || m.Team2Score == nil {
		return ""
	}
	return fmt.Sprintf("%d - %d", *m.Team1Score, *m.Team2Score)
}

// Participants returns the union of both rosters.
func (m Match) Participants() []string {
	out := make([]string, 0, len(m.Teams.Team1)+len(m.Teams.Team2))
	out = append(out, m.Teams.Team1...)
	out = append(out, m.Teams.Team2...)
	return out
}

// IsOrganizer reports whether the actor may perform organizer-only actions.
// Members of the team-building-authority pool count for team building.
func (m Match) IsOrganizer(actorID string) bool {
	return actorID != "" && actorID == m.OrganizerID
}

// MayBuildTeams reports whether the actor is allowed to build teams.
func (m Match) MayBuildTeams(actorID string) bool {
	if m.IsOrganizer(actorID) {
		return true
	}
	for _, id := range m.Pools.TeamBuilders {
		if id == actorID {
			return true
		}
	}
	return false
}
