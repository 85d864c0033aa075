package model

import "time"

// Outcome classifies a finished match from one side's point of view.
type Outcome string

const (
	OutcomeWon   Outcome = "won"
	OutcomeDrawn Outcome = "drawn"
	OutcomeLost  Outcome = "lost"
)

// PlayerStandingRow is one player's cumulative season record within a league.
// The friendly_* counters are tracked in parallel and never feed Points.
type PlayerStandingRow struct {
	ID       int64  `json:"id"`
	LeagueID int64  `json:"league_id"`
	Season   string `json:"season"`
	PlayerID string `json:"player_id"`

	Played         int `json:"played"`
	Won            int `json:"won"`
	Drawn          int `json:"drawn"`
	Lost           int `json:"lost"`
	GoalsScored    int `json:"goals_scored"`
	GoalsAgainst   int `json:"goals_against"`
	GoalDifference int `json:"goal_difference"`
	Assists        int `json:"assists"`
	Points         int `json:"points"`

	Rating         float64 `json:"rating"`
	MVPCount       int     `json:"mvp_count"`
	AttendanceRate float64 `json:"attendance_rate"`

	FriendlyPlayed  int `json:"friendly_played"`
	FriendlyWon     int `json:"friendly_won"`
	FriendlyDrawn   int `json:"friendly_drawn"`
	FriendlyLost    int `json:"friendly_lost"`
	FriendlyGoals   int `json:"friendly_goals"`
	FriendlyAssists int `json:"friendly_assists"`

	Version   int64     `json:"-"` // optimistic concurrency token
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// League carries the settings the aggregators consult. FriendliesCount
// enables friendly matches to feed the parallel friendly counters of the
// table; Points stay league-only regardless.
type League struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	SportType       string    `json:"sport_type"`
	FriendliesCount bool      `json:"friendlies_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
