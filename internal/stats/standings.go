package stats

import (
	"sort"

	"github.com/nelalmis/league-match-service/internal/model"
)

// Classify turns a final score into this side's outcome.
func Classify(ourScore, theirScore int) model.Outcome {
	switch {
	case ourScore > theirScore:
		return model.OutcomeWon
	case ourScore < theirScore:
		return model.OutcomeLost
	default:
		return model.OutcomeDrawn
	}
}

// Contribution is one participant's slice of a finalized match result.
// Goals and assists come from the per-player ledger; GoalsAgainst is the
// opposing team's final score, the only against-figure a player row has.
type Contribution struct {
	Outcome      model.Outcome
	Goals        int // this player's goals from the ledger
	Assists      int // this player's assists from the ledger
	GoalsAgainst int // opposing team's final score
}

// ApplyLeagueResult folds a league contribution into a standings row.
// Points are recomputed rather than accumulated, so the 3*won+drawn invariant holds
// no matter how the row got here.
func ApplyLeagueResult(row model.PlayerStandingRow, c Contribution) model.PlayerStandingRow {
	row.Played++
	switch c.Outcome {
	case model.OutcomeWon:
		row.Won++
	case model.OutcomeDrawn:
		row.Drawn++
	case model.OutcomeLost:
		row.Lost++
	}
	row.GoalsScored += c.Goals
	row.GoalsAgainst += c.GoalsAgainst
	row.GoalDifference = row.GoalsScored - row.GoalsAgainst
	row.Assists += c.Assists
	row.Points = 3*row.Won + row.Drawn
	return row
}

// ApplyFriendlyResult tracks the parallel friendly counters. It never
// touches Points or the league win/loss record.
func ApplyFriendlyResult(row model.PlayerStandingRow, c Contribution) model.PlayerStandingRow {
	row.FriendlyPlayed++
	switch c.Outcome {
	case model.OutcomeWon:
		row.FriendlyWon++
	case model.OutcomeDrawn:
		row.FriendlyDrawn++
	case model.OutcomeLost:
		row.FriendlyLost++
	}
	row.FriendlyGoals += c.Goals
	row.FriendlyAssists += c.Assists
	return row
}

// SortRows orders a league table by the canonical tie-break chain:
// points desc, goal difference desc, goals scored desc. Player id ascending
// keeps fully tied rows in a stable order.
func SortRows(rows []model.PlayerStandingRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].GoalDifference != rows[j].GoalDifference {
			return rows[i].GoalDifference > rows[j].GoalDifference
		}
		if rows[i].GoalsScored != rows[j].GoalsScored {
			return rows[i].GoalsScored > rows[j].GoalsScored
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
}
