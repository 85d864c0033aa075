// Package lifecycle holds the match and invitation state machines as explicit
// transition tables. Services consult it before persisting any status change;
// nothing in here touches storage.
package lifecycle

import (
	"fmt"

	"github.com/nelalmis/league-match-service/internal/model"
)

// Action is a trigger applied to a match's current status.
type Action string

const (
	ActionOpenRegistration Action = "open_registration"
	ActionBuildTeams       Action = "build_teams"
	ActionKickoff          Action = "kickoff"
	ActionEnterScore       Action = "enter_score"
	ActionConfirmEntries   Action = "confirm_entries"
	ActionBeginPayment     Action = "begin_payment"
	ActionCompleteRatings  Action = "complete_ratings"
	ActionCancel           Action = "cancel"
)

// InvalidTransitionError identifies the current state and the attempted
// action. Illegal transitions are rejected, never silently ignored.
type InvalidTransitionError struct {
	From   model.MatchStatus
	Action Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot apply %q in state %q", e.Action, e.From)
}

// transitions is the full (from-state x action) -> to-state table.
// Cancel is listed per state rather than special-cased so the table alone
// answers every legality question.
var transitions = map[model.MatchStatus]map[Action]model.MatchStatus{
	model.StatusCreated: {
		ActionOpenRegistration: model.StatusRegistrationOpen,
		ActionCancel:           model.StatusCancelled,
	},
	model.StatusRegistrationOpen: {
		ActionBuildTeams: model.StatusTeamsBuilt,
		ActionCancel:     model.StatusCancelled,
	},
	model.StatusTeamsBuilt: {
		ActionKickoff: model.StatusPlaying,
		ActionCancel:  model.StatusCancelled,
	},
	model.StatusPlaying: {
		ActionEnterScore: model.StatusScorePendingApproval,
		ActionCancel:     model.StatusCancelled,
	},
	model.StatusScorePendingApproval: {
		ActionConfirmEntries: model.StatusPaymentPending,
		ActionCancel:         model.StatusCancelled,
	},
	model.StatusPaymentPending: {
		ActionBeginPayment: model.StatusRatingPending,
		ActionCancel:       model.StatusCancelled,
	},
	model.StatusRatingPending: {
		ActionCompleteRatings: model.StatusCompleted,
		ActionCancel:          model.StatusCancelled,
	},
	// Completed and Cancelled are terminal: no rows.
}

// Next resolves an action against the table. The zero status is rejected too,
// so a match loaded with a corrupt status cannot move.
func Next(from model.MatchStatus, action Action) (model.MatchStatus, error) {
	if row, ok := transitions[from]; ok {
		if to, ok := row[action]; ok {
			return to, nil
		}
	}
	return "", &InvalidTransitionError{From: from, Action: action}
}

// CanCancel reports whether the status still admits cancellation.
func CanCancel(from model.MatchStatus) bool {
	_, err := Next(from, ActionCancel)
	return err == nil
}

// OrganizerActions are the triggers only the organizer (or, for team
// building, a team-building-authority member) may apply.
var organizerOnly = map[Action]bool{
	ActionBuildTeams:     true,
	ActionKickoff:        true,
	ActionEnterScore:     true,
	ActionConfirmEntries: true,
	ActionCancel:         true,
}

// RequiresOrganizer reports whether the action is organizer-gated.
func RequiresOrganizer(action Action) bool { return organizerOnly[action] }

// ParseAction validates an action string coming off the wire.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionOpenRegistration, ActionBuildTeams, ActionKickoff, ActionEnterScore,
		ActionConfirmEntries, ActionBeginPayment, ActionCompleteRatings, ActionCancel:
		return Action(s), true
	default:
		return "", false
	}
}
