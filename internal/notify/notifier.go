// Package notify is the boundary to the push-notification collaborator.
// Delivery is fire-and-forget: the core never waits on confirmation and
// treats failure as non-fatal.
package notify

import "context"

// Event types emitted by the core.
const (
	EventInvitationSent     = "invitation_sent"
	EventInvitationAccepted = "invitation_accepted"
	EventInvitationDeclined = "invitation_declined"
	EventTeamsBuilt         = "teams_built"
	EventScoreEntered       = "score_entered"
	EventMatchCancelled     = "match_cancelled"
	EventMatchCompleted     = "match_completed"
	EventMVPAwarded         = "mvp_awarded"
)

// Notifier delivers a player-directed event. Implementations must not block
// the caller on delivery and must swallow (but log) delivery failures.
type Notifier interface {
	Notify(ctx context.Context, playerID, eventType string, payload map[string]any)
}

// Noop drops every event. Useful in tests and when no broker is configured.
type Noop struct{}

func (Noop) Notify(context.Context, string, string, map[string]any) {}

var _ Notifier = Noop{}
