package model

import "time"

// InvitationStatus is the closed set of states for a point-to-point invite.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation is a point-to-point invite to a match. It feeds the lifecycle:
// an accepted invitation puts the invitee into the match's registered pool.
type Invitation struct {
	ID          int64            `json:"id"`
	MatchID     int64            `json:"match_id"`
	MatchKind   MatchKind        `json:"match_kind"`
	InviterID   string           `json:"inviter_id"`
	InviteeID   string           `json:"invitee_id"`
	Status      InvitationStatus `json:"status"`
	Message     string           `json:"message,omitempty"`
	SentAt      time.Time        `json:"sent_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
}

// EffectiveStatus applies passive expiry: a pending invitation whose
// ExpiresAt has passed reads as expired even before the sweep persists it.
func (i Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && i.ExpiresAt != nil && !i.ExpiresAt.After(now) {
		return InvitationExpired
	}
	return i.Status
}

// Active reports whether the invitation still blocks a duplicate send.
func (i Invitation) Active(now time.Time) bool {
	return i.EffectiveStatus(now) == InvitationPending
}
