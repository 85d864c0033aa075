package lifecycle

import (
	"fmt"
	"time"

	"github.com/nelalmis/league-match-service/internal/model"
)

// InvalidInvitationTransitionError mirrors InvalidTransitionError for the
// smaller invitation machine.
type InvalidInvitationTransitionError struct {
	From model.InvitationStatus
	To   model.InvitationStatus
}

func (e *InvalidInvitationTransitionError) Error() string {
	return fmt.Sprintf("invalid invitation transition: %q -> %q", e.From, e.To)
}

// RespondInvitation validates the pending -> {accepted, declined} move.
// Passive expiry applies first: responding to an invitation whose expiry has
// passed fails as if the sweep had already flipped it.
func RespondInvitation(inv model.Invitation, to model.InvitationStatus, now time.Time) error {
	if to != model.InvitationAccepted && to != model.InvitationDeclined {
		return &InvalidInvitationTransitionError{From: inv.Status, To: to}
	}
	if eff := inv.EffectiveStatus(now); eff != model.InvitationPending {
		return &InvalidInvitationTransitionError{From: eff, To: to}
	}
	return nil
}
