package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nelalmis/league-match-service/internal/lifecycle"
	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/notify"
	"github.com/nelalmis/league-match-service/internal/repository"
	"github.com/rs/zerolog"
)

type invitationService struct {
	invitations repository.InvitationRepository
	matches     repository.MatchRepository
	tx          repository.TxManager
	notifier    notify.Notifier
	defaultTTL  time.Duration
	log         zerolog.Logger
}

func NewInvitationService(
	invitations repository.InvitationRepository,
	matches repository.MatchRepository,
	tx repository.TxManager,
	notifier notify.Notifier,
	defaultTTL time.Duration,
	logger zerolog.Logger,
) InvitationService {
	l := logger.With().Str("module", "service").Str("component", "invitation").Logger()
	return &invitationService{
		invitations: invitations, matches: matches, tx: tx,
		notifier: notifier, defaultTTL: defaultTTL, log: l,
	}
}

func (s *invitationService) Send(ctx context.Context, actorID string, in SendInvitationInput) (model.Invitation, error) {
	if actorID == "" {
		return model.Invitation{}, ErrUnauthorized
	}
	var ferrs []FieldError
	invitee := strings.TrimSpace(in.InviteeID)
	if in.MatchID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "match_id", Message: "must be > 0"})
	}
	if invitee == "" {
		ferrs = append(ferrs, FieldError{Field: "invitee_id", Message: "must not be empty"})
	}
	if invitee == actorID {
		ferrs = append(ferrs, FieldError{Field: "invitee_id", Message: "cannot invite yourself"})
	}
	if in.TTLHours < 0 {
		ferrs = append(ferrs, FieldError{Field: "ttl_hours", Message: "must be >= 0"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Invitation{}, err
	}

	m, err := s.matches.GetByID(ctx, in.MatchID)
	if err != nil {
		return model.Invitation{}, err
	}
	if m.Status != model.StatusRegistrationOpen {
		return model.Invitation{}, &lifecycle.InvalidTransitionError{From: m.Status, Action: "send_invitation"}
	}

	now := time.Now().UTC()
	// One active invitation per (match, invitee) pair. The pre-check keeps
	// the common case friendly; racing duplicates still collapse because
	// accept/decline goes through a pending-only update.
	if _, err := s.invitations.FindActive(ctx, in.MatchID, invitee, now); err == nil {
		return model.Invitation{}, ErrDuplicateInvitation
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.Invitation{}, err
	}

	ttl := s.defaultTTL
	if in.TTLHours > 0 {
		ttl = time.Duration(in.TTLHours) * time.Hour
	}
	inv := model.Invitation{
		MatchID:   in.MatchID,
		MatchKind: m.Kind,
		InviterID: actorID,
		InviteeID: invitee,
		Status:    model.InvitationPending,
		Message:   strings.TrimSpace(in.Message),
		SentAt:    now,
	}
	if ttl > 0 {
		exp := now.Add(ttl)
		inv.ExpiresAt = &exp
	}
	out, err := s.invitations.Create(ctx, inv)
	if err != nil {
		s.log.Error().Err(err).Int64("match_id", in.MatchID).Str("invitee_id", invitee).Msg("create invitation failed")
		return model.Invitation{}, err
	}

	s.notifier.Notify(ctx, invitee, notify.EventInvitationSent, map[string]any{
		"invitation_id": out.ID,
		"match_id":      out.MatchID,
		"inviter_id":    actorID,
	})
	s.log.Info().Int64("invitation_id", out.ID).Int64("match_id", out.MatchID).Msg("invitation sent")
	return out, nil
}

// Respond resolves a pending invitation. Accepting registers the invitee in
// the match's pool inside the same transaction as the status flip, so there
// is no state where one happened without the other.
func (s *invitationService) Respond(ctx context.Context, actorID string, invitationID int64, accept bool) (model.Invitation, error) {
	if invitationID <= 0 {
		return model.Invitation{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return model.Invitation{}, err
	}
	if inv.InviteeID != actorID {
		return model.Invitation{}, ErrUnauthorized
	}

	to := model.InvitationDeclined
	if accept {
		to = model.InvitationAccepted
	}
	now := time.Now().UTC()
	if err := lifecycle.RespondInvitation(inv, to, now); err != nil {
		return model.Invitation{}, err
	}

	var out model.Invitation
	if !accept {
		out, err = s.invitations.UpdateStatus(ctx, invitationID, model.InvitationDeclined, now)
		if err != nil {
			return model.Invitation{}, err
		}
		s.notifier.Notify(ctx, inv.InviterID, notify.EventInvitationDeclined, map[string]any{
			"invitation_id": out.ID,
			"match_id":      out.MatchID,
			"invitee_id":    actorID,
		})
		return out, nil
	}

	err = withConflictRetry(ctx, func(ctx context.Context) error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			m, err := s.matches.GetByID(ctx, inv.MatchID)
			if err != nil {
				return err
			}
			if m.Status == model.StatusCancelled || m.Status == model.StatusCompleted {
				return &lifecycle.InvalidTransitionError{From: m.Status, Action: "accept_invitation"}
			}
			pooled := contains(m.Pools.Registered, actorID) || contains(m.Pools.Premium, actorID) ||
				contains(m.Pools.Direct, actorID)
			// Accepting obeys the same capacity policy as joining directly.
			// The invitation stays pending, so it remains answerable if a
			// spot frees up before it expires.
			if !pooled && poolSize(m.Pools) >= m.SquadSize+m.ReserveSize {
				return ErrCapacityExceeded
			}
			updated, err := s.invitations.UpdateStatus(ctx, invitationID, model.InvitationAccepted, now)
			if err != nil {
				return err
			}
			if !pooled {
				m.Pools.Registered = append(m.Pools.Registered, actorID)
				if _, err := s.matches.Update(ctx, m); err != nil {
					return err
				}
			}
			out = updated
			return nil
		})
	})
	if err != nil {
		return model.Invitation{}, err
	}

	s.notifier.Notify(ctx, inv.InviterID, notify.EventInvitationAccepted, map[string]any{
		"invitation_id": out.ID,
		"match_id":      out.MatchID,
		"invitee_id":    actorID,
	})
	s.log.Info().Int64("invitation_id", out.ID).Bool("accepted", accept).Msg("invitation resolved")
	return out, nil
}

// ListByMatch returns invitations with passive expiry already applied, so
// callers never see a stale pending status.
func (s *invitationService) ListByMatch(ctx context.Context, matchID int64) ([]model.Invitation, error) {
	if matchID <= 0 {
		return nil, newInvalidInput([]FieldError{{Field: "match_id", Message: "must be > 0"}})
	}
	invs, err := s.invitations.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for i := range invs {
		invs[i].Status = invs[i].EffectiveStatus(now)
	}
	return invs, nil
}

// ExpireSweep persists the passive-expiry view. Scheduled from main via cron.
func (s *invitationService) ExpireSweep(ctx context.Context) (int64, error) {
	n, err := s.invitations.MarkExpired(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("invitation expiry sweep failed")
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int64("expired", n).Msg("invitation expiry sweep")
	}
	return n, nil
}

var _ InvitationService = (*invitationService)(nil)
