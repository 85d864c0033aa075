package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nelalmis/league-match-service/internal/lifecycle"
	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/notify"
	"github.com/nelalmis/league-match-service/internal/repository"
	"github.com/nelalmis/league-match-service/internal/squad"
	"github.com/rs/zerolog"
)

type matchService struct {
	matches     repository.MatchRepository
	invitations repository.InvitationRepository
	notifier    notify.Notifier
	log         zerolog.Logger
}

func NewMatchService(
	matches repository.MatchRepository,
	invitations repository.InvitationRepository,
	notifier notify.Notifier,
	logger zerolog.Logger,
) MatchService {
	l := logger.With().Str("module", "service").Str("component", "match").Logger()
	return &matchService{matches: matches, invitations: invitations, notifier: notifier, log: l}
}

func (s *matchService) CreateMatch(ctx context.Context, actorID string, in CreateMatchInput) (model.Match, error) {
	start := time.Now()
	sport := strings.TrimSpace(in.SportType)
	in.Kind = normalizeKind(string(in.Kind))

	var ferrs []FieldError
	if actorID == "" {
		return model.Match{}, ErrUnauthorized
	}
	if sport == "" {
		ferrs = append(ferrs, FieldError{Field: "sport_type", Message: "must not be empty"})
	}
	if !isValidKind(in.Kind) {
		ferrs = append(ferrs, FieldError{Field: "kind", Message: "must be one of league|friendly"})
	}
	if in.Kind == model.KindLeague {
		if in.LeagueID <= 0 {
			ferrs = append(ferrs, FieldError{Field: "league_id", Message: "required for league matches"})
		}
		if strings.TrimSpace(in.Season) == "" {
			ferrs = append(ferrs, FieldError{Field: "season", Message: "required for league matches"})
		}
	}
	if in.SquadSize <= 0 {
		ferrs = append(ferrs, FieldError{Field: "squad_size", Message: "must be > 0"})
	}
	if in.ReserveSize < 0 {
		ferrs = append(ferrs, FieldError{Field: "reserve_size", Message: "must be >= 0"})
	}
	if in.MinPlayersToStart <= 1 {
		ferrs = append(ferrs, FieldError{Field: "min_players_to_start", Message: "must be > 1"})
	}
	if in.MinPlayersToStart > in.SquadSize {
		ferrs = append(ferrs, FieldError{Field: "min_players_to_start", Message: "must not exceed squad_size"})
	}
	if in.Fee < 0 {
		ferrs = append(ferrs, FieldError{Field: "fee", Message: "must be >= 0"})
	}
	switch {
	case in.RegistrationOpensAt.IsZero(), in.RegistrationClosesAt.IsZero(), in.StartsAt.IsZero(), in.EndsAt.IsZero():
		ferrs = append(ferrs, FieldError{Field: "schedule", Message: "all four timestamps must be set"})
	case !in.RegistrationOpensAt.Before(in.RegistrationClosesAt):
		ferrs = append(ferrs, FieldError{Field: "schedule", Message: "registration window must open before it closes"})
	case in.RegistrationClosesAt.After(in.StartsAt):
		ferrs = append(ferrs, FieldError{Field: "schedule", Message: "registration must close by kickoff"})
	case !in.StartsAt.Before(in.EndsAt):
		ferrs = append(ferrs, FieldError{Field: "schedule", Message: "start must precede end"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("match validation failed")
		return model.Match{}, err
	}

	// Created -> RegistrationOpen is automatic at creation; the stored row
	// never sits in the transient created state.
	m := model.Match{
		SportType:            sport,
		Kind:                 in.Kind,
		LeagueID:             in.LeagueID,
		Season:               strings.TrimSpace(in.Season),
		RegistrationOpensAt:  in.RegistrationOpensAt,
		RegistrationClosesAt: in.RegistrationClosesAt,
		StartsAt:             in.StartsAt,
		EndsAt:               in.EndsAt,
		SquadSize:            in.SquadSize,
		ReserveSize:          in.ReserveSize,
		MinPlayersToStart:    in.MinPlayersToStart,
		Fee:                  in.Fee,
		OrganizerID:          actorID,
		Pools: model.MatchPools{
			Premium:      in.Premium,
			Direct:       in.Direct,
			TeamBuilders: in.TeamBuilders,
		},
		Status: model.StatusRegistrationOpen,
	}
	out, err := s.matches.Create(ctx, m)
	if err != nil {
		s.log.Error().Err(err).Str("organizer_id", actorID).Msg("create match failed")
		return model.Match{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("match_id", out.ID).Str("kind", string(out.Kind)).Msg("match created")
	return out, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int64) (model.Match, error) {
	if id <= 0 {
		return model.Match{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	return s.matches.GetByID(ctx, id)
}

func (s *matchService) ListMatches(ctx context.Context, page repository.Page) (repository.PageResult[model.Match], error) {
	res, err := s.matches.List(ctx, page)
	if err != nil {
		s.log.Error().Err(err).Msg("list matches failed")
		return repository.PageResult[model.Match]{}, err
	}
	return res, nil
}

// Transition applies a payload-free lifecycle action. Actions that carry data
// (team building, score entry) route through their dedicated methods; the
// handler rejects them before reaching here, but we guard anyway.
func (s *matchService) Transition(ctx context.Context, actorID string, matchID int64, action lifecycle.Action) (model.Match, error) {
	if matchID <= 0 {
		return model.Match{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	switch action {
	case lifecycle.ActionBuildTeams:
		return s.BuildSquad(ctx, actorID, matchID)
	case lifecycle.ActionEnterScore:
		return model.Match{}, newInvalidInput([]FieldError{{Field: "action", Message: "enter_score requires a score payload"}})
	case lifecycle.ActionCompleteRatings:
		return model.Match{}, newInvalidInput([]FieldError{{Field: "action", Message: "completion is driven by rating submissions"}})
	}

	var out model.Match
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		m, err := s.matches.GetByID(ctx, matchID)
		if err != nil {
			return err
		}
		if lifecycle.RequiresOrganizer(action) && !m.IsOrganizer(actorID) {
			return ErrUnauthorized
		}
		next, err := lifecycle.Next(m.Status, action)
		if err != nil {
			return err
		}
		if action == lifecycle.ActionConfirmEntries {
			if err := confirmLedger(&m); err != nil {
				return err
			}
		}
		m.Status = next
		out, err = s.matches.Update(ctx, m)
		return err
	})
	if err != nil {
		return model.Match{}, err
	}

	if action == lifecycle.ActionCancel {
		s.cleanupInvitations(ctx, out)
		for _, p := range out.Participants() {
			s.notifier.Notify(ctx, p, notify.EventMatchCancelled, map[string]any{"match_id": out.ID})
		}
	}
	s.log.Info().Int64("match_id", out.ID).Str("action", string(action)).Str("status", string(out.Status)).Msg("match transitioned")
	return out, nil
}

// confirmLedger marks every goal/assist entry confirmed and opens the
// payment ledger: one entry per participant, amount = match fee.
func confirmLedger(m *model.Match) error {
	for id, e := range m.Ledger {
		e.Confirmed = true
		m.Ledger[id] = e
	}
	if m.Payments == nil {
		m.Payments = make(map[string]model.PaymentEntry, len(m.Participants()))
	}
	for _, p := range m.Participants() {
		if _, ok := m.Payments[p]; !ok {
			m.Payments[p] = model.PaymentEntry{Amount: m.Fee}
		}
	}
	return nil
}

func (s *matchService) BuildSquad(ctx context.Context, actorID string, matchID int64) (model.Match, error) {
	if matchID <= 0 {
		return model.Match{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	var out model.Match
	var dropped []string
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		m, err := s.matches.GetByID(ctx, matchID)
		if err != nil {
			return err
		}
		if !m.MayBuildTeams(actorID) {
			return ErrUnauthorized
		}
		next, err := lifecycle.Next(m.Status, lifecycle.ActionBuildTeams)
		if err != nil {
			return err
		}
		sel := squad.Build(m.Pools, m.SquadSize, m.ReserveSize)
		if len(sel.Squad) < m.MinPlayersToStart {
			return newInvalidInput([]FieldError{{
				Field:   "squad",
				Message: fmt.Sprintf("only %d eligible players, need at least %d", len(sel.Squad), m.MinPlayersToStart),
			}})
		}
		team1, team2 := squad.SplitTeams(sel.Squad)
		m.Teams = model.MatchTeams{Team1: team1, Team2: team2, Reserves: sel.Reserves}
		m.Status = next
		dropped = sel.Dropped
		out, err = s.matches.Update(ctx, m)
		return err
	})
	if err != nil {
		return model.Match{}, err
	}

	for _, p := range out.Participants() {
		s.notifier.Notify(ctx, p, notify.EventTeamsBuilt, map[string]any{"match_id": out.ID})
	}
	if len(dropped) > 0 {
		// Dropped players fell off the active pool; the organizer handles
		// them manually.
		s.notifier.Notify(ctx, out.OrganizerID, notify.EventTeamsBuilt, map[string]any{
			"match_id": out.ID,
			"dropped":  dropped,
		})
	}
	s.log.Info().Int64("match_id", out.ID).
		Int("squad", len(out.Teams.Team1)+len(out.Teams.Team2)).
		Int("reserves", len(out.Teams.Reserves)).
		Int("dropped", len(dropped)).
		Msg("teams built")
	return out, nil
}

func (s *matchService) JoinMatch(ctx context.Context, actorID string, matchID int64) (model.Match, error) {
	if actorID == "" {
		return model.Match{}, ErrUnauthorized
	}
	if matchID <= 0 {
		return model.Match{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	var out model.Match
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		m, err := s.matches.GetByID(ctx, matchID)
		if err != nil {
			return err
		}
		if m.Status != model.StatusRegistrationOpen {
			return &lifecycle.InvalidTransitionError{From: m.Status, Action: "join"}
		}
		if contains(m.Pools.Registered, actorID) || contains(m.Pools.Premium, actorID) ||
			contains(m.Pools.Direct, actorID) || contains(m.Pools.Guests, actorID) {
			out = m
			return nil // already in; joining twice is a no-op
		}
		if poolSize(m.Pools) >= m.SquadSize+m.ReserveSize {
			return ErrCapacityExceeded
		}
		m.Pools.Registered = append(m.Pools.Registered, actorID)
		out, err = s.matches.Update(ctx, m)
		return err
	})
	return out, err
}

// AddGuest registers an organizer-supplied guest. Guests have no account, so
// we mint an opaque id for them.
func (s *matchService) AddGuest(ctx context.Context, actorID string, matchID int64, name string) (model.Match, string, error) {
	if matchID <= 0 {
		return model.Match{}, "", newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	if strings.TrimSpace(name) == "" {
		return model.Match{}, "", newInvalidInput([]FieldError{{Field: "name", Message: "must not be empty"}})
	}
	guestID := "guest-" + uuid.NewString()
	var out model.Match
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		m, err := s.matches.GetByID(ctx, matchID)
		if err != nil {
			return err
		}
		if !m.IsOrganizer(actorID) {
			return ErrUnauthorized
		}
		if m.Status != model.StatusRegistrationOpen {
			return &lifecycle.InvalidTransitionError{From: m.Status, Action: "add_guest"}
		}
		if poolSize(m.Pools) >= m.SquadSize+m.ReserveSize {
			return ErrCapacityExceeded
		}
		m.Pools.Guests = append(m.Pools.Guests, guestID)
		out, err = s.matches.Update(ctx, m)
		return err
	})
	if err != nil {
		return model.Match{}, "", err
	}
	return out, guestID, nil
}

func (s *matchService) EnterScore(ctx context.Context, actorID string, matchID int64, in ScoreInput) (model.Match, error) {
	if matchID <= 0 {
		return model.Match{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	var ferrs []FieldError
	if in.Team1Score < 0 {
		ferrs = append(ferrs, FieldError{Field: "team1_score", Message: "must be >= 0"})
	}
	if in.Team2Score < 0 {
		ferrs = append(ferrs, FieldError{Field: "team2_score", Message: "must be >= 0"})
	}
	for id, g := range in.Goals {
		if g < 0 {
			ferrs = append(ferrs, FieldError{Field: "goals." + id, Message: "must be >= 0"})
		}
	}
	for id, a := range in.Assists {
		if a < 0 {
			ferrs = append(ferrs, FieldError{Field: "assists." + id, Message: "must be >= 0"})
		}
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Match{}, err
	}

	var out model.Match
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		m, err := s.matches.GetByID(ctx, matchID)
		if err != nil {
			return err
		}
		if !m.IsOrganizer(actorID) {
			return ErrUnauthorized
		}
		next, err := lifecycle.Next(m.Status, lifecycle.ActionEnterScore)
		if err != nil {
			return err
		}
		participants := m.Participants()
		for id := range in.Goals {
			if !contains(participants, id) {
				return newInvalidInput([]FieldError{{Field: "goals." + id, Message: "not a participant"}})
			}
		}
		for id := range in.Assists {
			if !contains(participants, id) {
				return newInvalidInput([]FieldError{{Field: "assists." + id, Message: "not a participant"}})
			}
		}
		t1, t2 := in.Team1Score, in.Team2Score
		m.Team1Score, m.Team2Score = &t1, &t2
		m.Ledger = make(map[string]model.ScoreEntry, len(participants))
		for _, p := range participants {
			m.Ledger[p] = model.ScoreEntry{Goals: in.Goals[p], Assists: in.Assists[p]}
		}
		m.Status = next
		out, err = s.matches.Update(ctx, m)
		return err
	})
	if err != nil {
		return model.Match{}, err
	}

	for _, p := range out.Participants() {
		s.notifier.Notify(ctx, p, notify.EventScoreEntered, map[string]any{
			"match_id": out.ID,
			"score":    out.ScoreDisplay(),
		})
	}
	s.log.Info().Int64("match_id", out.ID).Str("score", out.ScoreDisplay()).Msg("score entered")
	return out, nil
}

// cleanupInvitations closes out pending invitations for a cancelled match.
// Best effort: a failure here violates nothing at the match level, so we log
// and move on; the cron sweep retries expiry later.
func (s *matchService) cleanupInvitations(ctx context.Context, m model.Match) {
	invs, err := s.invitations.ListByMatch(ctx, m.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("match_id", m.ID).Msg("listing invitations for cancel cleanup failed")
		return
	}
	now := time.Now().UTC()
	for _, inv := range invs {
		if inv.EffectiveStatus(now) != model.InvitationPending {
			continue
		}
		if _, err := s.invitations.UpdateStatus(ctx, inv.ID, model.InvitationExpired, now); err != nil {
			s.log.Error().Err(err).Int64("invitation_id", inv.ID).Msg("invitation cleanup failed")
		}
	}
}

var _ MatchService = (*matchService)(nil)
