package service

import (
	"context"
	"errors"
	"strings"

	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/repository"
	"github.com/nelalmis/league-match-service/internal/stats"
	"github.com/rs/zerolog"
)

type standingsService struct {
	standings repository.StandingsRepository
	leagues   repository.LeagueRepository
	log       zerolog.Logger
}

func NewStandingsService(
	standings repository.StandingsRepository,
	leagues repository.LeagueRepository,
	logger zerolog.Logger,
) StandingsService {
	l := logger.With().Str("module", "service").Str("component", "standings").Logger()
	return &standingsService{standings: standings, leagues: leagues, log: l}
}

func (s *standingsService) GetStandings(ctx context.Context, leagueID int64, season string) ([]model.PlayerStandingRow, error) {
	var ferrs []FieldError
	if leagueID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "league_id", Message: "must be > 0"})
	}
	if strings.TrimSpace(season) == "" {
		ferrs = append(ferrs, FieldError{Field: "season", Message: "must not be empty"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return nil, err
	}
	return s.standings.ListByLeagueSeason(ctx, leagueID, season)
}

// ApplyMatchResult folds a finalized match into every participant's season
// row. League matches always count; friendlies only when the league's
// settings say so, and then only into the parallel friendly counters.
func (s *standingsService) ApplyMatchResult(ctx context.Context, m model.Match, ratingAvgs map[string]float64, mvpID string) error {
	if m.LeagueID <= 0 || m.Season == "" {
		// Pickup matches outside any league have no table to maintain.
		return nil
	}
	if m.Team1Score == nil || m.Team2Score == nil {
		s.log.Warn().Int64("match_id", m.ID).Msg("match finalized without a score, standings skipped")
		return nil
	}
	if m.Kind == model.KindFriendly {
		lg, err := s.leagues.GetByID(ctx, m.LeagueID)
		if err != nil {
			return err
		}
		if !lg.FriendliesCount {
			return nil
		}
	}

	for _, playerID := range m.Participants() {
		c := contributionFor(m, playerID)
		if err := s.applyRow(ctx, m, playerID, c, ratingAvgs[playerID], playerID == mvpID); err != nil {
			return err
		}
	}
	s.log.Info().Int64("match_id", m.ID).Int64("league_id", m.LeagueID).Str("season", m.Season).
		Msg("standings updated")
	return nil
}

// applyRow is the per-player read-modify-write, created lazily and retried
// on version conflicts.
func (s *standingsService) applyRow(ctx context.Context, m model.Match, playerID string, c stats.Contribution, ratingAvg float64, isMVP bool) error {
	return withConflictRetry(ctx, func(ctx context.Context) error {
		row, err := s.standings.GetRow(ctx, m.LeagueID, m.Season, playerID)
		created := false
		if errors.Is(err, repository.ErrNotFound) {
			row = model.PlayerStandingRow{LeagueID: m.LeagueID, Season: m.Season, PlayerID: playerID}
			created = true
		} else if err != nil {
			return err
		}

		if m.Kind == model.KindLeague {
			row = stats.ApplyLeagueResult(row, c)
		} else {
			row = stats.ApplyFriendlyResult(row, c)
		}
		if ratingAvg > 0 {
			row.Rating = ratingAvg
		}
		if isMVP {
			row.MVPCount++
		}

		if created {
			_, err = s.standings.CreateRow(ctx, row)
		} else {
			_, err = s.standings.UpdateRow(ctx, row)
		}
		return err
	})
}

// contributionFor derives one participant's slice of the result from the
// final score and the goal/assist ledger.
func contributionFor(m model.Match, playerID string) stats.Contribution {
	ours, theirs := *m.Team1Score, *m.Team2Score
	if contains(m.Teams.Team2, playerID) {
		ours, theirs = theirs, ours
	}
	entry := m.Ledger[playerID]
	return stats.Contribution{
		Outcome:      stats.Classify(ours, theirs),
		Goals:        entry.Goals,
		Assists:      entry.Assists,
		GoalsAgainst: theirs,
	}
}

var _ StandingsService = (*standingsService)(nil)
