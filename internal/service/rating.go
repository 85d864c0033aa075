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
	"github.com/nelalmis/league-match-service/internal/stats"
	"github.com/rs/zerolog"
)

type ratingService struct {
	matches   repository.MatchRepository
	ratings   repository.RatingRepository
	profiles  repository.ProfileRepository
	standings StandingsService
	tx        repository.TxManager
	notifier  notify.Notifier
	locks     *keyedMutex
	log       zerolog.Logger
}

func NewRatingService(
	matches repository.MatchRepository,
	ratings repository.RatingRepository,
	profiles repository.ProfileRepository,
	standings StandingsService,
	tx repository.TxManager,
	notifier notify.Notifier,
	logger zerolog.Logger,
) RatingService {
	l := logger.With().Str("module", "service").Str("component", "rating").Logger()
	return &ratingService{
		matches: matches, ratings: ratings, profiles: profiles,
		standings: standings, tx: tx, notifier: notifier, locks: newKeyedMutex(), log: l,
	}
}

// SubmitRating records one peer rating. The first rating arriving while the
// match is still payment_pending advances it to rating_pending; the last
// expected rating finalizes the match: profiles merge, MVP election,
// standings fold-in and the completed transition.
func (s *ratingService) SubmitRating(ctx context.Context, actorID string, in SubmitRatingInput) (model.MatchRating, error) {
	if actorID == "" {
		return model.MatchRating{}, ErrUnauthorized
	}
	var ferrs []FieldError
	rated := strings.TrimSpace(in.RatedID)
	if in.MatchID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "match_id", Message: "must be > 0"})
	}
	if rated == "" {
		ferrs = append(ferrs, FieldError{Field: "rated_id", Message: "must not be empty"})
	}
	if !isValidScore(in.Score) {
		ferrs = append(ferrs, FieldError{Field: "score", Message: "must be between 1 and 5"})
	}
	for cat, v := range in.Categories {
		if !isValidScore(v) {
			ferrs = append(ferrs, FieldError{Field: "categories." + cat, Message: "must be between 1 and 5"})
		}
	}
	if rated != "" && rated == actorID {
		ferrs = append(ferrs, FieldError{Field: "rated_id", Message: "players cannot rate themselves"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.MatchRating{}, err
	}

	unlock := s.locks.Lock(in.MatchID)
	defer unlock()

	m, err := s.matches.GetByID(ctx, in.MatchID)
	if err != nil {
		return model.MatchRating{}, err
	}
	// The payment step never blocks ratings: the first rating during
	// payment_pending moves the match forward implicitly.
	if m.Status == model.StatusPaymentPending {
		next, err := lifecycle.Next(m.Status, lifecycle.ActionBeginPayment)
		if err != nil {
			return model.MatchRating{}, err
		}
		m.Status = next
		if m, err = s.matches.Update(ctx, m); err != nil {
			return model.MatchRating{}, err
		}
		s.log.Info().Int64("match_id", m.ID).Msg("first rating received, rating window opened")
	}
	if m.Status != model.StatusRatingPending {
		return model.MatchRating{}, &lifecycle.InvalidTransitionError{From: m.Status, Action: "submit_rating"}
	}

	participants := m.Participants()
	if !contains(participants, actorID) {
		return model.MatchRating{}, ErrUnauthorized
	}
	if !contains(participants, rated) {
		return model.MatchRating{}, newInvalidInput([]FieldError{
			{Field: "rated_id", Message: "player did not take part in this match"},
		})
	}

	exists, err := s.ratings.Exists(ctx, in.MatchID, actorID, rated)
	if err != nil {
		return model.MatchRating{}, err
	}
	if exists {
		return model.MatchRating{}, ErrDuplicateRating
	}

	rating := model.MatchRating{
		MatchID:    in.MatchID,
		RaterID:    actorID,
		RatedID:    rated,
		Score:      in.Score,
		Categories: in.Categories,
		Anonymous:  in.Anonymous,
		LeagueID:   m.LeagueID,
		Season:     m.Season,
		CreatedAt:  time.Now().UTC(),
	}
	out, err := s.ratings.Create(ctx, rating)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.MatchRating{}, ErrDuplicateRating
		}
		return model.MatchRating{}, err
	}

	raters, err := s.ratings.CountDistinctRaters(ctx, in.MatchID)
	if err != nil {
		return model.MatchRating{}, err
	}
	if raters >= len(participants)-1 {
		if err := s.finalize(ctx, m); err != nil {
			s.log.Error().Err(err).Int64("match_id", m.ID).Msg("finalize after last rating failed")
			return model.MatchRating{}, err
		}
	}
	return out, nil
}

// finalize closes the rating window: per-player match averages, MVP election,
// rolling profile merges, standings fold-in and the completed transition.
// Runs under the match's keyed lock.
func (s *ratingService) finalize(ctx context.Context, m model.Match) error {
	all, err := s.ratings.ListByMatch(ctx, m.ID)
	if err != nil {
		return err
	}
	avgs, counts := stats.MatchAverages(all)
	mvpID := stats.SelectMVP(avgs)
	catAvgs := categoryAverages(all)

	// The completed transition, every profile merge and the standings
	// fold-in commit as one unit. The transition goes first so a match
	// that already left rating_pending aborts before any aggregate is
	// touched, and a failure anywhere rolls the whole batch back: the
	// match stays rating_pending and the next submission re-runs
	// finalize without a single contribution counted twice.
	err = withConflictRetry(ctx, func(ctx context.Context) error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			cur, err := s.matches.GetByID(ctx, m.ID)
			if err != nil {
				return err
			}
			next, err := lifecycle.Next(cur.Status, lifecycle.ActionCompleteRatings)
			if err != nil {
				return err
			}
			cur.Status = next
			cur.MVPID = mvpID
			if cur, err = s.matches.Update(ctx, cur); err != nil {
				return err
			}

			overall := make(map[string]float64, len(avgs))
			for ratedID, avg := range avgs {
				updated, err := s.mergeProfile(ctx, cur, ratedID, avg, counts[ratedID], catAvgs[ratedID], ratedID == mvpID)
				if err != nil {
					return err
				}
				overall[ratedID] = updated.Overall.AverageRating
			}

			if err := s.standings.ApplyMatchResult(ctx, cur, overall, mvpID); err != nil {
				return err
			}
			m = cur
			return nil
		})
	})
	if err != nil {
		return err
	}

	for _, p := range m.Participants() {
		s.notifier.Notify(ctx, p, notify.EventMatchCompleted, map[string]any{
			"match_id": m.ID,
			"score":    m.ScoreDisplay(),
			"mvp_id":   mvpID,
		})
	}
	if mvpID != "" {
		s.notifier.Notify(ctx, mvpID, notify.EventMVPAwarded, map[string]any{
			"match_id":      m.ID,
			"match_average": avgs[mvpID],
		})
	}
	s.log.Info().Int64("match_id", m.ID).Str("mvp_id", mvpID).Int("rated_players", len(avgs)).
		Msg("match completed")
	return nil
}

// mergeProfile folds one match's averages into the player's rolling profile,
// creating it lazily on first contribution. It runs inside finalize's
// transaction; a version conflict aborts the whole batch, which finalize's
// retry loop then restarts against fresh reads.
func (s *ratingService) mergeProfile(
	ctx context.Context,
	m model.Match,
	playerID string,
	matchAvg float64,
	ratingCount int,
	catContrib map[string]float64,
	isMVP bool,
) (model.PlayerRatingProfile, error) {
	p, err := s.profiles.Get(ctx, playerID, m.LeagueID, m.Season)
	created := false
	if errors.Is(err, repository.ErrNotFound) {
		p = model.PlayerRatingProfile{PlayerID: playerID, LeagueID: m.LeagueID, Season: m.Season}
		created = true
	} else if err != nil {
		return model.PlayerRatingProfile{}, err
	}

	oldOverallCount := p.Overall.TotalRatingsReceived
	p.Overall = stats.MergeBucket(p.Overall, matchAvg, ratingCount)
	if m.Kind == model.KindLeague {
		p.League = stats.MergeBucket(p.League, matchAvg, ratingCount)
	} else {
		p.Friendly = stats.MergeBucket(p.Friendly, matchAvg, ratingCount)
	}
	if isMVP {
		p.Overall = stats.AwardMVP(p.Overall)
		if m.Kind == model.KindLeague {
			p.League = stats.AwardMVP(p.League)
		} else {
			p.Friendly = stats.AwardMVP(p.Friendly)
		}
	}
	p.LastFiveRatings = stats.PushLastFive(p.LastFiveRatings, matchAvg)
	p.RatingTrend = stats.Trend(p.LastFiveRatings)
	p.CategoryAverages = stats.MergeCategoryAverages(p.CategoryAverages, oldOverallCount, catContrib, ratingCount)

	if created {
		return s.profiles.Create(ctx, p)
	}
	return s.profiles.Update(ctx, p)
}

func (s *ratingService) GetProfile(ctx context.Context, playerID string, leagueID int64, season string) (model.PlayerRatingProfile, error) {
	if strings.TrimSpace(playerID) == "" {
		return model.PlayerRatingProfile{}, newInvalidInput([]FieldError{
			{Field: "player_id", Message: "must not be empty"},
		})
	}
	return s.profiles.Get(ctx, playerID, leagueID, season)
}

// categoryAverages computes, per rated player, the mean of each category
// sub-score across the ratings they received in this match.
func categoryAverages(ratings []model.MatchRating) map[string]map[string]float64 {
	sums := make(map[string]map[string]float64)
	counts := make(map[string]map[string]int)
	for _, r := range ratings {
		for cat, v := range r.Categories {
			if sums[r.RatedID] == nil {
				sums[r.RatedID] = make(map[string]float64)
				counts[r.RatedID] = make(map[string]int)
			}
			sums[r.RatedID][cat] += v
			counts[r.RatedID][cat]++
		}
	}
	out := make(map[string]map[string]float64, len(sums))
	for id, cats := range sums {
		avg := make(map[string]float64, len(cats))
		for cat, sum := range cats {
			avg[cat] = sum / float64(counts[id][cat])
		}
		out[id] = avg
	}
	return out
}

var _ RatingService = (*ratingService)(nil)
