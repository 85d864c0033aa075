// Package stats holds the numeric core of the engine: rating aggregation and
// standings arithmetic as pure (oldAggregate, contribution) -> newAggregate
// functions. Services apply these under per-key transactions; nothing here
// reads or writes storage.
package stats

import (
	"sort"

	"github.com/nelalmis/league-match-service/internal/model"
)

const (
	// lastFiveWindow caps the rolling window of match averages.
	lastFiveWindow = 5
	// trendMinSamples is the minimum window size before a trend is derived.
	trendMinSamples = 3
	// trendThreshold separates improving/declining from stable.
	trendThreshold = 0.3
)

// MatchAverages computes each rated player's average score across all
// ratings they received in one match, plus how many ratings contributed.
func MatchAverages(ratings []model.MatchRating) (avgs map[string]float64, counts map[string]int) {
	sums := make(map[string]float64)
	counts = make(map[string]int)
	for _, r := range ratings {
		sums[r.RatedID] += r.Score
		counts[r.RatedID]++
	}
	avgs = make(map[string]float64, len(sums))
	for id, sum := range sums {
		avgs[id] = sum / float64(counts[id])
	}
	return avgs, counts
}

// MergeBucket folds one match's contribution into a bucket using the
// weighted running mean: a match weighs in proportion to the number of
// ratings it contributed, not equally per match.
func MergeBucket(b model.RatingBucket, matchAvg float64, ratingCount int) model.RatingBucket {
	if ratingCount <= 0 {
		return b
	}
	oldCount := b.TotalRatingsReceived
	b.AverageRating = (b.AverageRating*float64(oldCount) + matchAvg*float64(ratingCount)) /
		float64(oldCount+ratingCount)
	b.TotalRatingsReceived = oldCount + ratingCount
	b.MatchesPlayed++
	b.MVPRate = mvpRate(b.MVPCount, b.MatchesPlayed)
	return b
}

// AwardMVP bumps the bucket's MVP tally and refreshes the rate.
func AwardMVP(b model.RatingBucket) model.RatingBucket {
	b.MVPCount++
	b.MVPRate = mvpRate(b.MVPCount, b.MatchesPlayed)
	return b
}

func mvpRate(mvpCount, matchesPlayed int) float64 {
	if matchesPlayed == 0 {
		return 0
	}
	return float64(mvpCount) / float64(matchesPlayed) * 100
}

// PushLastFive appends a match average to the rolling window, dropping the
// oldest sample past the cap.
func PushLastFive(window []float64, matchAvg float64) []float64 {
	window = append(window, matchAvg)
	if len(window) > lastFiveWindow {
		window = window[len(window)-lastFiveWindow:]
	}
	return window
}

// Trend compares the mean of the most recent half of the window against the
// older half. Below trendMinSamples samples the trend stays stable.
func Trend(window []float64) model.RatingTrend {
	if len(window) < trendMinSamples {
		return model.TrendStable
	}
	half := len(window) / 2
	older := mean(window[:half])
	recent := mean(window[half:])
	switch {
	case recent-older > trendThreshold:
		return model.TrendImproving
	case older-recent > trendThreshold:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SelectMVP elects the player with the strictly highest match average.
// Exact ties resolve to the lowest player id so the pick is deterministic
// regardless of map iteration order.
func SelectMVP(avgs map[string]float64) string {
	ids := make([]string, 0, len(avgs))
	for id := range avgs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	best := ""
	for _, id := range ids {
		if best == "" || avgs[id] > avgs[best] {
			best = id
		}
	}
	return best
}

// MergeCategoryAverages folds per-category sub-scores into the profile's
// category averages with the same ratings-weighted mean as MergeBucket.
func MergeCategoryAverages(old map[string]float64, oldCount int, contrib map[string]float64, ratingCount int) map[string]float64 {
	if len(contrib) == 0 {
		return old
	}
	out := make(map[string]float64, len(old)+len(contrib))
	for k, v := range old {
		out[k] = v
	}
	for k, v := range contrib {
		prev := out[k]
		out[k] = (prev*float64(oldCount) + v*float64(ratingCount)) / float64(oldCount+ratingCount)
	}
	return out
}
