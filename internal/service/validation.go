package service

import (
	"strings"

	"github.com/nelalmis/league-match-service/internal/model"
)

const (
	minRatingScore = 1.0
	maxRatingScore = 5.0
)

func isValidKind(k model.MatchKind) bool {
	return k == model.KindLeague || k == model.KindFriendly
}

func isValidScore(score float64) bool {
	return score >= minRatingScore && score <= maxRatingScore
}

func normalizeKind(s string) model.MatchKind {
	return model.MatchKind(strings.ToLower(strings.TrimSpace(s)))
}

// contains reports membership in a player id slice.
func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// poolSize counts distinct candidates across every eligible pool.
func poolSize(p model.MatchPools) int {
	seen := make(map[string]bool)
	for _, pool := range [][]string{p.Direct, p.Premium, p.Registered, p.Guests} {
		for _, id := range pool {
			if id != "" {
				seen[id] = true
			}
		}
	}
	return len(seen)
}
