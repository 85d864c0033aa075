package model

import "time"

// RatingTrend summarizes the direction of a player's recent match averages.
type RatingTrend string

const (
	TrendImproving RatingTrend = "improving"
	TrendStable    RatingTrend = "stable"
	TrendDeclining RatingTrend = "declining"
)

// MatchRating is a single peer rating submitted after a match.
type MatchRating struct {
	ID         int64              `json:"id"`
	MatchID    int64              `json:"match_id"`
	RaterID    string             `json:"rater_id"`
	RatedID    string             `json:"rated_id"`
	Score      float64            `json:"score"` // 1..5
	Categories map[string]float64 `json:"categories,omitempty"`
	Anonymous  bool               `json:"anonymous"`
	LeagueID   int64              `json:"league_id,omitempty"`
	Season     string             `json:"season,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// RatingBucket is one aggregate view (overall, league or friendly) inside a
// player's rating profile. Averages are maintained incrementally; the profile
// is never recomputed from full history.
type RatingBucket struct {
	AverageRating        float64 `json:"average_rating"`
	TotalRatingsReceived int     `json:"total_ratings_received"`
	MatchesPlayed        int     `json:"matches_played"`
	MVPCount             int     `json:"mvp_count"`
	MVPRate              float64 `json:"mvp_rate"` // percent of matches of that type
}

// PlayerRatingProfile is the rolling per-player rating state, keyed by
// (player, league, season). Owned exclusively by the rating aggregation
// engine; created lazily on first contribution.
type PlayerRatingProfile struct {
	ID       int64  `json:"id"`
	PlayerID string `json:"player_id"`
	LeagueID int64  `json:"league_id"`
	Season   string `json:"season"`

	Overall  RatingBucket `json:"overall"`
	League   RatingBucket `json:"league"`
	Friendly RatingBucket `json:"friendly"`

	LastFiveRatings  []float64          `json:"last_five_ratings"`
	RatingTrend      RatingTrend        `json:"rating_trend"`
	CategoryAverages map[string]float64 `json:"category_averages,omitempty"`

	Version   int64     `json:"-"` // optimistic concurrency token
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
