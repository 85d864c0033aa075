package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/repository"
	"github.com/nelalmis/league-match-service/internal/service"
)

// In-memory fakes implementing the repository contracts. They reproduce the
// error semantics the services depend on (ErrNotFound, ErrAlreadyExists,
// pending-only status updates) without a database.

type fakeMatchRepo struct {
	mu      sync.Mutex
	nextID  int64
	matches map[int64]model.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1, matches: map[int64]model.Match{}}
}

func (f *fakeMatchRepo) Create(_ context.Context, m model.Match) (model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = f.nextID
	f.nextID++
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	f.matches[m.ID] = m
	return m, nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id int64) (model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return model.Match{}, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeMatchRepo) Update(_ context.Context, m model.Match) (model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.matches[m.ID]
	if !ok {
		return model.Match{}, repository.ErrNotFound
	}
	if !cur.UpdatedAt.Equal(m.UpdatedAt) {
		return model.Match{}, repository.ErrConflict
	}
	m.UpdatedAt = m.UpdatedAt.Add(time.Millisecond)
	f.matches[m.ID] = m
	return m, nil
}

func (f *fakeMatchRepo) List(_ context.Context, _ repository.Page) (repository.PageResult[model.Match], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res repository.PageResult[model.Match]
	for _, m := range f.matches {
		res.Items = append(res.Items, m)
	}
	res.Total = len(res.Items)
	return res, nil
}

var _ repository.MatchRepository = (*fakeMatchRepo)(nil)

type fakeInvitationRepo struct {
	mu     sync.Mutex
	nextID int64
	invs   map[int64]model.Invitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{nextID: 1, invs: map[int64]model.Invitation{}}
}

func (f *fakeInvitationRepo) Create(_ context.Context, inv model.Invitation) (model.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv.ID = f.nextID
	f.nextID++
	f.invs[inv.ID] = inv
	return inv, nil
}

func (f *fakeInvitationRepo) GetByID(_ context.Context, id int64) (model.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invs[id]
	if !ok {
		return model.Invitation{}, repository.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvitationRepo) UpdateStatus(_ context.Context, id int64, status model.InvitationStatus, respondedAt time.Time) (model.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invs[id]
	if !ok {
		return model.Invitation{}, repository.ErrNotFound
	}
	if inv.Status != model.InvitationPending {
		return model.Invitation{}, repository.ErrConflict
	}
	inv.Status = status
	inv.RespondedAt = &respondedAt
	f.invs[id] = inv
	return inv, nil
}

func (f *fakeInvitationRepo) ListByMatch(_ context.Context, matchID int64) ([]model.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Invitation
	for _, inv := range f.invs {
		if inv.MatchID == matchID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) FindActive(_ context.Context, matchID int64, inviteeID string, now time.Time) (model.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invs {
		if inv.MatchID == matchID && inv.InviteeID == inviteeID && inv.Active(now) {
			return inv, nil
		}
	}
	return model.Invitation{}, repository.ErrNotFound
}

func (f *fakeInvitationRepo) MarkExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, inv := range f.invs {
		if inv.Status == model.InvitationPending && inv.ExpiresAt != nil && !inv.ExpiresAt.After(now) {
			inv.Status = model.InvitationExpired
			f.invs[id] = inv
			n++
		}
	}
	return n, nil
}

var _ repository.InvitationRepository = (*fakeInvitationRepo)(nil)

type ratingKey struct {
	matchID        int64
	rater, ratedID string
}

type fakeRatingRepo struct {
	mu      sync.Mutex
	nextID  int64
	ratings map[ratingKey]model.MatchRating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{nextID: 1, ratings: map[ratingKey]model.MatchRating{}}
}

func (f *fakeRatingRepo) Create(_ context.Context, r model.MatchRating) (model.MatchRating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := ratingKey{r.MatchID, r.RaterID, r.RatedID}
	if _, ok := f.ratings[k]; ok {
		return model.MatchRating{}, repository.ErrAlreadyExists
	}
	r.ID = f.nextID
	f.nextID++
	f.ratings[k] = r
	return r, nil
}

func (f *fakeRatingRepo) ListByMatch(_ context.Context, matchID int64) ([]model.MatchRating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.MatchRating
	for _, r := range f.ratings {
		if r.MatchID == matchID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRatingRepo) Exists(_ context.Context, matchID int64, raterID, ratedID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ratings[ratingKey{matchID, raterID, ratedID}]
	return ok, nil
}

func (f *fakeRatingRepo) CountDistinctRaters(_ context.Context, matchID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	for _, r := range f.ratings {
		if r.MatchID == matchID {
			seen[r.RaterID] = true
		}
	}
	return len(seen), nil
}

var _ repository.RatingRepository = (*fakeRatingRepo)(nil)

type profileKey struct {
	playerID string
	leagueID int64
	season   string
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	nextID   int64
	profiles map[profileKey]model.PlayerRatingProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{nextID: 1, profiles: map[profileKey]model.PlayerRatingProfile{}}
}

func (f *fakeProfileRepo) Get(_ context.Context, playerID string, leagueID int64, season string) (model.PlayerRatingProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[profileKey{playerID, leagueID, season}]
	if !ok {
		return model.PlayerRatingProfile{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) Create(_ context.Context, p model.PlayerRatingProfile) (model.PlayerRatingProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := profileKey{p.PlayerID, p.LeagueID, p.Season}
	if _, ok := f.profiles[k]; ok {
		return model.PlayerRatingProfile{}, repository.ErrAlreadyExists
	}
	p.ID = f.nextID
	f.nextID++
	p.Version = 1
	f.profiles[k] = p
	return p, nil
}

func (f *fakeProfileRepo) Update(_ context.Context, p model.PlayerRatingProfile) (model.PlayerRatingProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := profileKey{p.PlayerID, p.LeagueID, p.Season}
	cur, ok := f.profiles[k]
	if !ok {
		return model.PlayerRatingProfile{}, repository.ErrNotFound
	}
	if cur.Version != p.Version {
		return model.PlayerRatingProfile{}, repository.ErrConflict
	}
	p.Version++
	f.profiles[k] = p
	return p, nil
}

var _ repository.ProfileRepository = (*fakeProfileRepo)(nil)

type standingKey struct {
	leagueID int64
	season   string
	playerID string
}

type fakeStandingsRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[standingKey]model.PlayerStandingRow
}

func newFakeStandingsRepo() *fakeStandingsRepo {
	return &fakeStandingsRepo{nextID: 1, rows: map[standingKey]model.PlayerStandingRow{}}
}

func (f *fakeStandingsRepo) GetRow(_ context.Context, leagueID int64, season, playerID string) (model.PlayerStandingRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[standingKey{leagueID, season, playerID}]
	if !ok {
		return model.PlayerStandingRow{}, repository.ErrNotFound
	}
	return row, nil
}

func (f *fakeStandingsRepo) CreateRow(_ context.Context, row model.PlayerStandingRow) (model.PlayerStandingRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := standingKey{row.LeagueID, row.Season, row.PlayerID}
	if _, ok := f.rows[k]; ok {
		return model.PlayerStandingRow{}, repository.ErrAlreadyExists
	}
	row.ID = f.nextID
	f.nextID++
	row.Version = 1
	f.rows[k] = row
	return row, nil
}

func (f *fakeStandingsRepo) UpdateRow(_ context.Context, row model.PlayerStandingRow) (model.PlayerStandingRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := standingKey{row.LeagueID, row.Season, row.PlayerID}
	cur, ok := f.rows[k]
	if !ok {
		return model.PlayerStandingRow{}, repository.ErrNotFound
	}
	if cur.Version != row.Version {
		return model.PlayerStandingRow{}, repository.ErrConflict
	}
	row.Version++
	f.rows[k] = row
	return row, nil
}

func (f *fakeStandingsRepo) ListByLeagueSeason(_ context.Context, leagueID int64, season string) ([]model.PlayerStandingRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PlayerStandingRow
	for _, row := range f.rows {
		if row.LeagueID == leagueID && row.Season == season {
			out = append(out, row)
		}
	}
	return out, nil
}

var _ repository.StandingsRepository = (*fakeStandingsRepo)(nil)

type fakeLeagueRepo struct {
	leagues map[int64]model.League
}

func (f *fakeLeagueRepo) GetByID(_ context.Context, id int64) (model.League, error) {
	lg, ok := f.leagues[id]
	if !ok {
		return model.League{}, repository.ErrNotFound
	}
	return lg, nil
}

var _ repository.LeagueRepository = (*fakeLeagueRepo)(nil)

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn repository.TxFunc) error { return fn(ctx) }

var _ repository.TxManager = fakeTx{}

// recordingNotifier captures emitted events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	playerID  string
	eventType string
	payload   map[string]any
}

func (n *recordingNotifier) Notify(_ context.Context, playerID, eventType string, payload map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{playerID, eventType, payload})
}

func (n *recordingNotifier) byType(eventType string) []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []recordedEvent
	for _, ev := range n.events {
		if ev.eventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func serviceErrIsInvalid(err error) bool {
	return errors.Is(err, service.ErrInvalidInput)
}
