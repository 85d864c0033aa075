package service_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nelalmis/league-match-service/internal/lifecycle"
	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/notify"
	"github.com/nelalmis/league-match-service/internal/service"
)

func newInvitationFixture(t *testing.T) (service.InvitationService, service.MatchService, *fakeMatchRepo, *fakeInvitationRepo, *recordingNotifier) {
	t.Helper()
	matches := newFakeMatchRepo()
	invs := newFakeInvitationRepo()
	n := &recordingNotifier{}
	logger := zerolog.New(io.Discard)
	invSvc := service.NewInvitationService(invs, matches, fakeTx{}, n, 48*time.Hour, logger)
	matchSvc := service.NewMatchService(matches, invs, n, logger)
	return invSvc, matchSvc, matches, invs, n
}

func TestInvitationService_Send(t *testing.T) {
	invSvc, matchSvc, _, _, n := newInvitationFixture(t)
	m, err := matchSvc.CreateMatch(context.Background(), "org", validCreateInput())
	if err != nil {
		t.Fatalf("create match: %v", err)
	}

	inv, err := invSvc.Send(context.Background(), "org", service.SendInvitationInput{
		MatchID: m.ID, InviteeID: "p7", Message: "need a keeper",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if inv.Status != model.InvitationPending {
		t.Fatalf("expected pending, got %s", inv.Status)
	}
	if inv.ExpiresAt == nil {
		t.Fatalf("default TTL not applied")
	}
	if got := n.byType(notify.EventInvitationSent); len(got) != 1 || got[0].playerID != "p7" {
		t.Fatalf("invitee not notified: %+v", got)
	}

	// a second active invitation for the same invitee is rejected
	_, err = invSvc.Send(context.Background(), "org", service.SendInvitationInput{MatchID: m.ID, InviteeID: "p7"})
	if !errors.Is(err, service.ErrDuplicateInvitation) {
		t.Fatalf("expected duplicate invitation, got %v", err)
	}
	// a different invitee is fine
	if _, err := invSvc.Send(context.Background(), "org", service.SendInvitationInput{MatchID: m.ID, InviteeID: "p8"}); err != nil {
		t.Fatalf("second invitee: %v", err)
	}
}

func TestInvitationService_Send_SelfInviteRejected(t *testing.T) {
	invSvc, matchSvc, _, _, _ := newInvitationFixture(t)
	m, _ := matchSvc.CreateMatch(context.Background(), "org", validCreateInput())
	_, err := invSvc.Send(context.Background(), "org", service.SendInvitationInput{MatchID: m.ID, InviteeID: "org"})
	if !serviceErrIsInvalid(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestInvitationService_Send_RequiresOpenRegistration(t *testing.T) {
	invSvc, matchSvc, _, _, _ := newInvitationFixture(t)
	m, _ := matchSvc.CreateMatch(context.Background(), "org", validCreateInput())
	if _, err := matchSvc.Transition(context.Background(), "org", m.ID, lifecycle.ActionCancel); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := invSvc.Send(context.Background(), "org", service.SendInvitationInput{MatchID: m.ID, InviteeID: "p7"})
	var transErr *lifecycle.InvalidTransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestInvitationService_Respond_AcceptRegistersInvitee(t *testing.T) {
	invSvc, matchSvc, matches, _, n := newInvitationFixture(t)
	m, _ := matchSvc.CreateMatch(context.Background(), "org", validCreateInput())
	inv, _ := invSvc.Send(context.Background(), "org", service.SendInvitationInput{MatchID: m.ID, InviteeID: "p7"})

	// only the invitee may respond
	if _, err := invSvc.Respond(context.Background(), "someone", inv.ID, true); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	out, err := invSvc.Respond(context.Background(), "p7", inv.ID, true)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if out.Status != model.InvitationAccepted {
		t.Fatalf("expected accepted, got %s", out.Status)
	}
	got, _ := matches.GetByID(context.Background(), m.ID)
	found := false
	for _, id := range got.Pools.Registered {
		if id == "p7" {
			found = true
		}
	}
	if !found {
		t.Fatalf("accept did not register invitee: %+v", got.Pools)
	}
	if evs := n.byType(notify.EventInvitationAccepted); len(evs) != 1 || evs[0].playerID != "org" {
		t.Fatalf("inviter not notified: %+v", evs)
	}

	// a resolved invitation cannot be answered again
	_, err = invSvc.Respond(context.Background(), "p7", inv.ID, false)
	var invErr *lifecycle.InvalidInvitationTransitionError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected invitation transition error, got %v", err)
	}
}

func TestInvitationService_Respond_Decline(t *testing.T) {
	invSvc, matchSvc, matches, _, _ := newInvitationFixture(t)
	m, _ := matchSvc.CreateMatch(context.Background(), "org", validCreateInput())
	inv, _ := invSvc.Send(context.Background(), "org", service.SendInvitationInput{MatchID: m.ID, InviteeID: "p7"})

	out, err := invSvc.Respond(context.Background(), "p7", inv.ID, false)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if out.Status != model.InvitationDeclined {
		t.Fatalf("expected declined, got %s", out.Status)
	}
	got, _ := matches.GetByID(context.Background(), m.ID)
	if len(got.Pools.Registered) != 0 {
		t.Fatalf("decline must not touch the pool: %+v", got.Pools)
	}
}

func TestInvitationService_Respond_AcceptHonorsCapacity(t *testing.T) {
	invSvc, matchSvc, _, invs, _ := newInvitationFixture(t)
	in := validCreateInput()
	in.SquadSize = 2
	in.ReserveSize = 1
	in.MinPlayersToStart = 2
	m, err := matchSvc.CreateMatch(context.Background(), "org", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	inv, err := invSvc.Send(context.Background(), "org", service.SendInvitationInput{MatchID: m.ID, InviteeID: "late"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	// the pool fills up while the invitation sits unanswered
	for _, p := range []string{"p1", "p2", "p3"} {
		if _, err := matchSvc.JoinMatch(context.Background(), p, m.ID); err != nil {
			t.Fatalf("join %s: %v", p, err)
		}
	}

	if _, err := invSvc.Respond(context.Background(), "late", inv.ID, true); !errors.Is(err, service.ErrCapacityExceeded) {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}
	// the invitation is not consumed; it stays answerable if a spot frees up
	row, _ := invs.GetByID(context.Background(), inv.ID)
	if row.Status != model.InvitationPending {
		t.Fatalf("failed accept must leave the invitation pending, got %s", row.Status)
	}
}

func TestInvitationService_PassiveExpiry(t *testing.T) {
	invSvc, matchSvc, _, invs, _ := newInvitationFixture(t)
	m, _ := matchSvc.CreateMatch(context.Background(), "org", validCreateInput())

	past := time.Now().UTC().Add(-time.Hour)
	stale, _ := invs.Create(context.Background(), model.Invitation{
		MatchID: m.ID, InviterID: "org", InviteeID: "p7",
		Status: model.InvitationPending, SentAt: past.Add(-time.Hour), ExpiresAt: &past,
	})

	// listing shows it expired even though the row still says pending
	list, err := invSvc.ListByMatch(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Status != model.InvitationExpired {
		t.Fatalf("expected expired in listing, got %+v", list)
	}

	// responding to it fails the same way
	_, err = invSvc.Respond(context.Background(), "p7", stale.ID, true)
	var invErr *lifecycle.InvalidInvitationTransitionError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected invitation transition error, got %v", err)
	}

	// the sweep persists what reads already report
	nExpired, err := invSvc.ExpireSweep(context.Background())
	if err != nil || nExpired != 1 {
		t.Fatalf("sweep: n=%d err=%v", nExpired, err)
	}
	row, _ := invs.GetByID(context.Background(), stale.ID)
	if row.Status != model.InvitationExpired {
		t.Fatalf("sweep did not persist expiry: %s", row.Status)
	}
}

func TestInvitationService_Send_TTLOverride(t *testing.T) {
	invSvc, matchSvc, _, _, _ := newInvitationFixture(t)
	m, _ := matchSvc.CreateMatch(context.Background(), "org", validCreateInput())
	inv, err := invSvc.Send(context.Background(), "org", service.SendInvitationInput{
		MatchID: m.ID, InviteeID: "p7", TTLHours: 1,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if inv.ExpiresAt == nil {
		t.Fatalf("expected expiry set")
	}
	if d := time.Until(*inv.ExpiresAt); d > time.Hour+time.Minute || d < 50*time.Minute {
		t.Fatalf("ttl override not applied, expires in %s", d)
	}
}
