package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nelalmis/league-match-service/internal/handler"
	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/service"
)

type stubInvitationService struct {
	inv       model.Invitation
	list      []model.Invitation
	err       error
	gotActor  string
	gotAccept bool
}

func (s *stubInvitationService) Send(_ context.Context, actorID string, _ service.SendInvitationInput) (model.Invitation, error) {
	s.gotActor = actorID
	return s.inv, s.err
}
func (s *stubInvitationService) Respond(_ context.Context, actorID string, _ int64, accept bool) (model.Invitation, error) {
	s.gotActor, s.gotAccept = actorID, accept
	return s.inv, s.err
}
func (s *stubInvitationService) ListByMatch(context.Context, int64) ([]model.Invitation, error) {
	return s.list, s.err
}
func (s *stubInvitationService) ExpireSweep(context.Context) (int64, error) { return 0, s.err }

var _ service.InvitationService = (*stubInvitationService)(nil)

func newInvitationRouter(is service.InvitationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r, stubPingerNoop{}, nil, is, nil, nil)
	return r
}

func TestInvitationHandler_Send_OK(t *testing.T) {
	stub := &stubInvitationService{inv: model.Invitation{ID: 1, Status: model.InvitationPending}}
	r := newInvitationRouter(stub)
	body, _ := json.Marshal(map[string]any{"match_id": 7, "invitee_id": "p2"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations", bytes.NewReader(body))
	req.Header.Set(handler.ActorHeader, "p1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if stub.gotActor != "p1" {
		t.Fatalf("actor not forwarded: %q", stub.gotActor)
	}
}

func TestInvitationHandler_Send_DuplicateIs409(t *testing.T) {
	r := newInvitationRouter(&stubInvitationService{err: service.ErrDuplicateInvitation})
	body, _ := json.Marshal(map[string]any{"match_id": 7, "invitee_id": "p2"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/invitations", bytes.NewReader(body)))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &payload)
	if payload.Error != "duplicate_invitation" {
		t.Fatalf("unexpected error code: %s", w.Body.String())
	}
}

func TestInvitationHandler_Respond(t *testing.T) {
	stub := &stubInvitationService{inv: model.Invitation{ID: 1, Status: model.InvitationAccepted}}
	r := newInvitationRouter(stub)

	body, _ := json.Marshal(map[string]string{"decision": "accept"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations/1/respond", bytes.NewReader(body))
	req.Header.Set(handler.ActorHeader, "p2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !stub.gotAccept || stub.gotActor != "p2" {
		t.Fatalf("decision not parsed: accept=%v actor=%q", stub.gotAccept, stub.gotActor)
	}

	// unknown decision never reaches the service
	body, _ = json.Marshal(map[string]string{"decision": "maybe"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/invitations/1/respond", bytes.NewReader(body)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestInvitationHandler_ListByMatch(t *testing.T) {
	stub := &stubInvitationService{list: []model.Invitation{
		{ID: 1, Status: model.InvitationExpired},
		{ID: 2, Status: model.InvitationPending},
	}}
	r := newInvitationRouter(stub)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/matches/7/invitations", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got []model.Invitation
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 invitations, got %d", len(got))
	}
}
