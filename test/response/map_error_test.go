package response_test

import (
	"errors"
	"testing"

	"github.com/nelalmis/league-match-service/internal/lifecycle"
	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/repository"
	"github.com/nelalmis/league-match-service/internal/service"
	"github.com/nelalmis/league-match-service/pkg/response"
)

// fakeInvalid mimics service aggregated validation error to test mapping without reaching into internals.
type fakeInvalid struct{ fe []service.FieldError }

func (f *fakeInvalid) Error() string                { return service.ErrInvalidInput.Error() }
func (f *fakeInvalid) Unwrap() error                { return service.ErrInvalidInput }
func (f *fakeInvalid) Fields() []service.FieldError { return f.fe }

func TestMapError(t *testing.T) {
	cases := []struct {
		name     string
		in       error
		wantCode int
		wantErr  string
	}{
		{"invalid_input", &fakeInvalid{fe: []service.FieldError{{Field: "score", Message: "bad"}}}, 400, "invalid_input"},
		{"unauthorized", service.ErrUnauthorized, 403, "unauthorized"},
		{"not_found", repository.ErrNotFound, 404, "not_found"},
		{"already_exists", repository.ErrAlreadyExists, 409, "already_exists"},
		{"conflict", repository.ErrConflict, 409, "conflict"},
		{"duplicate_invitation", service.ErrDuplicateInvitation, 409, "duplicate_invitation"},
		{"duplicate_rating", service.ErrDuplicateRating, 409, "duplicate_rating"},
		{"capacity_exceeded", service.ErrCapacityExceeded, 409, "capacity_exceeded"},
		{"invalid_transition", &lifecycle.InvalidTransitionError{
			From: model.StatusCompleted, Action: lifecycle.ActionKickoff,
		}, 409, "invalid_transition"},
		{"invalid_invitation_transition", &lifecycle.InvalidInvitationTransitionError{
			From: model.InvitationDeclined, To: model.InvitationAccepted,
		}, 409, "invalid_transition"},
		{"internal", errors.New("boom"), 500, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, payload := response.MapError(tc.in)
			if code != tc.wantCode || payload.Error != tc.wantErr {
				t.Fatalf("unexpected mapping: got (%d,%s) want (%d,%s)", code, payload.Error, tc.wantCode, tc.wantErr)
			}
			if tc.wantErr == "invalid_input" && len(payload.FieldErrors) == 0 {
				t.Fatalf("expected field errors in payload")
			}
		})
	}
}

func TestMapError_WrappedStillMatches(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), repository.ErrConflict)
	code, payload := response.MapError(wrapped)
	if code != 409 || payload.Error != "conflict" {
		t.Fatalf("wrapped conflict not recognized: (%d,%s)", code, payload.Error)
	}
}
