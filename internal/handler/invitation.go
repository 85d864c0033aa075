package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nelalmis/league-match-service/internal/service"
	"github.com/nelalmis/league-match-service/pkg/response"
)

type InvitationHandler struct {
	svc service.InvitationService
}

func NewInvitationHandler(svc service.InvitationService) *InvitationHandler {
	return &InvitationHandler{svc: svc}
}

func (h *InvitationHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/invitations")
	{
		g.POST("", h.send)
		g.POST(":id/respond", h.respond)
	}
	// Listing hangs off the match it belongs to.
	r.GET("/matches/:id/invitations", h.listByMatch)
}

type sendInvitationRequest struct {
	MatchID   int64  `json:"match_id"`
	InviteeID string `json:"invitee_id"`
	Message   string `json:"message,omitempty"`
	TTLHours  int    `json:"ttl_hours,omitempty"`
}

func (h *InvitationHandler) send(c *gin.Context) {
	var req sendInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	inv, err := h.svc.Send(c.Request.Context(), actorID(c), service.SendInvitationInput{
		MatchID:   req.MatchID,
		InviteeID: req.InviteeID,
		Message:   req.Message,
		TTLHours:  req.TTLHours,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, inv)
}

type respondRequest struct {
	Decision string `json:"decision"` // "accept" or "decline"
}

func (h *InvitationHandler) respond(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	var accept bool
	switch req.Decision {
	case "accept":
		accept = true
	case "decline":
		accept = false
	default:
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{
			{Field: "decision", Message: "must be accept or decline"},
		}))
		return
	}
	inv, err := h.svc.Respond(c.Request.Context(), actorID(c), id, accept)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, inv)
}

func (h *InvitationHandler) listByMatch(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	invs, err := h.svc.ListByMatch(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, invs)
}
