package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nelalmis/league-match-service/internal/lifecycle"
	"github.com/nelalmis/league-match-service/internal/model"
	"github.com/nelalmis/league-match-service/internal/repository"
	"github.com/nelalmis/league-match-service/internal/service"
	"github.com/nelalmis/league-match-service/pkg/response"
)

type MatchHandler struct {
	svc service.MatchService
}

func NewMatchHandler(svc service.MatchService) *MatchHandler { return &MatchHandler{svc: svc} }

func (h *MatchHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/matches")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET(":id", h.getByID)
		g.POST(":id/transition", h.transition)
		g.POST(":id/squad", h.buildSquad)
		g.POST(":id/score", h.enterScore)
		g.POST(":id/join", h.join)
		g.POST(":id/guests", h.addGuest)
	}
}

type createMatchRequest struct {
	SportType            string   `json:"sport_type"`
	Kind                 string   `json:"kind"`
	LeagueID             int64    `json:"league_id"`
	Season               string   `json:"season"`
	RegistrationOpensAt  string   `json:"registration_opens_at"` // RFC3339
	RegistrationClosesAt string   `json:"registration_closes_at"`
	StartsAt             string   `json:"starts_at"`
	EndsAt               string   `json:"ends_at"`
	SquadSize            int      `json:"squad_size"`
	ReserveSize          int      `json:"reserve_size"`
	MinPlayersToStart    int      `json:"min_players_to_start"`
	Fee                  float64  `json:"fee"`
	Premium              []string `json:"premium,omitempty"`
	Direct               []string `json:"direct,omitempty"`
	TeamBuilders         []string `json:"team_builders,omitempty"`
}

func (h *MatchHandler) create(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	in := service.CreateMatchInput{
		SportType:         req.SportType,
		Kind:              model.MatchKind(req.Kind),
		LeagueID:          req.LeagueID,
		Season:            req.Season,
		SquadSize:         req.SquadSize,
		ReserveSize:       req.ReserveSize,
		MinPlayersToStart: req.MinPlayersToStart,
		Fee:               req.Fee,
		Premium:           req.Premium,
		Direct:            req.Direct,
		TeamBuilders:      req.TeamBuilders,
	}
	var ferrs []service.FieldError
	in.RegistrationOpensAt = parseTime(req.RegistrationOpensAt, "registration_opens_at", &ferrs)
	in.RegistrationClosesAt = parseTime(req.RegistrationClosesAt, "registration_closes_at", &ferrs)
	in.StartsAt = parseTime(req.StartsAt, "starts_at", &ferrs)
	in.EndsAt = parseTime(req.EndsAt, "ends_at", &ferrs)
	if len(ferrs) > 0 {
		response.WriteError(c, service.NewInvalidInputError(ferrs))
		return
	}
	m, err := h.svc.CreateMatch(c.Request.Context(), actorID(c), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, m)
}

func (h *MatchHandler) getByID(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	m, err := h.svc.GetMatch(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

func (h *MatchHandler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	page := repository.Page{Limit: limit, Offset: offset}
	res, err := h.svc.ListMatches(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

type transitionRequest struct {
	Action string `json:"action"`
}

func (h *MatchHandler) transition(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	action, ok := lifecycle.ParseAction(req.Action)
	if !ok {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{
			{Field: "action", Message: "unknown action"},
		}))
		return
	}
	m, err := h.svc.Transition(c.Request.Context(), actorID(c), id, action)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

func (h *MatchHandler) buildSquad(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	m, err := h.svc.BuildSquad(c.Request.Context(), actorID(c), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

type scoreRequest struct {
	Team1Score int            `json:"team1_score"`
	Team2Score int            `json:"team2_score"`
	Goals      map[string]int `json:"goals,omitempty"`
	Assists    map[string]int `json:"assists,omitempty"`
}

func (h *MatchHandler) enterScore(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	in := service.ScoreInput{
		Team1Score: req.Team1Score,
		Team2Score: req.Team2Score,
		Goals:      req.Goals,
		Assists:    req.Assists,
	}
	m, err := h.svc.EnterScore(c.Request.Context(), actorID(c), id, in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

func (h *MatchHandler) join(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	m, err := h.svc.JoinMatch(c.Request.Context(), actorID(c), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

type addGuestRequest struct {
	Name string `json:"name"`
}

func (h *MatchHandler) addGuest(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	var req addGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	m, guestID, err := h.svc.AddGuest(c.Request.Context(), actorID(c), id, req.Name)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, gin.H{"guest_id": guestID, "match": m})
}

// parseTime parses an RFC3339 timestamp, collecting a field error on failure.
func parseTime(s, field string, ferrs *[]service.FieldError) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		*ferrs = append(*ferrs, service.FieldError{Field: field, Message: "must be RFC3339"})
	}
	return t
}
