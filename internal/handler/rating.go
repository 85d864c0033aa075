package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nelalmis/league-match-service/internal/service"
	"github.com/nelalmis/league-match-service/pkg/response"
)

type RatingHandler struct {
	svc service.RatingService
}

func NewRatingHandler(svc service.RatingService) *RatingHandler { return &RatingHandler{svc: svc} }

func (h *RatingHandler) Register(r *gin.RouterGroup) {
	r.POST("/matches/:id/ratings", h.submit)
	r.GET("/players/:playerId/rating-profile", h.profile)
}

type submitRatingRequest struct {
	RatedID    string             `json:"rated_id"`
	Score      float64            `json:"score"`
	Categories map[string]float64 `json:"categories,omitempty"`
	Anonymous  bool               `json:"anonymous,omitempty"`
}

func (h *RatingHandler) submit(c *gin.Context) {
	matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	var req submitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	rating, err := h.svc.SubmitRating(c.Request.Context(), actorID(c), service.SubmitRatingInput{
		MatchID:    matchID,
		RatedID:    req.RatedID,
		Score:      req.Score,
		Categories: req.Categories,
		Anonymous:  req.Anonymous,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, rating)
}

func (h *RatingHandler) profile(c *gin.Context) {
	playerID := c.Param("playerId")
	leagueID, _ := strconv.ParseInt(c.Query("league"), 10, 64)
	season := c.Query("season")
	p, err := h.svc.GetProfile(c.Request.Context(), playerID, leagueID, season)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, p)
}
