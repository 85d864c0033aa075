package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nelalmis/league-match-service/internal/service"
	"github.com/nelalmis/league-match-service/pkg/response"
)

type StandingsHandler struct {
	svc service.StandingsService
}

func NewStandingsHandler(svc service.StandingsService) *StandingsHandler {
	return &StandingsHandler{svc: svc}
}

func (h *StandingsHandler) Register(r *gin.RouterGroup) {
	r.GET("/standings/:leagueId/:seasonId", h.get)
}

func (h *StandingsHandler) get(c *gin.Context) {
	leagueID, _ := strconv.ParseInt(c.Param("leagueId"), 10, 64)
	rows, err := h.svc.GetStandings(c.Request.Context(), leagueID, c.Param("seasonId"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, rows)
}
