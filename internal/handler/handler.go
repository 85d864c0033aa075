package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/nelalmis/league-match-service/internal/service"
)

// Register mounts all public routes on the given engine.
// Accepts service layer dependencies for API endpoints.
func Register(
	r *gin.Engine,
	repo Pinger,
	matchSvc service.MatchService,
	invitationSvc service.InvitationService,
	ratingSvc service.RatingService,
	standingsSvc service.StandingsService,
) {
	h := NewHealthHandler(repo)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	// Docs endpoints (root-level)
	RegisterDocs(r)

	api := r.Group(APIV1Prefix) // Versioning added via single source of truth
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewMatchHandler(matchSvc).Register(api)
		NewInvitationHandler(invitationSvc).Register(api)
		NewRatingHandler(ratingSvc).Register(api)
		NewStandingsHandler(standingsSvc).Register(api)
	}
}
