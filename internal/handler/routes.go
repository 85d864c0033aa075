package handler

import "github.com/gin-gonic/gin"

// APIV1Prefix is the canonical base path for public HTTP API v1.
// Keep a single source of truth to avoid path drift across handlers and tests.
const APIV1Prefix = "/api/v1"

// ActorHeader carries the caller's player id, resolved upstream by the
// identity gateway. An empty value means an unauthenticated caller; the
// service layer decides whether that matters for the operation.
const ActorHeader = "X-Actor-ID"

func actorID(c *gin.Context) string { return c.GetHeader(ActorHeader) }
