package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wildtrail/safaridesk/internal/middleware"
)

type RouterDeps struct {
	Auth        *AuthHandler
	Agents      *AgentHandler
	Bookings    *BookingHandler
	Documents   *DocumentHandler
	Shares      *ShareHandler
	PublicShare *PublicShareHandler
	JWTSecret   []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	// Credential endpoints are throttled; everything else on the staff side
	// sits behind the JWT already.
	loginLimiter := middleware.RateLimit(time.Second)
	api.POST("/auth/register", loginLimiter, deps.Auth.Register)
	api.POST("/auth/login", loginLimiter, deps.Auth.Login)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.POST("/agents", deps.Agents.Create)
	authGroup.GET("/agents", deps.Agents.List)
	authGroup.GET("/agents/:id", deps.Agents.Get)
	authGroup.PUT("/agents/:id", deps.Agents.Update)
	authGroup.DELETE("/agents/:id", deps.Agents.Delete)

	authGroup.POST("/bookings", deps.Bookings.Create)
	authGroup.GET("/bookings", deps.Bookings.List)
	authGroup.GET("/bookings/summary", deps.Bookings.Summary)
	authGroup.GET("/bookings/:id", deps.Bookings.Get)
	authGroup.PUT("/bookings/:id", deps.Bookings.Update)
	authGroup.DELETE("/bookings/:id", deps.Bookings.Delete)

	authGroup.POST("/bookings/:id/documents", deps.Documents.Upload)
	authGroup.GET("/bookings/:id/documents", deps.Documents.List)
	authGroup.PUT("/documents/:id/category", deps.Documents.ReassignCategory)
	authGroup.DELETE("/documents/:id", deps.Documents.Delete)
	authGroup.GET("/documents/:id/download", deps.Documents.Download)

	authGroup.POST("/bookings/:id/share", deps.Shares.Create)
	authGroup.GET("/bookings/:id/share", deps.Shares.GetActive)
	authGroup.DELETE("/bookings/:id/share", deps.Shares.Revoke)

	// Anonymous share surface. Registered outside the auth group so no bearer
	// credential is ever required; the path token is the only gate. Downloads
	// are not throttled here since viewers legitimately fire them back to
	// back; the resolver's rejected-token cache handles probing.
	publicGroup := api.Group("/public")
	publicGroup.GET("/share/:token", deps.PublicShare.Resolve)
	publicGroup.GET("/share/:token/download/:document_id", deps.PublicShare.Download)
	publicGroup.GET("/share/:token/download-all", deps.PublicShare.DownloadAll)
}
