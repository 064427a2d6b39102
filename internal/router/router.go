package router

import (
	"time"

	"hotmess/config"
	"hotmess/internal/handler"
	"hotmess/internal/middleware"
	"hotmess/internal/session"
	"hotmess/internal/ws"
	"hotmess/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

// Setup wires the composer service routes. cloud may be nil.
func Setup(cfg *config.Config, sessions *session.Manager, hub *ws.Hub, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewWindowLimiter(300, 60*time.Second)))

	rightNowHandler := handler.NewRightNowHandler(sessions)
	uploadHandler := handler.NewUploadHandler(sessions, cloud, cfg.Cloudinary.Folder)

	authMw := middleware.AuthRequired(&cfg.JWT)
	assistLimit := middleware.RateLimitByUser(middleware.NewWindowLimiter(cfg.Composer.AssistPerMinute, time.Minute))

	api := r.Group("/api/v1")
	me := api.Group("/me")
	me.Use(authMw)
	{
		me.GET("/entitlements", rightNowHandler.GetEntitlements)
		me.GET("/entitlements/tiers", rightNowHandler.ListTiers)

		rn := me.Group("/right-now/session")
		rn.POST("", rightNowHandler.OpenSession)
		rn.GET("", rightNowHandler.GetSession)
		rn.PATCH("", rightNowHandler.UpdateSession)
		rn.DELETE("", rightNowHandler.CloseSession)
		rn.PUT("/tiers", middleware.DemoOnly(cfg.Composer.TierSwitching), rightNowHandler.SwitchTiers)
		rn.POST("/assist", assistLimit, rightNowHandler.Assist)
		rn.POST("/media", uploadHandler.UploadDraftMedia)
		rn.DELETE("/media", uploadHandler.RemoveDraftMedia)
		rn.POST("/submit", rightNowHandler.Submit)
	}

	r.GET("/ws/right-now", ws.UpgradeRightNowWS(&cfg.JWT, hub, func(userID uint) (interface{}, bool) {
		comp, ok := sessions.Get(userID)
		if !ok {
			return nil, false
		}
		return comp.Snapshot(), true
	}))

	return r
}
