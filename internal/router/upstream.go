package router

import (
	"time"

	"hotmess/config"
	"hotmess/internal/middleware"
	"hotmess/internal/rightnow"
	"hotmess/internal/upstream"

	"github.com/gin-gonic/gin"
)

// SetupUpstream wires the reference right-now service.
func SetupUpstream(cfg *config.Config, store upstream.PostStore) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewWindowLimiter(600, 60*time.Second)))

	h := upstream.NewHandler(store, cfg.Upstream.PostTTL)
	authMw := middleware.AuthRequired(&cfg.JWT)
	r.POST(rightnow.DraftPath, authMw, h.Draft)
	r.POST(rightnow.CreatePath, authMw, h.Create)
	return r
}
