package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mapcollab/boardd/internal/adapters/signal"
	"github.com/mapcollab/boardd/internal/app"
	"github.com/mapcollab/boardd/internal/auth"
	"github.com/mapcollab/boardd/internal/config"
	"github.com/mapcollab/boardd/internal/pins"
)

// SetupRouter wires the REST surface and the board websocket endpoint.
func SetupRouter(ctx context.Context, cfg *config.Config, presence *app.Presence, pinHandler *pins.Handler, authSvc *auth.Service) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.CORSOrigins
	corsCfg.AllowCredentials = true
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")

	api := r.Group("/api")

	// Board occupancy, read-only; membership itself only moves over WS.
	api.GET("/boards", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"boards": presence.Boards.List()})
	})

	api.POST("/auth/verify", auth.VerifyHandler(authSvc))

	api.GET("/pins", pinHandler.List)
	api.POST("/pins", pinHandler.Create)
	api.DELETE("/pins", pinHandler.DeleteAll)

	ctl := signal.NewBoardWSController(presence, cfg.ReadLimit, cfg.PingPeriod)
	api.GET("/ws/board", func(c *gin.Context) {
		ctl.HandleBoard(ctx, c)
	})

	return r
}
