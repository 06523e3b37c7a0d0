package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mfl-ops/banbot/src/BanApi/config"
	"github.com/mfl-ops/banbot/src/BanBot/components/ledger"
)

func attachRoutes(r *gin.Engine, cfg config.Config, store *ledger.Store) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(cfg.APIKeys, []byte(cfg.JWTSecret))
	reportH := NewReports(store)

	r.GET("/healthz", reportH.Health)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth", authH.Exchange)

		secured := v1.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		secured.GET("/bans", reportH.Recent)
		secured.GET("/bans/:number", reportH.ByNumber)
		secured.GET("/search", reportH.Search)
		secured.GET("/players/:buid/history", reportH.PlayerHistory)
		secured.GET("/players/:buid/strikes", reportH.Strikes)
		secured.GET("/stats", reportH.Stats)
		secured.GET("/repeat-offenders", reportH.RepeatOffenders)
	}
}
