package webserver

import (
	"github.com/gin-gonic/gin"

	"github.com/mfl-ops/banbot/src/BanApi/config"
	"github.com/mfl-ops/banbot/src/BanBot/components/ledger"
)

func New(cfg config.Config, store *ledger.Store) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, store)
	return g
}
