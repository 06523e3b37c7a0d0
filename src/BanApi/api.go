package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfl-ops/banbot/src/BanApi/config"
	"github.com/mfl-ops/banbot/src/BanApi/webserver"
	"github.com/mfl-ops/banbot/src/BanBot/components/ledger"
	"github.com/mfl-ops/banbot/src/logging"
	"github.com/mfl-ops/banbot/src/shared/data"
)

func main() {
	if err := logging.Setup(os.Getenv("LOG_DIR"), "banapi"); err != nil {
		log.Printf("Failed to set up log rotation: %v", err)
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "banbot:banbot@tcp(127.0.0.1:3306)/banbot"
	}
	db := data.MustMySQL(mysqlDSN)

	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	cfg := config.Load(db)
	if cfg.JWTSecret == "" {
		log.Fatal("No JWT secret configured (set jwt_secret in settings or JWT_SECRET)")
	}
	if len(cfg.APIKeys) == 0 {
		log.Fatal("No API keys configured (set api_keys in settings or API_KEYS)")
	}

	store, err := ledger.NewStore(db)
	if err != nil {
		log.Fatalf("ledger: %v", err)
	}

	router := webserver.New(cfg, store)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	log.Printf("BanBot API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
