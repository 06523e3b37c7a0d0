package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mfl-ops/banbot/src/BanBot/bot"
	"github.com/mfl-ops/banbot/src/BanBot/config"
	"github.com/mfl-ops/banbot/src/logging"
	"github.com/mfl-ops/banbot/src/shared/data"
	"gorm.io/gorm"
)

func main() {
	db := data.MustMySQL(getenvDefault("MYSQL_DSN", "banbot:banbot@tcp(127.0.0.1:3306)/banbot"))

	cfg := config.Load(db)
	if err := logging.Setup(cfg.LogDir, "banbot"); err != nil {
		log.Printf("Failed to set up log rotation: %v", err)
	}

	if cfg.Token == "" {
		log.Fatal("discord_token not set in database or environment")
	}
	if cfg.GuildID == "" {
		log.Fatal("guild_id not set in database or environment")
	}

	var playerDB *gorm.DB
	if cfg.PlayerDSN != "" {
		playerDB = data.MustMySQL(cfg.PlayerDSN)
	} else {
		log.Println("PLAYER_MYSQL_DSN not set; player lookup uses channel scan only")
	}

	rdb := data.MustRedis(cfg.RedisURL)

	b, err := bot.New(bot.Config{
		Token:    cfg.Token,
		GuildID:  cfg.GuildID,
		DB:       db,
		PlayerDB: playerDB,
		Redis:    rdb,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	if err := b.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}
	log.Println("BanBot is running. Press CTRL-C to exit.")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	log.Println("Shutting down")
	b.Stop()
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
