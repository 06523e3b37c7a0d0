package config

import (
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/mfl-ops/banbot/src/shared/data"
)

type Config struct {
	Token     string
	GuildID   string
	MySQLDSN  string
	PlayerDSN string // game profile database; empty disables the DB source
	RedisURL  string
	LogDir    string
}

// Load reads configuration from the settings table with environment
// fallbacks. The DSNs come from the environment only, since they are needed
// before the settings table can be read.
func Load(db *gorm.DB) Config {
	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	token := data.GetSetting("discord_token")
	if token == "" {
		token = os.Getenv("DISCORD_TOKEN")
	}

	guildID := data.GetSetting("guild_id")
	if guildID == "" {
		guildID = os.Getenv("GUILD_ID")
	}

	return Config{
		Token:     token,
		GuildID:   guildID,
		MySQLDSN:  getenv("MYSQL_DSN", "banbot:banbot@tcp(127.0.0.1:3306)/banbot"),
		PlayerDSN: os.Getenv("PLAYER_MYSQL_DSN"),
		RedisURL:  getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		LogDir:    os.Getenv("LOG_DIR"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
