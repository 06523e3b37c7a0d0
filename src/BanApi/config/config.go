package config

import (
	"os"
	"strings"

	"github.com/mfl-ops/banbot/src/shared/data"
	"gorm.io/gorm"
)

type Config struct {
	MySQLDSN  string
	JWTSecret string
	APIKeys   []string
	Port      string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads API configuration from the settings table with environment
// fallbacks. The DSN is env-only since it is needed before the table exists.
func Load(db *gorm.DB) Config {
	cfg := Config{
		MySQLDSN:  getenv("MYSQL_DSN", "banbot:banbot@tcp(127.0.0.1:3306)/banbot"),
		JWTSecret: data.GetSetting("jwt_secret"),
		Port:      getenv("PORT", "8080"),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}

	keys := data.GetSetting("api_keys")
	if keys == "" {
		keys = os.Getenv("API_KEYS")
	}
	for _, k := range strings.Split(keys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			cfg.APIKeys = append(cfg.APIKeys, k)
		}
	}

	return cfg
}
