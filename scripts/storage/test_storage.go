package main

import (
	"log"
	"os"

	"github.com/mfl-ops/banbot/src/BanBot/components/ledger"
	"github.com/mfl-ops/banbot/src/shared/data"
)

func main() {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "banbot:banbot@tcp(127.0.0.1:3306)/banbot"
	}
	db := data.MustMySQL(dsn)

	store, err := ledger.NewStore(db)
	if err != nil {
		log.Fatalf("Failed to open ledger: %v", err)
	}

	if err := store.Ping(); err != nil {
		log.Fatalf("Ping failed: %v", err)
	}
	log.Println("Database reachable")

	stats, err := store.Stats()
	if err != nil {
		log.Fatalf("Error getting statistics: %v", err)
	}
	log.Printf("Ledger statistics:")
	log.Printf("  Total bans: %d", stats.TotalBans)
	log.Printf("  Total unbans: %d", stats.TotalUnbans)
	log.Printf("  Active strikes: %d", stats.ActiveStrikes)
	log.Printf("  Unique players banned: %d", stats.UniquePlayersBanned)
	log.Printf("  Bans this month: %d", stats.BansThisMonth)

	recent, err := store.Recent(5)
	if err != nil {
		log.Fatalf("Error getting recent bans: %v", err)
	}
	log.Printf("Most recent records:")
	for _, rec := range recent {
		marker := "BAN"
		if rec.IsUnban {
			marker = "UNBAN"
		}
		log.Printf("  [%s] %s - %s (%s) %s", marker, rec.BanNumber, rec.PlayerName, rec.Strike, rec.Sanction)
	}

	offenders, err := store.RepeatOffenders(2)
	if err != nil {
		log.Fatalf("Error getting repeat offenders: %v", err)
	}
	log.Printf("Repeat offenders: %d", len(offenders))
	for _, o := range offenders {
		log.Printf("  %s (%s): %d bans, %d active strikes", o.PlayerName, o.BUID, o.TotalBans, o.ActiveStrikes)
	}
}
