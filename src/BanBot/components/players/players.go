// Package players looks up player candidates for the ban form. The primary
// source is the game's read-only profile database; when it has no match the
// workflow falls back to scanning guild channels for posted player lines.
package players

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

const maxResults = 15

// Player is one lookup candidate.
type Player struct {
	Name       string
	Level      int
	LastPlayed string
	BUID       string
}

// Source finds players by partial name. Implementations return an empty
// slice, not an error, when nothing matches.
type Source interface {
	FindPlayers(term string) ([]Player, error)
}

// Chain tries each source in order and returns the first non-empty result.
// Source errors degrade to an empty result with a log notice; only the
// final source's error is surfaced when everything failed.
type Chain []Source

func (c Chain) FindPlayers(term string) ([]Player, error) {
	var lastErr error
	for _, src := range c {
		found, err := src.FindPlayers(term)
		if err != nil {
			log.Printf("players: source failed for %q, trying next: %v", term, err)
			lastErr = err
			continue
		}
		if len(found) > 0 {
			return found, nil
		}
		lastErr = nil
	}
	return nil, lastErr
}

// profile mirrors the game database's PlayerProfiles table. Read-only.
type profile struct {
	Name       string     `gorm:"column:Name"`
	Level      int        `gorm:"column:Level"`
	LastPlayed *time.Time `gorm:"column:LastPlayed"`
	BohemiaUID string     `gorm:"column:BohemiaUID"`
}

func (profile) TableName() string { return "PlayerProfiles" }

// DBSource queries the game database for player profiles.
type DBSource struct {
	db *gorm.DB
}

func NewDBSource(db *gorm.DB) *DBSource {
	return &DBSource{db: db}
}

func (s *DBSource) FindPlayers(term string) ([]Player, error) {
	var rows []profile
	err := s.db.
		Where("LOWER(Name) LIKE LOWER(?)", "%"+term+"%").
		Order("LastPlayed DESC").
		Limit(maxResults).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find players %q: %w", term, err)
	}

	found := make([]Player, 0, len(rows))
	for _, row := range rows {
		found = append(found, Player{
			Name:       row.Name,
			Level:      row.Level,
			LastPlayed: describeLastPlayed(row.LastPlayed),
			BUID:       row.BohemiaUID,
		})
	}
	return found, nil
}

func describeLastPlayed(t *time.Time) string {
	if t == nil {
		return "Never"
	}
	hours := int(time.Since(*t).Hours())
	if hours < 0 {
		hours = 0
	}
	return fmt.Sprintf("%dH", hours)
}
