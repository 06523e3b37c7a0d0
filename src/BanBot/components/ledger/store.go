package ledger

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxRecentLimit     = 25
	defaultSearchLimit = 20
	addBanAttempts     = 3
)

// Store owns the ban_history table: numbering, inserts, strike accounting
// and the report queries.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&BanRecord{}); err != nil {
		return nil, fmt.Errorf("migrate ban_history: %w", err)
	}
	return &Store{db: db}, nil
}

// AddParams carries one approved submission into the ledger.
type AddParams struct {
	PlayerName   string
	BUID         string
	Offense      string
	Strike       string
	Sanction     string
	Transcript   string
	SubmittedBy  string
	IsUnban      bool
	RelatedBanID *uint
}

// AddBan assigns the next number in the record's series and inserts the row,
// returning the assigned ban number. The series scan runs under SELECT ...
// FOR UPDATE inside a transaction so two concurrent approvals cannot compute
// the same number; the unique index on ban_number is the backstop, with a
// bounded retry on conflict. If the series scan itself fails the insert
// still proceeds with a timestamp-derived "TS-" number so a moderation
// decision is never blocked on numbering.
func (s *Store) AddBan(p AddParams) (string, error) {
	var lastErr error
	for attempt := 0; attempt < addBanAttempts; attempt++ {
		rec := BanRecord{
			PlayerName:   p.PlayerName,
			BUID:         p.BUID,
			Offense:      p.Offense,
			Strike:       p.Strike,
			Sanction:     p.Sanction,
			Transcript:   p.Transcript,
			SubmittedBy:  p.SubmittedBy,
			IsUnban:      p.IsUnban,
			RelatedBanID: p.RelatedBanID,
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			numbers, err := seriesNumbers(tx, p.IsUnban)
			if err != nil {
				rec.BanNumber = fallbackNumber(time.Now(), p.IsUnban)
				log.Printf("ledger: number generation failed, falling back to %s: %v", rec.BanNumber, err)
			} else {
				rec.BanNumber = formatNumber(nextInSeries(numbers, p.IsUnban), p.IsUnban)
			}
			return tx.Create(&rec).Error
		})
		if err == nil {
			log.Printf("ledger: recorded %s for %s", rec.BanNumber, p.PlayerName)
			return rec.BanNumber, nil
		}

		lastErr = err
		if !isDuplicateKeyError(err) {
			break
		}
		log.Printf("ledger: ban number %s raced, retrying", rec.BanNumber)
	}
	return "", fmt.Errorf("add ban for %s: %w", p.PlayerName, lastErr)
}

func seriesNumbers(tx *gorm.DB, isUnban bool) ([]string, error) {
	q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Model(&BanRecord{})
	if isUnban {
		q = q.Where("ban_number LIKE ?", unbanPrefix+"%")
	} else {
		q = q.Where("ban_number NOT LIKE ?", unbanPrefix+"%")
	}

	var numbers []string
	if err := q.Pluck("ban_number", &numbers).Error; err != nil {
		return nil, err
	}
	return numbers, nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

// RemoveStrike marks the targeted non-unban record's strike as removed.
// A false return means no matching record, which is a normal outcome.
func (s *Store) RemoveStrike(banNumber string) (bool, error) {
	result := s.db.Model(&BanRecord{}).
		Where("ban_number = ? AND is_unban = ?", banNumber, false).
		Update("strike_removed", true)
	if result.Error != nil {
		return false, fmt.Errorf("remove strike %s: %w", banNumber, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// PlayerHistory returns every record for a BUID, newest first.
func (s *Store) PlayerHistory(buid string) ([]BanRecord, error) {
	var records []BanRecord
	err := s.db.Where("buid = ?", buid).
		Order("timestamp DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("player history %s: %w", buid, err)
	}
	return records, nil
}

// ActiveStrikeCount counts a player's strikes, excluding unbans, removed
// strikes and the Custom/UNBAN markers.
func (s *Store) ActiveStrikeCount(buid string) (int, error) {
	var count int64
	err := s.db.Model(&BanRecord{}).
		Where("buid = ? AND is_unban = ? AND strike_removed = ? AND strike NOT IN ?",
			buid, false, false, []string{StrikeCustom, StrikeUnban}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("strike count %s: %w", buid, err)
	}
	return int(count), nil
}

// Recent returns the latest submissions, capped at 25.
func (s *Store) Recent(limit int) ([]BanRecord, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	var records []BanRecord
	err := s.db.Order("timestamp DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("recent bans: %w", err)
	}
	return records, nil
}

// ByNumber fetches a single record, or nil when the number is unknown.
func (s *Store) ByNumber(banNumber string) (*BanRecord, error) {
	var rec BanRecord
	err := s.db.Where("ban_number = ?", banNumber).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ban %s: %w", banNumber, err)
	}
	return &rec, nil
}

// Search matches term case-insensitively against player name, BUID, ban
// number and offense text.
func (s *Store) Search(term string, limit int) ([]BanRecord, error) {
	if limit < 1 || limit > maxRecentLimit {
		limit = defaultSearchLimit
	}
	pattern := "%" + term + "%"

	var records []BanRecord
	err := s.db.Where(
		"player_name LIKE ? OR buid LIKE ? OR ban_number LIKE ? OR offense LIKE ?",
		pattern, pattern, pattern, pattern).
		Order("timestamp DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	return records, nil
}

// RepeatOffenders groups non-unban records per player, most-banned first.
func (s *Store) RepeatOffenders(minBans int) ([]RepeatOffender, error) {
	if minBans < 2 {
		minBans = 2
	}

	var rows []RepeatOffender
	err := s.db.Model(&BanRecord{}).
		Select(`buid, player_name, COUNT(*) AS total_bans,
			SUM(CASE WHEN strike_removed = FALSE AND strike NOT IN ('Custom','UNBAN') THEN 1 ELSE 0 END) AS active_strikes`).
		Where("is_unban = ?", false).
		Group("buid, player_name").
		Having("total_bans >= ?", minBans).
		Order("total_bans DESC, active_strikes DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("repeat offenders: %w", err)
	}
	return rows, nil
}

// Stats collects the ledger-wide counters.
func (s *Store) Stats() (*Statistics, error) {
	var stats Statistics
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalBans, s.db.Model(&BanRecord{}).Where("is_unban = ?", false)},
		{&stats.TotalUnbans, s.db.Model(&BanRecord{}).Where("is_unban = ?", true)},
		{&stats.ActiveStrikes, s.db.Model(&BanRecord{}).
			Where("is_unban = ? AND strike_removed = ? AND strike NOT IN ?",
				false, false, []string{StrikeCustom, StrikeUnban})},
		{&stats.BansThisMonth, s.db.Model(&BanRecord{}).
			Where("is_unban = ? AND timestamp >= ?", false, time.Now().AddDate(0, -1, 0))},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("statistics: %w", err)
		}
	}

	err := s.db.Model(&BanRecord{}).
		Where("is_unban = ?", false).
		Distinct("buid").
		Count(&stats.UniquePlayersBanned).Error
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	return &stats, nil
}

// Delete removes a record by ban number. Numbers are never reissued, so a
// delete leaves a permanent gap in the series.
func (s *Store) Delete(banNumber string) (bool, error) {
	result := s.db.Where("ban_number = ?", banNumber).Delete(&BanRecord{})
	if result.Error != nil {
		return false, fmt.Errorf("delete ban %s: %w", banNumber, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Ping verifies the backing connection, for health checks.
func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
