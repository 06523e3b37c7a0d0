package ledger

import "time"

// Strike values excluded from active-strike counting.
const (
	StrikeCustom = "Custom"
	StrikeUnban  = "UNBAN"
)

// BanRecord is one row of the ban ledger. Rows are immutable after insert
// except for StrikeRemoved, which the unban flow may set on the original
// ban.
type BanRecord struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	BanNumber     string    `gorm:"column:ban_number;size:20;uniqueIndex;not null"`
	PlayerName    string    `gorm:"column:player_name;size:255;not null"`
	BUID          string    `gorm:"column:buid;size:50;index;not null"`
	Offense       string    `gorm:"type:text;not null"`
	Strike        string    `gorm:"size:50;not null"`
	Sanction      string    `gorm:"type:text;not null"`
	Transcript    string    `gorm:"type:text"`
	SubmittedBy   string    `gorm:"column:submitted_by;size:50;not null"`
	Timestamp     time.Time `gorm:"index;autoCreateTime"`
	IsUnban       bool      `gorm:"column:is_unban;index;default:false"`
	RelatedBanID  *uint     `gorm:"column:related_ban_id"`
	StrikeRemoved bool      `gorm:"column:strike_removed;index;default:false"`
}

func (BanRecord) TableName() string { return "ban_history" }

// CountsTowardStrikes reports whether this record adds to a player's active
// strike total.
func (r BanRecord) CountsTowardStrikes() bool {
	return !r.IsUnban && !r.StrikeRemoved &&
		r.Strike != StrikeCustom && r.Strike != StrikeUnban
}

// RepeatOffender is one row of the repeat-offender report.
type RepeatOffender struct {
	BUID          string `gorm:"column:buid"`
	PlayerName    string `gorm:"column:player_name"`
	TotalBans     int    `gorm:"column:total_bans"`
	ActiveStrikes int    `gorm:"column:active_strikes"`
}

// Statistics summarizes the ledger.
type Statistics struct {
	TotalBans           int64 `json:"totalBans"`
	TotalUnbans         int64 `json:"totalUnbans"`
	ActiveStrikes       int64 `json:"activeStrikes"`
	UniquePlayersBanned int64 `json:"uniquePlayersBanned"`
	BansThisMonth       int64 `json:"bansThisMonth"`
}
