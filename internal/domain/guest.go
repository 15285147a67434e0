package domain

import "time"

type SpendTier string

const (
	TierBronze SpendTier = "bronze"
	TierSilver SpendTier = "silver"
	TierGold   SpendTier = "gold"
)

// SongQuota is how many songs a table of this tier may play per
// round-robin round.
func (t SpendTier) SongQuota() int {
	switch t {
	case TierGold:
		return 3
	case TierSilver:
		return 2
	default:
		return 1
	}
}

// Guest is one participant session at a table. The DJ pseudo-guest has a
// nil TableID and is grouped under the sentinel table 0 by the ranker.
type Guest struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	Nick       string    `json:"nick" gorm:"uniqueIndex;not null" validate:"required,min=2,max=32"`
	Points     int       `json:"points" gorm:"not null;default:0"`
	Tier       SpendTier `json:"tier" gorm:"type:varchar(8);not null;default:'bronze'"`
	Silenced   bool      `json:"silenced" gorm:"not null;default:false"`
	TableID    *int64    `json:"table_id,omitempty" gorm:"index"`
	LastActive time.Time `json:"last_active"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`

	Table *Table `json:"table,omitempty" gorm:"foreignKey:TableID"`
}

func (Guest) TableName() string { return "guests" }

// BannedNick blocks a nickname from rejoining after an eviction.
type BannedNick struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Nick      string    `json:"nick" gorm:"uniqueIndex;not null"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (BannedNick) TableName() string { return "banned_nicks" }
