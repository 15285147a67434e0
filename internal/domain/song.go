package domain

import "time"

type SongStatus string

const (
	SongPending     SongStatus = "pending"
	SongPendingLazy SongStatus = "pending_lazy"
	SongApproved    SongStatus = "approved"
	SongPlaying     SongStatus = "playing"
	SongSung        SongStatus = "sung"
	SongRejected    SongStatus = "rejected"
)

// Terminal reports whether a song may never transition again.
func (s SongStatus) Terminal() bool {
	return s == SongSung || s == SongRejected
}

// ActiveStatuses are the states that count for duplicate suppression:
// a table must not hold the same track twice while one copy is still live.
var ActiveStatuses = []SongStatus{SongPending, SongPendingLazy, SongApproved, SongPlaying}

// Song is one requested performance. TableID is denormalized from the
// requesting guest so the duplicate-track constraint and the fairness
// grouping work without joins; nil means the DJ pseudo-guest.
type Song struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	TrackID         string     `json:"track_id" gorm:"index;not null" validate:"required"`
	Title           string     `json:"title"`
	DurationSeconds int        `json:"duration_seconds" gorm:"not null;default:0"`
	Status          SongStatus `json:"status" gorm:"type:varchar(16);index;not null;default:'pending'"`
	// ManualOrder is the operator override rank; lower plays earlier,
	// nil means automatic ordering.
	ManualOrder *int       `json:"manual_order,omitempty"`
	Score       *int       `json:"score,omitempty"`
	GuestID     int64      `json:"guest_id" gorm:"index;not null"`
	TableID     *int64     `json:"table_id,omitempty" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`

	Guest *Guest `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
}

func (Song) TableName() string { return "songs" }
