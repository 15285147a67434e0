package queue

import "karaoke/internal/domain"

type AdmitSongRequest struct {
	TrackID         string `json:"track_id" binding:"required"`
	Title           string `json:"title" binding:"required"`
	DurationSeconds int    `json:"duration_seconds" binding:"required,gt=0"`
}

type ReorderRequest struct {
	SongIDs []int64 `json:"song_ids" binding:"required"`
}

// QueueView is what viewers render: the song on stage plus the upcoming
// list in fairness order.
type QueueView struct {
	NowPlaying *domain.Song  `json:"now_playing"`
	Upcoming   []domain.Song `json:"upcoming"`
}

type WaitEstimate struct {
	SongID      int64 `json:"song_id"`
	WaitSeconds int   `json:"wait_seconds"`
}
