package model

import (
	"strings"
	"time"
)

// Media is an uploaded asset. It is read-only after upload; playback logic
// never mutates it.
type Media struct {
	ID        int       `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	URL       string    `db:"url"        json:"url"`
	SizeBytes int64     `db:"size_bytes" json:"size_bytes"`
	MimeType  string    `db:"mime_type"  json:"mime_type"`
	Duration  *int      `db:"duration"   json:"duration,omitempty"` // seconds, intrinsic
	CreatedBy int       `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AsPlaylistItem snapshots the media into a playlist entry with the given
// display duration (0 means resolve via the default rule at playback time).
func (m Media) AsPlaylistItem(duration int) PlaylistItem {
	if duration <= 0 {
		if m.Duration != nil && *m.Duration > 0 {
			duration = *m.Duration
		} else if !strings.HasPrefix(m.MimeType, "video/") {
			duration = DefaultItemDurationSeconds
		}
	}
	return PlaylistItem{
		MediaID:  m.ID,
		Name:     m.Name,
		URL:      m.URL,
		MimeType: m.MimeType,
		Duration: duration,
	}
}
