package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultItemDurationSeconds is used when a non-video playlist item carries
// no explicit duration. Video items advance on the player's end-of-playback
// signal instead, so their stored duration is advisory only.
const DefaultItemDurationSeconds = 10

// Screen represents a named display target. The playlist column is a JSONB
// document that is always replaced wholesale, never merged.
type Screen struct {
	ID          int           `db:"id"           json:"id"`
	Name        string        `db:"name"         json:"name"`
	Playlist    PlaylistItems `db:"playlist"     json:"playlist"`
	PairingCode *string       `db:"pairing_code" json:"pairing_code,omitempty"`
	Online      bool          `db:"online"       json:"online"`
	LastSeenAt  *time.Time    `db:"last_seen_at" json:"last_seen_at,omitempty"`
	CreatedBy   int           `db:"created_by"   json:"created_by"`
	CreatedAt   time.Time     `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"   json:"updated_at"`
}

// PlaylistItem is a denormalized snapshot of a media record embedded in a
// screen's playlist. Editing the original media later does not touch copies
// already placed in playlists.
type PlaylistItem struct {
	MediaID  int    `json:"media_id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Duration int    `json:"duration"` // seconds
}

// IsVideo reports whether the item advances on an end-of-playback signal
// rather than a timer.
func (it PlaylistItem) IsVideo() bool {
	return strings.HasPrefix(it.MimeType, "video/")
}

// EffectiveDuration resolves the display duration: a non-positive stored
// duration falls back to DefaultItemDurationSeconds.
func (it PlaylistItem) EffectiveDuration() time.Duration {
	secs := it.Duration
	if secs <= 0 {
		secs = DefaultItemDurationSeconds
	}
	return time.Duration(secs) * time.Second
}

// PlaylistItems maps the playlist JSONB column through sqlx.
type PlaylistItems []PlaylistItem

func (p PlaylistItems) Value() (driver.Value, error) {
	if p == nil {
		p = PlaylistItems{}
	}
	return json.Marshal(p)
}

func (p *PlaylistItems) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = PlaylistItems{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into PlaylistItems", src)
	}
}
