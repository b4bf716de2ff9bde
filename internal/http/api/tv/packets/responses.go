package packets

import "github.com/signageflow/signageflow/internal/model"

// RESPONSES FOR /api/tv/*

// PairResponse is what a display persists as its local binding.
type PairResponse struct {
	ScreenID int    `json:"screen_id"`
	DeviceID string `json:"device_id"`
}

// ScreenResponse is the display's view of its screen: name plus the
// playback-ordered playlist, nothing else.
type ScreenResponse struct {
	ID       int                  `json:"id"`
	Name     string               `json:"name"`
	Playlist []model.PlaylistItem `json:"playlist"`
}
