package packets

import (
	"time"

	"github.com/signageflow/signageflow/internal/model"
)

// ScreenResponse mirrors model.Screen but flattens times to RFC3339.
type ScreenResponse struct {
	ID          int                  `json:"id"`
	Name        string               `json:"name"`
	Playlist    []model.PlaylistItem `json:"playlist"`
	PairingCode *string              `json:"pairing_code,omitempty"`
	Online      bool                 `json:"online"`
	LastSeenAt  *string              `json:"last_seen_at,omitempty"`
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
}

type MediaResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
	Duration  *int   `json:"duration,omitempty"`
	CreatedAt string `json:"created_at"`
}

type ProfileResponse struct {
	ID        int     `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type PairingCodeResponse struct {
	ScreenID int    `json:"screen_id"`
	Code     string `json:"code"`
}

type DashboardResponse struct {
	Screens       int `json:"screens"`
	OnlineScreens int `json:"online_screens"`
	MediaAssets   int `json:"media_assets"`
}

func NewScreenResponse(s model.Screen) ScreenResponse {
	resp := ScreenResponse{
		ID:          s.ID,
		Name:        s.Name,
		Playlist:    s.Playlist,
		PairingCode: s.PairingCode,
		Online:      s.Online,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   s.UpdatedAt.Format(time.RFC3339),
	}
	if resp.Playlist == nil {
		resp.Playlist = []model.PlaylistItem{}
	}
	if s.LastSeenAt != nil {
		seen := s.LastSeenAt.Format(time.RFC3339)
		resp.LastSeenAt = &seen
	}
	return resp
}

func NewMediaResponse(m model.Media) MediaResponse {
	return MediaResponse{
		ID:        m.ID,
		Name:      m.Name,
		URL:       m.URL,
		SizeBytes: m.SizeBytes,
		MimeType:  m.MimeType,
		Duration:  m.Duration,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
