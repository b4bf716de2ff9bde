package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestMediaAsPlaylistItem(t *testing.T) {
	base := Media{ID: 3, Name: "promo", URL: "/uploads/promo.png", MimeType: "image/png"}

	t.Run("copies the media fields", func(t *testing.T) {
		it := base.AsPlaylistItem(15)
		assert.Equal(t, 3, it.MediaID)
		assert.Equal(t, "promo", it.Name)
		assert.Equal(t, "/uploads/promo.png", it.URL)
		assert.Equal(t, "image/png", it.MimeType)
		assert.Equal(t, 15, it.Duration)
	})

	t.Run("explicit duration beats the intrinsic one", func(t *testing.T) {
		m := base
		m.Duration = intPtr(60)
		assert.Equal(t, 15, m.AsPlaylistItem(15).Duration)
	})

	t.Run("falls back to the intrinsic duration", func(t *testing.T) {
		m := base
		m.Duration = intPtr(60)
		assert.Equal(t, 60, m.AsPlaylistItem(0).Duration)
	})

	t.Run("image without any duration gets the default", func(t *testing.T) {
		assert.Equal(t, DefaultItemDurationSeconds, base.AsPlaylistItem(0).Duration)
	})

	t.Run("video without any duration stays at zero", func(t *testing.T) {
		m := Media{ID: 4, Name: "clip", URL: "/clip.mp4", MimeType: "video/mp4"}
		assert.Equal(t, 0, m.AsPlaylistItem(0).Duration)
		assert.True(t, m.AsPlaylistItem(0).IsVideo())
	})
}
