package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaylistItemIsVideo(t *testing.T) {
	assert.True(t, PlaylistItem{MimeType: "video/mp4"}.IsVideo())
	assert.True(t, PlaylistItem{MimeType: "video/webm"}.IsVideo())
	assert.False(t, PlaylistItem{MimeType: "image/png"}.IsVideo())
	assert.False(t, PlaylistItem{MimeType: "text/html"}.IsVideo())
	assert.False(t, PlaylistItem{}.IsVideo())
}

func TestPlaylistItemEffectiveDuration(t *testing.T) {
	t.Run("explicit duration wins", func(t *testing.T) {
		it := PlaylistItem{MimeType: "image/png", Duration: 25}
		assert.Equal(t, 25*time.Second, it.EffectiveDuration())
	})

	t.Run("zero falls back to the default", func(t *testing.T) {
		it := PlaylistItem{MimeType: "image/png"}
		assert.Equal(t, time.Duration(DefaultItemDurationSeconds)*time.Second, it.EffectiveDuration())
	})

	t.Run("negative falls back to the default", func(t *testing.T) {
		it := PlaylistItem{MimeType: "image/png", Duration: -3}
		assert.Equal(t, time.Duration(DefaultItemDurationSeconds)*time.Second, it.EffectiveDuration())
	})
}

func TestPlaylistItemsScan(t *testing.T) {
	t.Run("scans a jsonb byte slice", func(t *testing.T) {
		var p PlaylistItems
		err := p.Scan([]byte(`[{"media_id":1,"name":"a","url":"/a.png","mime_type":"image/png","duration":5}]`))
		require.NoError(t, err)
		require.Len(t, p, 1)
		assert.Equal(t, "a", p[0].Name)
		assert.Equal(t, 5, p[0].Duration)
	})

	t.Run("nil column scans to an empty playlist", func(t *testing.T) {
		var p PlaylistItems
		require.NoError(t, p.Scan(nil))
		assert.NotNil(t, p)
		assert.Len(t, p, 0)
	})

	t.Run("rejects unsupported source types", func(t *testing.T) {
		var p PlaylistItems
		assert.Error(t, p.Scan(42))
	})
}

func TestPlaylistItemsValue(t *testing.T) {
	t.Run("nil playlist encodes as an empty array", func(t *testing.T) {
		var p PlaylistItems
		v, err := p.Value()
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(v.([]byte)))
	})

	t.Run("round-trips through scan", func(t *testing.T) {
		orig := PlaylistItems{{MediaID: 2, Name: "clip", URL: "/clip.mp4", MimeType: "video/mp4"}}
		v, err := orig.Value()
		require.NoError(t, err)

		var back PlaylistItems
		require.NoError(t, back.Scan(v))
		assert.Equal(t, orig, back)
	})
}
