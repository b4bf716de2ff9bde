package endpoints

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/signageflow/signageflow/internal/db"
	"github.com/signageflow/signageflow/internal/http/api"
	"github.com/signageflow/signageflow/internal/http/api/tv/packets"
	"github.com/signageflow/signageflow/internal/metrics"
	"github.com/signageflow/signageflow/internal/model"
	"github.com/signageflow/signageflow/internal/notify"
	"github.com/signageflow/signageflow/internal/pairing"
)

const heartbeatInterval = 30 * time.Second

type TvController struct {
	store   db.Store
	pairing *pairing.Service
	broker  *notify.Broker
	metrics *metrics.Metrics
}

// ScreenModule mounts the display-facing screen endpoints: playlist fetch,
// the per-screen event stream, and the explicit offline signal.
func ScreenModule(store db.Store, broker *notify.Broker, m *metrics.Metrics) api.Module {
	ctl := &TvController{store: store, broker: broker, metrics: m}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PublicGET("/screens/:id", ctl.getScreen)
		c.Raw(http.MethodGet, "/screens/:id/events", ctl.streamEvents)
		c.PublicPOST("/screens/:id/offline", ctl.markOffline)
	})
}

// GET /api/tv/screens/:id
//
// A display re-fetches this once on every (re)connect so it never replays
// a playlist it missed while disconnected.
func (t *TvController) getScreen(ctx *gin.Context) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	screen, err := t.store.GetScreenByID(ctx.Request.Context(), id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}

	playlist := screen.Playlist
	if playlist == nil {
		playlist = model.PlaylistItems{}
	}
	return packets.ScreenResponse{ID: screen.ID, Name: screen.Name, Playlist: playlist}, nil
}

// GET /api/tv/screens/:id/events
//
// Server-sent events scoped to one screen. Connecting marks the screen
// online; the subscription teardown clears the flag again.
func (t *TvController) streamEvents(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if _, err := t.store.GetScreenByID(ctx.Request.Context(), id); err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "screen not found"})
		return
	}

	ctx.Writer.Header().Set("Content-Type", "text/event-stream")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")
	ctx.Writer.Flush()

	client := t.broker.Subscribe(id)

	if err := t.store.SetScreenOnline(ctx.Request.Context(), id, true); err != nil {
		log.Warn().Err(err).Int("screen_id", id).Msg("failed to mark screen online")
	}
	defer func() {
		t.broker.Unsubscribe(client)
		// another display may still hold a stream for this screen
		if t.broker.ClientCount(id) > 0 {
			return
		}
		// the request context is already canceled once the stream ends
		if err := t.store.SetScreenOnline(context.Background(), id, false); err != nil {
			log.Warn().Err(err).Int("screen_id", id).Msg("failed to mark screen offline")
		}
	}()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Request.Context().Done():
			return false
		case <-client.Done:
			return false
		case <-heartbeat.C:
			ctx.SSEvent("heartbeat", time.Now().Unix())
			return true
		case event := <-client.Events:
			data, err := json.Marshal(event)
			if err != nil {
				log.Error().Err(err).Msg("failed to marshal screen event")
				return true
			}
			ctx.SSEvent(event.Type, string(data))
			return event.Type != notify.EventScreenDeleted
		}
	})
}

// POST /api/tv/screens/:id/offline
//
// Explicit disconnect for displays that can signal shutdown.
func (t *TvController) markOffline(ctx *gin.Context) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	if err := t.store.SetScreenOnline(ctx.Request.Context(), id, false); err != nil {
		return nil, api.ErrorFor(err, "could not update screen")
	}
	return gin.H{"screen_id": id, "online": false}, nil
}
