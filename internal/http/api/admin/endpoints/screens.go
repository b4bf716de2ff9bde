package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/signageflow/signageflow/internal/db"
	"github.com/signageflow/signageflow/internal/http/api"
	"github.com/signageflow/signageflow/internal/http/api/admin/packets"
	"github.com/signageflow/signageflow/internal/metrics"
	"github.com/signageflow/signageflow/internal/model"
	"github.com/signageflow/signageflow/internal/notify"
	"github.com/signageflow/signageflow/internal/pairing"
	"github.com/signageflow/signageflow/internal/playlist"
)

type ScreenController struct {
	store   db.Store
	pairing *pairing.Service
	broker  *notify.Broker
	metrics *metrics.Metrics
}

// ScreenModule mounts all authenticated /screens endpoints, including the
// per-screen playlist editing operations.
func ScreenModule(store db.Store, pairingSvc *pairing.Service, broker *notify.Broker, m *metrics.Metrics) api.Module {
	ctl := &ScreenController{store: store, pairing: pairingSvc, broker: broker, metrics: m}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/screens", ctl.listScreens)
		c.POST("/screens", ctl.createScreen)
		c.GET("/screens/:id", ctl.getScreen)
		c.PUT("/screens/:id", ctl.updateScreen)
		c.DELETE("/screens/:id", ctl.deleteScreen)

		// pairing
		c.POST("/screens/:id/pairing_code", ctl.issuePairingCode)

		// playlist editing
		c.GET("/screens/:id/playlist", ctl.getPlaylist)
		c.PUT("/screens/:id/playlist", ctl.replacePlaylist)
		c.POST("/screens/:id/playlist/items", ctl.appendPlaylistItem)
		c.DELETE("/screens/:id/playlist/items/:index", ctl.removePlaylistItem)
		c.POST("/screens/:id/playlist/shuffle", ctl.shufflePlaylist)
	})
}

// ownedScreen resolves :id and enforces ownership.
func (t *ScreenController) ownedScreen(ctx *gin.Context, user *model.User) (model.Screen, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return model.Screen{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	screen, err := t.store.GetScreenByID(ctx.Request.Context(), id)
	if err != nil {
		return model.Screen{}, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	if screen.CreatedBy != user.ID {
		log.Warn().Int("user_id", user.ID).Int("screen_id", id).
			Msg("user attempted to access non-owned screen")
		return model.Screen{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return screen, nil
}

// GET /api/admin/screens
func (t *ScreenController) listScreens(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := t.store.ListScreens(ctx.Request.Context(), user.ID)
	if err != nil {
		return nil, api.ErrorFor(err, "could not list screens")
	}

	out := make([]packets.ScreenResponse, 0, len(all))
	for _, s := range all {
		out = append(out, packets.NewScreenResponse(s))
	}
	return out, nil
}

// POST /api/admin/screens
func (t *ScreenController) createScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateScreenRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	screen, err := t.store.CreateScreen(ctx.Request.Context(), request.Name, user.ID)
	if err != nil {
		return nil, api.ErrorFor(err, "could not create screen")
	}

	log.Info().Int("screen_id", screen.ID).Int("user_id", user.ID).Msg("created screen")
	return packets.NewScreenResponse(screen), nil
}

// GET /api/admin/screens/:id
func (t *ScreenController) getScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screen, apiErr := t.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return packets.NewScreenResponse(screen), nil
}

// PUT /api/admin/screens/:id
func (t *ScreenController) updateScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screen, apiErr := t.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.UpdateScreenRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := t.store.UpdateScreenName(ctx.Request.Context(), screen.ID, request.Name); err != nil {
		return nil, api.ErrorFor(err, "could not update screen")
	}

	updated, err := t.store.GetScreenByID(ctx.Request.Context(), screen.ID)
	if err != nil {
		return nil, api.ErrorFor(err, "could not load updated screen")
	}
	return packets.NewScreenResponse(updated), nil
}

// DELETE /api/admin/screens/:id
func (t *ScreenController) deleteScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screen, apiErr := t.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := t.store.DeleteScreen(ctx.Request.Context(), screen.ID); err != nil {
		return nil, api.ErrorFor(err, "could not delete screen")
	}

	if err := t.broker.PublishScreenDeleted(ctx.Request.Context(), screen.ID); err != nil {
		log.Warn().Err(err).Int("screen_id", screen.ID).Msg("failed to notify screen deletion")
	}
	return gin.H{"deleted": screen.ID}, nil
}

// POST /api/admin/screens/:id/pairing_code
func (t *ScreenController) issuePairingCode(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	code, err := t.pairing.Issue(ctx.Request.Context(), id, user.ID)
	if err != nil {
		return nil, api.ErrorFor(err, "could not issue pairing code")
	}

	t.metrics.IncPairingIssued()
	return packets.PairingCodeResponse{ScreenID: id, Code: code}, nil
}

// GET /api/admin/screens/:id/playlist
func (t *ScreenController) getPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screen, apiErr := t.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	items := screen.Playlist
	if items == nil {
		items = model.PlaylistItems{}
	}
	return gin.H{"screen_id": screen.ID, "items": items}, nil
}

// PUT /api/admin/screens/:id/playlist
//
// Commits the console's whole working playlist in one atomic replace. Items
// are re-snapshotted from their media records server-side so a stale
// console copy cannot resurrect edited media attributes.
func (t *ScreenController) replacePlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screen, apiErr := t.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.ReplacePlaylistRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	editor := playlist.NewEditor(screen.ID, nil, t.store)
	for _, entry := range request.Items {
		item, apiErr := t.snapshotItem(ctx, user, entry.MediaID, entry.Duration)
		if apiErr != nil {
			return nil, apiErr
		}
		editor.Append(item)
	}

	return t.commit(ctx, editor, screen.ID)
}

// POST /api/admin/screens/:id/playlist/items
func (t *ScreenController) appendPlaylistItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screen, apiErr := t.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.AppendPlaylistItemRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	item, apiErr := t.snapshotItem(ctx, user, request.MediaID, request.Duration)
	if apiErr != nil {
		return nil, apiErr
	}

	editor := playlist.NewEditor(screen.ID, screen.Playlist, t.store)
	editor.Append(item)
	return t.commit(ctx, editor, screen.ID)
}

// DELETE /api/admin/screens/:id/playlist/items/:index
func (t *ScreenController) removePlaylistItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screen, apiErr := t.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil || index < 0 || index >= len(screen.Playlist) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid index"}
	}

	editor := playlist.NewEditor(screen.ID, screen.Playlist, t.store)
	editor.RemoveAt(index)
	return t.commit(ctx, editor, screen.ID)
}

// POST /api/admin/screens/:id/playlist/shuffle
func (t *ScreenController) shufflePlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screen, apiErr := t.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	editor := playlist.NewEditor(screen.ID, screen.Playlist, t.store)
	editor.Shuffle()
	return t.commit(ctx, editor, screen.ID)
}

// snapshotItem copies the media's current attributes into a playlist entry.
func (t *ScreenController) snapshotItem(ctx *gin.Context, user *model.User, mediaID, duration int) (model.PlaylistItem, *api.APIError) {
	media, err := t.store.GetMediaByID(ctx.Request.Context(), mediaID)
	if err != nil {
		return model.PlaylistItem{}, &api.APIError{Code: http.StatusNotFound, Message: "media not found"}
	}
	if media.CreatedBy != user.ID {
		return model.PlaylistItem{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return media.AsPlaylistItem(duration), nil
}

// commit persists the editor's working copy and announces the new playlist
// to any subscribed display.
func (t *ScreenController) commit(ctx *gin.Context, editor *playlist.Editor, screenID int) (any, *api.APIError) {
	if err := editor.Commit(ctx.Request.Context()); err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("playlist commit failed")
		return nil, api.ErrorFor(err, "could not save playlist")
	}

	items := editor.Items()
	if err := t.broker.PublishPlaylist(ctx.Request.Context(), screenID, items); err != nil {
		log.Warn().Err(err).Int("screen_id", screenID).Msg("failed to publish playlist update")
	}

	t.metrics.IncPlaylistCommits()
	log.Info().Int("screen_id", screenID).Int("items", len(items)).Msg("committed playlist")
	return gin.H{"screen_id": screenID, "items": items}, nil
}
