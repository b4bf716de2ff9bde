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
	"github.com/signageflow/signageflow/internal/storage"
)

type MediaController struct {
	store   db.Store
	storage storage.Storage
	metrics *metrics.Metrics
}

// MediaModule mounts all authenticated /media endpoints.
func MediaModule(store db.Store, storageSystem storage.Storage, m *metrics.Metrics) api.Module {
	ctl := &MediaController{store: store, storage: storageSystem, metrics: m}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/media", ctl.listMedia)
		c.POST("/media", ctl.uploadMedia)
		c.GET("/media/:id", ctl.getMedia)
		c.DELETE("/media/:id", ctl.deleteMedia)
	})
}

// GET /api/admin/media
func (m *MediaController) listMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := m.store.ListMedia(ctx.Request.Context(), user.ID)
	if err != nil {
		return nil, api.ErrorFor(err, "could not list media")
	}

	out := make([]packets.MediaResponse, 0, len(all))
	for _, item := range all {
		out = append(out, packets.NewMediaResponse(item))
	}
	return out, nil
}

// POST /api/admin/media
//
// Multipart upload: "file" carries the bytes; an optional "name" field
// overrides the display name and "duration" records the intrinsic duration
// in seconds for videos.
func (m *MediaController) uploadMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "missing file"}
	}

	name := ctx.PostForm("name")
	if name == "" {
		name = fileHeader.Filename
	}

	var duration *int
	if raw := ctx.PostForm("duration"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid duration"}
		}
		duration = &secs
	}

	url, err := m.storage.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to store upload")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store file"}
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = storage.ContentTypeForFilename(fileHeader.Filename)
	}

	media, err := m.store.CreateMedia(ctx.Request.Context(), name, url, fileHeader.Size, mimeType, duration, user.ID)
	if err != nil {
		return nil, api.ErrorFor(err, "could not create media record")
	}

	m.metrics.IncUploads()
	log.Info().Int("media_id", media.ID).Str("mime_type", mimeType).
		Int64("size_bytes", media.SizeBytes).Msg("uploaded media")
	return packets.NewMediaResponse(media), nil
}

// GET /api/admin/media/:id
func (m *MediaController) getMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	media, apiErr := m.ownedMedia(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return packets.NewMediaResponse(media), nil
}

// DELETE /api/admin/media/:id
//
// Playlists that already reference the media keep their snapshots; deletion
// only removes the asset from the library.
func (m *MediaController) deleteMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	media, apiErr := m.ownedMedia(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := m.store.DeleteMedia(ctx.Request.Context(), media.ID); err != nil {
		return nil, api.ErrorFor(err, "could not delete media")
	}
	return gin.H{"deleted": media.ID}, nil
}

func (m *MediaController) ownedMedia(ctx *gin.Context, user *model.User) (model.Media, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return model.Media{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	media, err := m.store.GetMediaByID(ctx.Request.Context(), id)
	if err != nil {
		return model.Media{}, &api.APIError{Code: http.StatusNotFound, Message: "media not found"}
	}
	if media.CreatedBy != user.ID {
		return model.Media{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return media, nil
}
