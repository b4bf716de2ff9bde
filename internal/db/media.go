package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/signageflow/signageflow/internal/model"
)

const mediaColumns = `id, name, url, size_bytes, mime_type, duration, created_by, created_at`

func (s *pgStore) CreateMedia(ctx context.Context, name, url string, sizeBytes int64, mimeType string, duration *int, createdBy int) (model.Media, error) {
	var m model.Media
	query := `
	INSERT INTO media
	(name, url, size_bytes, mime_type, duration, created_by, created_at)
	VALUES
	($1,   $2,  $3,         $4,        $5,       $6,         now())
	RETURNING ` + mediaColumns + `;`

	if err := s.db.GetContext(ctx, &m, query,
		name, url, sizeBytes, mimeType, duration, createdBy,
	); err != nil {
		log.Error().Err(err).Msg("failed to create media")
		return model.Media{}, err
	}
	return m, nil
}

func (s *pgStore) GetMediaByID(ctx context.Context, id int) (model.Media, error) {
	var m model.Media
	query := `
	SELECT ` + mediaColumns + `
	FROM media
	WHERE id = $1;`

	err := s.db.GetContext(ctx, &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Media{}, model.ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Int("media_id", id).Msg("failed to get media by id")
	}
	return m, err
}

func (s *pgStore) ListMedia(ctx context.Context, createdBy int) ([]model.Media, error) {
	var all []model.Media
	query := `
	SELECT ` + mediaColumns + `
	FROM media
	WHERE created_by = $1
	ORDER BY id;`
	if err := s.db.SelectContext(ctx, &all, query, createdBy); err != nil {
		log.Error().Err(err).Msg("failed to list media")
		return nil, err
	}
	return all, nil
}

func (s *pgStore) DeleteMedia(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("media_id", id).Msg("failed to delete media")
	}
	return err
}

func (s *pgStore) CountMedia(ctx context.Context, createdBy int) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM media WHERE created_by = $1`, createdBy)
	return n, err
}
