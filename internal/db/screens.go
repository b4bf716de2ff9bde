package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/signageflow/signageflow/internal/model"
)

const screenColumns = `id, name, playlist, pairing_code, online, last_seen_at, created_by, created_at, updated_at`

func (s *pgStore) CreateScreen(ctx context.Context, name string, createdBy int) (model.Screen, error) {
	var sc model.Screen
	q := `
	INSERT INTO screens (name, playlist, online, created_by, created_at, updated_at)
	VALUES ($1, '[]'::jsonb, false, $2, now(), now())
	RETURNING ` + screenColumns + `;`
	if err := s.db.GetContext(ctx, &sc, q, name, createdBy); err != nil {
		log.Error().Err(err).Msg("failed to create screen")
		return model.Screen{}, err
	}
	return sc, nil
}

func (s *pgStore) GetScreenByID(ctx context.Context, id int) (model.Screen, error) {
	var sc model.Screen
	err := s.db.GetContext(ctx, &sc, `
		SELECT `+screenColumns+`
		FROM screens
		WHERE id = $1
		`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Screen{}, model.ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("failed to get screen by id")
	}
	return sc, err
}

func (s *pgStore) ListScreens(ctx context.Context, createdBy int) ([]model.Screen, error) {
	var screens []model.Screen
	err := s.db.SelectContext(ctx, &screens, `
		SELECT `+screenColumns+`
		FROM screens
		WHERE created_by = $1
		ORDER BY id
		`, createdBy)
	if err != nil {
		log.Error().Err(err).Msg("failed to list screens")
	}
	return screens, err
}

func (s *pgStore) UpdateScreenName(ctx context.Context, id int, name string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE screens
		SET name = $2,
		updated_at = now()
		WHERE id = $1
		`, id, name)
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("failed to update screen name")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *pgStore) DeleteScreen(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM screens WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("failed to delete screen")
	}
	return err
}

// ReplacePlaylist swaps the whole playlist document in one statement.
// Last writer wins at whole-playlist granularity.
func (s *pgStore) ReplacePlaylist(ctx context.Context, screenID int, items []model.PlaylistItem) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE screens
		SET playlist = $2,
		updated_at = now()
		WHERE id = $1
		`, screenID, model.PlaylistItems(items))
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("failed to replace playlist")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrNotFound
	}
	return nil
}

// SetPairingCode overwrites any previously issued, unredeemed code. At most
// one code is active per screen.
func (s *pgStore) SetPairingCode(ctx context.Context, screenID int, code string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE screens
		SET pairing_code = $2,
		updated_at = now()
		WHERE id = $1
		`, screenID, code)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("failed to set pairing code")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrNotFound
	}
	return nil
}

// RedeemPairingCode atomically clears the code and marks the screen paired,
// but only while the stored code still equals the presented one. Two
// displays racing on the same code therefore resolve to exactly one winner;
// the loser observes no matching row and gets model.ErrInvalidCode.
func (s *pgStore) RedeemPairingCode(ctx context.Context, code string) (model.Screen, error) {
	var sc model.Screen
	err := s.db.GetContext(ctx, &sc, `
		UPDATE screens
		SET pairing_code = NULL,
		online = true,
		last_seen_at = now(),
		updated_at = now()
		WHERE pairing_code IS NOT NULL
		AND upper(pairing_code) = upper($1)
		RETURNING `+screenColumns+`;`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Screen{}, model.ErrInvalidCode
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to redeem pairing code")
		return model.Screen{}, err
	}
	return sc, nil
}

func (s *pgStore) SetScreenOnline(ctx context.Context, screenID int, online bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE screens
		SET online = $2,
		last_seen_at = CASE WHEN $2 THEN now() ELSE last_seen_at END,
		updated_at = now()
		WHERE id = $1
		`, screenID, online)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("failed to set screen online flag")
	}
	return err
}

func (s *pgStore) CountScreens(ctx context.Context, createdBy int) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM screens WHERE created_by = $1`, createdBy)
	return n, err
}

func (s *pgStore) CountOnlineScreens(ctx context.Context, createdBy int) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM screens WHERE created_by = $1 AND online`, createdBy)
	return n, err
}
