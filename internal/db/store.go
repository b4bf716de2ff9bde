// exposes a Store interface that is passed to API modules and services.
package db

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/signageflow/signageflow/internal/model"
)

type Store interface {
	// user functions
	CreateUser(ctx context.Context, email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)
	UpdateUserProfile(ctx context.Context, id int, email string, name *string) error

	// screen functions
	CreateScreen(ctx context.Context, name string, createdBy int) (model.Screen, error)
	GetScreenByID(ctx context.Context, id int) (model.Screen, error)
	ListScreens(ctx context.Context, createdBy int) ([]model.Screen, error)
	UpdateScreenName(ctx context.Context, id int, name string) error
	DeleteScreen(ctx context.Context, id int) error
	ReplacePlaylist(ctx context.Context, screenID int, items []model.PlaylistItem) error
	SetPairingCode(ctx context.Context, screenID int, code string) error
	RedeemPairingCode(ctx context.Context, code string) (model.Screen, error)
	SetScreenOnline(ctx context.Context, screenID int, online bool) error
	CountScreens(ctx context.Context, createdBy int) (int, error)
	CountOnlineScreens(ctx context.Context, createdBy int) (int, error)

	// media functions
	CreateMedia(ctx context.Context, name, url string, sizeBytes int64, mimeType string, duration *int, createdBy int) (model.Media, error)
	GetMediaByID(ctx context.Context, id int) (model.Media, error)
	ListMedia(ctx context.Context, createdBy int) ([]model.Media, error)
	DeleteMedia(ctx context.Context, id int) error
	CountMedia(ctx context.Context, createdBy int) (int, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	return &pgStore{db: conn}
}
