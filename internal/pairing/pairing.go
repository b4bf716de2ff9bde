// Package pairing implements the one-time code lifecycle that binds an
// unauthenticated display to a screen.
package pairing

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/rs/zerolog/log"

	"github.com/signageflow/signageflow/internal/model"
)

// I and O are left out of the charset to keep codes unambiguous on a TV
// pairing prompt. Codes are stored uppercase and compared case-insensitively.
const (
	codeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength = 6
)

// ScreenStore is the slice of the store the pairing service needs.
type ScreenStore interface {
	GetScreenByID(ctx context.Context, id int) (model.Screen, error)
	SetPairingCode(ctx context.Context, screenID int, code string) error
	RedeemPairingCode(ctx context.Context, code string) (model.Screen, error)
}

type Service struct {
	store ScreenStore
}

func NewService(store ScreenStore) *Service {
	return &Service{store: store}
}

// Issue generates a fresh code and writes it onto the screen record,
// overwriting any previously issued, unredeemed code. Only the screen's
// owner may issue codes.
func (s *Service) Issue(ctx context.Context, screenID, ownerID int) (string, error) {
	screen, err := s.store.GetScreenByID(ctx, screenID)
	if err != nil {
		return "", err
	}
	if screen.CreatedBy != ownerID {
		log.Warn().Int("screen_id", screenID).Int("user_id", ownerID).
			Msg("pairing code requested for non-owned screen")
		return "", model.ErrUnauthorized
	}

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("generate pairing code: %w", err)
	}
	if err := s.store.SetPairingCode(ctx, screenID, code); err != nil {
		return "", err
	}

	log.Info().Int("screen_id", screenID).Msg("issued pairing code")
	return code, nil
}

// Redeem is performed by an unauthenticated display. The store clears the
// code conditionally, so a concurrent redeemer of the same code loses the
// race and sees model.ErrInvalidCode; the code is single-use by construction.
func (s *Service) Redeem(ctx context.Context, code string) (model.Screen, error) {
	if len(code) != CodeLength {
		return model.Screen{}, model.ErrInvalidCode
	}
	screen, err := s.store.RedeemPairingCode(ctx, code)
	if err != nil {
		return model.Screen{}, err
	}
	log.Info().Int("screen_id", screen.ID).Msg("pairing code redeemed")
	return screen, nil
}

func generateCode() (string, error) {
	buf := make([]byte, CodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeChars))))
		if err != nil {
			return "", err
		}
		buf[i] = codeChars[n.Int64()]
	}
	return string(buf), nil
}
