package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/signageflow/signageflow/internal/http/api"
	"github.com/signageflow/signageflow/internal/http/api/tv/packets"
	"github.com/signageflow/signageflow/internal/metrics"
	"github.com/signageflow/signageflow/internal/model"
	"github.com/signageflow/signageflow/internal/pairing"
)

// PairingModule mounts the unauthenticated redemption endpoint.
func PairingModule(pairingSvc *pairing.Service, m *metrics.Metrics) api.Module {
	ctl := &TvController{pairing: pairingSvc, metrics: m}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PublicPOST("/pair", ctl.pair)
	})
}

// POST /api/tv/pair
//
// Redeems a code exactly once: the store clears it atomically, so a second
// display presenting the same code gets an invalid-code failure and stays
// unbound.
func (t *TvController) pair(ctx *gin.Context) (any, *api.APIError) {
	var request packets.PairRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	screen, err := t.pairing.Redeem(ctx.Request.Context(), request.PairingCode)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCode) {
			t.metrics.IncPairingRedeem("invalid")
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "invalid pairing code"}
		}
		t.metrics.IncPairingRedeem("error")
		return nil, api.ErrorFor(err, "could not redeem pairing code")
	}

	deviceID := xid.New().String()
	t.metrics.IncPairingRedeem("ok")
	log.Info().Int("screen_id", screen.ID).Str("device_id", deviceID).Msg("display paired")

	return packets.PairResponse{ScreenID: screen.ID, DeviceID: deviceID}, nil
}
