package endpoints

import (
	"github.com/gin-gonic/gin"

	"github.com/signageflow/signageflow/internal/db"
	"github.com/signageflow/signageflow/internal/http/api"
	"github.com/signageflow/signageflow/internal/http/api/admin/packets"
	"github.com/signageflow/signageflow/internal/model"
)

type DashboardController struct {
	store db.Store
}

// DashboardModule mounts the console landing-page aggregation endpoint.
func DashboardModule(store db.Store) api.Module {
	ctl := &DashboardController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/dashboard", ctl.getDashboard)
	})
}

// GET /api/admin/dashboard
func (d *DashboardController) getDashboard(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screens, err := d.store.CountScreens(ctx.Request.Context(), user.ID)
	if err != nil {
		return nil, api.ErrorFor(err, "could not load dashboard")
	}
	online, err := d.store.CountOnlineScreens(ctx.Request.Context(), user.ID)
	if err != nil {
		return nil, api.ErrorFor(err, "could not load dashboard")
	}
	media, err := d.store.CountMedia(ctx.Request.Context(), user.ID)
	if err != nil {
		return nil, api.ErrorFor(err, "could not load dashboard")
	}

	return packets.DashboardResponse{
		Screens:       screens,
		OnlineScreens: online,
		MediaAssets:   media,
	}, nil
}
