package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/signageflow/signageflow/internal/config"
	"github.com/signageflow/signageflow/internal/db"
	"github.com/signageflow/signageflow/internal/http/api"
	adminapi "github.com/signageflow/signageflow/internal/http/api/admin/endpoints"
	tvapi "github.com/signageflow/signageflow/internal/http/api/tv/endpoints"
	"github.com/signageflow/signageflow/internal/metrics"
	"github.com/signageflow/signageflow/internal/notify"
	"github.com/signageflow/signageflow/internal/pairing"
	"github.com/signageflow/signageflow/internal/storage"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, store db.Store, storageSystem storage.Storage, broker *notify.Broker, m *metrics.Metrics) {
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	pairingSvc := pairing.NewService(store)

	// public console endpoints (token issuance)
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
	},
		adminapi.AuthPublicModule(cfg.JWTSecret, store),
	)

	// authenticated console endpoints
	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Store:     store,
	},
		adminapi.ScreenModule(store, pairingSvc, broker, m),
		adminapi.MediaModule(store, storageSystem, m),
		adminapi.DashboardModule(store),
		adminapi.AuthSessionModule(cfg.JWTSecret, store),
	)

	// display endpoints stay unauthenticated; pairing is their gate
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/tv",
	},
		tvapi.PairingModule(pairingSvc, m),
		tvapi.ScreenModule(store, broker, m),
	)

	r.GET("/metrics", gin.WrapH(m.Handler(func() {
		m.SetConnectedDisplays(broker.TotalClients())
	})))

	// locally stored uploads
	if !cfg.UseSpaces {
		r.Static("/uploads", "./uploads")
	}
}
