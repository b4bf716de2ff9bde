package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/signageflow/signageflow/internal/config"
	"github.com/signageflow/signageflow/internal/db"
	"github.com/signageflow/signageflow/internal/metrics"
	"github.com/signageflow/signageflow/internal/notify"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setLogLevel(cfg.LogLevel)

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	defer conn.Close()

	if err := db.RunMigrations(conn, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	store := db.NewStore(conn)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	var mqttPub notify.Publisher
	if cfg.MQTTBrokerURL != "" {
		pub, err := notify.NewMQTTPublisher(cfg.MQTTBrokerURL, "signageflow-server")
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt init failed")
		}
		defer pub.Close()
		mqttPub = pub
		log.Info().Str("broker", cfg.MQTTBrokerURL).Msg("mirroring screen events to MQTT")
	}

	broker := notify.NewBroker(redisClient, mqttPub)
	defer broker.Close()

	m := metrics.New()
	storageSystem := InitStorage(cfg)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	RegisterRoutes(r, cfg, store, storageSystem, broker, m)

	log.Info().Str("address", cfg.ServerAddress).Msg("listening")
	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
