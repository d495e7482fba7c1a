package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/reelcut/reelcut-engine/analytics"
	"github.com/reelcut/reelcut-engine/environment"
	"github.com/reelcut/reelcut-engine/events"
	"github.com/reelcut/reelcut-engine/services/mediainfo"
	"github.com/reelcut/reelcut-engine/store"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	analytics.Init(analytics.Config{
		WriteKey:  environment.GetRudderWriteKey(),
		DataPlane: environment.GetRudderDataPlane(),
	})

	broker := events.NewBroker()

	var media mediainfo.Provider
	if baseURL := environment.GetMediaInfoBaseURL(); baseURL != "" {
		media = mediainfo.NewClient(baseURL)
	} else {
		media = mediainfo.NewStaticProvider()
	}

	engineStore, err := store.New(environment.GetDatabasePath(), logger, broker, media)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open project store")
	}

	router := gin.Default()
	router.Use(corsMiddleware())

	server := &EngineServer{
		store:  engineStore,
		broker: broker,
		logger: logger,
	}
	server.RegisterRoutes(router)

	logger.Info().Str("port", environment.GetPort()).Msg("engine server listening")
	_ = router.Run(":" + environment.GetPort())
}

func corsMiddleware() gin.HandlerFunc {
	origins := environment.GetCORSOrigins()
	if len(origins) == 0 {
		return cors.Default()
	}
	config := cors.DefaultConfig()
	config.AllowOrigins = origins
	return cors.New(config)
}
