package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mediabox/internal/creations"
	"mediabox/internal/directory"
	"mediabox/internal/http/handlers"
	"mediabox/internal/http/httpapi"
	"mediabox/internal/infra"
	"mediabox/internal/providers/cloudinary"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	client := cloudinary.New(cloudinary.Options{
		CloudName:       cfg.CloudName,
		APIKey:          cfg.APIKey,
		APISecret:       cfg.APISecret,
		BaseURL:         cfg.APIBaseURL,
		DeliveryBaseURL: cfg.DeliveryBaseURL,
	})

	dir := directory.New(client, cfg.LibraryTag, logger, nil)

	engine := creations.NewEngine(creations.Options{
		Provider:        client,
		Directory:       dir,
		Logger:          logger,
		LibraryTag:      cfg.LibraryTag,
		PollInterval:    cfg.PollInterval,
		PollMaxAttempts: cfg.PollMaxAttempts,
	})

	app := handlers.NewApp(logger, client, dir, engine, cfg.LibraryTag)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
