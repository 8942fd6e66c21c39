package main

import (
	"os"

	"aspen/config"
	"aspen/di"
	"aspen/helper"
	"aspen/shared/logger"

	"github.com/rs/zerolog/log"
)

const modeWorker = "worker"

// @title Aspen Hotel PMS API
// @version 1.0
// @description Availability, pricing and booking lifecycle for a hotel property management system.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

//go:generate go run github.com/swaggo/swag/cmd/swag init -g ./cmd/app/main.go -d ../../ -o ../../docs
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Runner(cfg, helper.ActionUp); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	if len(os.Args) > 1 && os.Args[1] == modeWorker {
		worker, err := di.InitializeWorker()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize worker")
		}

		worker.Serve()

		return
	}

	http := di.InitializeService()
	http.Serve()
}
