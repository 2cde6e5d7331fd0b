// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package main

import (
	"context"
	"fmt"

	"github.com/pmdworks/pmd-backend/internal/bruteforce"
	"github.com/pmdworks/pmd-backend/internal/config"
	"github.com/pmdworks/pmd-backend/internal/csrf"
	handlerHTTP "github.com/pmdworks/pmd-backend/internal/handler/http"
	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/internal/metrics"
	"github.com/pmdworks/pmd-backend/internal/server"
	"github.com/pmdworks/pmd-backend/internal/service"
	"github.com/pmdworks/pmd-backend/internal/store"
	"github.com/pmdworks/pmd-backend/internal/workers"
	"github.com/pmdworks/pmd-backend/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("pmd-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Str("address", cfg.Server.HTTPAddress).Str("environment", cfg.App.Environment).Msg("received configs")

	metrics.Init()

	ctx := context.Background()
	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}

	if err = migrations.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("error running migrations")
	}

	repos := store.NewRepositories(db, log)
	services := service.NewServices(repos, cfg, log)

	// the bootstrap reconciler would fight test fixtures for the admin
	// account, so the test environment skips it
	if cfg.App.Environment != config.EnvTest {
		if err = services.BootstrapService.EnsureAdminUser(ctx); err != nil {
			log.Fatal().Err(err).Msg("error reconciling admin user")
		}
	}

	guard := bruteforce.New(cfg.BruteForce.MaxAttempts, cfg.BruteForce.WindowDuration, cfg.BruteForce.BlockDuration)
	csrfService := csrf.New(cfg.App.CSRFSecret, cfg.App.CSRFTokenMaxAge)

	handler := handlerHTTP.NewHandler(services, guard, csrfService, cfg, log)

	background := workers.NewWorkers(guard, cfg.Workers, log)
	background.Run()
	defer background.Stop()

	srv, err := server.NewServer(handler.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
