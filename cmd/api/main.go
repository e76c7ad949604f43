/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/JoshuaPurtell/sublinear/internal/config"
    "github.com/JoshuaPurtell/sublinear/internal/graph"
    httpapi "github.com/JoshuaPurtell/sublinear/internal/http"
    "github.com/JoshuaPurtell/sublinear/internal/jobs"
    "github.com/JoshuaPurtell/sublinear/internal/logger"
    "github.com/JoshuaPurtell/sublinear/internal/repo"
    "github.com/JoshuaPurtell/sublinear/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // DB
    db := repo.MustOpen(ctx, cfg.DBPath, log)
    defer db.Close()
    if err := db.Migrate(ctx); err != nil { log.Fatal().Err(err).Msg("migrate failed") }

    repository := repo.NewRepository(db, log)
    seed := repo.SeedDefaults{
        ViewerName:  cfg.SeedViewerName,
        ViewerEmail: cfg.SeedViewerEmail,
        TeamName:    cfg.SeedTeamName,
        TeamKey:     cfg.SeedTeamKey,
    }
    if err := repository.Seed(ctx, seed); err != nil { log.Fatal().Err(err).Msg("seed failed") }

    // Services + schema
    svc := services.NewService(cfg, log, repository)
    schema, err := graph.NewSchema(svc)
    if err != nil { log.Fatal().Err(err).Msg("schema build failed") }

    // HTTP server (Gin)
    router := httpapi.NewRouter(cfg, log, schema)

    // Cron
    cr := jobs.NewCron(cfg, log, db, repository)
    cr.Start()
    defer cr.Stop()

    // graceful shutdown
    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()
    log.Info().Str("addr", cfg.HTTPAddr).Msg("sublinear listening (NOT FOR PRODUCTION USE)")

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
