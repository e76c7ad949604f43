package jobs

import (
    "context"
    "time"

    "github.com/JoshuaPurtell/sublinear/internal/config"
    "github.com/JoshuaPurtell/sublinear/internal/repo"
    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog"
)

type Cron struct {
    cfg  config.Config
    log  zerolog.Logger
    db   *repo.DB
    repo *repo.Repository
    c    *cron.Cron
}

// NewCron schedules periodic SQLite upkeep: PRAGMA optimize plus a store
// census in the log, so a long-lived dev server stays responsive and
// observable.
func NewCron(cfg config.Config, log zerolog.Logger, db *repo.DB, r *repo.Repository) *Cron {
    c := cron.New()
    cr := &Cron{cfg: cfg, log: log, db: db, repo: r, c: c}
    _, _ = c.AddFunc(cfg.MaintenanceCron, cr.maintain)
    return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) maintain() {
    ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
    defer cancel()
    if err := cr.db.Optimize(ctx); err != nil {
        cr.log.Error().Err(err).Msg("cron: optimize failed")
        return
    }
    counts, err := cr.repo.Counts(ctx)
    if err != nil {
        cr.log.Error().Err(err).Msg("cron: counts failed")
        return
    }
    cr.log.Info().
        Int64("users", counts.Users).
        Int64("teams", counts.Teams).
        Int64("projects", counts.Projects).
        Int64("issues", counts.Issues).
        Int64("comments", counts.Comments).
        Msg("cron: store maintained")
}
