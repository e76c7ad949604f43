package repo

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/rs/zerolog"
    _ "modernc.org/sqlite"
)

type DB struct {
    SQL *sql.DB
    log zerolog.Logger
}

// Open opens (or creates) the SQLite database at path. WAL and foreign keys
// are switched on through the driver's _pragma DSN options; busy_timeout keeps
// concurrent request goroutines waiting on the write lock instead of failing.
func Open(ctx context.Context, path string, log zerolog.Logger) (*DB, error) {
    dsn := path
    if strings.Contains(dsn, "?") {
        dsn += "&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
    } else {
        dsn += "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
    }
    db, err := sql.Open("sqlite", dsn)
    if err != nil { return nil, err }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()
    if err := db.PingContext(ctx2); err != nil {
        db.Close()
        return nil, err
    }
    return &DB{SQL: db, log: log}, nil
}

func MustOpen(ctx context.Context, path string, log zerolog.Logger) *DB {
    d, err := Open(ctx, path, log)
    if err != nil { log.Fatal().Err(err).Str("path", path).Msg("db open failed") }
    return d
}

func (d *DB) Close() { d.SQL.Close() }

// Migrate is safe to run against an already-initialized store.
func (d *DB) Migrate(ctx context.Context) error {
    stmts := []string{
        `CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            created_at TEXT NOT NULL
        )`,
        `CREATE TABLE IF NOT EXISTS teams (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            key TEXT NOT NULL UNIQUE,
            created_at TEXT NOT NULL
        )`,
        `CREATE TABLE IF NOT EXISTS team_members (
            team_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            PRIMARY KEY(team_id, user_id)
        )`,
        `CREATE TABLE IF NOT EXISTS workflow_states (
            id TEXT PRIMARY KEY,
            team_id TEXT NOT NULL,
            name TEXT NOT NULL,
            type TEXT NOT NULL,
            position INTEGER NOT NULL
        )`,
        `CREATE TABLE IF NOT EXISTS projects (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            slug_id TEXT NOT NULL UNIQUE,
            state TEXT,
            archived_at TEXT,
            url TEXT NOT NULL,
            created_at TEXT NOT NULL
        )`,
        `CREATE TABLE IF NOT EXISTS project_teams (
            project_id TEXT NOT NULL,
            team_id TEXT NOT NULL,
            PRIMARY KEY(project_id, team_id)
        )`,
        `CREATE TABLE IF NOT EXISTS issues (
            id TEXT PRIMARY KEY,
            team_id TEXT NOT NULL,
            project_id TEXT,
            number INTEGER NOT NULL,
            identifier TEXT NOT NULL UNIQUE,
            title TEXT NOT NULL,
            description TEXT,
            state_id TEXT NOT NULL,
            assignee_id TEXT,
            archived INTEGER NOT NULL DEFAULT 0,
            url TEXT NOT NULL,
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL
        )`,
        `CREATE TABLE IF NOT EXISTS labels (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL
        )`,
        `CREATE TABLE IF NOT EXISTS issue_labels (
            issue_id TEXT NOT NULL,
            label_id TEXT NOT NULL,
            PRIMARY KEY(issue_id, label_id)
        )`,
        `CREATE TABLE IF NOT EXISTS comments (
            id TEXT PRIMARY KEY,
            issue_id TEXT NOT NULL,
            body TEXT NOT NULL,
            url TEXT NOT NULL,
            created_at TEXT NOT NULL
        )`,
    }
    for _, s := range stmts {
        if _, err := d.SQL.ExecContext(ctx, s); err != nil { return err }
    }
    return nil
}

// Optimize runs SQLite's self-tuning pragma; invoked by the maintenance job.
func (d *DB) Optimize(ctx context.Context) error {
    _, err := d.SQL.ExecContext(ctx, "PRAGMA optimize")
    return err
}
