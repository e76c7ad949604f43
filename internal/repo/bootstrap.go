package repo

import (
    "context"
    "time"

    "github.com/JoshuaPurtell/sublinear/internal/ids"
)

type SeedDefaults struct {
    ViewerName  string
    ViewerEmail string
    TeamName    string
    TeamKey     string
}

var defaultLadder = []struct {
    Name     string
    Kind     string
    Position int
}{
    {"Backlog", "unstarted", 0},
    {"In Progress", "started", 1},
    {"In Review", "started", 2},
    {"Done", "completed", 3},
    {"Canceled", "canceled", 4},
}

// Seed establishes the minimum state the rest of the system assumes: one
// viewer, one team, the viewer's membership and the team's workflow ladder.
// Idempotent on restart; the ladder is checked per state name so operators can
// add or rename states without seeding fighting them.
func (r *Repository) Seed(ctx context.Context, def SeedDefaults) error {
    now := time.Now().UTC().Format(time.RFC3339)
    const viewerID = "viewer_default"
    const teamID = "team_default"

    n, err := r.count(ctx, `SELECT COUNT(*) FROM users`)
    if err != nil { return err }
    if n == 0 {
        _, err = r.db.SQL.ExecContext(ctx,
            `INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
            viewerID, def.ViewerName, def.ViewerEmail, now)
        if err != nil { return err }
    }

    n, err = r.count(ctx, `SELECT COUNT(*) FROM teams`)
    if err != nil { return err }
    if n == 0 {
        _, err = r.db.SQL.ExecContext(ctx,
            `INSERT INTO teams (id, name, key, created_at) VALUES (?, ?, ?, ?)`,
            teamID, def.TeamName, ids.SanitizeTeamKey(def.TeamKey), now)
        if err != nil { return err }
    }

    _, err = r.db.SQL.ExecContext(ctx,
        `INSERT OR IGNORE INTO team_members (team_id, user_id) VALUES (?, ?)`,
        teamID, viewerID)
    if err != nil { return err }

    for _, s := range defaultLadder {
        if err := r.ensureWorkflowState(ctx, teamID, s.Name, s.Kind, s.Position); err != nil {
            return err
        }
    }
    return nil
}

func (r *Repository) ensureWorkflowState(ctx context.Context, teamID, name, kind string, position int) error {
    n, err := r.count(ctx,
        `SELECT COUNT(*) FROM workflow_states WHERE team_id = ? AND name = ?`, teamID, name)
    if err != nil { return err }
    if n > 0 { return nil }
    _, err = r.db.SQL.ExecContext(ctx,
        `INSERT INTO workflow_states (id, team_id, name, type, position) VALUES (?, ?, ?, ?, ?)`,
        ids.NewOpaqueID("state"), teamID, name, kind, position)
    return err
}

type StoreCounts struct {
    Users    int64
    Teams    int64
    Projects int64
    Issues   int64
    Comments int64
}

func (r *Repository) Counts(ctx context.Context) (StoreCounts, error) {
    var c StoreCounts
    for _, it := range []struct {
        table string
        dst   *int64
    }{
        {"users", &c.Users},
        {"teams", &c.Teams},
        {"projects", &c.Projects},
        {"issues", &c.Issues},
        {"comments", &c.Comments},
    } {
        n, err := r.count(ctx, `SELECT COUNT(*) FROM `+it.table)
        if err != nil { return c, err }
        *it.dst = n
    }
    return c, nil
}
