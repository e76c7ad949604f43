package repo

import (
    "context"
    "testing"

    "github.com/JoshuaPurtell/sublinear/internal/domain"
    "github.com/rs/zerolog"
)

func newTestRepo(t *testing.T) *Repository {
    t.Helper()
    ctx := context.Background()
    db, err := Open(ctx, t.TempDir()+"/test.db", zerolog.Nop())
    if err != nil { t.Fatalf("open: %v", err) }
    t.Cleanup(db.Close)
    if err := db.Migrate(ctx); err != nil { t.Fatalf("migrate: %v", err) }
    return NewRepository(db, zerolog.Nop())
}

func seedTestRepo(t *testing.T, r *Repository) {
    t.Helper()
    def := SeedDefaults{ViewerName: "Sublinear Dev", ViewerEmail: "sublinear@example.com", TeamName: "Synth", TeamKey: "SYN"}
    if err := r.Seed(context.Background(), def); err != nil { t.Fatalf("seed: %v", err) }
}

func TestMigrateIdempotent(t *testing.T) {
    r := newTestRepo(t)
    if err := r.db.Migrate(context.Background()); err != nil {
        t.Fatalf("second migrate: %v", err)
    }
}

func TestSeedIdempotent(t *testing.T) {
    r := newTestRepo(t)
    ctx := context.Background()
    seedTestRepo(t, r)
    seedTestRepo(t, r)

    counts, err := r.Counts(ctx)
    if err != nil { t.Fatalf("counts: %v", err) }
    if counts.Users != 1 { t.Fatalf("expected 1 user, got %d", counts.Users) }
    if counts.Teams != 1 { t.Fatalf("expected 1 team, got %d", counts.Teams) }

    states, err := r.ListTeamStates(ctx, "team_default")
    if err != nil { t.Fatalf("states: %v", err) }
    if len(states) != 5 { t.Fatalf("expected 5 states, got %d", len(states)) }
}

func TestSeedLadderOrderAndKinds(t *testing.T) {
    r := newTestRepo(t)
    seedTestRepo(t, r)
    states, err := r.ListTeamStates(context.Background(), "team_default")
    if err != nil { t.Fatalf("states: %v", err) }
    wantNames := []string{"Backlog", "In Progress", "In Review", "Done", "Canceled"}
    wantKinds := []string{"unstarted", "started", "started", "completed", "canceled"}
    for i, s := range states {
        if s.Name != wantNames[i] { t.Fatalf("state %d: got %q, want %q", i, s.Name, wantNames[i]) }
        if s.Kind != wantKinds[i] { t.Fatalf("state %d kind: got %q, want %q", i, s.Kind, wantKinds[i]) }
        if s.Position != i { t.Fatalf("state %d position: got %d", i, s.Position) }
    }
}

func TestSeedSanitizesTeamKey(t *testing.T) {
    r := newTestRepo(t)
    def := SeedDefaults{ViewerName: "v", ViewerEmail: "v@example.com", TeamName: "T", TeamKey: "syn-x!"}
    if err := r.Seed(context.Background(), def); err != nil { t.Fatalf("seed: %v", err) }
    team, err := r.GetTeam(context.Background(), "team_default")
    if err != nil { t.Fatalf("get team: %v", err) }
    if team == nil || team.Key != "SYNX" {
        t.Fatalf("expected sanitized key SYNX, got %#v", team)
    }
}

func TestGetTeamAbsentIsNil(t *testing.T) {
    r := newTestRepo(t)
    seedTestRepo(t, r)
    team, err := r.GetTeam(context.Background(), "nope")
    if err != nil { t.Fatalf("get team: %v", err) }
    if team != nil { t.Fatalf("expected nil, got %#v", team) }
}

func TestDefaultStateIsLowestPosition(t *testing.T) {
    r := newTestRepo(t)
    seedTestRepo(t, r)
    s, err := r.DefaultState(context.Background(), "team_default")
    if err != nil { t.Fatalf("default state: %v", err) }
    if s == nil || s.Name != "Backlog" {
        t.Fatalf("expected Backlog, got %#v", s)
    }
}

func TestMaxIssueNumberEmptyTeam(t *testing.T) {
    r := newTestRepo(t)
    seedTestRepo(t, r)
    n, err := r.MaxIssueNumber(context.Background(), "team_default")
    if err != nil { t.Fatalf("max: %v", err) }
    if n != 0 { t.Fatalf("expected 0, got %d", n) }
}

func insertTestIssue(t *testing.T, r *Repository, id string, number int, stateID string) {
    t.Helper()
    iss := domain.Issue{
        ID:         id,
        TeamID:     "team_default",
        Number:     number,
        Identifier: "SYN-" + id,
        Title:      "t",
        URL:        "http://localhost/issue/SYN-" + id,
        State:      domain.WorkflowState{ID: stateID},
    }
    if err := r.InsertIssue(context.Background(), iss, nil, "2026-01-01T00:00:00Z"); err != nil {
        t.Fatalf("insert issue: %v", err)
    }
}

func TestListIssuesExcludesArchived(t *testing.T) {
    r := newTestRepo(t)
    seedTestRepo(t, r)
    ctx := context.Background()
    state, _ := r.DefaultState(ctx, "team_default")
    insertTestIssue(t, r, "a", 1, state.ID)
    insertTestIssue(t, r, "b", 2, state.ID)

    ok, err := r.ArchiveIssue(ctx, "a", "2026-01-02T00:00:00Z")
    if err != nil || !ok { t.Fatalf("archive: ok=%v err=%v", ok, err) }

    issues, err := r.ListIssues(ctx, nil, nil)
    if err != nil { t.Fatalf("list: %v", err) }
    if len(issues) != 1 || issues[0].ID != "b" {
        t.Fatalf("expected only issue b, got %#v", issues)
    }
}

func TestListIssuesAbsentTeamFilterIsEmptyNotError(t *testing.T) {
    r := newTestRepo(t)
    seedTestRepo(t, r)
    ctx := context.Background()
    state, _ := r.DefaultState(ctx, "team_default")
    insertTestIssue(t, r, "a", 1, state.ID)

    eq := "absent-team"
    f := &domain.IssuesFilter{Team: &domain.TeamFilter{ID: &domain.IDComparator{Eq: &eq}}}
    issues, err := r.ListIssues(ctx, f, nil)
    if err != nil { t.Fatalf("list: %v", err) }
    if len(issues) != 0 { t.Fatalf("expected empty, got %#v", issues) }
}

func TestScanIssueStateFallback(t *testing.T) {
    r := newTestRepo(t)
    seedTestRepo(t, r)
    ctx := context.Background()
    // state id referencing nothing: assembly substitutes the placeholder
    insertTestIssue(t, r, "x", 1, "state_gone")
    iss, err := r.GetIssue(ctx, "x")
    if err != nil { t.Fatalf("get: %v", err) }
    if iss == nil { t.Fatalf("expected issue") }
    if iss.State.Name != "Backlog" || iss.State.ID != "state_missing" {
        t.Fatalf("expected backlog fallback, got %#v", iss.State)
    }
    if iss.Assignee != nil || iss.Project != nil {
        t.Fatalf("expected absent relations, got %#v", iss)
    }
}

func TestGetIssueAbsentIsNil(t *testing.T) {
    r := newTestRepo(t)
    seedTestRepo(t, r)
    iss, err := r.GetIssue(context.Background(), "nope")
    if err != nil { t.Fatalf("get: %v", err) }
    if iss != nil { t.Fatalf("expected nil, got %#v", iss) }
}

func TestUpdateIssueDynamicSets(t *testing.T) {
    r := newTestRepo(t)
    seedTestRepo(t, r)
    ctx := context.Background()
    state, _ := r.DefaultState(ctx, "team_default")
    insertTestIssue(t, r, "u", 1, state.ID)

    title := "renamed"
    changed, err := r.UpdateIssue(ctx, "u", domain.IssueUpdateInput{Title: &title}, "2026-01-03T00:00:00Z")
    if err != nil || !changed { t.Fatalf("update: changed=%v err=%v", changed, err) }

    iss, err := r.GetIssue(ctx, "u")
    if err != nil { t.Fatalf("get: %v", err) }
    if iss.Title != "renamed" { t.Fatalf("title not updated: %#v", iss) }
    if iss.UpdatedAt == nil || *iss.UpdatedAt != "2026-01-03T00:00:00Z" {
        t.Fatalf("updated_at not moved: %#v", iss.UpdatedAt)
    }

    changed, err = r.UpdateIssue(ctx, "missing", domain.IssueUpdateInput{Title: &title}, "2026-01-03T00:00:00Z")
    if err != nil { t.Fatalf("update missing: %v", err) }
    if changed { t.Fatalf("expected no row changed") }
}
