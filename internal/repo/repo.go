package repo

import (
    "context"
    "database/sql"

    "github.com/JoshuaPurtell/sublinear/internal/domain"
    "github.com/rs/zerolog"
)

type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func (r *Repository) count(ctx context.Context, q string, args ...any) (int64, error) {
    var n int64
    err := r.db.SQL.QueryRowContext(ctx, q, args...).Scan(&n)
    return n, err
}

func (r *Repository) GetViewer(ctx context.Context) (*domain.User, error) {
    const q = `SELECT id, name, email FROM users ORDER BY created_at ASC LIMIT 1`
    var u domain.User
    err := r.db.SQL.QueryRowContext(ctx, q).Scan(&u.ID, &u.Name, &u.Email)
    if err == sql.ErrNoRows { return nil, nil }
    if err != nil { return nil, err }
    return &u, nil
}

func (r *Repository) ListTeams(ctx context.Context, f *domain.TeamsFilter, first *int) ([]domain.Team, error) {
    wb := &whereBuilder{}
    if f != nil { wb.stringCmp("name", f.Name) }
    q := `SELECT id, name, key FROM teams` + wb.where() + ` ORDER BY name ASC LIMIT ?`
    params := append(wb.params, clampLimit(first))
    rows, err := r.db.SQL.QueryContext(ctx, q, params...)
    if err != nil { return nil, err }
    defer rows.Close()
    out := []domain.Team{}
    for rows.Next() {
        var t domain.Team
        if err := rows.Scan(&t.ID, &t.Name, &t.Key); err != nil { return nil, err }
        out = append(out, t)
    }
    return out, rows.Err()
}

func (r *Repository) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
    const q = `SELECT id, name, key FROM teams WHERE id = ?`
    var t domain.Team
    err := r.db.SQL.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Key)
    if err == sql.ErrNoRows { return nil, nil }
    if err != nil { return nil, err }
    return &t, nil
}

func (r *Repository) ListUserTeams(ctx context.Context, userID string, first *int) ([]domain.Team, error) {
    const q = `SELECT t.id, t.name, t.key
        FROM teams t
        INNER JOIN team_members tm ON tm.team_id = t.id
        WHERE tm.user_id = ?
        ORDER BY t.name ASC
        LIMIT ?`
    rows, err := r.db.SQL.QueryContext(ctx, q, userID, clampLimit(first))
    if err != nil { return nil, err }
    defer rows.Close()
    out := []domain.Team{}
    for rows.Next() {
        var t domain.Team
        if err := rows.Scan(&t.ID, &t.Name, &t.Key); err != nil { return nil, err }
        out = append(out, t)
    }
    return out, rows.Err()
}

func (r *Repository) scanStates(rows *sql.Rows) ([]domain.WorkflowState, error) {
    defer rows.Close()
    out := []domain.WorkflowState{}
    for rows.Next() {
        var s domain.WorkflowState
        if err := rows.Scan(&s.ID, &s.TeamID, &s.Name, &s.Kind, &s.Position); err != nil { return nil, err }
        out = append(out, s)
    }
    return out, rows.Err()
}

func (r *Repository) ListWorkflowStates(ctx context.Context, f *domain.WorkflowStatesFilter) ([]domain.WorkflowState, error) {
    wb := &whereBuilder{}
    if f != nil && f.Team != nil { wb.idCmp("team_id", f.Team.ID) }
    q := `SELECT id, team_id, name, type, position FROM workflow_states` + wb.where() + ` ORDER BY position ASC`
    rows, err := r.db.SQL.QueryContext(ctx, q, wb.params...)
    if err != nil { return nil, err }
    return r.scanStates(rows)
}

func (r *Repository) ListTeamStates(ctx context.Context, teamID string) ([]domain.WorkflowState, error) {
    const q = `SELECT id, team_id, name, type, position FROM workflow_states WHERE team_id = ? ORDER BY position ASC`
    rows, err := r.db.SQL.QueryContext(ctx, q, teamID)
    if err != nil { return nil, err }
    return r.scanStates(rows)
}

// DefaultState is the lowest-position state of the team's ladder, the state
// new issues start in. Nil when the team has no states.
func (r *Repository) DefaultState(ctx context.Context, teamID string) (*domain.WorkflowState, error) {
    const q = `SELECT id, team_id, name, type, position FROM workflow_states
        WHERE team_id = ? ORDER BY position ASC LIMIT 1`
    var s domain.WorkflowState
    err := r.db.SQL.QueryRowContext(ctx, q, teamID).Scan(&s.ID, &s.TeamID, &s.Name, &s.Kind, &s.Position)
    if err == sql.ErrNoRows { return nil, nil }
    if err != nil { return nil, err }
    return &s, nil
}

func (r *Repository) scanProjects(rows *sql.Rows) ([]domain.Project, error) {
    defer rows.Close()
    out := []domain.Project{}
    for rows.Next() {
        p, err := scanProject(rows)
        if err != nil { return nil, err }
        out = append(out, p)
    }
    return out, rows.Err()
}

func scanProject(sc interface{ Scan(...any) error }) (domain.Project, error) {
    var p domain.Project
    var slug, state, archived, url sql.NullString
    if err := sc.Scan(&p.ID, &p.Name, &slug, &state, &archived, &url); err != nil {
        return domain.Project{}, err
    }
    p.SlugID = nullToPtr(slug)
    p.State = nullToPtr(state)
    p.ArchivedAt = nullToPtr(archived)
    p.URL = nullToPtr(url)
    return p, nil
}

func (r *Repository) ListProjects(ctx context.Context, f *domain.ProjectsFilter, first *int) ([]domain.Project, error) {
    wb := &whereBuilder{}
    if f != nil { wb.stringCmp("name", f.Name) }
    q := `SELECT id, name, slug_id, state, archived_at, url FROM projects` + wb.where() +
        ` ORDER BY created_at DESC LIMIT ?`
    params := append(wb.params, clampLimit(first))
    rows, err := r.db.SQL.QueryContext(ctx, q, params...)
    if err != nil { return nil, err }
    return r.scanProjects(rows)
}

func (r *Repository) GetProject(ctx context.Context, id string) (*domain.Project, error) {
    const q = `SELECT id, name, slug_id, state, archived_at, url FROM projects WHERE id = ?`
    row := r.db.SQL.QueryRowContext(ctx, q, id)
    p, err := scanProject(row)
    if err == sql.ErrNoRows { return nil, nil }
    if err != nil { return nil, err }
    return &p, nil
}

func (r *Repository) CountProjects(ctx context.Context) (int64, error) {
    return r.count(ctx, `SELECT COUNT(*) FROM projects`)
}

// issueBaseSelect joins an issue with its state, project and assignee so one
// row carries everything but the unbounded sub-collections. The teams join is
// only there for filter predicates on t.key / t.name.
const issueBaseSelect = `SELECT
    i.id, i.team_id, i.number, i.identifier, i.title, i.description, i.url, i.updated_at,
    ws.id, ws.team_id, ws.name, ws.type, ws.position,
    p.id, p.name, p.slug_id, p.state, p.archived_at, p.url,
    u.id, u.name, u.email
    FROM issues i
    LEFT JOIN workflow_states ws ON ws.id = i.state_id
    LEFT JOIN projects p ON p.id = i.project_id
    LEFT JOIN users u ON u.id = i.assignee_id
    LEFT JOIN teams t ON t.id = i.team_id`

func scanIssue(sc interface{ Scan(...any) error }) (domain.Issue, error) {
    var (
        iss                                  domain.Issue
        desc, updated                        sql.NullString
        wsID, wsTeam, wsName, wsKind         sql.NullString
        wsPos                                sql.NullInt64
        pID, pName, pSlug, pState, pArchived sql.NullString
        pURL                                 sql.NullString
        uID, uName, uEmail                   sql.NullString
    )
    err := sc.Scan(
        &iss.ID, &iss.TeamID, &iss.Number, &iss.Identifier, &iss.Title, &desc, &iss.URL, &updated,
        &wsID, &wsTeam, &wsName, &wsKind, &wsPos,
        &pID, &pName, &pSlug, &pState, &pArchived, &pURL,
        &uID, &uName, &uEmail,
    )
    if err != nil { return domain.Issue{}, err }
    iss.Description = nullToPtr(desc)
    iss.UpdatedAt = nullToPtr(updated)

    if wsID.Valid {
        iss.State = domain.WorkflowState{
            ID:       wsID.String,
            TeamID:   wsTeam.String,
            Name:     wsName.String,
            Kind:     wsKind.String,
            Position: int(wsPos.Int64),
        }
    } else {
        // referential anomaly: keep the listing alive with a placeholder
        iss.State = domain.WorkflowState{ID: "state_missing", TeamID: iss.TeamID, Name: "Backlog"}
    }
    if pID.Valid {
        iss.Project = &domain.Project{
            ID:         pID.String,
            Name:       pName.String,
            SlugID:     nullToPtr(pSlug),
            State:      nullToPtr(pState),
            ArchivedAt: nullToPtr(pArchived),
            URL:        nullToPtr(pURL),
        }
    }
    if uID.Valid {
        iss.Assignee = &domain.User{ID: uID.String, Name: uName.String, Email: uEmail.String}
    }
    return iss, nil
}

func (r *Repository) scanIssues(rows *sql.Rows) ([]domain.Issue, error) {
    defer rows.Close()
    out := []domain.Issue{}
    for rows.Next() {
        iss, err := scanIssue(rows)
        if err != nil { return nil, err }
        out = append(out, iss)
    }
    return out, rows.Err()
}

func (r *Repository) GetIssue(ctx context.Context, id string) (*domain.Issue, error) {
    q := issueBaseSelect + ` WHERE i.id = ?`
    row := r.db.SQL.QueryRowContext(ctx, q, id)
    iss, err := scanIssue(row)
    if err == sql.ErrNoRows { return nil, nil }
    if err != nil { return nil, err }
    return &iss, nil
}

// ListIssues compiles the optional nested filter on top of the always-implicit
// archived exclusion. Teams, projects and states are addressed through the
// base select's join aliases.
func (r *Repository) ListIssues(ctx context.Context, f *domain.IssuesFilter, first *int) ([]domain.Issue, error) {
    wb := &whereBuilder{}
    wb.add("i.archived = 0")
    if f != nil {
        if f.Team != nil {
            wb.idCmp("i.team_id", f.Team.ID)
            wb.stringCmp("t.key", f.Team.Key)
            wb.stringCmp("t.name", f.Team.Name)
        }
        if f.Project != nil {
            wb.idCmp("i.project_id", f.Project.ID)
            wb.stringCmp("p.name", f.Project.Name)
        }
        if f.State != nil { wb.stringCmp("ws.name", f.State.Name) }
        wb.numberIn("i.number", f.Number)
    }
    q := issueBaseSelect + wb.where() + ` ORDER BY i.updated_at DESC LIMIT ?`
    params := append(wb.params, clampLimit(first))
    rows, err := r.db.SQL.QueryContext(ctx, q, params...)
    if err != nil { return nil, err }
    return r.scanIssues(rows)
}

func (r *Repository) ListProjectIssues(ctx context.Context, projectID string, first *int) ([]domain.Issue, error) {
    q := issueBaseSelect + ` WHERE i.archived = 0 AND i.project_id = ? ORDER BY i.updated_at DESC LIMIT ?`
    rows, err := r.db.SQL.QueryContext(ctx, q, projectID, clampLimit(first))
    if err != nil { return nil, err }
    return r.scanIssues(rows)
}

func (r *Repository) ListIssueLabels(ctx context.Context, issueID string) ([]domain.Label, error) {
    const q = `SELECT l.id, l.name
        FROM labels l
        INNER JOIN issue_labels il ON il.label_id = l.id
        WHERE il.issue_id = ?
        ORDER BY l.name ASC`
    rows, err := r.db.SQL.QueryContext(ctx, q, issueID)
    if err != nil { return nil, err }
    defer rows.Close()
    out := []domain.Label{}
    for rows.Next() {
        var l domain.Label
        if err := rows.Scan(&l.ID, &l.Name); err != nil { return nil, err }
        out = append(out, l)
    }
    return out, rows.Err()
}

func (r *Repository) ListIssueComments(ctx context.Context, issueID string, first *int) ([]domain.Comment, error) {
    const q = `SELECT id, issue_id, body, url, created_at FROM comments
        WHERE issue_id = ? ORDER BY created_at ASC LIMIT ?`
    rows, err := r.db.SQL.QueryContext(ctx, q, issueID, clampLimit(first))
    if err != nil { return nil, err }
    defer rows.Close()
    out := []domain.Comment{}
    for rows.Next() {
        var c domain.Comment
        if err := rows.Scan(&c.ID, &c.IssueID, &c.Body, &c.URL, &c.CreatedAt); err != nil { return nil, err }
        out = append(out, c)
    }
    return out, rows.Err()
}

func (r *Repository) TeamExists(ctx context.Context, id string) (bool, error) {
    n, err := r.count(ctx, `SELECT COUNT(*) FROM teams WHERE id = ?`, id)
    return n > 0, err
}

func (r *Repository) ProjectExists(ctx context.Context, id string) (bool, error) {
    n, err := r.count(ctx, `SELECT COUNT(*) FROM projects WHERE id = ?`, id)
    return n > 0, err
}

func (r *Repository) IssueExists(ctx context.Context, id string) (bool, error) {
    n, err := r.count(ctx, `SELECT COUNT(*) FROM issues WHERE id = ?`, id)
    return n > 0, err
}

func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
    n, err := r.count(ctx, `SELECT COUNT(*) FROM projects WHERE slug_id = ?`, slug)
    return n > 0, err
}

// MaxIssueNumber feeds the next-number allocation. Plain read, no isolation:
// the UNIQUE constraint on issues.identifier is the backstop for concurrent
// creators racing to the same number.
func (r *Repository) MaxIssueNumber(ctx context.Context, teamID string) (int, error) {
    var n int
    err := r.db.SQL.QueryRowContext(ctx,
        `SELECT COALESCE(MAX(number), 0) FROM issues WHERE team_id = ?`, teamID).Scan(&n)
    return n, err
}

func nullToPtr(v sql.NullString) *string {
    if !v.Valid { return nil }
    s := v.String
    return &s
}
