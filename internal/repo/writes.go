package repo

import (
    "context"

    "github.com/JoshuaPurtell/sublinear/internal/domain"
)

func (r *Repository) InsertProject(ctx context.Context, p domain.Project, createdAt string) error {
    const q = `INSERT INTO projects (id, name, slug_id, state, archived_at, url, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
    _, err := r.db.SQL.ExecContext(ctx, q, p.ID, p.Name, p.SlugID, p.State, p.ArchivedAt, p.URL, createdAt)
    return err
}

func (r *Repository) LinkProjectTeam(ctx context.Context, projectID, teamID string) error {
    const q = `INSERT OR IGNORE INTO project_teams (project_id, team_id) VALUES (?, ?)`
    _, err := r.db.SQL.ExecContext(ctx, q, projectID, teamID)
    return err
}

func (r *Repository) InsertIssue(ctx context.Context, iss domain.Issue, projectID *string, createdAt string) error {
    const q = `INSERT INTO issues
        (id, team_id, project_id, number, identifier, title, description, state_id, assignee_id, archived, url, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, 0, ?, ?, ?)`
    _, err := r.db.SQL.ExecContext(ctx, q,
        iss.ID, iss.TeamID, projectID, iss.Number, iss.Identifier, iss.Title, iss.Description,
        iss.State.ID, iss.URL, createdAt, createdAt)
    return err
}

func (r *Repository) InsertComment(ctx context.Context, c domain.Comment) error {
    const q = `INSERT INTO comments (id, issue_id, body, url, created_at) VALUES (?, ?, ?, ?, ?)`
    _, err := r.db.SQL.ExecContext(ctx, q, c.ID, c.IssueID, c.Body, c.URL, c.CreatedAt)
    return err
}

// UpdateIssue builds the SET list from whichever fields are present;
// updated_at always moves. Returns false when no row matched.
func (r *Repository) UpdateIssue(ctx context.Context, id string, in domain.IssueUpdateInput, now string) (bool, error) {
    sets := []string{}
    params := []any{}
    if in.Title != nil {
        sets = append(sets, "title = ?")
        params = append(params, *in.Title)
    }
    if in.Description != nil {
        sets = append(sets, "description = ?")
        params = append(params, *in.Description)
    }
    if in.StateID != nil {
        sets = append(sets, "state_id = ?")
        params = append(params, *in.StateID)
    }
    sets = append(sets, "updated_at = ?")
    params = append(params, now, id)

    q := "UPDATE issues SET "
    for i, s := range sets {
        if i > 0 { q += ", " }
        q += s
    }
    q += " WHERE id = ?"
    res, err := r.db.SQL.ExecContext(ctx, q, params...)
    if err != nil { return false, err }
    n, err := res.RowsAffected()
    return n > 0, err
}

func (r *Repository) ArchiveIssue(ctx context.Context, id, now string) (bool, error) {
    const q = `UPDATE issues SET archived = 1, updated_at = ? WHERE id = ?`
    res, err := r.db.SQL.ExecContext(ctx, q, now, id)
    if err != nil { return false, err }
    n, err := res.RowsAffected()
    return n > 0, err
}

func (r *Repository) EnsureLabel(ctx context.Context, id, name string) error {
    const q = `INSERT OR IGNORE INTO labels (id, name) VALUES (?, ?)`
    _, err := r.db.SQL.ExecContext(ctx, q, id, name)
    return err
}

func (r *Repository) LinkIssueLabel(ctx context.Context, issueID, labelID string) error {
    const q = `INSERT OR IGNORE INTO issue_labels (issue_id, label_id) VALUES (?, ?)`
    _, err := r.db.SQL.ExecContext(ctx, q, issueID, labelID)
    return err
}

// DeleteProjectsBySlugExcept clears other owners of a slug before an import
// upsert claims it; imports enforce 1:1 slug ownership.
func (r *Repository) DeleteProjectsBySlugExcept(ctx context.Context, slug, keepID string) error {
    const q = `DELETE FROM projects WHERE slug_id = ? AND id <> ?`
    _, err := r.db.SQL.ExecContext(ctx, q, slug, keepID)
    return err
}

func (r *Repository) UpsertProject(ctx context.Context, in domain.ProjectImportInput, now string) error {
    const q = `INSERT INTO projects (id, name, slug_id, state, archived_at, url, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            slug_id = excluded.slug_id,
            state = excluded.state,
            archived_at = excluded.archived_at,
            url = excluded.url`
    _, err := r.db.SQL.ExecContext(ctx, q, in.ID, in.Name, in.SlugID, in.State, in.ArchivedAt, in.URL, now)
    return err
}
