package graph

import (
    "context"
    "encoding/json"
    "testing"

    "github.com/JoshuaPurtell/sublinear/internal/config"
    "github.com/JoshuaPurtell/sublinear/internal/repo"
    "github.com/JoshuaPurtell/sublinear/internal/services"
    "github.com/graphql-go/graphql"
    "github.com/rs/zerolog"
)

func newTestSchema(t *testing.T) graphql.Schema {
    t.Helper()
    ctx := context.Background()
    cfg := config.Config{AppEnv: "test", PublicBaseURL: "http://localhost:8787"}
    db, err := repo.Open(ctx, t.TempDir()+"/test.db", zerolog.Nop())
    if err != nil { t.Fatalf("open: %v", err) }
    t.Cleanup(db.Close)
    if err := db.Migrate(ctx); err != nil { t.Fatalf("migrate: %v", err) }
    r := repo.NewRepository(db, zerolog.Nop())
    def := repo.SeedDefaults{ViewerName: "Sublinear Dev", ViewerEmail: "sublinear@example.com", TeamName: "Synth", TeamKey: "SYN"}
    if err := r.Seed(ctx, def); err != nil { t.Fatalf("seed: %v", err) }
    svc := services.NewService(cfg, zerolog.Nop(), r)
    schema, err := NewSchema(svc)
    if err != nil { t.Fatalf("schema: %v", err) }
    return schema
}

func exec(t *testing.T, schema graphql.Schema, query string, variables map[string]any) *graphql.Result {
    t.Helper()
    return graphql.Do(graphql.Params{
        Schema:         schema,
        RequestString:  query,
        VariableValues: variables,
        Context:        WithAuthorized(context.Background(), true),
    })
}

// data digs into the result through JSON so nested map shapes do not matter.
func data(t *testing.T, res *graphql.Result, out any) {
    t.Helper()
    if len(res.Errors) != 0 { t.Fatalf("graphql errors: %v", res.Errors) }
    raw, err := json.Marshal(res.Data)
    if err != nil { t.Fatalf("marshal: %v", err) }
    if err := json.Unmarshal(raw, out); err != nil { t.Fatalf("unmarshal: %v", err) }
}

func TestUnauthorizedContext(t *testing.T) {
    schema := newTestSchema(t)
    res := graphql.Do(graphql.Params{
        Schema:        schema,
        RequestString: `{ viewer { id } }`,
        Context:       context.Background(),
    })
    if len(res.Errors) == 0 { t.Fatalf("expected an error") }
    if res.Errors[0].Message != "Unauthorized" {
        t.Fatalf("got %q, want Unauthorized", res.Errors[0].Message)
    }
}

func TestViewerQuery(t *testing.T) {
    schema := newTestSchema(t)
    res := exec(t, schema, `{ viewer { id name email teams { nodes { id key } } } }`, nil)
    var out struct {
        Viewer struct {
            ID    string
            Name  string
            Email string
            Teams struct{ Nodes []struct{ ID, Key string } }
        }
    }
    data(t, res, &out)
    if out.Viewer.ID != "viewer_default" { t.Fatalf("viewer id: %q", out.Viewer.ID) }
    if len(out.Viewer.Teams.Nodes) != 1 || out.Viewer.Teams.Nodes[0].Key != "SYN" {
        t.Fatalf("viewer teams: %#v", out.Viewer.Teams)
    }
}

func TestTeamQueryMissingIsNull(t *testing.T) {
    schema := newTestSchema(t)
    res := exec(t, schema, `{ team(id: "nope") { id } }`, nil)
    var out struct{ Team *struct{ ID string } }
    data(t, res, &out)
    if out.Team != nil { t.Fatalf("expected null team, got %#v", out.Team) }
}

func TestIssueQueryMissingIsError(t *testing.T) {
    schema := newTestSchema(t)
    res := exec(t, schema, `{ issue(id: "nope") { id } }`, nil)
    if len(res.Errors) == 0 { t.Fatalf("expected an error") }
    if res.Errors[0].Message != "Entity not found: Issue" {
        t.Fatalf("got %q", res.Errors[0].Message)
    }
}

func TestIssueCreateMutation(t *testing.T) {
    schema := newTestSchema(t)
    res := exec(t, schema, `
        mutation($input: IssueCreateInput!) {
            issueCreate(input: $input) {
                success
                issue { identifier title state { name type } url }
            }
        }`, map[string]any{
        "input": map[string]any{"teamId": "team_default", "title": "hello"},
    })
    var out struct {
        IssueCreate struct {
            Success bool
            Issue   struct {
                Identifier string
                Title      string
                State      struct{ Name, Type string }
                URL        string `json:"url"`
            }
        }
    }
    data(t, res, &out)
    if !out.IssueCreate.Success { t.Fatalf("expected success") }
    if out.IssueCreate.Issue.Identifier != "SYN-1" {
        t.Fatalf("identifier: %q", out.IssueCreate.Issue.Identifier)
    }
    if out.IssueCreate.Issue.State.Name != "Backlog" || out.IssueCreate.Issue.State.Type != "unstarted" {
        t.Fatalf("state: %#v", out.IssueCreate.Issue.State)
    }
}

func TestProjectCreateAndNestedIssues(t *testing.T) {
    schema := newTestSchema(t)
    res := exec(t, schema, `
        mutation {
            projectCreate(input: {teamIds: ["team_default"], name: "My Project"}) {
                success
                project { id slugId state }
            }
        }`, nil)
    var created struct {
        ProjectCreate struct {
            Success bool
            Project struct {
                ID     string
                SlugID string `json:"slugId"`
                State  string
            }
        }
    }
    data(t, res, &created)
    if created.ProjectCreate.Project.SlugID != "my-project" {
        t.Fatalf("slug: %q", created.ProjectCreate.Project.SlugID)
    }

    res = exec(t, schema, `
        mutation($input: IssueCreateInput!) {
            issueCreate(input: $input) { success issue { id } }
        }`, map[string]any{
        "input": map[string]any{"teamId": "team_default", "title": "in project", "projectId": created.ProjectCreate.Project.ID},
    })
    var issued struct {
        IssueCreate struct{ Issue struct{ ID string } }
    }
    data(t, res, &issued)

    res = exec(t, schema, `
        query($id: String!) {
            project(id: $id) { name issues { nodes { id title project { slugId } } } }
        }`, map[string]any{"id": created.ProjectCreate.Project.ID})
    var fetched struct {
        Project struct {
            Name   string
            Issues struct {
                Nodes []struct {
                    ID, Title string
                    Project   struct {
                        SlugID string `json:"slugId"`
                    }
                }
            }
        }
    }
    data(t, res, &fetched)
    if len(fetched.Project.Issues.Nodes) != 1 {
        t.Fatalf("expected 1 nested issue, got %#v", fetched.Project.Issues)
    }
    node := fetched.Project.Issues.Nodes[0]
    if node.ID != issued.IssueCreate.Issue.ID { t.Fatalf("nested issue id: %q", node.ID) }
    if node.Project.SlugID != "my-project" { t.Fatalf("nested project slug: %q", node.Project.SlugID) }
}

func TestIssuesFilterQuery(t *testing.T) {
    schema := newTestSchema(t)
    for _, title := range []string{"a", "b"} {
        res := exec(t, schema, `
            mutation($input: IssueCreateInput!) { issueCreate(input: $input) { success } }`,
            map[string]any{"input": map[string]any{"teamId": "team_default", "title": title}})
        if len(res.Errors) != 0 { t.Fatalf("create: %v", res.Errors) }
    }

    res := exec(t, schema, `{
        issues(filter: {team: {id: {eq: "absent-team"}}}) { nodes { id } }
    }`, nil)
    var empty struct {
        Issues struct{ Nodes []struct{ ID string } }
    }
    data(t, res, &empty)
    if len(empty.Issues.Nodes) != 0 { t.Fatalf("expected empty, got %#v", empty.Issues) }

    res = exec(t, schema, `{
        issues(filter: {number: {in: [2]}}, first: 10) { nodes { identifier } }
    }`, nil)
    var byNumber struct {
        Issues struct{ Nodes []struct{ Identifier string } }
    }
    data(t, res, &byNumber)
    if len(byNumber.Issues.Nodes) != 1 || byNumber.Issues.Nodes[0].Identifier != "SYN-2" {
        t.Fatalf("filter by number: %#v", byNumber.Issues)
    }
}

func TestIssueArchiveMutation(t *testing.T) {
    schema := newTestSchema(t)
    res := exec(t, schema, `
        mutation { issueArchive(id: "nope") { success } }`, nil)
    var out struct {
        IssueArchive struct{ Success bool }
    }
    data(t, res, &out)
    if out.IssueArchive.Success { t.Fatalf("expected success=false for missing issue") }
}

func TestWorkflowStatesQuery(t *testing.T) {
    schema := newTestSchema(t)
    res := exec(t, schema, `{ workflowStates { nodes { name type position } } }`, nil)
    var out struct {
        WorkflowStates struct {
            Nodes []struct {
                Name     string
                Type     string
                Position int
            }
        }
    }
    data(t, res, &out)
    if len(out.WorkflowStates.Nodes) != 5 { t.Fatalf("states: %#v", out.WorkflowStates) }
    if out.WorkflowStates.Nodes[0].Name != "Backlog" || out.WorkflowStates.Nodes[0].Type != "unstarted" {
        t.Fatalf("first state: %#v", out.WorkflowStates.Nodes[0])
    }
}

func TestDecodeIssuesFilter(t *testing.T) {
    args := map[string]any{
        "filter": map[string]any{
            "team":   map[string]any{"key": map[string]any{"eq": "SYN"}},
            "state":  map[string]any{"name": map[string]any{"neq": "Done"}},
            "number": map[string]any{"in": []any{1.0, 2}},
        },
    }
    f := decodeIssuesFilter(args)
    if f == nil { t.Fatalf("nil filter") }
    if f.Team == nil || f.Team.Key == nil || f.Team.Key.Eq == nil || *f.Team.Key.Eq != "SYN" {
        t.Fatalf("team filter: %#v", f.Team)
    }
    if f.State == nil || f.State.Name == nil || f.State.Name.Neq == nil || *f.State.Name.Neq != "Done" {
        t.Fatalf("state filter: %#v", f.State)
    }
    if f.Number == nil || len(f.Number.In) != 2 {
        t.Fatalf("number filter: %#v", f.Number)
    }
    if decodeIssuesFilter(map[string]any{}) != nil {
        t.Fatalf("expected nil for absent filter")
    }
}

func TestDecodeProjectCreateInput(t *testing.T) {
    in := decodeProjectCreateInput(map[string]any{
        "input": map[string]any{"teamIds": []any{"t1", "t2"}, "name": "N"},
    })
    if len(in.TeamIDs) != 2 || in.TeamIDs[1] != "t2" || in.Name != "N" {
        t.Fatalf("decoded: %#v", in)
    }
}
