package graph

import (
    "github.com/JoshuaPurtell/sublinear/internal/domain"
)

// Argument maps arrive from the executor already type-coerced; these helpers
// lift them into the domain filter and input structs.

func subMap(m map[string]any, key string) map[string]any {
    v, _ := m[key].(map[string]any)
    return v
}

func str(m map[string]any, key string) string {
    v, _ := m[key].(string)
    return v
}

func optStr(m map[string]any, key string) *string {
    if v, ok := m[key].(string); ok { return &v }
    return nil
}

func optInt(m map[string]any, key string) *int {
    if v, ok := m[key].(int); ok { return &v }
    return nil
}

func strList(m map[string]any, key string) []string {
    raw, _ := m[key].([]any)
    out := make([]string, 0, len(raw))
    for _, v := range raw {
        if s, ok := v.(string); ok { out = append(out, s) }
    }
    return out
}

func strCmp(m map[string]any, key string) *domain.StringComparator {
    c := subMap(m, key)
    if c == nil { return nil }
    return &domain.StringComparator{Eq: optStr(c, "eq"), Neq: optStr(c, "neq")}
}

func idCmp(m map[string]any, key string) *domain.IDComparator {
    c := subMap(m, key)
    if c == nil { return nil }
    return &domain.IDComparator{Eq: optStr(c, "eq")}
}

func numberCmp(m map[string]any, key string) *domain.NumberComparator {
    c := subMap(m, key)
    if c == nil { return nil }
    raw, ok := c["in"].([]any)
    if !ok { return nil }
    in := make([]float64, 0, len(raw))
    for _, v := range raw {
        switch n := v.(type) {
        case float64:
            in = append(in, n)
        case int:
            in = append(in, float64(n))
        }
    }
    return &domain.NumberComparator{In: in}
}

func teamFilter(m map[string]any, key string) *domain.TeamFilter {
    c := subMap(m, key)
    if c == nil { return nil }
    return &domain.TeamFilter{ID: idCmp(c, "id"), Key: strCmp(c, "key"), Name: strCmp(c, "name")}
}

func projectFilter(m map[string]any, key string) *domain.ProjectFilter {
    c := subMap(m, key)
    if c == nil { return nil }
    return &domain.ProjectFilter{ID: idCmp(c, "id"), Name: strCmp(c, "name")}
}

func stateFilter(m map[string]any, key string) *domain.StateFilter {
    c := subMap(m, key)
    if c == nil { return nil }
    return &domain.StateFilter{Name: strCmp(c, "name")}
}

func decodeTeamsFilter(args map[string]any) *domain.TeamsFilter {
    c := subMap(args, "filter")
    if c == nil { return nil }
    return &domain.TeamsFilter{Name: strCmp(c, "name")}
}

func decodeProjectsFilter(args map[string]any) *domain.ProjectsFilter {
    c := subMap(args, "filter")
    if c == nil { return nil }
    return &domain.ProjectsFilter{Name: strCmp(c, "name")}
}

func decodeIssuesFilter(args map[string]any) *domain.IssuesFilter {
    c := subMap(args, "filter")
    if c == nil { return nil }
    return &domain.IssuesFilter{
        Team:    teamFilter(c, "team"),
        Project: projectFilter(c, "project"),
        State:   stateFilter(c, "state"),
        Number:  numberCmp(c, "number"),
    }
}

func decodeWorkflowStatesFilter(args map[string]any) *domain.WorkflowStatesFilter {
    c := subMap(args, "filter")
    if c == nil { return nil }
    return &domain.WorkflowStatesFilter{Team: teamFilter(c, "team")}
}

func decodeProjectCreateInput(args map[string]any) domain.ProjectCreateInput {
    in := subMap(args, "input")
    return domain.ProjectCreateInput{TeamIDs: strList(in, "teamIds"), Name: str(in, "name")}
}

func decodeIssueCreateInput(args map[string]any) domain.IssueCreateInput {
    in := subMap(args, "input")
    return domain.IssueCreateInput{
        TeamID:      str(in, "teamId"),
        ProjectID:   optStr(in, "projectId"),
        Title:       str(in, "title"),
        Description: optStr(in, "description"),
    }
}

func decodeIssueUpdateInput(args map[string]any) domain.IssueUpdateInput {
    in := subMap(args, "input")
    return domain.IssueUpdateInput{
        Title:       optStr(in, "title"),
        Description: optStr(in, "description"),
        StateID:     optStr(in, "stateId"),
    }
}

func decodeCommentCreateInput(args map[string]any) domain.CommentCreateInput {
    in := subMap(args, "input")
    return domain.CommentCreateInput{IssueID: str(in, "issueId"), Body: str(in, "body")}
}

func decodeProjectImportInput(args map[string]any) domain.ProjectImportInput {
    in := subMap(args, "input")
    return domain.ProjectImportInput{
        ID:         str(in, "id"),
        Name:       str(in, "name"),
        SlugID:     str(in, "slugId"),
        State:      optStr(in, "state"),
        ArchivedAt: optStr(in, "archivedAt"),
        URL:        str(in, "url"),
    }
}
