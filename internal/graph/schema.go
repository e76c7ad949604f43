// Package graph defines the query/mutation surface. Resolvers consult the
// authorization gate first, delegate to the service layer and keep expensive
// sub-collections lazy: a relation field issues its own scoped query only when
// the caller selects it.
package graph

import (
    "fmt"

    "github.com/JoshuaPurtell/sublinear/internal/domain"
    "github.com/JoshuaPurtell/sublinear/internal/services"
    "github.com/graphql-go/graphql"
)

type builder struct {
    svc *services.Service

    user          *graphql.Object
    viewer        *graphql.Object
    team          *graphql.Object
    workflowState *graphql.Object
    project       *graphql.Object
    issue         *graphql.Object
    label         *graphql.Object
    comment       *graphql.Object

    teamConn    *graphql.Object
    stateConn   *graphql.Object
    projectConn *graphql.Object
    issueConn   *graphql.Object
    labelConn   *graphql.Object
    commentConn *graphql.Object
}

func NewSchema(svc *services.Service) (graphql.Schema, error) {
    b := &builder{svc: svc}
    b.buildObjects()
    return graphql.NewSchema(graphql.SchemaConfig{
        Query:    b.queryRoot(),
        Mutation: b.mutationRoot(),
    })
}

func conn[T any](nodes []T) map[string]any { return map[string]any{"nodes": nodes} }

func connectionOf(name string, node *graphql.Object) *graphql.Object {
    return graphql.NewObject(graphql.ObjectConfig{
        Name: name,
        Fields: graphql.Fields{
            "nodes": &graphql.Field{Type: graphql.NewList(node)},
        },
    })
}

func firstArg() graphql.FieldConfigArgument {
    return graphql.FieldConfigArgument{
        "first": &graphql.ArgumentConfig{Type: graphql.Int},
    }
}

func sourceProject(src any) (domain.Project, error) {
    switch v := src.(type) {
    case domain.Project:
        return v, nil
    case *domain.Project:
        return *v, nil
    }
    return domain.Project{}, fmt.Errorf("unexpected project source %T", src)
}

func (b *builder) buildObjects() {
    b.label = graphql.NewObject(graphql.ObjectConfig{
        Name: "Label",
        Fields: graphql.Fields{
            "id":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
        },
    })
    b.labelConn = connectionOf("LabelConnection", b.label)

    b.user = graphql.NewObject(graphql.ObjectConfig{
        Name: "User",
        Fields: graphql.Fields{
            "id":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "name":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "email": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
        },
    })

    b.workflowState = graphql.NewObject(graphql.ObjectConfig{
        Name: "WorkflowState",
        Fields: graphql.Fields{
            "id":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "type": &graphql.Field{
                Type: graphql.String,
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    s, ok := p.Source.(domain.WorkflowState)
                    if !ok || s.Kind == "" { return nil, nil }
                    return s.Kind, nil
                },
            },
            "position": &graphql.Field{Type: graphql.Int},
        },
    })
    b.stateConn = connectionOf("WorkflowStateConnection", b.workflowState)

    b.comment = graphql.NewObject(graphql.ObjectConfig{
        Name: "Comment",
        Fields: graphql.Fields{
            "id":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "body":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "url":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "createdAt": &graphql.Field{Type: graphql.String},
        },
    })
    b.commentConn = connectionOf("CommentConnection", b.comment)

    b.team = graphql.NewObject(graphql.ObjectConfig{
        Name: "Team",
        Fields: graphql.Fields{
            "id":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "key":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "states": &graphql.Field{
                Type: b.stateConn,
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    t, ok := p.Source.(domain.Team)
                    if !ok { return nil, fmt.Errorf("unexpected team source %T", p.Source) }
                    states, err := b.svc.TeamStates(p.Context, t.ID)
                    if err != nil { return nil, err }
                    return conn(states), nil
                },
            },
        },
    })
    b.teamConn = connectionOf("TeamConnection", b.team)

    b.viewer = graphql.NewObject(graphql.ObjectConfig{
        Name: "Viewer",
        Fields: graphql.Fields{
            "id":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "name":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "email": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
            "teams": &graphql.Field{
                Type: b.teamConn,
                Args: firstArg(),
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    u, ok := p.Source.(domain.User)
                    if !ok { return nil, fmt.Errorf("unexpected viewer source %T", p.Source) }
                    teams, err := b.svc.UserTeams(p.Context, u.ID, optInt(p.Args, "first"))
                    if err != nil { return nil, err }
                    return conn(teams), nil
                },
            },
        },
    })

    // Project and Issue reference each other; thunks break the cycle.
    b.project = graphql.NewObject(graphql.ObjectConfig{
        Name: "Project",
        Fields: graphql.FieldsThunk(func() graphql.Fields {
            return graphql.Fields{
                "id":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
                "name":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
                "slugId":     &graphql.Field{Type: graphql.String},
                "state":      &graphql.Field{Type: graphql.String},
                "archivedAt": &graphql.Field{Type: graphql.String},
                "url":        &graphql.Field{Type: graphql.String},
                "issues": &graphql.Field{
                    Type: b.issueConn,
                    Args: firstArg(),
                    Resolve: func(p graphql.ResolveParams) (any, error) {
                        if err := ensureAuth(p); err != nil { return nil, err }
                        proj, err := sourceProject(p.Source)
                        if err != nil { return nil, err }
                        issues, err := b.svc.ProjectIssues(p.Context, proj.ID, optInt(p.Args, "first"))
                        if err != nil { return nil, err }
                        return conn(issues), nil
                    },
                },
            }
        }),
    })
    b.projectConn = connectionOf("ProjectConnection", b.project)

    b.issue = graphql.NewObject(graphql.ObjectConfig{
        Name: "Issue",
        Fields: graphql.FieldsThunk(func() graphql.Fields {
            return graphql.Fields{
                "id":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
                "identifier":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
                "title":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
                "url":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
                "description": &graphql.Field{Type: graphql.String},
                "updatedAt":   &graphql.Field{Type: graphql.String},
                "assignee":    &graphql.Field{Type: b.user},
                "project":     &graphql.Field{Type: b.project},
                "state":       &graphql.Field{Type: graphql.NewNonNull(b.workflowState)},
                "labels": &graphql.Field{
                    Type: b.labelConn,
                    Resolve: func(p graphql.ResolveParams) (any, error) {
                        if err := ensureAuth(p); err != nil { return nil, err }
                        iss, ok := p.Source.(domain.Issue)
                        if !ok { return nil, fmt.Errorf("unexpected issue source %T", p.Source) }
                        labels, err := b.svc.IssueLabels(p.Context, iss.ID)
                        if err != nil { return nil, err }
                        return conn(labels), nil
                    },
                },
                "comments": &graphql.Field{
                    Type: b.commentConn,
                    Args: firstArg(),
                    Resolve: func(p graphql.ResolveParams) (any, error) {
                        if err := ensureAuth(p); err != nil { return nil, err }
                        iss, ok := p.Source.(domain.Issue)
                        if !ok { return nil, fmt.Errorf("unexpected issue source %T", p.Source) }
                        comments, err := b.svc.IssueComments(p.Context, iss.ID, optInt(p.Args, "first"))
                        if err != nil { return nil, err }
                        return conn(comments), nil
                    },
                },
            }
        }),
    })
    b.issueConn = connectionOf("IssueConnection", b.issue)
}

func inputFields(m map[string]graphql.Input) graphql.InputObjectConfigFieldMap {
    out := graphql.InputObjectConfigFieldMap{}
    for k, t := range m {
        out[k] = &graphql.InputObjectFieldConfig{Type: t}
    }
    return out
}

func (b *builder) queryRoot() *graphql.Object {
    stringFilter := graphql.NewInputObject(graphql.InputObjectConfig{
        Name:   "StringFilter",
        Fields: inputFields(map[string]graphql.Input{"eq": graphql.String, "neq": graphql.String}),
    })
    idFilter := graphql.NewInputObject(graphql.InputObjectConfig{
        Name:   "IdFilter",
        Fields: inputFields(map[string]graphql.Input{"eq": graphql.String}),
    })
    floatFilter := graphql.NewInputObject(graphql.InputObjectConfig{
        Name:   "FloatFilter",
        Fields: inputFields(map[string]graphql.Input{"in": graphql.NewList(graphql.Float)}),
    })
    teamFilterInput := graphql.NewInputObject(graphql.InputObjectConfig{
        Name:   "TeamFilter",
        Fields: inputFields(map[string]graphql.Input{"id": idFilter, "key": stringFilter, "name": stringFilter}),
    })
    projectFilterInput := graphql.NewInputObject(graphql.InputObjectConfig{
        Name:   "ProjectFilter",
        Fields: inputFields(map[string]graphql.Input{"id": idFilter, "name": stringFilter}),
    })
    stateFilterInput := graphql.NewInputObject(graphql.InputObjectConfig{
        Name:   "StateFilter",
        Fields: inputFields(map[string]graphql.Input{"name": stringFilter}),
    })
    issuesFilterInput := graphql.NewInputObject(graphql.InputObjectConfig{
        Name: "IssuesFilter",
        Fields: inputFields(map[string]graphql.Input{
            "team":    teamFilterInput,
            "project": projectFilterInput,
            "state":   stateFilterInput,
            "number":  floatFilter,
        }),
    })
    teamsFilterInput := graphql.NewInputObject(graphql.InputObjectConfig{
        Name:   "TeamsFilter",
        Fields: inputFields(map[string]graphql.Input{"name": stringFilter}),
    })
    projectsFilterInput := graphql.NewInputObject(graphql.InputObjectConfig{
        Name:   "ProjectsFilter",
        Fields: inputFields(map[string]graphql.Input{"name": stringFilter}),
    })
    workflowStatesFilterInput := graphql.NewInputObject(graphql.InputObjectConfig{
        Name:   "WorkflowStatesFilter",
        Fields: inputFields(map[string]graphql.Input{"team": teamFilterInput}),
    })
    issueOrderBy := graphql.NewEnum(graphql.EnumConfig{
        Name: "IssueOrderBy",
        Values: graphql.EnumValueConfigMap{
            "updatedAt": &graphql.EnumValueConfig{Value: "updatedAt"},
        },
    })

    return graphql.NewObject(graphql.ObjectConfig{
        Name: "Query",
        Fields: graphql.Fields{
            "viewer": &graphql.Field{
                Type: b.viewer,
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    return b.svc.Viewer(p.Context)
                },
            },
            "teams": &graphql.Field{
                Type: b.teamConn,
                Args: graphql.FieldConfigArgument{
                    "filter": &graphql.ArgumentConfig{Type: teamsFilterInput},
                    "first":  &graphql.ArgumentConfig{Type: graphql.Int},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    teams, err := b.svc.Teams(p.Context, decodeTeamsFilter(p.Args), optInt(p.Args, "first"))
                    if err != nil { return nil, err }
                    return conn(teams), nil
                },
            },
            "team": &graphql.Field{
                Type: b.team,
                Args: graphql.FieldConfigArgument{
                    "id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    t, err := b.svc.Team(p.Context, str(p.Args, "id"))
                    if err != nil { return nil, err }
                    if t == nil { return nil, nil }
                    return *t, nil
                },
            },
            "projects": &graphql.Field{
                Type: b.projectConn,
                Args: graphql.FieldConfigArgument{
                    "filter": &graphql.ArgumentConfig{Type: projectsFilterInput},
                    "first":  &graphql.ArgumentConfig{Type: graphql.Int},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    projects, err := b.svc.Projects(p.Context, decodeProjectsFilter(p.Args), optInt(p.Args, "first"))
                    if err != nil { return nil, err }
                    return conn(projects), nil
                },
            },
            "project": &graphql.Field{
                Type: b.project,
                Args: graphql.FieldConfigArgument{
                    "id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    proj, err := b.svc.Project(p.Context, str(p.Args, "id"))
                    if err != nil { return nil, err }
                    return *proj, nil
                },
            },
            "issue": &graphql.Field{
                Type: b.issue,
                Args: graphql.FieldConfigArgument{
                    "id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    iss, err := b.svc.Issue(p.Context, str(p.Args, "id"))
                    if err != nil { return nil, err }
                    return *iss, nil
                },
            },
            "issues": &graphql.Field{
                Type: b.issueConn,
                Args: graphql.FieldConfigArgument{
                    "filter":  &graphql.ArgumentConfig{Type: issuesFilterInput},
                    "first":   &graphql.ArgumentConfig{Type: graphql.Int},
                    "orderBy": &graphql.ArgumentConfig{Type: issueOrderBy},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    // orderBy is accepted but a no-op: updatedAt desc is the
                    // only ordering
                    issues, err := b.svc.Issues(p.Context, decodeIssuesFilter(p.Args), optInt(p.Args, "first"))
                    if err != nil { return nil, err }
                    return conn(issues), nil
                },
            },
            "workflowStates": &graphql.Field{
                Type: b.stateConn,
                Args: graphql.FieldConfigArgument{
                    "filter": &graphql.ArgumentConfig{Type: workflowStatesFilterInput},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    states, err := b.svc.WorkflowStates(p.Context, decodeWorkflowStatesFilter(p.Args))
                    if err != nil { return nil, err }
                    return conn(states), nil
                },
            },
        },
    })
}

func (b *builder) mutationRoot() *graphql.Object {
    projectCreateInput := graphql.NewInputObject(graphql.InputObjectConfig{
        Name: "ProjectCreateInput",
        Fields: inputFields(map[string]graphql.Input{
            "teamIds": graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
            "name":    graphql.NewNonNull(graphql.String),
        }),
    })
    issueCreateInput := graphql.NewInputObject(graphql.InputObjectConfig{
        Name: "IssueCreateInput",
        Fields: inputFields(map[string]graphql.Input{
            "teamId":      graphql.NewNonNull(graphql.String),
            "projectId":   graphql.String,
            "title":       graphql.NewNonNull(graphql.String),
            "description": graphql.String,
        }),
    })
    issueUpdateInput := graphql.NewInputObject(graphql.InputObjectConfig{
        Name: "IssueUpdateInput",
        Fields: inputFields(map[string]graphql.Input{
            "title":       graphql.String,
            "description": graphql.String,
            "stateId":     graphql.String,
        }),
    })
    commentCreateInput := graphql.NewInputObject(graphql.InputObjectConfig{
        Name: "CommentCreateInput",
        Fields: inputFields(map[string]graphql.Input{
            "issueId": graphql.NewNonNull(graphql.String),
            "body":    graphql.NewNonNull(graphql.String),
        }),
    })
    adminImportProjectInput := graphql.NewInputObject(graphql.InputObjectConfig{
        Name: "AdminImportProjectInput",
        Fields: inputFields(map[string]graphql.Input{
            "id":         graphql.NewNonNull(graphql.String),
            "name":       graphql.NewNonNull(graphql.String),
            "slugId":     graphql.NewNonNull(graphql.String),
            "state":      graphql.String,
            "archivedAt": graphql.String,
            "url":        graphql.NewNonNull(graphql.String),
        }),
    })

    success := func() *graphql.Field {
        return &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)}
    }
    projectCreatePayload := graphql.NewObject(graphql.ObjectConfig{
        Name: "ProjectCreatePayload",
        Fields: graphql.Fields{
            "success": success(),
            "project": &graphql.Field{Type: b.project},
        },
    })
    issueCreatePayload := graphql.NewObject(graphql.ObjectConfig{
        Name: "IssueCreatePayload",
        Fields: graphql.Fields{
            "success": success(),
            "issue":   &graphql.Field{Type: b.issue},
        },
    })
    commentCreatePayload := graphql.NewObject(graphql.ObjectConfig{
        Name: "CommentCreatePayload",
        Fields: graphql.Fields{
            "success": success(),
            "comment": &graphql.Field{Type: b.comment},
        },
    })
    issueUpdatePayload := graphql.NewObject(graphql.ObjectConfig{
        Name: "IssueUpdatePayload",
        Fields: graphql.Fields{
            "success": success(),
            "issue":   &graphql.Field{Type: b.issue},
        },
    })
    issueArchivePayload := graphql.NewObject(graphql.ObjectConfig{
        Name:   "IssueArchivePayload",
        Fields: graphql.Fields{"success": success()},
    })
    issueAddLabelPayload := graphql.NewObject(graphql.ObjectConfig{
        Name:   "IssueAddLabelPayload",
        Fields: graphql.Fields{"success": success()},
    })
    adminImportProjectPayload := graphql.NewObject(graphql.ObjectConfig{
        Name: "AdminImportProjectPayload",
        Fields: graphql.Fields{
            "success": success(),
            "project": &graphql.Field{Type: b.project},
        },
    })

    return graphql.NewObject(graphql.ObjectConfig{
        Name: "Mutation",
        Fields: graphql.Fields{
            "projectCreate": &graphql.Field{
                Type: projectCreatePayload,
                Args: graphql.FieldConfigArgument{
                    "input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(projectCreateInput)},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    proj, err := b.svc.CreateProject(p.Context, decodeProjectCreateInput(p.Args))
                    if err != nil { return nil, err }
                    return map[string]any{"success": true, "project": proj}, nil
                },
            },
            "issueCreate": &graphql.Field{
                Type: issueCreatePayload,
                Args: graphql.FieldConfigArgument{
                    "input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(issueCreateInput)},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    iss, err := b.svc.CreateIssue(p.Context, decodeIssueCreateInput(p.Args))
                    if err != nil { return nil, err }
                    return map[string]any{"success": true, "issue": iss}, nil
                },
            },
            "commentCreate": &graphql.Field{
                Type: commentCreatePayload,
                Args: graphql.FieldConfigArgument{
                    "input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(commentCreateInput)},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    c, err := b.svc.CreateComment(p.Context, decodeCommentCreateInput(p.Args))
                    if err != nil { return nil, err }
                    return map[string]any{"success": true, "comment": c}, nil
                },
            },
            "issueUpdate": &graphql.Field{
                Type: issueUpdatePayload,
                Args: graphql.FieldConfigArgument{
                    "id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
                    "input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(issueUpdateInput)},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    iss, err := b.svc.UpdateIssue(p.Context, str(p.Args, "id"), decodeIssueUpdateInput(p.Args))
                    if err != nil { return nil, err }
                    return map[string]any{"success": true, "issue": iss}, nil
                },
            },
            "issueArchive": &graphql.Field{
                Type: issueArchivePayload,
                Args: graphql.FieldConfigArgument{
                    "id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    ok, err := b.svc.ArchiveIssue(p.Context, str(p.Args, "id"))
                    if err != nil { return nil, err }
                    return map[string]any{"success": ok}, nil
                },
            },
            "issueAddLabel": &graphql.Field{
                Type: issueAddLabelPayload,
                Args: graphql.FieldConfigArgument{
                    "id":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
                    "labelId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    ok, err := b.svc.AddLabel(p.Context, str(p.Args, "id"), str(p.Args, "labelId"))
                    if err != nil { return nil, err }
                    return map[string]any{"success": ok}, nil
                },
            },
            "adminImportProject": &graphql.Field{
                Type: adminImportProjectPayload,
                Args: graphql.FieldConfigArgument{
                    "input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(adminImportProjectInput)},
                },
                Resolve: func(p graphql.ResolveParams) (any, error) {
                    if err := ensureAuth(p); err != nil { return nil, err }
                    proj, err := b.svc.ImportProject(p.Context, decodeProjectImportInput(p.Args))
                    if err != nil { return nil, err }
                    return map[string]any{"success": true, "project": proj}, nil
                },
            },
        },
    })
}
