/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "fmt"
    "strconv"
    "strings"
    "time"

    "github.com/JoshuaPurtell/sublinear/internal/config"
    "github.com/JoshuaPurtell/sublinear/internal/domain"
    "github.com/JoshuaPurtell/sublinear/internal/ids"
    "github.com/JoshuaPurtell/sublinear/internal/repo"
    "github.com/rs/zerolog"
)

type Service struct {
    cfg  config.Config
    log  zerolog.Logger
    repo *repo.Repository
}

func NewService(cfg config.Config, log zerolog.Logger, r *repo.Repository) *Service {
    return &Service{cfg: cfg, log: log, repo: r}
}

func nowISO() string { return time.Now().UTC().Format(time.RFC3339) }

func (s *Service) entityURL(kind, ref string) string {
    return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + kind + "/" + ref
}

// Queries

func (s *Service) Viewer(ctx context.Context) (domain.User, error) {
    u, err := s.repo.GetViewer(ctx)
    if err != nil { return domain.User{}, err }
    if u == nil { return domain.User{}, fmt.Errorf("no viewer configured") }
    return *u, nil
}

func (s *Service) Teams(ctx context.Context, f *domain.TeamsFilter, first *int) ([]domain.Team, error) {
    return s.repo.ListTeams(ctx, f, first)
}

// Team returns nil without error when the id matches nothing; the query
// surface renders that as null.
func (s *Service) Team(ctx context.Context, id string) (*domain.Team, error) {
    return s.repo.GetTeam(ctx, id)
}

func (s *Service) Projects(ctx context.Context, f *domain.ProjectsFilter, first *int) ([]domain.Project, error) {
    return s.repo.ListProjects(ctx, f, first)
}

func (s *Service) Project(ctx context.Context, id string) (*domain.Project, error) {
    p, err := s.repo.GetProject(ctx, id)
    if err != nil { return nil, err }
    if p == nil { return nil, &NotFoundError{Kind: "Project"} }
    return p, nil
}

func (s *Service) Issue(ctx context.Context, id string) (*domain.Issue, error) {
    iss, err := s.repo.GetIssue(ctx, id)
    if err != nil { return nil, err }
    if iss == nil { return nil, &NotFoundError{Kind: "Issue"} }
    return iss, nil
}

func (s *Service) Issues(ctx context.Context, f *domain.IssuesFilter, first *int) ([]domain.Issue, error) {
    return s.repo.ListIssues(ctx, f, first)
}

func (s *Service) WorkflowStates(ctx context.Context, f *domain.WorkflowStatesFilter) ([]domain.WorkflowState, error) {
    return s.repo.ListWorkflowStates(ctx, f)
}

// Lazy sub-collections, one scoped query each, invoked only when the caller
// asks for the field.

func (s *Service) UserTeams(ctx context.Context, userID string, first *int) ([]domain.Team, error) {
    return s.repo.ListUserTeams(ctx, userID, first)
}

func (s *Service) TeamStates(ctx context.Context, teamID string) ([]domain.WorkflowState, error) {
    return s.repo.ListTeamStates(ctx, teamID)
}

func (s *Service) ProjectIssues(ctx context.Context, projectID string, first *int) ([]domain.Issue, error) {
    return s.repo.ListProjectIssues(ctx, projectID, first)
}

func (s *Service) IssueLabels(ctx context.Context, issueID string) ([]domain.Label, error) {
    return s.repo.ListIssueLabels(ctx, issueID)
}

func (s *Service) IssueComments(ctx context.Context, issueID string, first *int) ([]domain.Comment, error) {
    return s.repo.ListIssueComments(ctx, issueID, first)
}

// Mutations

func (s *Service) CreateProject(ctx context.Context, in domain.ProjectCreateInput) (domain.Project, error) {
    if len(in.TeamIDs) == 0 {
        return domain.Project{}, validationf("teamIds must contain at least one team id")
    }
    for _, teamID := range in.TeamIDs {
        ok, err := s.repo.TeamExists(ctx, teamID)
        if err != nil { return domain.Project{}, err }
        if !ok { return domain.Project{}, validationf("team not found: %s", teamID) }
    }

    slug, err := s.allocateProjectSlug(ctx, in.Name)
    if err != nil { return domain.Project{}, err }

    id := ids.NewOpaqueID("project")
    url := s.entityURL("project", id)
    state := "planned"
    p := domain.Project{ID: id, Name: in.Name, SlugID: &slug, State: &state, URL: &url}
    if err := s.repo.InsertProject(ctx, p, nowISO()); err != nil {
        return domain.Project{}, err
    }
    for _, teamID := range in.TeamIDs {
        if err := s.repo.LinkProjectTeam(ctx, id, teamID); err != nil {
            return domain.Project{}, err
        }
    }
    s.log.Info().Str("project", id).Str("slug", slug).Msg("project created")
    return p, nil
}

func (s *Service) CreateIssue(ctx context.Context, in domain.IssueCreateInput) (domain.Issue, error) {
    team, err := s.repo.GetTeam(ctx, in.TeamID)
    if err != nil { return domain.Issue{}, err }
    if team == nil { return domain.Issue{}, validationf("team not found: %s", in.TeamID) }

    if in.ProjectID != nil {
        ok, err := s.repo.ProjectExists(ctx, *in.ProjectID)
        if err != nil { return domain.Issue{}, err }
        if !ok { return domain.Issue{}, validationf("project not found: %s", *in.ProjectID) }
    }

    state, err := s.repo.DefaultState(ctx, team.ID)
    if err != nil { return domain.Issue{}, err }
    if state == nil { return domain.Issue{}, fmt.Errorf("team %s has no workflow states", team.ID) }

    // check-then-act: the UNIQUE constraint on identifier rejects the loser
    // of a concurrent race; callers should treat that as retryable.
    number, err := s.nextIssueNumber(ctx, team.ID)
    if err != nil { return domain.Issue{}, err }
    identifier := team.Key + "-" + strconv.Itoa(number)

    id := ids.NewOpaqueID("issue")
    iss := domain.Issue{
        ID:         id,
        TeamID:     team.ID,
        Number:     number,
        Identifier: identifier,
        Title:      in.Title,
        Description: in.Description,
        URL:        s.entityURL("issue", identifier),
        State:      *state,
    }
    if err := s.repo.InsertIssue(ctx, iss, in.ProjectID, nowISO()); err != nil {
        return domain.Issue{}, err
    }

    created, err := s.repo.GetIssue(ctx, id)
    if err != nil { return domain.Issue{}, err }
    if created == nil { return domain.Issue{}, fmt.Errorf("failed to load created issue") }
    s.log.Info().Str("issue", identifier).Msg("issue created")
    return *created, nil
}

func (s *Service) CreateComment(ctx context.Context, in domain.CommentCreateInput) (domain.Comment, error) {
    ok, err := s.repo.IssueExists(ctx, in.IssueID)
    if err != nil { return domain.Comment{}, err }
    if !ok { return domain.Comment{}, validationf("issue not found: %s", in.IssueID) }

    id := ids.NewOpaqueID("comment")
    c := domain.Comment{
        ID:        id,
        IssueID:   in.IssueID,
        Body:      in.Body,
        URL:       s.entityURL("comment", id),
        CreatedAt: nowISO(),
    }
    if err := s.repo.InsertComment(ctx, c); err != nil {
        return domain.Comment{}, err
    }
    return c, nil
}

func (s *Service) UpdateIssue(ctx context.Context, id string, in domain.IssueUpdateInput) (domain.Issue, error) {
    changed, err := s.repo.UpdateIssue(ctx, id, in, nowISO())
    if err != nil { return domain.Issue{}, err }
    if !changed { return domain.Issue{}, validationf("issue not found: %s", id) }

    iss, err := s.repo.GetIssue(ctx, id)
    if err != nil { return domain.Issue{}, err }
    if iss == nil { return domain.Issue{}, fmt.Errorf("failed to load updated issue") }
    return *iss, nil
}

// ArchiveIssue soft-deletes. A missing id is success=false, not an error.
func (s *Service) ArchiveIssue(ctx context.Context, id string) (bool, error) {
    return s.repo.ArchiveIssue(ctx, id, nowISO())
}

// AddLabel attaches a label to an issue, creating the label row on first use
// (the label's name defaults to its id). Unknown issue is success=false.
func (s *Service) AddLabel(ctx context.Context, issueID, labelID string) (bool, error) {
    ok, err := s.repo.IssueExists(ctx, issueID)
    if err != nil { return false, err }
    if !ok { return false, nil }

    if err := s.repo.EnsureLabel(ctx, labelID, labelID); err != nil { return false, err }
    if err := s.repo.LinkIssueLabel(ctx, issueID, labelID); err != nil { return false, err }
    return true, nil
}

// ImportProject upserts by id; any other project holding the same slug is
// deleted first so imports own their slug 1:1.
func (s *Service) ImportProject(ctx context.Context, in domain.ProjectImportInput) (domain.Project, error) {
    if err := s.repo.DeleteProjectsBySlugExcept(ctx, in.SlugID, in.ID); err != nil {
        return domain.Project{}, err
    }
    if err := s.repo.UpsertProject(ctx, in, nowISO()); err != nil {
        return domain.Project{}, err
    }
    p, err := s.repo.GetProject(ctx, in.ID)
    if err != nil { return domain.Project{}, err }
    if p == nil { return domain.Project{}, fmt.Errorf("failed to load imported project") }
    return *p, nil
}

// Allocation helpers backed by storage.

func (s *Service) nextIssueNumber(ctx context.Context, teamID string) (int, error) {
    max, err := s.repo.MaxIssueNumber(ctx, teamID)
    if err != nil { return 0, err }
    return max + 1, nil
}

// allocateProjectSlug probes slug candidates until a free one is found,
// suffixing -2, -3, ... past the base. Not atomic under concurrent creation;
// the UNIQUE constraint on slug_id backstops the race.
func (s *Service) allocateProjectSlug(ctx context.Context, name string) (string, error) {
    base := ids.Slugify(name)
    candidate := base
    for i := 2; ; i++ {
        taken, err := s.repo.SlugExists(ctx, candidate)
        if err != nil { return "", err }
        if !taken { return candidate, nil }
        candidate = base + "-" + strconv.Itoa(i)
    }
}
