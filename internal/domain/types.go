package domain

type User struct {
    ID    string
    Name  string
    Email string
}

type Team struct {
    ID   string
    Name string
    Key  string
}

type WorkflowState struct {
    ID       string
    TeamID   string
    Name     string
    Kind     string
    Position int
}

type Project struct {
    ID         string
    Name       string
    SlugID     *string
    State      *string
    ArchivedAt *string
    URL        *string
}

type Issue struct {
    ID          string
    TeamID      string
    Number      int
    Identifier  string
    Title       string
    Description *string
    URL         string
    State       WorkflowState
    Project     *Project
    Assignee    *User
    UpdatedAt   *string
}

type Label struct {
    ID   string
    Name string
}

type Comment struct {
    ID        string
    IssueID   string
    Body      string
    URL       string
    CreatedAt string
}

// Filter comparators. A nil comparator, or a nil leaf inside one, contributes
// no predicate.

type StringComparator struct {
    Eq  *string
    Neq *string
}

type IDComparator struct {
    Eq *string
}

type NumberComparator struct {
    In []float64
}

type TeamFilter struct {
    ID   *IDComparator
    Key  *StringComparator
    Name *StringComparator
}

type ProjectFilter struct {
    ID   *IDComparator
    Name *StringComparator
}

type StateFilter struct {
    Name *StringComparator
}

type TeamsFilter struct {
    Name *StringComparator
}

type ProjectsFilter struct {
    Name *StringComparator
}

type IssuesFilter struct {
    Team    *TeamFilter
    Project *ProjectFilter
    State   *StateFilter
    Number  *NumberComparator
}

type WorkflowStatesFilter struct {
    Team *TeamFilter
}

// Mutation inputs.

type ProjectCreateInput struct {
    TeamIDs []string
    Name    string
}

type IssueCreateInput struct {
    TeamID      string
    ProjectID   *string
    Title       string
    Description *string
}

type IssueUpdateInput struct {
    Title       *string
    Description *string
    StateID     *string
}

type CommentCreateInput struct {
    IssueID string
    Body    string
}

type ProjectImportInput struct {
    ID         string
    Name       string
    SlugID     string
    State      *string
    ArchivedAt *string
    URL        string
}
