package repo

import (
    "strings"

    "github.com/JoshuaPurtell/sublinear/internal/domain"
)

// whereBuilder collects predicate fragments and their positional parameters.
// Fragments are combined with AND only; an absent comparator contributes
// nothing.
type whereBuilder struct {
    clauses []string
    params  []any
}

func (w *whereBuilder) add(clause string, args ...any) {
    w.clauses = append(w.clauses, clause)
    w.params = append(w.params, args...)
}

func (w *whereBuilder) stringCmp(column string, c *domain.StringComparator) {
    if c == nil { return }
    // eq with an empty string means "not specified", never an empty match
    if c.Eq != nil && *c.Eq != "" { w.add(column+" = ?", *c.Eq) }
    if c.Neq != nil { w.add(column+" <> ?", *c.Neq) }
}

func (w *whereBuilder) idCmp(column string, c *domain.IDComparator) {
    if c == nil || c.Eq == nil || *c.Eq == "" { return }
    w.add(column+" = ?", *c.Eq)
}

// numberIn skips an empty set entirely: it matches everything, not nothing.
func (w *whereBuilder) numberIn(column string, c *domain.NumberComparator) {
    if c == nil || len(c.In) == 0 { return }
    placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(c.In)), ", ")
    args := make([]any, 0, len(c.In))
    for _, n := range c.In {
        args = append(args, int64(n))
    }
    w.add(column+" IN ("+placeholders+")", args...)
}

func (w *whereBuilder) where() string {
    if len(w.clauses) == 0 { return "" }
    return " WHERE " + strings.Join(w.clauses, " AND ")
}

func clampLimit(first *int) int {
    n := 50
    if first != nil { n = *first }
    if n < 1 { n = 1 }
    if n > 500 { n = 500 }
    return n
}
