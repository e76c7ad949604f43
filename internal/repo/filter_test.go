package repo

import (
    "testing"

    "github.com/JoshuaPurtell/sublinear/internal/domain"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func TestWhereBuilder_Empty(t *testing.T) {
    wb := &whereBuilder{}
    if got := wb.where(); got != "" {
        t.Fatalf("expected empty where, got %q", got)
    }
    if len(wb.params) != 0 { t.Fatalf("expected no params, got %v", wb.params) }
}

func TestWhereBuilder_StringCmp(t *testing.T) {
    wb := &whereBuilder{}
    wb.stringCmp("name", &domain.StringComparator{Eq: strp("Synth")})
    if got := wb.where(); got != " WHERE name = ?" {
        t.Fatalf("unexpected where: %q", got)
    }
    if len(wb.params) != 1 || wb.params[0] != "Synth" {
        t.Fatalf("unexpected params: %v", wb.params)
    }
}

func TestWhereBuilder_EmptyEqSkipped(t *testing.T) {
    wb := &whereBuilder{}
    wb.stringCmp("name", &domain.StringComparator{Eq: strp("")})
    wb.idCmp("team_id", &domain.IDComparator{Eq: strp("")})
    if got := wb.where(); got != "" {
        t.Fatalf("empty eq should contribute nothing, got %q", got)
    }
}

func TestWhereBuilder_NeqNotSkippedWhenEmpty(t *testing.T) {
    wb := &whereBuilder{}
    wb.stringCmp("ws.name", &domain.StringComparator{Neq: strp("Done")})
    if got := wb.where(); got != " WHERE ws.name <> ?" {
        t.Fatalf("unexpected where: %q", got)
    }
}

func TestWhereBuilder_NumberInEmptySkipped(t *testing.T) {
    wb := &whereBuilder{}
    wb.numberIn("i.number", &domain.NumberComparator{In: []float64{}})
    wb.numberIn("i.number", nil)
    if got := wb.where(); got != "" {
        t.Fatalf("empty set should match everything, got %q", got)
    }
}

func TestWhereBuilder_NumberIn(t *testing.T) {
    wb := &whereBuilder{}
    wb.numberIn("i.number", &domain.NumberComparator{In: []float64{1, 2, 3}})
    if got := wb.where(); got != " WHERE i.number IN (?, ?, ?)" {
        t.Fatalf("unexpected where: %q", got)
    }
    if len(wb.params) != 3 || wb.params[0] != int64(1) || wb.params[2] != int64(3) {
        t.Fatalf("unexpected params: %v", wb.params)
    }
}

func TestWhereBuilder_ParamOrder(t *testing.T) {
    wb := &whereBuilder{}
    wb.add("i.archived = 0")
    wb.idCmp("i.team_id", &domain.IDComparator{Eq: strp("team_default")})
    wb.stringCmp("ws.name", &domain.StringComparator{Eq: strp("Backlog"), Neq: strp("Done")})
    want := " WHERE i.archived = 0 AND i.team_id = ? AND ws.name = ? AND ws.name <> ?"
    if got := wb.where(); got != want {
        t.Fatalf("got %q, want %q", got, want)
    }
    if len(wb.params) != 3 || wb.params[0] != "team_default" || wb.params[1] != "Backlog" || wb.params[2] != "Done" {
        t.Fatalf("params out of order: %v", wb.params)
    }
}

func TestClampLimit(t *testing.T) {
    cases := []struct {
        in   *int
        want int
    }{
        {nil, 50},
        {intp(0), 1},
        {intp(-5), 1},
        {intp(10000), 500},
        {intp(7), 7},
        {intp(500), 500},
    }
    for _, c := range cases {
        if got := clampLimit(c.in); got != c.want {
            t.Fatalf("clampLimit(%v) = %d, want %d", c.in, got, c.want)
        }
    }
}
