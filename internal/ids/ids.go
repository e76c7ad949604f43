// Package ids generates the identifier shapes the API hands out: opaque
// prefixed ids, URL slugs and team keys. Anything that needs storage to stay
// unique (issue numbers, slug probing) lives in the service layer.
package ids

import (
    "strings"

    "github.com/google/uuid"
)

// NewOpaqueID returns prefix + "_" + a 12 character random token. Collisions
// are negligible at this length; ids are never checked against existing rows
// before insert.
func NewOpaqueID(prefix string) string {
    token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
    return prefix + "_" + token
}

// Slugify lowercases the name, collapses every run of non-alphanumerics to a
// single hyphen and trims the ends. An empty result falls back to "project".
func Slugify(input string) string {
    var b strings.Builder
    b.Grow(len(input))
    prevDash := false
    for _, c := range input {
        switch {
        case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
            b.WriteRune(c)
            prevDash = false
        case c >= 'A' && c <= 'Z':
            b.WriteRune(c + ('a' - 'A'))
            prevDash = false
        default:
            if !prevDash { b.WriteByte('-') }
            prevDash = true
        }
    }
    out := strings.Trim(b.String(), "-")
    if out == "" { return "project" }
    return out
}

// SanitizeTeamKey keeps ASCII letters and digits, uppercased. Empty input
// falls back to "SYN".
func SanitizeTeamKey(input string) string {
    var b strings.Builder
    for _, c := range input {
        switch {
        case c >= 'a' && c <= 'z':
            b.WriteRune(c - ('a' - 'A'))
        case c >= 'A' && c <= 'Z' || c >= '0' && c <= '9':
            b.WriteRune(c)
        }
    }
    if b.Len() == 0 { return "SYN" }
    return b.String()
}
