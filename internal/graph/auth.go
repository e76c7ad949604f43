package graph

import (
    "context"

    "github.com/JoshuaPurtell/sublinear/internal/services"
    "github.com/graphql-go/graphql"
)

type ctxKey int

const authKey ctxKey = iota

// WithAuthorized records the transport layer's credential decision on the
// request context. Absent value means not authorized.
func WithAuthorized(ctx context.Context, ok bool) context.Context {
    return context.WithValue(ctx, authKey, ok)
}

func authorized(ctx context.Context) bool {
    ok, _ := ctx.Value(authKey).(bool)
    return ok
}

// ensureAuth runs first in every query and mutation resolver; a rejected
// operation performs no reads or writes.
func ensureAuth(p graphql.ResolveParams) error {
    if authorized(p.Context) { return nil }
    return services.ErrUnauthorized
}
