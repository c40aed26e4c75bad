package auth

import (
	"context"

	"github.com/clinrec/clinrec/internal/access"
)

type contextKey string

const actorKey contextKey = "actor"

// WithActor returns a context carrying the authenticated actor.
func WithActor(ctx context.Context, actor access.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the actor bound to the request context, or the
// anonymous actor when authentication never ran.
func ActorFromContext(ctx context.Context) access.Actor {
	actor, ok := ctx.Value(actorKey).(access.Actor)
	if !ok {
		return access.Anonymous
	}
	return actor
}
