package actorctx

import (
	"context"

	"github.com/geocoder89/campushub/internal/policy"
)

type ctxKey struct{}

// WithActor attaches the authenticated caller to a request context.
func WithActor(ctx context.Context, a policy.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func ActorFrom(ctx context.Context) (policy.Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(policy.Actor)
	return a, ok && a.Authenticated()
}
