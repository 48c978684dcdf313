package services

import "context"

type actorKey struct{}

// WithActor records the resolved caller identity on ctx. The service only
// uses it to attribute published events.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
