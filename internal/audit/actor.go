package audit

import "context"

// Actor identifies who triggered a change, carried from the HTTP layer to
// the use cases.
type Actor struct {
	ID        *uint
	RequestID string
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

// EventFor fills the actor fields of ev from ctx.
func EventFor(ctx context.Context, ev Event) Event {
	a := ActorFrom(ctx)
	ev.ActorID = a.ID
	ev.RequestID = a.RequestID
	return ev
}
