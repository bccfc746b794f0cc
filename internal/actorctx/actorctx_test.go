package actorctx

import (
	"context"
	"testing"

	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/geocoder89/campushub/internal/policy"
)

func TestActorRoundTrip(t *testing.T) {
	if _, ok := ActorFrom(context.Background()); ok {
		t.Fatalf("empty context must not carry an actor")
	}

	ctx := WithActor(context.Background(), policy.Actor{ID: "u1", Role: user.RoleStaff})
	a, ok := ActorFrom(ctx)
	if !ok || a.ID != "u1" || a.Role != user.RoleStaff {
		t.Fatalf("got %+v %v", a, ok)
	}

	if _, ok := ActorFrom(WithActor(context.Background(), policy.Actor{})); ok {
		t.Fatalf("anonymous actor must not count as authenticated")
	}
}
