package obscontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", RequestIDFromContext(ctx))

	ctx = WithRequestID(ctx, " req-1 ")
	ctx = WithGuildID(ctx, "guild-7")
	ctx = WithActorID(ctx, "user-9")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "guild-7", GuildIDFromContext(ctx))
	assert.Equal(t, "user-9", ActorIDFromContext(ctx))
}
