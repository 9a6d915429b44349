package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" quotationofficer ")
	assert.True(t, ok)
	assert.Equal(t, RoleQuotationOfficer, r)
	assert.True(t, r.IsStaff())

	r, ok = ParseRole("customer")
	assert.True(t, ok)
	assert.False(t, r.IsStaff())

	_, ok = ParseRole("pirate")
	assert.False(t, ok)
}

func TestActorContextRoundTrip(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithActor(context.Background(), Actor{ID: 7, Role: RoleManager})
	actor, ok := ActorFromContext(ctx)
	assert.True(t, ok)
	assert.True(t, actor.IsOfficer())
	assert.False(t, actor.IsCustomer())
}
