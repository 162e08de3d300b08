package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "tenantry/pkg/domain"
)

func TestCaller(t *testing.T) {
	t.Run("nil caller can do nothing", func(t *testing.T) {
		var c *Caller
		assert.False(t, c.Can(CapabilityManageTenant))
		assert.False(t, c.IsAgent())
	})

	t.Run("capability and class are independent", func(t *testing.T) {
		c := &Caller{Capabilities: []Capability{CapabilityManageTenant}, AccountClass: AccountClassContact}
		assert.True(t, c.Can(CapabilityManageTenant))
		assert.False(t, c.IsAgent())
	})

	t.Run("round trips through context", func(t *testing.T) {
		c := &Caller{TenantID: id.TenantID(uuid.New()), AccountClass: AccountClassAgent}
		ctx := WithCaller(context.Background(), c)
		assert.Same(t, c, FromContext(ctx))
		assert.Nil(t, FromContext(context.Background()))
	})
}
