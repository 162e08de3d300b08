package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tenantry/pkg/domain-errors"
)

type listRequest struct {
	Limit   int      `query:"limit" validate:"limit"`
	Offset  int      `validate:"min=0"`
	OwnerID string   `json:"owner_id,omitempty" validate:"omitempty,uuid"`
	IDs     []string `query:"ids" validate:"max=2,dive,uuid"`
	Label   string   `query:"label" validate:"omitempty,notblank"`
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Validate(&listRequest{Limit: 10}))
	})

	t.Run("reports every failing field under its wire name", func(t *testing.T) {
		err := Validate(&listRequest{Limit: 500, Offset: -1, OwnerID: "nope", Label: "  "})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		assert.Equal(t, []dErrors.FieldError{
			{Field: "limit", Rule: "limit", Message: "limit must be between 0 and 200"},
			{Field: "offset", Rule: "min", Message: "offset must be at least 0"},
			{Field: "owner_id", Rule: "uuid", Message: "owner_id must be a valid uuid"},
			{Field: "label", Rule: "notblank", Message: "label must not be blank"},
		}, dErrors.Fields(err))
	})

	t.Run("dives into lists", func(t *testing.T) {
		fields := dErrors.Fields(Validate(&listRequest{IDs: []string{"x"}}))
		require.Len(t, fields, 1)
		assert.Equal(t, "ids[0]", fields[0].Field)
		assert.Equal(t, "uuid", fields[0].Rule)

		fields = dErrors.Fields(Validate(&listRequest{IDs: make([]string, 3)}))
		require.Len(t, fields, 1)
		assert.Equal(t, "ids must be at most 2", fields[0].Message)
	})
}
