package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tenantry/pkg/domain-errors"
)

func TestParse(t *testing.T) {
	valid := uuid.New()

	cases := []struct {
		in      string
		wantMsg string
	}{
		{in: "", wantMsg: "workspace ID cannot be empty"},
		{in: "not-a-uuid", wantMsg: "invalid workspace ID"},
		{in: uuid.Nil.String(), wantMsg: "workspace ID cannot be nil"},
	}
	for _, tc := range cases {
		_, err := ParseWorkspaceID(tc.in)
		require.Error(t, err, tc.in)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Contains(t, err.Error(), tc.wantMsg)
	}

	got, err := ParseGroupID(valid.String())
	require.NoError(t, err)
	assert.Equal(t, GroupID(valid), got)
	assert.Equal(t, valid.String(), got.String())
	assert.False(t, got.IsNil())
	assert.True(t, TenantID{}.IsNil())
}

func TestIDsTravelAsStrings(t *testing.T) {
	type row struct {
		User   UserID   `json:"user"`
		Tenant TenantID `json:"tenant"`
	}
	in := row{User: UserID(uuid.New()), Tenant: TenantID(uuid.New())}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":"`+in.User.String()+`","tenant":"`+in.Tenant.String()+`"}`, string(raw))

	var out row
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)

	assert.Error(t, json.Unmarshal([]byte(`{"user":"nope"}`), &out))
}
