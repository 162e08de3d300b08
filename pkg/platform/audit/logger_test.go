package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tenantry/pkg/domain"
	"tenantry/pkg/requestcontext"
)

type failingEmitter struct{}

func (failingEmitter) Emit(context.Context, Event) error { return errors.New("sink down") }

func TestLoggerEnrichesAndEmits(t *testing.T) {
	var buf bytes.Buffer
	recorder := NewRecorder()
	logger := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)), recorder)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithTime(ctx, now)
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.77", "curl/8.5")
	tenantID := id.TenantID(uuid.New())

	logger.Log(ctx, Event{Action: ActionTenantDeleted, TenantID: tenantID, Subject: tenantID.String()})

	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, "203.0.113.0", events[0].ClientIP)
	assert.Equal(t, "curl/8.5", events[0].UserAgent)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "tenant_deleted", line["event"])
	assert.Equal(t, "audit", line["log_type"])
	assert.Equal(t, tenantID.String(), line["tenant_id"])
	assert.Equal(t, "203.0.113.0", line["client_ip"])
}

func TestLoggerSwallowsEmitterFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)), failingEmitter{})

	logger.Log(context.Background(), Event{Action: ActionUserCreated})

	assert.Contains(t, buf.String(), "failed to emit audit event")
}

func TestNilLoggerIsNoop(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Log(context.Background(), Event{Action: ActionUserDeleted})
	})
}
