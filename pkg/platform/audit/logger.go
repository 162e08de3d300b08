package audit

import (
	"context"
	"log/slog"
	"sync"

	"tenantry/pkg/platform/privacy"
	"tenantry/pkg/requestcontext"
)

// Emitter persists or forwards audit events.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Logger writes audit events as structured log lines and, when an emitter is
// configured, hands them on. Emission failures are logged, never returned.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

// NewLogger creates an audit logger. Both arguments are optional.
func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{textLogger: textLogger, emitter: emitter}
}

// Log enriches event with the request id and time from ctx and records it.
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.ClientIP == "" {
		if ip := requestcontext.ClientIP(ctx); ip != "" {
			event.ClientIP = privacy.AnonymizeIP(ip)
		}
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}

	if l.textLogger != nil {
		l.textLogger.InfoContext(ctx, string(event.Action),
			"event", string(event.Action),
			"log_type", "audit",
			"tenant_id", event.TenantID.String(),
			"actor_id", event.ActorID.String(),
			"subject", event.Subject,
			"request_id", event.RequestID,
			"client_ip", event.ClientIP,
		)
	}

	if l.emitter == nil {
		return
	}
	if err := l.emitter.Emit(ctx, event); err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", string(event.Action),
		)
	}
}

// Recorder is an in-memory Emitter, used by tests and the development server.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything emitted so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
