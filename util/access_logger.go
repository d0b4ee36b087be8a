package util

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ariebrainware/patient-registry/store"
	"github.com/rs/zerolog"
)

// AccessLogCollection receives persisted access events when persistence is enabled.
const AccessLogCollection = "access_log"

// AccessEventType represents different types of access events
type AccessEventType string

const (
	EventEndpointCall        AccessEventType = "ENDPOINT_CALL"
	EventPatientCreated      AccessEventType = "PATIENT_CREATED"
	EventValidationFailed    AccessEventType = "VALIDATION_FAILED"
	EventStoreFailure        AccessEventType = "STORE_FAILURE"
	EventRateLimitExceeded   AccessEventType = "RATE_LIMIT_EXCEEDED"
	EventRateLimitCheckError AccessEventType = "RATE_LIMIT_CHECK_ERROR"
)

// AccessEvent represents an access event to be logged
type AccessEvent struct {
	EventType AccessEventType
	IP        string
	UserAgent string
	Message   string
	Details   map[string]interface{}
}

type accessLogEntry struct {
	EventType string                 `bson:"event_type"`
	IP        string                 `bson:"ip"`
	UserAgent string                 `bson:"user_agent"`
	Message   string                 `bson:"message"`
	Details   map[string]interface{} `bson:"details,omitempty"`
	CreatedAt time.Time              `bson:"created_at"`
}

// AccessLogger writes access events to the log and, when a sink is set, to a store collection.
type AccessLogger struct {
	logger zerolog.Logger
	sink   store.Collection
}

// NewAccessLogger returns an AccessLogger. sink may be nil to only log.
func NewAccessLogger(logger zerolog.Logger, sink store.Collection) *AccessLogger {
	return &AccessLogger{
		logger: logger.With().Str("component", "access").Logger(),
		sink:   sink,
	}
}

const maxLogValueLen = 200

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\t", " ")
	// Truncate very long values to prevent log flooding
	if len(value) > maxLogValueLen {
		cut := maxLogValueLen
		for cut > 0 && !utf8.RuneStart(value[cut]) {
			cut--
		}
		value = value[:cut] + "..."
	}
	return value
}

// Log records event. Persistence is best-effort and never fails the caller.
func (l *AccessLogger) Log(ctx context.Context, event AccessEvent) {
	if l == nil {
		return
	}

	entry := accessLogEntry{
		EventType: sanitizeLogValue(string(event.EventType)),
		IP:        sanitizeLogValue(event.IP),
		UserAgent: sanitizeLogValue(event.UserAgent),
		Message:   sanitizeLogValue(event.Message),
		Details:   event.Details,
		CreatedAt: time.Now().UTC(),
	}

	evt := l.logger.Info()
	if event.EventType == EventStoreFailure || event.EventType == EventRateLimitCheckError {
		evt = l.logger.Warn()
	}
	evt.Str("event", entry.EventType).
		Str("ip", entry.IP).
		Str("user_agent", entry.UserAgent).
		Fields(event.Details).
		Msg(entry.Message)

	// A store failure is not written back to the store that just failed.
	if l.sink == nil || event.EventType == EventStoreFailure {
		return
	}
	if _, err := l.sink.InsertOne(ctx, entry); err != nil {
		l.logger.Warn().Err(err).Msg("failed to persist access event")
	}
}

// LogPatientCreated logs a stored patient submission
func (l *AccessLogger) LogPatientCreated(ctx context.Context, ip, userAgent, patientID string) {
	l.Log(ctx, AccessEvent{
		EventType: EventPatientCreated,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "Patient record created",
		Details:   map[string]interface{}{"patient_id": patientID},
	})
}

// LogValidationFailed logs a rejected patient submission with the offending fields
func (l *AccessLogger) LogValidationFailed(ctx context.Context, ip, userAgent string, fields []string) {
	l.Log(ctx, AccessEvent{
		EventType: EventValidationFailed,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "Patient submission rejected",
		Details:   map[string]interface{}{"fields": fields},
	})
}

// LogStoreFailure logs a failed store operation
func (l *AccessLogger) LogStoreFailure(ctx context.Context, ip, operation string, err error) {
	l.Log(ctx, AccessEvent{
		EventType: EventStoreFailure,
		IP:        ip,
		Message:   fmt.Sprintf("Store operation %s failed: %v", operation, err),
	})
}

// LogRateLimitExceeded logs when rate limit is exceeded
func (l *AccessLogger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Log(ctx, AccessEvent{
		EventType: EventRateLimitExceeded,
		IP:        ip,
		Message:   fmt.Sprintf("Rate limit exceeded for endpoint: %s", endpoint),
	})
}
