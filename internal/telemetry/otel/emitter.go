package otel

import (
	"context"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"submitiq/backend/internal/event"
)

// NewEventEmitter returns an event.Producer that writes security events as
// OTel log records via the given LoggerProvider. Used alongside (or instead
// of) the Kafka producer when an OTLP collector is configured.
// If provider is nil, a no-op producer is returned.
func NewEventEmitter(provider *sdklog.LoggerProvider) event.Producer {
	if provider == nil {
		return event.NopProducer{}
	}
	return &otelEmitter{logger: provider.Logger("submitiq.security")}
}

type otelEmitter struct {
	logger otellog.Logger
}

// Emit converts the event to an OTel log record. Best-effort.
func (e *otelEmitter) Emit(ctx context.Context, ev *event.SecurityEvent) error {
	if ev == nil {
		return nil
	}
	rec := otellog.Record{}
	if !ev.CreatedAt.IsZero() {
		rec.SetTimestamp(ev.CreatedAt)
	}
	rec.SetBody(otellog.StringValue(ev.Detail))
	if ev.EventType != "" {
		rec.AddAttributes(otellog.String("event_type", ev.EventType))
	}
	if ev.AccountID != "" {
		rec.AddAttributes(otellog.String("account_id", ev.AccountID))
	}
	if ev.SessionID != "" {
		rec.AddAttributes(otellog.String("session_id", ev.SessionID))
	}
	if ev.IP != "" {
		rec.AddAttributes(otellog.String("ip", ev.IP))
	}
	if ev.Source != "" {
		rec.AddAttributes(otellog.String("source", ev.Source))
	}
	e.logger.Emit(ctx, rec)
	return nil
}

func (e *otelEmitter) Close() error { return nil }
