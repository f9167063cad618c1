package event

import "context"

// Producer emits security events. Callers use it best-effort: log and ignore
// errors.
type Producer interface {
	// Emit sends a single event. Implementations may block briefly.
	Emit(ctx context.Context, e *SecurityEvent) error
	// Close releases resources. Safe to call if already closed.
	Close() error
}

// NopProducer discards events. Used when no brokers are configured.
type NopProducer struct{}

func (NopProducer) Emit(context.Context, *SecurityEvent) error { return nil }
func (NopProducer) Close() error                               { return nil }
