package events

import "context"

// EventPublisher delivers a payload on a topic of the broker. Publish returns once the message
// has been handed to the transport; it does not wait for the broker to process it.
type EventPublisher interface {
	Publish(ctx context.Context, topic, payload string) error
	IsConnected() bool
	Close() error
}

// NoOpPublisher is an EventPublisher that does nothing (for in-process usage without a broker).
type NoOpPublisher struct{}

// Publish is a no-op.
func (p *NoOpPublisher) Publish(_ context.Context, _, _ string) error {
	return nil
}

// IsConnected always reports true.
func (p *NoOpPublisher) IsConnected() bool {
	return true
}

// Close is a no-op.
func (p *NoOpPublisher) Close() error {
	return nil
}

// CallbackPublisher is an EventPublisher that calls a callback function (for testing).
type CallbackPublisher struct {
	callback func(ctx context.Context, topic, payload string) error
}

// NewCallbackPublisher creates a new CallbackPublisher.
func NewCallbackPublisher(cb func(ctx context.Context, topic, payload string) error) *CallbackPublisher {
	return &CallbackPublisher{callback: cb}
}

// Publish calls the callback.
func (p *CallbackPublisher) Publish(ctx context.Context, topic, payload string) error {
	return p.callback(ctx, topic, payload)
}

// IsConnected always reports true.
func (p *CallbackPublisher) IsConnected() bool {
	return true
}

// Close is a no-op.
func (p *CallbackPublisher) Close() error {
	return nil
}
