package events

import (
	"context"
	"time"

	"github.com/morezero/registry-notifier/pkg/metrics"
)

// MetricsPublisher wraps an EventPublisher with metrics collection.
type MetricsPublisher struct {
	publisher EventPublisher
	registry  *metrics.Registry
}

// NewMetricsPublisher creates an instrumented publisher. The broker connection gauge of registry
// follows publisher.IsConnected from now on.
func NewMetricsPublisher(publisher EventPublisher, registry *metrics.Registry) *MetricsPublisher {
	registry.ObserveConnection(publisher.IsConnected)
	return &MetricsPublisher{publisher: publisher, registry: registry}
}

// Publish implements EventPublisher.Publish with metrics collection.
func (p *MetricsPublisher) Publish(ctx context.Context, topic, payload string) error {
	start := time.Now()
	err := p.publisher.Publish(ctx, topic, payload)
	p.registry.RecordPublish(topic, time.Since(start), err)
	return err
}

// IsConnected reports the wrapped publisher's connection state.
func (p *MetricsPublisher) IsConnected() bool {
	return p.publisher.IsConnected()
}

// Close closes the wrapped publisher.
func (p *MetricsPublisher) Close() error {
	return p.publisher.Close()
}
