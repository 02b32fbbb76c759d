package events

import (
	"context"
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"
)

const commsPublisherLogPrefix = "events:comms_publisher"

// CommsPublisherOpts configures CommsPublisher. Nil or zero values use defaults.
type CommsPublisherOpts struct {
	Logger *slog.Logger
}

// CommsPublisher publishes payloads to COMMS (NATS) subjects named after the topic.
type CommsPublisher struct {
	nc     *comms.Conn
	logger *slog.Logger
}

// NewCommsPublisher creates a new CommsPublisher. Pass nil for opts to use defaults.
func NewCommsPublisher(nc *comms.Conn, opts *CommsPublisherOpts) (*CommsPublisher, error) {
	if nc == nil {
		return nil, configurationErrorf(nil, "comms connection is nil")
	}
	logger := slog.Default()
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	}
	return &CommsPublisher{nc: nc, logger: logger}, nil
}

// Publish writes payload to the subject topic. The connection buffers while reconnecting;
// a closed connection fails with ErrConnection.
func (p *CommsPublisher) Publish(_ context.Context, topic, payload string) error {
	if p.nc.IsClosed() {
		return connectionErrorf(comms.ErrConnectionClosed, "publish to %s", topic)
	}
	if err := p.nc.Publish(topic, []byte(payload)); err != nil {
		p.logger.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, topic, err))
		return connectionErrorf(err, "publish to %s", topic)
	}

	p.logger.Debug(fmt.Sprintf("%s - Published to %s: %s", commsPublisherLogPrefix, topic, payload))
	return nil
}

// IsConnected reports whether the connection is up or reconnecting.
func (p *CommsPublisher) IsConnected() bool {
	return p.nc.IsConnected() || p.nc.IsReconnecting()
}

// Close drains and closes the connection.
func (p *CommsPublisher) Close() error {
	if p.nc.IsClosed() {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return fmt.Errorf("%s - failed to drain connection: %w", commsPublisherLogPrefix, err)
	}
	return nil
}
