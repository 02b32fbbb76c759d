package events

import (
	"context"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	mqttPublisherLogPrefix = "events:mqtt_publisher"
	defaultQoS             = 1
	disconnectQuiesceMs    = 250
)

// MQTTPublisherOpts configures MQTTPublisher. Nil or zero values use defaults.
type MQTTPublisherOpts struct {
	// QoS is the MQTT quality of service, 0-2. Nil means 1.
	QoS    *byte
	Logger *slog.Logger
}

// MQTTPublisher publishes payloads over an MQTT client.
type MQTTPublisher struct {
	client mqtt.Client
	qos    byte
	logger *slog.Logger
}

// NewMQTTPublisher wraps an already configured client. The client is not connected here.
func NewMQTTPublisher(client mqtt.Client, opts *MQTTPublisherOpts) (*MQTTPublisher, error) {
	if client == nil {
		return nil, configurationErrorf(nil, "mqtt client is nil")
	}
	p := &MQTTPublisher{client: client, qos: defaultQoS, logger: slog.Default()}
	if opts != nil {
		if opts.QoS != nil {
			if *opts.QoS > 2 {
				return nil, configurationErrorf(nil, "qos %d out of range 0-2", *opts.QoS)
			}
			p.qos = *opts.QoS
		}
		if opts.Logger != nil {
			p.logger = opts.Logger
		}
	}
	return p, nil
}

// Publish hands payload to the MQTT client. It fails with ErrConnection when the client is
// disconnected and not reconnecting, or when the client rejects the message outright.
func (p *MQTTPublisher) Publish(_ context.Context, topic, payload string) error {
	if !p.client.IsConnected() {
		p.logger.Error(fmt.Sprintf("%s - not connected, dropping message for %s", mqttPublisherLogPrefix, topic))
		return connectionErrorf(mqtt.ErrNotConnected, "publish to %s", topic)
	}

	token := p.client.Publish(topic, p.qos, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			p.logger.Error(fmt.Sprintf("%s - failed to publish to %s: %v", mqttPublisherLogPrefix, topic, err))
			return connectionErrorf(err, "publish to %s", topic)
		}
	default:
		// Still in flight; delivery is up to the client and its store.
	}

	p.logger.Debug(fmt.Sprintf("%s - Published to %s: %s", mqttPublisherLogPrefix, topic, payload))
	return nil
}

// IsConnected reports whether the client is connected or reconnecting.
func (p *MQTTPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects the client, giving in-flight work a short quiesce period. It also stops a
// reconnect loop in progress, so a closed publisher never comes back online.
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(disconnectQuiesceMs)
	p.logger.Info(fmt.Sprintf("%s - MQTT client closed", mqttPublisherLogPrefix))
	return nil
}

// Client returns the underlying MQTT client.
func (p *MQTTPublisher) Client() mqtt.Client {
	return p.client
}
