package events

import (
	"fmt"
	"log/slog"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/morezero/registry-notifier/pkg/commsutil"
)

const configLogPrefix = "events:config"

// PublisherConfig configures the broker connection behind an EventPublisher.
type PublisherConfig struct {
	// Endpoint is the broker URL, e.g. tcp://localhost:1883 or nats://localhost:4222.
	Endpoint string
	// ClientID must be unique among sessions connected to the same broker; the broker drops the
	// older session on a collision.
	ClientID string
	// Credentials are optional.
	Credentials *commsutil.Credentials
	// Persistence defaults to in-memory. MQTT only.
	Persistence commsutil.Persistence
	// Client is a pre-built MQTT client. When set, Endpoint, ClientID, Credentials, Persistence
	// and Transport are ignored; the client is connected if it is not already.
	Client mqtt.Client
	// QoS for MQTT publishes; nil means 1.
	QoS *byte
	// Transport is the reconnect and timeout policy; nil means commsutil.DefaultTransportOptions().
	Transport *commsutil.TransportOptions
	Logger    *slog.Logger
}

func (c *PublisherConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// endpointName is the broker URL for log lines: Endpoint, or the first server of a pre-built client.
func (c *PublisherConfig) endpointName() string {
	if c.Client == nil {
		return c.Endpoint
	}
	reader := c.Client.OptionsReader()
	if servers := reader.Servers(); len(servers) > 0 {
		return servers[0].String()
	}
	return ""
}

func (c *PublisherConfig) transport() commsutil.TransportOptions {
	if c.Transport != nil {
		return *c.Transport
	}
	return commsutil.DefaultTransportOptions()
}

// Validate checks the configuration without connecting. Failures are ErrConfiguration.
func (c *PublisherConfig) Validate() error {
	if c.QoS != nil && *c.QoS > 2 {
		return configurationErrorf(nil, "qos %d out of range 0-2", *c.QoS)
	}
	if c.Client != nil {
		return nil
	}
	t, err := commsutil.ClassifyEndpoint(c.Endpoint)
	if err != nil {
		return configurationErrorf(err, "endpoint")
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return configurationErrorf(nil, "client id is required")
	}
	if err := c.Credentials.Validate(); err != nil {
		return configurationErrorf(err, "credentials")
	}
	if err := c.Persistence.Validate(); err != nil {
		return configurationErrorf(err, "persistence")
	}
	if t == commsutil.TransportNATS && !c.Persistence.IsDefault() {
		return configurationErrorf(nil, "persistence %q is not supported for COMMS endpoints", c.Persistence.Kind)
	}
	return nil
}

// NewPublisher validates cfg, connects to the broker and returns the publisher. Every failure,
// including an unreachable broker, is an ErrConfiguration.
func NewPublisher(cfg PublisherConfig) (EventPublisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.logger()

	if cfg.Client != nil {
		return newPrebuiltMQTTPublisher(cfg, logger)
	}

	t, _ := commsutil.ClassifyEndpoint(cfg.Endpoint)
	switch t {
	case commsutil.TransportNATS:
		nc, err := commsutil.ConnectNATS(cfg.Endpoint, cfg.ClientID, cfg.Credentials, cfg.transport(), logger)
		if err != nil {
			return nil, configurationErrorf(err, "connect to %s", cfg.Endpoint)
		}
		pub, err := NewCommsPublisher(nc, &CommsPublisherOpts{Logger: logger})
		if err != nil {
			nc.Close()
			return nil, err
		}
		return pub, nil
	default:
		client, err := commsutil.ConnectMQTT(commsutil.MQTTConfig{
			Endpoint:    cfg.Endpoint,
			ClientID:    cfg.ClientID,
			Credentials: cfg.Credentials,
			Persistence: cfg.Persistence,
			Options:     cfg.transport(),
		}, logger)
		if err != nil {
			return nil, configurationErrorf(err, "connect to %s", cfg.Endpoint)
		}
		pub, err := NewMQTTPublisher(client, &MQTTPublisherOpts{QoS: cfg.QoS, Logger: logger})
		if err != nil {
			client.Disconnect(0)
			return nil, err
		}
		logger.Info(fmt.Sprintf("%s - MQTT publisher ready for %s", configLogPrefix, cfg.Endpoint))
		return pub, nil
	}
}

func newPrebuiltMQTTPublisher(cfg PublisherConfig, logger *slog.Logger) (EventPublisher, error) {
	if !cfg.Client.IsConnectionOpen() {
		wait := cfg.transport().ConnectTimeout
		if wait <= 0 {
			wait = commsutil.DefaultTransportOptions().ConnectTimeout
		}
		token := cfg.Client.Connect()
		if !token.WaitTimeout(wait) {
			return nil, configurationErrorf(nil, "timed out connecting pre-built client")
		}
		if err := token.Error(); err != nil {
			return nil, configurationErrorf(err, "connect pre-built client")
		}
	}
	pub, err := NewMQTTPublisher(cfg.Client, &MQTTPublisherOpts{QoS: cfg.QoS, Logger: logger})
	if err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("%s - MQTT publisher ready for %s", configLogPrefix, cfg.endpointName()))
	return pub, nil
}
