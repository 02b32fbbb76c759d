package commsutil

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttLogPrefix = "commsutil:mqtt"

// MQTTConfig describes one MQTT session.
type MQTTConfig struct {
	Endpoint    string
	ClientID    string
	Credentials *Credentials
	Persistence Persistence
	Options     TransportOptions
}

// Validate checks the configuration without touching the network.
func (c *MQTTConfig) Validate() error {
	t, err := ClassifyEndpoint(c.Endpoint)
	if err != nil {
		return err
	}
	if t != TransportMQTT {
		return fmt.Errorf("endpoint %q is not an MQTT endpoint", c.Endpoint)
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return errors.New("client id is required")
	}
	if err := c.Credentials.Validate(); err != nil {
		return err
	}
	return c.Persistence.Validate()
}

// NewMQTTClientOptions translates cfg into paho client options. Connection state changes are
// reported on logger.
func NewMQTTClientOptions(cfg MQTTConfig, logger *slog.Logger) (*mqtt.ClientOptions, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := cfg.Persistence.NewStore()
	if err != nil {
		return nil, err
	}
	o := cfg.Options.withDefaults()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Endpoint).
		SetClientID(cfg.ClientID).
		SetStore(store).
		SetConnectTimeout(o.ConnectTimeout).
		SetWriteTimeout(o.WriteTimeout).
		SetKeepAlive(o.KeepAlive).
		SetAutoReconnect(o.AutoReconnect).
		SetMaxReconnectInterval(o.MaxReconnectInterval).
		SetCleanSession(o.CleanSession).
		SetOrderMatters(true)

	if cfg.Credentials != nil {
		opts.SetUsername(cfg.Credentials.Username)
		opts.SetPassword(cfg.Credentials.Password)
	}
	if o.TLSConfig != nil {
		opts.SetTLSConfig(o.TLSConfig)
	}

	clientID := cfg.ClientID
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info(fmt.Sprintf("%s - MQTT connected to %s as %s", mqttLogPrefix, cfg.Endpoint, clientID))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		// A second session with the same client id makes the broker drop this one.
		logger.Warn(fmt.Sprintf("%s - MQTT connection lost (client %s): %v", mqttLogPrefix, clientID, err))
	})
	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		logger.Info(fmt.Sprintf("%s - MQTT reconnecting to %s", mqttLogPrefix, cfg.Endpoint))
	})

	return opts, nil
}

// ConnectMQTT creates an MQTT client for cfg and blocks until the first connect attempt finishes.
func ConnectMQTT(cfg MQTTConfig, logger *slog.Logger) (mqtt.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts, err := NewMQTTClientOptions(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s - invalid MQTT configuration: %w", mqttLogPrefix, err)
	}

	logger.Info(fmt.Sprintf("%s - Connecting to MQTT at %s as %s", mqttLogPrefix, cfg.Endpoint, cfg.ClientID))

	client := mqtt.NewClient(opts)
	token := client.Connect()
	wait := cfg.Options.withDefaults().ConnectTimeout
	if !token.WaitTimeout(wait + wait/2) {
		client.Disconnect(0)
		return nil, fmt.Errorf("%s - timed out connecting to %s", mqttLogPrefix, cfg.Endpoint)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%s - failed to connect to %s: %w", mqttLogPrefix, cfg.Endpoint, err)
	}

	return client, nil
}
