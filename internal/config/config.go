// Package config provides notifier configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/morezero/registry-notifier/pkg/commsutil"
	"github.com/morezero/registry-notifier/pkg/events"
)

const logPrefix = "config:LoadConfig"

// Config holds registry-notifier configuration.
type Config struct {
	// Broker: tcp://, ssl://, ws:// etc. for MQTT; nats:// for COMMS.
	Endpoint       string `envconfig:"MQTT_ENDPOINT" default:"tcp://localhost:1883"`
	ClientID       string `envconfig:"MQTT_CLIENT_ID" default:"registry-notifier"`
	Username       string `envconfig:"MQTT_USERNAME"`
	Password       string `envconfig:"MQTT_PASSWORD"`
	Persistence    string `envconfig:"MQTT_PERSISTENCE" default:"memory"`
	PersistenceDir string `envconfig:"MQTT_PERSISTENCE_DIR"`
	QoS            int    `envconfig:"MQTT_QOS" default:"1"`

	// Transport policy handed to the broker client
	ConnectTimeout       time.Duration `envconfig:"MQTT_CONNECT_TIMEOUT" default:"10s"`
	WriteTimeout         time.Duration `envconfig:"MQTT_WRITE_TIMEOUT" default:"5s"`
	KeepAlive            time.Duration `envconfig:"MQTT_KEEP_ALIVE" default:"30s"`
	AutoReconnect        bool          `envconfig:"MQTT_AUTO_RECONNECT" default:"true"`
	MaxReconnectInterval time.Duration `envconfig:"MQTT_MAX_RECONNECT_INTERVAL" default:"1m"`
	CleanSession         bool          `envconfig:"MQTT_CLEAN_SESSION" default:"true"`

	// HTTP webhook and health endpoint (HTTP_ADDR preferred, e.g. "0.0.0.0:8080")
	HTTPAddr       string        `envconfig:"HTTP_ADDR"`
	HTTPPort       int           `envconfig:"HTTP_PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables. If ENV_FILE is set, that dotenv
// file is loaded first; variables already in the environment win.
func LoadConfig() (*Config, error) {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("%s - failed to load %s: %w", logPrefix, envFile, err)
		}
	}
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the broker settings needed by every command.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%s - MQTT_ENDPOINT is required", logPrefix)
	}
	if c.ClientID == "" {
		return fmt.Errorf("%s - MQTT_CLIENT_ID is required", logPrefix)
	}
	if c.QoS < 0 || c.QoS > 2 {
		return fmt.Errorf("%s - MQTT_QOS must be 0, 1 or 2", logPrefix)
	}
	kind, err := commsutil.ParsePersistenceKind(c.Persistence)
	if err != nil {
		return fmt.Errorf("%s - MQTT_PERSISTENCE: %w", logPrefix, err)
	}
	if kind == commsutil.PersistenceFile && c.PersistenceDir == "" {
		return fmt.Errorf("%s - MQTT_PERSISTENCE_DIR is required for file persistence", logPrefix)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("%s - MQTT_CONNECT_TIMEOUT must be positive", logPrefix)
	}
	return nil
}

// ValidateForServe additionally checks the HTTP settings.
func (c *Config) ValidateForServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.HTTPAddr == "" && (c.HTTPPort <= 0 || c.HTTPPort > 65535) {
		return fmt.Errorf("%s - HTTP_PORT must be 1-65535", logPrefix)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s - REQUEST_TIMEOUT must be positive", logPrefix)
	}
	return nil
}

// ListenAddr returns HTTP_ADDR, or ":HTTP_PORT" when it is unset.
func (c *Config) ListenAddr() string {
	if c.HTTPAddr != "" {
		return c.HTTPAddr
	}
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// PublisherConfig converts the broker settings. Call Validate first.
func (c *Config) PublisherConfig() events.PublisherConfig {
	kind, _ := commsutil.ParsePersistenceKind(c.Persistence)
	qos := byte(c.QoS)

	var creds *commsutil.Credentials
	if c.Username != "" || c.Password != "" {
		creds = &commsutil.Credentials{Username: c.Username, Password: c.Password}
	}

	return events.PublisherConfig{
		Endpoint:    c.Endpoint,
		ClientID:    c.ClientID,
		Credentials: creds,
		Persistence: commsutil.Persistence{Kind: kind, Dir: c.PersistenceDir},
		QoS:         &qos,
		Transport: &commsutil.TransportOptions{
			ConnectTimeout:       c.ConnectTimeout,
			WriteTimeout:         c.WriteTimeout,
			KeepAlive:            c.KeepAlive,
			AutoReconnect:        c.AutoReconnect,
			MaxReconnectInterval: c.MaxReconnectInterval,
			CleanSession:         c.CleanSession,
		},
	}
}
