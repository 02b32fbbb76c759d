package commsutil

import (
	"crypto/tls"
	"errors"
	"time"
)

const (
	defaultConnectTimeout       = 10 * time.Second
	defaultWriteTimeout         = 5 * time.Second
	defaultKeepAlive            = 30 * time.Second
	defaultMaxReconnectInterval = time.Minute
)

// Credentials authenticate a client against the broker.
type Credentials struct {
	Username string
	Password string
}

// Validate rejects a password without a username.
func (c *Credentials) Validate() error {
	if c == nil {
		return nil
	}
	if c.Username == "" && c.Password != "" {
		return errors.New("password given without username")
	}
	return nil
}

// TransportOptions carries the reconnect and timeout policy handed to the broker client.
// Zero durations fall back to defaults; booleans are used as given.
type TransportOptions struct {
	ConnectTimeout       time.Duration
	WriteTimeout         time.Duration
	KeepAlive            time.Duration
	AutoReconnect        bool
	MaxReconnectInterval time.Duration
	CleanSession         bool
	TLSConfig            *tls.Config
}

// DefaultTransportOptions returns options with auto-reconnect and clean sessions enabled.
func DefaultTransportOptions() TransportOptions {
	return TransportOptions{
		ConnectTimeout:       defaultConnectTimeout,
		WriteTimeout:         defaultWriteTimeout,
		KeepAlive:            defaultKeepAlive,
		AutoReconnect:        true,
		MaxReconnectInterval: defaultMaxReconnectInterval,
		CleanSession:         true,
	}
}

func (o TransportOptions) withDefaults() TransportOptions {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defaultWriteTimeout
	}
	if o.KeepAlive <= 0 {
		o.KeepAlive = defaultKeepAlive
	}
	if o.MaxReconnectInterval <= 0 {
		o.MaxReconnectInterval = defaultMaxReconnectInterval
	}
	return o
}
