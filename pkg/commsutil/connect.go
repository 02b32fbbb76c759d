// Package commsutil provides broker connection helpers for the MQTT and COMMS (NATS) transports.
package commsutil

import (
	"fmt"
	"log/slog"
	"time"

	comms "github.com/nats-io/nats.go"
)

const (
	logPrefix             = "commsutil:connect"
	initialReconnectDelay = time.Second
)

// ConnectNATS creates a COMMS connection to the given URL. name is reported to the server as the
// client name; creds are optional. Reconnects back off like the MQTT client: doubling from one
// second up to opts.MaxReconnectInterval, without an attempt limit.
func ConnectNATS(url, name string, creds *Credentials, opts TransportOptions, logger *slog.Logger) (*comms.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()
	logger.Info(fmt.Sprintf("%s - Connecting to COMMS at %s as %s", logPrefix, url, name))

	natsOpts := []comms.Option{
		comms.Name(name),
		comms.Timeout(opts.ConnectTimeout),
		comms.FlusherTimeout(opts.WriteTimeout),
		comms.PingInterval(opts.KeepAlive),
		comms.CustomReconnectDelay(func(attempts int) time.Duration {
			return reconnectDelay(attempts, opts.MaxReconnectInterval)
		}),
		comms.DisconnectErrHandler(func(_ *comms.Conn, err error) {
			logger.Warn(fmt.Sprintf("%s - COMMS disconnected: %v", logPrefix, err))
		}),
		comms.ReconnectHandler(func(nc *comms.Conn) {
			logger.Info(fmt.Sprintf("%s - COMMS reconnected to %s", logPrefix, nc.ConnectedUrl()))
		}),
		comms.ClosedHandler(func(_ *comms.Conn) {
			logger.Info(fmt.Sprintf("%s - COMMS connection closed", logPrefix))
		}),
	}
	if opts.AutoReconnect {
		natsOpts = append(natsOpts, comms.MaxReconnects(-1))
	} else {
		natsOpts = append(natsOpts, comms.NoReconnect())
	}
	if creds != nil {
		natsOpts = append(natsOpts, comms.UserInfo(creds.Username, creds.Password))
	}
	if opts.TLSConfig != nil {
		natsOpts = append(natsOpts, comms.Secure(opts.TLSConfig))
	}

	nc, err := comms.Connect(url, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
	}

	logger.Info(fmt.Sprintf("%s - Connected to COMMS at %s", logPrefix, nc.ConnectedUrl()))
	return nc, nil
}

// reconnectDelay is the wait before reconnect attempt number attempts.
func reconnectDelay(attempts int, limit time.Duration) time.Duration {
	d := initialReconnectDelay
	for i := 1; i < attempts && d < limit; i++ {
		d *= 2
	}
	if d > limit {
		d = limit
	}
	return d
}
