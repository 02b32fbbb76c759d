package commsutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Transport identifies the wire protocol spoken with the broker.
type Transport string

const (
	TransportMQTT Transport = "mqtt"
	TransportNATS Transport = "nats"
)

var schemeTransports = map[string]Transport{
	"tcp":   TransportMQTT,
	"mqtt":  TransportMQTT,
	"ssl":   TransportMQTT,
	"tls":   TransportMQTT,
	"mqtts": TransportMQTT,
	"ws":    TransportMQTT,
	"wss":   TransportMQTT,
	"nats":  TransportNATS,
}

// ClassifyEndpoint parses a broker endpoint URL and reports which transport serves it.
func ClassifyEndpoint(endpoint string) (Transport, error) {
	if strings.TrimSpace(endpoint) == "" {
		return "", fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	t, ok := schemeTransports[strings.ToLower(u.Scheme)]
	if !ok {
		return "", fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no host", endpoint)
	}
	return t, nil
}
