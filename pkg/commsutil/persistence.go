package commsutil

import (
	"errors"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// PersistenceKind selects how in-flight MQTT messages are buffered across a disconnect.
type PersistenceKind string

const (
	// PersistenceMemory keeps in-flight messages in process memory; they are lost on restart.
	PersistenceMemory PersistenceKind = "memory"
	// PersistenceFile keeps in-flight messages in a directory on disk.
	PersistenceFile PersistenceKind = "file"
)

// ParsePersistenceKind maps a configuration string to a PersistenceKind. Empty means memory.
func ParsePersistenceKind(s string) (PersistenceKind, error) {
	switch PersistenceKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", PersistenceMemory:
		return PersistenceMemory, nil
	case PersistenceFile:
		return PersistenceFile, nil
	default:
		return "", fmt.Errorf("unknown persistence %q (use memory or file)", s)
	}
}

// Persistence is the persistence strategy of an MQTT session. A non-nil Store wins over Kind.
type Persistence struct {
	Kind  PersistenceKind
	Dir   string
	Store mqtt.Store
}

// Validate checks that the strategy can be turned into a store.
func (p Persistence) Validate() error {
	if p.Store != nil {
		return nil
	}
	switch p.Kind {
	case "", PersistenceMemory:
		return nil
	case PersistenceFile:
		if strings.TrimSpace(p.Dir) == "" {
			return errors.New("file persistence requires a directory")
		}
		return nil
	default:
		return fmt.Errorf("unknown persistence %q", p.Kind)
	}
}

// IsDefault reports whether the strategy is the in-memory default.
func (p Persistence) IsDefault() bool {
	return p.Store == nil && (p.Kind == "" || p.Kind == PersistenceMemory)
}

// NewStore returns the paho store implementing the strategy.
func (p Persistence) NewStore() (mqtt.Store, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Store != nil {
		return p.Store, nil
	}
	if p.Kind == PersistenceFile {
		return mqtt.NewFileStore(p.Dir), nil
	}
	return mqtt.NewMemoryStore(), nil
}
