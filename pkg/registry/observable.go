package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

const logPrefix = "registry:observable"

// ObservableRegistry forwards to a wrapped Registry and, after each successful mutation,
// notifies every attached observer in the order they were added.
type ObservableRegistry struct {
	inner  Registry
	logger *slog.Logger

	mu        sync.RWMutex
	observers []Observer
}

// NewObservableRegistry wraps inner. A nil logger uses slog.Default().
func NewObservableRegistry(inner Registry, logger *slog.Logger) *ObservableRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObservableRegistry{inner: inner, logger: logger}
}

// AddObserver attaches o. Adding the same observer twice notifies it twice.
func (r *ObservableRegistry) AddObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// RemoveObserver detaches the first occurrence of o and reports whether it was attached.
func (r *ObservableRegistry) RemoveObserver(o Observer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.observers {
		if cur == o {
			r.observers = append(r.observers[:i:i], r.observers[i+1:]...)
			return true
		}
	}
	return false
}

// Register registers aas and notifies AASRegistered.
func (r *ObservableRegistry) Register(ctx context.Context, aas AASDescriptor) error {
	if err := r.inner.Register(ctx, aas); err != nil {
		return err
	}
	return r.notify("Register", func(o Observer) error {
		return o.AASRegistered(ctx, aas.ID)
	})
}

// RegisterSubmodel registers sm under aasID and notifies SubmodelRegistered.
func (r *ObservableRegistry) RegisterSubmodel(ctx context.Context, aasID string, sm SubmodelDescriptor) error {
	if err := r.inner.RegisterSubmodel(ctx, aasID, sm); err != nil {
		return err
	}
	return r.notify("RegisterSubmodel", func(o Observer) error {
		return o.SubmodelRegistered(ctx, aasID, sm.ID)
	})
}

// Delete removes aasID and notifies AASDeleted.
func (r *ObservableRegistry) Delete(ctx context.Context, aasID string) error {
	if err := r.inner.Delete(ctx, aasID); err != nil {
		return err
	}
	return r.notify("Delete", func(o Observer) error {
		return o.AASDeleted(ctx, aasID)
	})
}

// DeleteSubmodel removes smID from aasID and notifies SubmodelDeleted.
func (r *ObservableRegistry) DeleteSubmodel(ctx context.Context, aasID, smID string) error {
	if err := r.inner.DeleteSubmodel(ctx, aasID, smID); err != nil {
		return err
	}
	return r.notify("DeleteSubmodel", func(o Observer) error {
		return o.SubmodelDeleted(ctx, aasID, smID)
	})
}

// notify calls fn for every observer. A failing observer does not stop the others.
func (r *ObservableRegistry) notify(op string, fn func(Observer) error) error {
	r.mu.RLock()
	observers := make([]Observer, len(r.observers))
	copy(observers, r.observers)
	r.mu.RUnlock()

	var errs []error
	for _, o := range observers {
		if err := fn(o); err != nil {
			r.logger.Warn(fmt.Sprintf("%s - %s: observer %T failed: %v", logPrefix, op, o, err))
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &NotificationError{Op: op, Err: errors.Join(errs...)}
}
