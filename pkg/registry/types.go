// Package registry defines the observer slot of an AAS registry and a decorator that fills it.
package registry

import (
	"context"
	"fmt"
)

// Observer is notified after the registry changed. Implementations must not call back into the
// registry that notifies them.
type Observer interface {
	AASRegistered(ctx context.Context, aasID string) error
	SubmodelRegistered(ctx context.Context, aasID, smID string) error
	AASDeleted(ctx context.Context, aasID string) error
	SubmodelDeleted(ctx context.Context, aasID, smID string) error
}

// AASDescriptor describes a registered asset administration shell.
type AASDescriptor struct {
	ID        string   `json:"id"`
	IDShort   string   `json:"idShort,omitempty"`
	Endpoints []string `json:"endpoints,omitempty"`
}

// SubmodelDescriptor describes a submodel registered under an AAS.
type SubmodelDescriptor struct {
	ID        string   `json:"id"`
	IDShort   string   `json:"idShort,omitempty"`
	Endpoints []string `json:"endpoints,omitempty"`
}

// Registry is the part of an AAS registry that mutates registration state.
type Registry interface {
	Register(ctx context.Context, aas AASDescriptor) error
	RegisterSubmodel(ctx context.Context, aasID string, sm SubmodelDescriptor) error
	Delete(ctx context.Context, aasID string) error
	DeleteSubmodel(ctx context.Context, aasID, smID string) error
}

// NotificationError reports that the registry operation succeeded but at least one observer
// failed. The registry change is not rolled back.
type NotificationError struct {
	Op  string
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s succeeded but notification failed: %v", e.Op, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
