package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/morezero/registry-notifier/pkg/registry"
)

const observerLogPrefix = "events:observer"

var _ registry.Observer = (*RegistryObserver)(nil)

// ObserverOpts configures RegistryObserver. Nil or zero values use defaults.
type ObserverOpts struct {
	Logger *slog.Logger
}

// RegistryObserver turns registry lifecycle callbacks into one publish call each.
// Calls run synchronously on the caller's goroutine, so events from one goroutine are
// published in the order they occur.
type RegistryObserver struct {
	publisher EventPublisher
	logger    *slog.Logger
}

// NewRegistryObserver creates an observer publishing through pub. A nil pub uses NoOpPublisher.
func NewRegistryObserver(pub EventPublisher, opts *ObserverOpts) *RegistryObserver {
	if pub == nil {
		pub = &NoOpPublisher{}
	}
	logger := slog.Default()
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	}
	return &RegistryObserver{publisher: pub, logger: logger}
}

// New connects a publisher for cfg and returns an observer using it.
func New(cfg PublisherConfig) (*RegistryObserver, error) {
	pub, err := NewPublisher(cfg)
	if err != nil {
		return nil, err
	}
	o := NewRegistryObserver(pub, &ObserverOpts{Logger: cfg.Logger})
	o.logger.Info(fmt.Sprintf("%s - Created registry observer for endpoint %s", observerLogPrefix, cfg.endpointName()))
	return o, nil
}

// AASRegistered publishes aasID on TopicRegisterAAS.
func (o *RegistryObserver) AASRegistered(ctx context.Context, aasID string) error {
	return o.Notify(ctx, Event{Kind: KindAASRegistered, AASID: aasID})
}

// SubmodelRegistered publishes "(aasID,smID)" on TopicRegisterSubmodel.
func (o *RegistryObserver) SubmodelRegistered(ctx context.Context, aasID, smID string) error {
	return o.Notify(ctx, Event{Kind: KindSubmodelRegistered, AASID: aasID, SubmodelID: smID})
}

// AASDeleted publishes aasID on TopicDeleteAAS.
func (o *RegistryObserver) AASDeleted(ctx context.Context, aasID string) error {
	return o.Notify(ctx, Event{Kind: KindAASDeleted, AASID: aasID})
}

// SubmodelDeleted publishes "(aasID,smID)" on TopicDeleteSubmodel.
func (o *RegistryObserver) SubmodelDeleted(ctx context.Context, aasID, smID string) error {
	return o.Notify(ctx, Event{Kind: KindSubmodelDeleted, AASID: aasID, SubmodelID: smID})
}

// Notify publishes a single event. Payload errors are returned before anything is published;
// publish errors are returned as they come from the publisher.
func (o *RegistryObserver) Notify(ctx context.Context, e Event) error {
	payload, err := e.Payload()
	if err != nil {
		return err
	}
	return o.publisher.Publish(ctx, e.Kind.Topic(), payload)
}

// Publisher returns the publisher the observer delegates to.
func (o *RegistryObserver) Publisher() EventPublisher {
	return o.publisher
}

// Close closes the underlying publisher.
func (o *RegistryObserver) Close() error {
	return o.publisher.Close()
}
