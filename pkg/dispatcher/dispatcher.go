package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/morezero/registry-notifier/pkg/events"
	"github.com/morezero/registry-notifier/pkg/registry"
)

const logPrefix = "dispatcher:dispatch"

// Error codes that do not come from events.NotifyError.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeUnknownEvent    = "UNKNOWN_EVENT"
	CodeInternal        = "INTERNAL_ERROR"
)

// Dispatcher routes notification requests to the matching observer callback.
type Dispatcher struct {
	observer registry.Observer
	logger   *slog.Logger
}

// NewDispatcher creates a new Dispatcher. A nil logger uses slog.Default().
func NewDispatcher(observer registry.Observer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{observer: observer, logger: logger}
}

// Dispatch calls the observer callback named by req.Event and returns a response.
func (d *Dispatcher) Dispatch(ctx context.Context, req *NotificationRequest) *NotificationResponse {
	d.logger.Debug(fmt.Sprintf("%s - event=%s id=%s", logPrefix, req.Event, req.ID))

	kind, err := events.ParseKind(req.Event)
	if err != nil {
		return errorResponse(req.ID, CodeUnknownEvent, fmt.Sprintf("Unknown event: %s", req.Event), false)
	}
	if !kind.HasSubmodel() && req.SubmodelID != "" {
		return errorResponse(req.ID, CodeInvalidArgument, fmt.Sprintf("%s does not take a submodelId", kind), false)
	}

	switch kind {
	case events.KindAASRegistered:
		err = d.observer.AASRegistered(ctx, req.AASID)
	case events.KindSubmodelRegistered:
		err = d.observer.SubmodelRegistered(ctx, req.AASID, req.SubmodelID)
	case events.KindAASDeleted:
		err = d.observer.AASDeleted(ctx, req.AASID)
	case events.KindSubmodelDeleted:
		err = d.observer.SubmodelDeleted(ctx, req.AASID, req.SubmodelID)
	}
	if err != nil {
		d.logger.Warn(fmt.Sprintf("%s - %s failed: %v", logPrefix, kind, err))
		return notifyErrorToResponse(req.ID, err)
	}
	return &NotificationResponse{ID: req.ID, Ok: true, Topic: kind.Topic()}
}

func errorResponse(id, code, message string, retryable bool) *NotificationResponse {
	return &NotificationResponse{
		ID: id,
		Ok: false,
		Error: &ErrorDetail{
			Code:      code,
			Message:   message,
			Retryable: retryable,
		},
	}
}

func notifyErrorToResponse(id string, err error) *NotificationResponse {
	var nerr *events.NotifyError
	if errors.As(err, &nerr) {
		return errorResponse(id, nerr.Code, err.Error(), nerr.Code == events.CodeConnection)
	}
	return errorResponse(id, CodeInternal, err.Error(), true)
}
