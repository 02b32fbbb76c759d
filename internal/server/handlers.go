package server

import (
	"context"
	"net/http"
	"time"

	"github.com/morezero/registry-notifier/pkg/commsutil"
	"github.com/morezero/registry-notifier/pkg/dispatcher"
	"github.com/morezero/registry-notifier/pkg/events"
)

const maxRequestBytes = 64 * 1024

// HealthOutput is the body of GET /health.
type HealthOutput struct {
	Status    string       `json:"status"`
	Checks    HealthChecks `json:"checks"`
	Timestamp string       `json:"timestamp"`
}

// HealthChecks lists the individual checks.
type HealthChecks struct {
	Broker bool `json:"broker"`
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleEvents())
	mux.HandleFunc("/health", s.handleHealth())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

// handleEvents accepts a NotificationRequest and publishes it synchronously.
func (s *Server) handleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, errorBody(dispatcher.CodeInvalidArgument, "use POST"))
			return
		}

		var req dispatcher.NotificationRequest
		if err := commsutil.DecodeStream(http.MaxBytesReader(w, r.Body, maxRequestBytes), &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(dispatcher.CodeInvalidArgument, "Failed to decode request"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()

		resp := s.disp.Dispatch(ctx, &req)
		writeJSON(w, statusFor(resp), resp)
	}
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connected := s.publisher.IsConnected()
		h := HealthOutput{
			Status:    "healthy",
			Checks:    HealthChecks{Broker: connected},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		status := http.StatusOK
		if !connected {
			h.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, h)
	}
}

func statusFor(resp *dispatcher.NotificationResponse) int {
	if resp.Ok {
		return http.StatusAccepted
	}
	switch resp.Error.Code {
	case events.CodeConnection:
		return http.StatusServiceUnavailable
	case dispatcher.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func errorBody(code, message string) *dispatcher.NotificationResponse {
	return &dispatcher.NotificationResponse{
		Ok:    false,
		Error: &dispatcher.ErrorDetail{Code: code, Message: message},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := commsutil.EncodePayload(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
