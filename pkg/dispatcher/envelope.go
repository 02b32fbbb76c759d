// Package dispatcher routes notification requests from other processes to a registry observer.
package dispatcher

// NotificationRequest is the JSON envelope of an incoming registry lifecycle notification.
type NotificationRequest struct {
	ID         string `json:"id,omitempty"`
	Event      string `json:"event"`
	AASID      string `json:"aasId"`
	SubmodelID string `json:"submodelId,omitempty"`
}

// NotificationResponse is the JSON envelope answering a NotificationRequest.
type NotificationResponse struct {
	ID    string       `json:"id,omitempty"`
	Ok    bool         `json:"ok"`
	Topic string       `json:"topic,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail holds structured error information.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}
