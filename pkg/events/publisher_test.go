package events

import (
	"context"
	"testing"
)

func TestNoOpPublisher(t *testing.T) {
	pub := &NoOpPublisher{}
	if err := pub.Publish(context.Background(), TopicRegisterAAS, "aas-1"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !pub.IsConnected() {
		t.Error("expected NoOpPublisher to report connected")
	}
	if err := pub.Close(); err != nil {
		t.Errorf("expected no error on close, got %v", err)
	}
}

func TestCallbackPublisher(t *testing.T) {
	var gotTopic, gotPayload string

	pub := NewCallbackPublisher(func(_ context.Context, topic, payload string) error {
		gotTopic, gotPayload = topic, payload
		return nil
	})

	if err := pub.Publish(context.Background(), TopicDeleteAAS, "aas-9"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if gotTopic != TopicDeleteAAS {
		t.Errorf("expected topic %s, got %s", TopicDeleteAAS, gotTopic)
	}
	if gotPayload != "aas-9" {
		t.Errorf("expected payload aas-9, got %s", gotPayload)
	}
}
