package events

import (
	"context"
	"errors"
	"testing"
)

func TestComms_AASRegistered(t *testing.T) {
	broker := startTestBroker(t, 14253, 18853)
	ch := broker.subscribe(t, TopicRegisterAAS)

	obs, err := New(PublisherConfig{Endpoint: broker.commsURL, ClientID: "comms-1"})
	if err != nil {
		t.Fatalf("events:comms_publisher_integration_test - New failed: %v", err)
	}
	defer obs.Close()

	if _, ok := obs.Publisher().(*CommsPublisher); !ok {
		t.Fatalf("events:comms_publisher_integration_test - publisher = %T, want *CommsPublisher", obs.Publisher())
	}

	if err := obs.AASRegistered(context.Background(), "aas-1"); err != nil {
		t.Fatalf("events:comms_publisher_integration_test - AASRegistered failed: %v", err)
	}

	expectMessage(t, ch, TopicRegisterAAS, "aas-1")
}

func TestComms_SubmodelRegistered(t *testing.T) {
	broker := startTestBroker(t, 14254, 18854)
	ch := broker.subscribe(t, TopicRegisterSubmodel)

	pub, err := NewCommsPublisher(broker.nc, nil)
	if err != nil {
		t.Fatalf("events:comms_publisher_integration_test - NewCommsPublisher failed: %v", err)
	}
	obs := NewRegistryObserver(pub, nil)

	if err := obs.SubmodelRegistered(context.Background(), "aas-1", "sm-1"); err != nil {
		t.Fatalf("events:comms_publisher_integration_test - SubmodelRegistered failed: %v", err)
	}

	expectMessage(t, ch, TopicRegisterSubmodel, "(aas-1,sm-1)")
}

func TestComms_PublishAfterClose(t *testing.T) {
	broker := startTestBroker(t, 14255, 18855)

	obs, err := New(PublisherConfig{Endpoint: broker.commsURL, ClientID: "comms-closed"})
	if err != nil {
		t.Fatalf("events:comms_publisher_integration_test - New failed: %v", err)
	}

	pub := obs.Publisher().(*CommsPublisher)
	pub.nc.Close()

	err = obs.AASDeleted(context.Background(), "aas-1")
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("events:comms_publisher_integration_test - err = %v, want ErrConnection", err)
	}
	if pub.IsConnected() {
		t.Error("events:comms_publisher_integration_test - closed connection reported as connected")
	}
}

func TestNewCommsPublisher_NilConn(t *testing.T) {
	if _, err := NewCommsPublisher(nil, nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("events:comms_publisher_integration_test - err = %v, want ErrConfiguration", err)
	}
}
