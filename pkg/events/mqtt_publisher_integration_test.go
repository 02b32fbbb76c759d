package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/morezero/registry-notifier/pkg/commsutil"
)

func TestMQTT_SubmodelDeletedEndToEnd(t *testing.T) {
	broker := startTestBroker(t, 14250, 18850)
	ch := broker.subscribe(t, TopicDeleteSubmodel)

	obs, err := New(PublisherConfig{Endpoint: broker.mqttURL, ClientID: "test-1"})
	if err != nil {
		t.Fatalf("events:mqtt_publisher_integration_test - New failed: %v", err)
	}
	defer obs.Close()

	if err := obs.SubmodelDeleted(context.Background(), "aas-1", "sm-1"); err != nil {
		t.Fatalf("events:mqtt_publisher_integration_test - SubmodelDeleted failed: %v", err)
	}

	expectMessage(t, ch, "BaSyxRegistry_deletedSubmodel", "(aas-1,sm-1)")
	expectNoMessage(t, ch)
}

func TestMQTT_AllTopicsInOrder(t *testing.T) {
	broker := startTestBroker(t, 14251, 18851)
	ch := broker.subscribe(t, TopicRegisterAAS, TopicRegisterSubmodel, TopicDeleteAAS, TopicDeleteSubmodel)

	obs, err := New(PublisherConfig{
		Endpoint:    broker.mqttURL,
		ClientID:    "order-1",
		Persistence: commsutil.Persistence{Kind: commsutil.PersistenceFile, Dir: t.TempDir()},
	})
	if err != nil {
		t.Fatalf("events:mqtt_publisher_integration_test - New failed: %v", err)
	}
	defer obs.Close()

	ctx := context.Background()
	steps := []func() error{
		func() error { return obs.AASRegistered(ctx, "X") },
		func() error { return obs.SubmodelRegistered(ctx, "X", "S") },
		func() error { return obs.SubmodelDeleted(ctx, "X", "S") },
		func() error { return obs.AASDeleted(ctx, "X") },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("events:mqtt_publisher_integration_test - step %d failed: %v", i, err)
		}
	}

	expectMessage(t, ch, TopicRegisterAAS, "X")
	expectMessage(t, ch, TopicRegisterSubmodel, "(X,S)")
	expectMessage(t, ch, TopicDeleteSubmodel, "(X,S)")
	expectMessage(t, ch, TopicDeleteAAS, "X")
}

func TestMQTT_ConnectionLost(t *testing.T) {
	broker := startTestBroker(t, 14252, 18852)

	transport := commsutil.DefaultTransportOptions()
	transport.AutoReconnect = false
	obs, err := New(PublisherConfig{Endpoint: broker.mqttURL, ClientID: "lost-1", Transport: &transport})
	if err != nil {
		t.Fatalf("events:mqtt_publisher_integration_test - New failed: %v", err)
	}
	defer obs.Close()

	broker.shutdown()

	deadline := time.Now().Add(5 * time.Second)
	for obs.Publisher().IsConnected() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if obs.Publisher().IsConnected() {
		t.Fatal("events:mqtt_publisher_integration_test - client did not notice the lost connection")
	}

	err = obs.AASRegistered(context.Background(), "aas-2")
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("events:mqtt_publisher_integration_test - err = %v, want ErrConnection", err)
	}
}

func TestMQTT_CloseStopsReconnect(t *testing.T) {
	broker := startTestBroker(t, 14256, 18856)

	transport := commsutil.DefaultTransportOptions()
	transport.MaxReconnectInterval = 200 * time.Millisecond
	pub, err := NewPublisher(PublisherConfig{Endpoint: broker.mqttURL, ClientID: "close-1", Transport: &transport})
	if err != nil {
		t.Fatalf("events:mqtt_publisher_integration_test - NewPublisher failed: %v", err)
	}
	client := pub.(*MQTTPublisher).Client()

	broker.shutdown()

	deadline := time.Now().Add(5 * time.Second)
	for client.IsConnectionOpen() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if client.IsConnectionOpen() {
		t.Fatal("events:mqtt_publisher_integration_test - client did not notice the lost connection")
	}

	if err := pub.Close(); err != nil {
		t.Fatalf("events:mqtt_publisher_integration_test - Close failed: %v", err)
	}

	startTestBroker(t, 14256, 18856)

	// Several reconnect intervals: a live reconnect loop would be back by now.
	until := time.Now().Add(3 * time.Second)
	for time.Now().Before(until) {
		if client.IsConnectionOpen() || client.IsConnected() {
			t.Fatal("events:mqtt_publisher_integration_test - client reconnected after Close")
		}
		time.Sleep(100 * time.Millisecond)
	}

	err = pub.Publish(context.Background(), TopicRegisterAAS, "aas-1")
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("events:mqtt_publisher_integration_test - err = %v, want ErrConnection", err)
	}
}

func TestMQTT_PrebuiltClientLogsBroker(t *testing.T) {
	broker := startTestBroker(t, 14257, 18857)
	ch := broker.subscribe(t, TopicRegisterAAS)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	client := mqtt.NewClient(mqtt.NewClientOptions().AddBroker(broker.mqttURL).SetClientID("prebuilt-1"))

	obs, err := New(PublisherConfig{Client: client, Logger: logger})
	if err != nil {
		t.Fatalf("events:mqtt_publisher_integration_test - New failed: %v", err)
	}
	defer obs.Close()

	if !strings.Contains(logs.String(), "Created registry observer for endpoint "+broker.mqttURL) {
		t.Errorf("events:mqtt_publisher_integration_test - log does not name the broker: %s", logs.String())
	}

	if err := obs.AASRegistered(context.Background(), "aas-3"); err != nil {
		t.Fatalf("events:mqtt_publisher_integration_test - AASRegistered failed: %v", err)
	}
	expectMessage(t, ch, TopicRegisterAAS, "aas-3")
}
