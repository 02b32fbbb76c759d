package events

import (
	"fmt"
	"testing"
	"time"

	commsserver "github.com/nats-io/nats-server/v2/server"
	comms "github.com/nats-io/nats.go"
)

const brokerTestPrefix = "events:broker_test"

// testBroker is an in-process NATS server that also speaks MQTT. Messages published over MQTT
// on topic T are delivered to NATS subscribers of subject T.
type testBroker struct {
	ns       *commsserver.Server
	nc       *comms.Conn
	mqttURL  string
	commsURL string
}

// startTestBroker starts the server on the given ports and connects a NATS client to it.
func startTestBroker(t *testing.T, port, mqttPort int) *testBroker {
	t.Helper()

	opts := &commsserver.Options{
		ServerName: fmt.Sprintf("notifier-test-%d", port),
		Host:       "127.0.0.1",
		Port:       port,
		NoLog:      true,
		NoSigs:     true,
		JetStream:  true,
		StoreDir:   t.TempDir(),
	}
	opts.MQTT.Host = "127.0.0.1"
	opts.MQTT.Port = mqttPort

	ns, err := commsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("%s - failed to create server: %v", brokerTestPrefix, err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		t.Fatalf("%s - server failed to start", brokerTestPrefix)
	}

	nc, err := comms.Connect(ns.ClientURL(), comms.Timeout(5*time.Second))
	if err != nil {
		ns.Shutdown()
		t.Fatalf("%s - failed to connect: %v", brokerTestPrefix, err)
	}

	b := &testBroker{
		ns:       ns,
		nc:       nc,
		mqttURL:  fmt.Sprintf("tcp://127.0.0.1:%d", mqttPort),
		commsURL: ns.ClientURL(),
	}
	t.Cleanup(b.shutdown)
	return b
}

func (b *testBroker) shutdown() {
	if !b.nc.IsClosed() {
		b.nc.Close()
	}
	b.ns.Shutdown()
	b.ns.WaitForShutdown()
}

// subscribe delivers messages on all subjects into one channel, in arrival order.
func (b *testBroker) subscribe(t *testing.T, subjects ...string) chan *comms.Msg {
	t.Helper()
	ch := make(chan *comms.Msg, 64)
	for _, subject := range subjects {
		sub, err := b.nc.ChanSubscribe(subject, ch)
		if err != nil {
			t.Fatalf("%s - failed to subscribe to %s: %v", brokerTestPrefix, subject, err)
		}
		t.Cleanup(func() { _ = sub.Unsubscribe() })
	}
	if err := b.nc.Flush(); err != nil {
		t.Fatalf("%s - flush failed: %v", brokerTestPrefix, err)
	}
	return ch
}

func expectMessage(t *testing.T, ch chan *comms.Msg, wantSubject, wantPayload string) {
	t.Helper()
	select {
	case msg := <-ch:
		if msg.Subject != wantSubject {
			t.Errorf("%s - subject = %q, want %q", brokerTestPrefix, msg.Subject, wantSubject)
		}
		if string(msg.Data) != wantPayload {
			t.Errorf("%s - payload = %q, want %q", brokerTestPrefix, string(msg.Data), wantPayload)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("%s - timeout waiting for %s", brokerTestPrefix, wantSubject)
	}
}

func expectNoMessage(t *testing.T, ch chan *comms.Msg) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Errorf("%s - unexpected message on %s: %q", brokerTestPrefix, msg.Subject, string(msg.Data))
	case <-time.After(300 * time.Millisecond):
	}
}
