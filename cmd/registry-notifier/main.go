// Package main is the entrypoint for the registry-notifier.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/morezero/registry-notifier/internal/config"
	"github.com/morezero/registry-notifier/internal/server"
	"github.com/morezero/registry-notifier/pkg/commsutil"
	"github.com/morezero/registry-notifier/pkg/dispatcher"
	"github.com/morezero/registry-notifier/pkg/events"
)

const usage = `Usage: registry-notifier [command]
       registry-notifier serve                              Start the webhook and broker publisher.
       registry-notifier publish <event> <aasId> [smId]     Publish one registry event and exit.

Commands:
  serve           (default) Connect to the broker and accept POST /events.
  publish         Publish a single event. <event> is one of aasRegistered,
                  submodelRegistered, aasDeleted, submodelDeleted.
  help            Show this message.

Environment: MQTT_ENDPOINT (default tcp://localhost:1883, nats:// selects COMMS), MQTT_CLIENT_ID,
MQTT_USERNAME, MQTT_PASSWORD, MQTT_PERSISTENCE (memory|file), MQTT_PERSISTENCE_DIR, MQTT_QOS,
HTTP_ADDR / HTTP_PORT, REQUEST_TIMEOUT, LOG_LEVEL, ENV_FILE.
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "publish":
		req, err := parsePublishArgs(args[1:])
		if err != nil {
			fmt.Fprintf(os.Stderr, "registry-notifier publish: %v\n%s", err, usage)
			os.Exit(2)
		}
		if err := runPublish(req); err != nil {
			log.Fatalf("registry-notifier publish: %v", err)
		}
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "serve", "":
		break
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}

	if err := server.Run(); err != nil {
		log.Fatalf("registry-notifier: %v", err)
	}
}

// parsePublishArgs turns "<event> <aasId> [smId]" into a request.
func parsePublishArgs(args []string) (*dispatcher.NotificationRequest, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, fmt.Errorf("expected <event> <aasId> [submodelId], got %d arguments", len(args))
	}
	kind, err := events.ParseKind(args[0])
	if err != nil {
		return nil, err
	}
	req := &dispatcher.NotificationRequest{Event: kind.String(), AASID: args[1]}
	if len(args) == 3 {
		req.SubmodelID = args[2]
	}
	if kind.HasSubmodel() && req.SubmodelID == "" {
		return nil, fmt.Errorf("%s requires a submodelId", kind)
	}
	return req, nil
}

func runPublish(req *dispatcher.NotificationRequest) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := server.NewLogger(cfg.LogLevel)
	pubCfg := cfg.PublisherConfig()
	pubCfg.Logger = logger

	observer, err := events.New(pubCfg)
	if err != nil {
		return err
	}
	defer observer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	resp := dispatcher.NewDispatcher(observer, logger).Dispatch(ctx, req)
	out, _ := commsutil.EncodePayload(resp)
	fmt.Println(string(out))
	if !resp.Ok {
		return fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message)
	}
	return nil
}
