package main

import (
	"strings"
	"testing"
)

const mainTestPrefix = "cmd/registry-notifier:main_test"

func TestUsage_NonEmpty(t *testing.T) {
	if len(usage) == 0 {
		t.Fatalf("%s - usage string is empty", mainTestPrefix)
	}
}

func TestUsage_ContainsCommands(t *testing.T) {
	required := []string{"serve", "publish", "help", "MQTT_ENDPOINT", "MQTT_CLIENT_ID"}
	for _, word := range required {
		if !strings.Contains(usage, word) {
			t.Errorf("%s - usage should contain %q", mainTestPrefix, word)
		}
	}
}

func TestParsePublishArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		event   string
		aas     string
		sm      string
	}{
		{"aas registered", []string{"aasRegistered", "aas-1"}, false, "aasRegistered", "aas-1", ""},
		{"case insensitive", []string{"SubmodelDeleted", "aas-1", "sm-1"}, false, "submodelDeleted", "aas-1", "sm-1"},
		{"missing aas id", []string{"aasDeleted"}, true, "", "", ""},
		{"too many args", []string{"aasDeleted", "a", "b", "c"}, true, "", "", ""},
		{"unknown event", []string{"aasUpdated", "a"}, true, "", "", ""},
		{"submodel event without sm id", []string{"submodelRegistered", "a"}, true, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := parsePublishArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("%s - expected error for %v", mainTestPrefix, tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("%s - unexpected error: %v", mainTestPrefix, err)
			}
			if req.Event != tt.event || req.AASID != tt.aas || req.SubmodelID != tt.sm {
				t.Errorf("%s - got %+v", mainTestPrefix, req)
			}
		})
	}
}
