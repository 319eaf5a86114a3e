package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseOperatorMessage_RequestDestination(t *testing.T) {
	data := []byte(`{"action":"REQUEST_DESTINATION","location":{"name":"3"}}`)

	msg, err := ParseOperatorMessage(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.Action != ActionRequestDestination {
		t.Errorf("action: got %s", msg.Action)
	}
	if msg.Location == nil || msg.Location.Name != "3" {
		t.Errorf("location: got %+v, want name 3", msg.Location)
	}
}

func TestParseOperatorMessage_SelectRoute(t *testing.T) {
	data := []byte(`{"action":"SELECT_ROUTE","route":"route_center"}`)

	msg, err := ParseOperatorMessage(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.Action != ActionSelectRoute {
		t.Errorf("action: got %s", msg.Action)
	}
	if msg.Route != "route_center" {
		t.Errorf("route: got %s", msg.Route)
	}
	if msg.Location != nil {
		t.Errorf("location should be absent, got %+v", msg.Location)
	}
}

func TestParseOperatorMessage_Malformed(t *testing.T) {
	if _, err := ParseOperatorMessage([]byte(`{not json`)); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestParseServoMessage(t *testing.T) {
	data := []byte(`{"user_id":"user_1","axis":"vertical","command":"increase"}`)

	msg, err := ParseServoMessage(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.UserID != "user_1" || msg.Axis != "vertical" || msg.Command != CommandIncrease {
		t.Errorf("got %+v", msg)
	}
}

// The deployed clients key on these exact field names; a rename here is a
// breaking wire change.
func TestWaitingForRoute_WireShape(t *testing.T) {
	msg := WaitingForRoute{
		Type:    TypeWaitingForRoute,
		Message: "目的地「3」選択済",
		ForUser: "user_2",
		RouteOptions: RouteOptions{
			Left:   []string{"a"},
			Center: []string{},
			Right:  []string{},
		},
		TargetDestination: "3",
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, key := range []string{
		`"type":"WAITING_FOR_ROUTE"`,
		`"for_user":"user_2"`,
		`"route_options"`,
		`"route_left":["a"]`,
		`"route_center":[]`,
		`"target_destination":"3"`,
	} {
		if !strings.Contains(out, key) {
			t.Errorf("missing %s in %s", key, out)
		}
	}
	if strings.Contains(out, "null") {
		t.Errorf("empty alternatives must encode as [], got %s", out)
	}
}

func TestKachakaStatus_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(KachakaStatus{
		Type:    TypeKachakaStatus,
		Status:  "moving",
		Message: "移動中",
	})
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "cooldown_until") {
		t.Errorf("zero cooldown must be omitted, got %s", out)
	}
	if strings.Contains(out, "destination_selector") {
		t.Errorf("empty selector must be omitted, got %s", out)
	}
}
