package kachaka

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/locations" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"locations": []Location{
				{ID: "L1", Name: "1", Pose: Pose{X: 1.5, Y: -2.0}},
				{ID: "Lb", Name: "b"},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	locs, err := c.GetLocations()
	if err != nil {
		t.Fatalf("GetLocations: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("got %d locations, want 2", len(locs))
	}
	if locs[0].ID != "L1" || locs[0].Pose.X != 1.5 {
		t.Errorf("first location: got %+v", locs[0])
	}
}

func TestGetLocations_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	if _, err := c.GetLocations(); err == nil {
		t.Error("expected error on 500")
	}
}

func TestMoveToLocation(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/command/move_to_location" || r.Method != http.MethodPost {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			LocationID string `json:"location_id"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotID = body.LocationID
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	if err := c.MoveToLocation("L1"); err != nil {
		t.Fatalf("MoveToLocation: %v", err)
	}
	if gotID != "L1" {
		t.Errorf("location_id: got %s, want L1", gotID)
	}
}

func TestMoveToLocation_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "unknown location"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	if err := c.MoveToLocation("nope"); err == nil {
		t.Error("expected error when the bridge rejects the command")
	}
}

func TestIsCommandRunning(t *testing.T) {
	running := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/command/is_running" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]bool{"running": running})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	got, err := c.IsCommandRunning()
	if err != nil {
		t.Fatalf("IsCommandRunning: %v", err)
	}
	if !got {
		t.Error("got false, want true")
	}

	running = false
	got, err = c.IsCommandRunning()
	if err != nil {
		t.Fatalf("IsCommandRunning: %v", err)
	}
	if got {
		t.Error("got true, want false")
	}
}

func TestRobotVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"version": "3.2.1"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	version, err := c.RobotVersion()
	if err != nil {
		t.Fatalf("RobotVersion: %v", err)
	}
	if version != "3.2.1" {
		t.Errorf("version: got %s", version)
	}
}
