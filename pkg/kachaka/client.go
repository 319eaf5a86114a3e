package kachaka

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hrilab/go-duo/internal/httpc"
)

// moveTimeout bounds a single blocking move call. Real moves take tens of
// seconds; anything past this is a wedged command, not a slow hallway.
const moveTimeout = 5 * time.Minute

// Pose is a location's position on the map.
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// Location is a named destination registered on the robot's map.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Pose Pose   `json:"pose"`
}

// HTTPClient talks to the kachaka-api HTTP bridge on the robot.
type HTTPClient struct {
	BaseURL string

	// moveClient has a long timeout because MoveToLocation blocks for
	// the physical travel duration. Everything else uses the shared
	// short-timeout client.
	moveClient *http.Client
}

// NewHTTPClient creates a client for the robot at baseURL,
// e.g. "http://10.40.5.108:26502".
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL:    baseURL,
		moveClient: httpc.NewClient(moveTimeout),
	}
}

// GetLocations returns all named locations registered on the current map.
func (c *HTTPClient) GetLocations() ([]Location, error) {
	resp, err := httpc.Client.Get(c.BaseURL + "/locations")
	if err != nil {
		return nil, fmt.Errorf("locations request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("locations request: status %d", resp.StatusCode)
	}

	var body struct {
		Locations []Location `json:"locations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode locations: %w", err)
	}
	return body.Locations, nil
}

// MoveToLocation commands the robot to the location with the given ID and
// blocks until the bridge reports the command finished.
func (c *HTTPClient) MoveToLocation(id string) error {
	payload, err := json.Marshal(map[string]string{"location_id": id})
	if err != nil {
		return fmt.Errorf("failed to marshal move payload: %w", err)
	}

	resp, err := c.moveClient.Post(
		c.BaseURL+"/command/move_to_location",
		"application/json",
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("move request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("move command: status %d", resp.StatusCode)
	}

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode move result: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("move command rejected: %s", result.Message)
	}
	return nil
}

// IsCommandRunning polls whether the robot is still executing a command.
func (c *HTTPClient) IsCommandRunning() (bool, error) {
	resp, err := httpc.Client.Get(c.BaseURL + "/command/is_running")
	if err != nil {
		return false, fmt.Errorf("command state request failed: %w", err)
	}
	defer resp.Body.Close()

	var state struct {
		Running bool `json:"running"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return false, fmt.Errorf("failed to decode command state: %w", err)
	}
	return state.Running, nil
}

// RobotVersion returns the robot firmware version string.
func (c *HTTPClient) RobotVersion() (string, error) {
	resp, err := httpc.Client.Get(c.BaseURL + "/robot_version")
	if err != nil {
		return "", fmt.Errorf("version request failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode version: %w", err)
	}
	return body.Version, nil
}
