// Package protocol defines the WebSocket message types spoken on the two
// operator channels: /ws/kachaka (destination negotiation) and /ws/servo
// (joystick control). The field names match the deployed Flutter/web clients,
// so they must not change without a coordinated client release.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Type identifies an outbound message on the negotiation channel.
type Type string

const (
	TypeUserAssigned     Type = "user_assigned"
	TypeConnectionStatus Type = "connection_status"
	TypeWaitingForRoute  Type = "WAITING_FOR_ROUTE"
	TypeStartingMove     Type = "STARTING_MOVE"
	TypeKachakaStatus    Type = "kachaka_status"
	TypeError            Type = "ERROR"
	TypeUserDisconnected Type = "user_disconnected"
)

// Inbound actions on the negotiation channel.
const (
	ActionRequestDestination = "REQUEST_DESTINATION"
	ActionSelectRoute        = "SELECT_ROUTE"
)

// Servo commands on the actuator channel.
const (
	CommandIncrease = "increase"
	CommandDecrease = "decrease"
	CommandStop     = "stop"
)

// LocationRef names a robot location in a client request.
type LocationRef struct {
	Name string `json:"name"`
}

// OperatorMessage is an inbound message on the negotiation channel.
type OperatorMessage struct {
	Action   string       `json:"action"`
	Location *LocationRef `json:"location,omitempty"`
	Route    string       `json:"route,omitempty"`
}

// ParseOperatorMessage decodes an inbound negotiation message.
func ParseOperatorMessage(data []byte) (*OperatorMessage, error) {
	var msg OperatorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parse operator message: %w", err)
	}
	return &msg, nil
}

// ServoMessage is an inbound message on the actuator channel.
type ServoMessage struct {
	UserID  string `json:"user_id"`
	Axis    string `json:"axis"` // "horizontal" or "vertical"
	Command string `json:"command"`
}

// ParseServoMessage decodes an inbound actuator message.
func ParseServoMessage(data []byte) (*ServoMessage, error) {
	var msg ServoMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parse servo message: %w", err)
	}
	return &msg, nil
}

// RouteOptions carries the three route alternatives offered to the
// route-selecting operator.
type RouteOptions struct {
	Left   []string `json:"route_left"`
	Center []string `json:"route_center"`
	Right  []string `json:"route_right"`
}

// UserAssigned is sent to a single client right after connect.
type UserAssigned struct {
	Type                Type   `json:"type"`
	UserID              string `json:"user_id"`
	Message             string `json:"message"`
	CurrentLocation     string `json:"current_location"`
	DestinationSelector string `json:"destination_selector"`
}

// ConnectionStatus is broadcast whenever the operator roster changes.
type ConnectionStatus struct {
	Type                Type   `json:"type"`
	Ready               bool   `json:"ready"`
	User1               bool   `json:"user1"`
	User2               bool   `json:"user2"`
	DestinationSelector string `json:"destination_selector"`
}

// WaitingForRoute is broadcast once the selector has named a destination.
type WaitingForRoute struct {
	Type              Type         `json:"type"`
	Message           string       `json:"message"`
	ForUser           string       `json:"for_user"`
	RouteOptions      RouteOptions `json:"route_options"`
	TargetDestination string       `json:"target_destination"`
}

// StartingMove announces a committed plan before the queue starts draining.
type StartingMove struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

// KachakaStatus is the shared robot status broadcast.
type KachakaStatus struct {
	Type                Type   `json:"type"`
	Status              string `json:"status"` // "idle" or "moving"
	Message             string `json:"message"`
	CurrentLocation     string `json:"current_location,omitempty"`
	Destination         string `json:"destination,omitempty"`
	DestinationSelector string `json:"destination_selector,omitempty"`
	CooldownUntil       int64  `json:"cooldown_until,omitempty"` // Unix milliseconds
}

// ErrorMessage is a reply to the single operator whose request failed.
type ErrorMessage struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

// UserDisconnected is broadcast when an operator drops mid-session.
type UserDisconnected struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

// NewError builds an ERROR reply.
func NewError(message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message}
}

// NewStartingMove builds a STARTING_MOVE broadcast.
func NewStartingMove(message string) StartingMove {
	return StartingMove{Type: TypeStartingMove, Message: message}
}
