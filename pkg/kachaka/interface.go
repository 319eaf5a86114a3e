// Package kachaka provides the client for the Kachaka delivery robot's HTTP
// API bridge. The surface is deliberately small: named-location lookup, a
// blocking move command, and a busy poll — that is all the fleet API offers
// for coordination.
//
// Consumers should depend on the narrow interfaces below rather than the
// concrete client, so tests can substitute recording fakes.
package kachaka

// LocationLister resolves the robot's named locations.
type LocationLister interface {
	GetLocations() ([]Location, error)
}

// Mover issues a move command. MoveToLocation blocks until the robot
// arrives or the driver reports a failure — tens of seconds for a real
// move — so it must never be called on a latency-sensitive goroutine.
type Mover interface {
	MoveToLocation(id string) error
}

// BusyPoller reports whether a robot command is currently executing.
type BusyPoller interface {
	IsCommandRunning() (bool, error)
}

// Client is the composite interface for full robot access.
type Client interface {
	LocationLister
	Mover
	BusyPoller
	RobotVersion() (string, error)
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
