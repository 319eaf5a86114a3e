// Package negotiation implements the turn-taking state machine for the
// shared robot: one operator names a destination, the other chooses among
// three precomputed routes, and the destination-selection right swaps each
// time the robot arrives at a numbered hub location.
package negotiation

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hrilab/go-duo/internal/log"
	"github.com/hrilab/go-duo/pkg/kachaka"
	"github.com/hrilab/go-duo/pkg/routes"
)

// PresenceFunc reports whether the given operator seat is connected.
type PresenceFunc func(Role) bool

// PendingRequest is the selector's destination proposal awaiting a route
// choice from the partner. At most one exists per negotiation round.
type PendingRequest struct {
	Role        Role
	Destination string
}

// Status is a broadcastable snapshot of the shared session state.
type Status struct {
	Moving          bool
	CurrentLocation string
	MovingTo        string
	Selector        Role
	CooldownUntil   time.Time
}

// Commit is a completed negotiation round, ready for the motion queue.
type Commit struct {
	// Batch is the full ordered move list: path waypoints, then the
	// destination. It must be enqueued as one atomic push.
	Batch []kachaka.Location

	// Waypoints is Batch without the final destination.
	Waypoints []kachaka.Location

	// Destination is the resolved final target.
	Destination kachaka.Location

	// Message is the operator-facing announcement for the plan.
	Message string
}

// Config holds the negotiation rules.
type Config struct {
	// InitialLocation is where the robot starts, usually the charging dock.
	InitialLocation string

	// Hubs are the location names whose arrival swaps the selector role
	// and starts the cooldown. Waypoints used only for path shaping are
	// deliberately not in this set.
	Hubs []string

	// Cooldown is how long destination requests are rejected after a hub
	// arrival.
	Cooldown time.Duration
}

// Negotiator is the per-session state machine. It is created once per
// process and survives operator reconnects: a disconnect clears only the
// in-flight proposal, never the location or selector history.
//
// All methods are safe for concurrent use; per-connection goroutines
// serialize on the internal mutex.
type Negotiator struct {
	table     *routes.Table
	locations kachaka.LocationLister
	present   PresenceFunc
	hubs      map[string]bool
	cooldown  time.Duration
	now       func() time.Time

	mu              sync.Mutex
	selector        Role
	currentLocation string
	movingTo        *kachaka.Location
	pending         *PendingRequest
	routeChoice     string
	cooldownUntil   time.Time

	// Telemetry windows. Not consulted for control flow.
	selectionStarted time.Time
	travelStarted    time.Time
}

// New creates a negotiator. present may be nil, in which case the partner
// check is skipped (useful in tests).
func New(table *routes.Table, locations kachaka.LocationLister, present PresenceFunc, cfg Config) *Negotiator {
	hubs := make(map[string]bool, len(cfg.Hubs))
	for _, h := range cfg.Hubs {
		hubs[h] = true
	}
	return &Negotiator{
		table:           table,
		locations:       locations,
		present:         present,
		hubs:            hubs,
		cooldown:        cfg.Cooldown,
		now:             time.Now,
		selector:        RoleUser1,
		currentLocation: cfg.InitialLocation,
	}
}

// Selector returns the role currently allowed to name a destination.
func (n *Negotiator) Selector() Role {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.selector
}

// CurrentLocation returns the robot's last known location name.
func (n *Negotiator) CurrentLocation() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.currentLocation
}

// Snapshot returns the current broadcastable status.
func (n *Negotiator) Snapshot() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

func (n *Negotiator) snapshotLocked() Status {
	s := Status{
		Moving:          n.movingTo != nil,
		CurrentLocation: n.currentLocation,
		Selector:        n.selector,
		CooldownUntil:   n.cooldownUntil,
	}
	if n.movingTo != nil {
		s.MovingTo = n.movingTo.Name
	}
	return s
}

// CooldownRemaining returns how much of the cooldown window is left.
func (n *Negotiator) CooldownRemaining() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cooldownRemainingLocked()
}

func (n *Negotiator) cooldownRemainingLocked() time.Duration {
	if remaining := n.cooldownUntil.Sub(n.now()); remaining > 0 {
		return remaining
	}
	return 0
}

// RequestDestination records the selector's destination proposal and
// returns the route alternatives to offer the partner. The pending state
// is untouched on any failure.
func (n *Negotiator) RequestDestination(role Role, destination string) (routes.Plan, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if role != n.selector {
		return routes.Plan{}, ErrWrongTurn
	}
	if n.present != nil && !n.present(role.Partner()) {
		return routes.Plan{}, ErrNoPartner
	}
	if remaining := n.cooldownRemainingLocked(); remaining > 0 {
		return routes.Plan{}, &CooldownError{Remaining: remaining}
	}
	if n.movingTo != nil || n.pending != nil {
		return routes.Plan{}, ErrBusy
	}

	n.pending = &PendingRequest{Role: role, Destination: destination}
	n.selectionStarted = n.now()

	plan := n.table.Lookup(n.currentLocation, destination)
	log.Info("destination requested",
		"selector", role, "from", n.currentLocation, "to", destination)
	return plan, nil
}

// SelectRoute resolves the partner's route choice: waypoint names are
// looked up against the robot's live location set and the announcement
// message is composed. The round stays pending until Committed is called
// with the batch safely in the queue, so a second proposal cannot slip in
// between the commit and the enqueue.
//
// Waypoints that no longer resolve are skipped with a warning. An
// unresolvable destination aborts the round, clears the pending state, and
// returns ErrDestinationUnresolved.
func (n *Negotiator) SelectRoute(role Role, alternative string) (*Commit, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if role == n.selector {
		return nil, ErrWrongTurn
	}
	if n.movingTo != nil || n.routeChoice != "" {
		return nil, ErrBusy
	}
	if n.pending == nil {
		return nil, ErrNoPendingRequest
	}

	destination := n.pending.Destination
	n.routeChoice = alternative
	names := n.table.Lookup(n.currentLocation, destination).Alternative(alternative)

	all, err := n.locations.GetLocations()
	if err != nil {
		// The round cannot be salvaged without a location set; reset it
		// so the selector can start over once the robot answers again.
		n.clearRoundLocked()
		return nil, fmt.Errorf("location lookup failed: %w", err)
	}

	byName := make(map[string]kachaka.Location, len(all))
	for _, loc := range all {
		byName[loc.Name] = loc
	}

	waypoints := make([]kachaka.Location, 0, len(names))
	for _, name := range names {
		loc, ok := byName[name]
		if !ok {
			log.Warn("waypoint not found on map, skipping", "waypoint", name)
			continue
		}
		waypoints = append(waypoints, loc)
	}

	dest, ok := byName[destination]
	if !ok {
		n.clearRoundLocked()
		return nil, ErrDestinationUnresolved
	}

	var message string
	if len(waypoints) > 0 {
		parts := make([]string, len(waypoints))
		for i, wp := range waypoints {
			parts[i] = wp.Name
		}
		message = fmt.Sprintf("%s を経由して %s へ向かいます！", strings.Join(parts, " → "), destination)
	} else {
		message = fmt.Sprintf("%s へ直接向かいます！", destination)
	}

	if !n.selectionStarted.IsZero() {
		log.Info("route selected",
			"by", role, "route", alternative,
			"selection_time", n.now().Sub(n.selectionStarted))
	}

	batch := make([]kachaka.Location, 0, len(waypoints)+1)
	batch = append(batch, waypoints...)
	batch = append(batch, dest)

	return &Commit{
		Batch:       batch,
		Waypoints:   waypoints,
		Destination: dest,
		Message:     message,
	}, nil
}

// BeginMove marks a single-hop move as in flight. Called by the executor
// when it pops a waypoint off the queue.
func (n *Negotiator) BeginMove(loc kachaka.Location) Status {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.movingTo = &loc
	if n.travelStarted.IsZero() {
		n.travelStarted = n.now()
	}
	return n.snapshotLocked()
}

// OnArrival records a completed single-hop move. queueEmpty tells the
// negotiator whether this hop was the final destination of the round.
//
// The selector swaps and the cooldown starts only when the arrival location
// is a hub — the swap is keyed on destination node identity, never on
// whether the queue happens to have drained.
func (n *Negotiator) OnArrival(locationName string, queueEmpty bool) Status {
	n.mu.Lock()
	defer n.mu.Unlock()

	old := n.currentLocation
	n.currentLocation = locationName
	n.movingTo = nil
	log.Info("location updated", "from", old, "to", locationName)

	if queueEmpty && !n.travelStarted.IsZero() {
		log.Info("route finished", "travel_time", n.now().Sub(n.travelStarted))
		n.travelStarted = time.Time{}
	}

	if n.hubs[locationName] {
		n.selector = n.selector.Partner()
		n.cooldownUntil = n.now().Add(n.cooldown)
		log.Info("hub arrival, selector swapped",
			"hub", locationName, "selector", n.selector,
			"cooldown", n.cooldown)
	} else {
		log.Debug("waypoint arrival, no swap", "waypoint", locationName)
	}

	return n.snapshotLocked()
}

// Committed finishes a round whose batch has been handed to the motion
// queue. Until this is called, both operators stay locked out: the round
// clears only once the moves are actually queued, so the busy guard covers
// the gap between SelectRoute and the enqueue.
func (n *Negotiator) Committed() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.clearRoundLocked()
}

// ClearPending drops the in-flight proposal, if any. Called when an
// operator disconnects mid-round: a half-finished negotiation must not
// survive a departure. Location and selector history are kept.
func (n *Negotiator) ClearPending() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.clearRoundLocked()
}

// clearRoundLocked resets the proposal and route choice together.
// Callers must hold n.mu.
func (n *Negotiator) clearRoundLocked() {
	n.pending = nil
	n.routeChoice = ""
	n.selectionStarted = time.Time{}
}

// HasPending reports whether a destination proposal is awaiting a route.
func (n *Negotiator) HasPending() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pending != nil
}
