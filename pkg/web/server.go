// Package web exposes the two operator WebSocket channels and a small
// status API on one fiber server.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/hrilab/go-duo/pkg/actuator"
	"github.com/hrilab/go-duo/pkg/eventlog"
	"github.com/hrilab/go-duo/pkg/kachaka"
	"github.com/hrilab/go-duo/pkg/motion"
	"github.com/hrilab/go-duo/pkg/negotiation"
	"github.com/hrilab/go-duo/pkg/protocol"
	"github.com/hrilab/go-duo/pkg/session"
)

// Deps are the components the server wires together.
type Deps struct {
	Registry   *session.Registry
	Negotiator *negotiation.Negotiator
	Queue      *motion.Queue
	Executor   *motion.Executor
	Rig        *actuator.Rig
	Robot      kachaka.Client
	Events     *eventlog.Log
}

// Server is the operator-facing web server.
type Server struct {
	app *fiber.App

	registry   *session.Registry
	negotiator *negotiation.Negotiator
	queue      *motion.Queue
	rig        *actuator.Rig
	robot      kachaka.Client
	events     *eventlog.Log
}

// New creates the server and hooks the executor's lifecycle events into
// the broadcast path.
func New(deps Deps) *Server {
	s := &Server{
		registry:   deps.Registry,
		negotiator: deps.Negotiator,
		queue:      deps.Queue,
		rig:        deps.Rig,
		robot:      deps.Robot,
		events:     deps.Events,
	}

	app := fiber.New(fiber.Config{
		AppName:               "go-duo",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/locations", s.handleLocations)
	api.Get("/events", s.handleEvents)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/kachaka", websocket.New(s.handleKachakaWS))
	app.Get("/ws/servo", websocket.New(s.handleServoWS))

	s.app = app

	if deps.Executor != nil {
		deps.Executor.OnMoving = s.onMoving
		deps.Executor.OnArrived = s.onArrived
	}

	return s
}

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// onMoving broadcasts that the robot started a single-hop move.
func (s *Server) onMoving(st negotiation.Status, loc kachaka.Location) {
	s.registry.Broadcast(protocol.KachakaStatus{
		Type:        protocol.TypeKachakaStatus,
		Status:      "moving",
		Destination: loc.Name,
	})
	s.events.Append("system", "MOVE_START", loc.Name,
		string(st.Selector), st.CurrentLocation)
}

// onArrived broadcasts the post-arrival shared status.
func (s *Server) onArrived(st negotiation.Status, res motion.Result) {
	msg := protocol.KachakaStatus{
		Type:                protocol.TypeKachakaStatus,
		Status:              "idle",
		CurrentLocation:     st.CurrentLocation,
		DestinationSelector: string(st.Selector),
	}
	if !st.CooldownUntil.IsZero() {
		msg.CooldownUntil = st.CooldownUntil.UnixMilli()
	}
	s.registry.Broadcast(msg)
	s.events.Append("system", "ARRIVE", res.Loc.Name+" ("+res.Outcome.String()+")",
		string(st.Selector), st.CurrentLocation)
}

// broadcastConnectionStatus tells every client who is seated and who
// currently selects destinations.
func (s *Server) broadcastConnectionStatus() {
	s.registry.Broadcast(protocol.ConnectionStatus{
		Type:                protocol.TypeConnectionStatus,
		Ready:               s.registry.Ready(),
		User1:               s.registry.Present(negotiation.RoleUser1),
		User2:               s.registry.Present(negotiation.RoleUser2),
		DestinationSelector: string(s.negotiator.Selector()),
	})
}

// handleStatus returns the shared session state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	st := s.negotiator.Snapshot()
	status := "idle"
	if st.Moving {
		status = "moving"
	}
	return c.JSON(fiber.Map{
		"status":               status,
		"current_location":     st.CurrentLocation,
		"moving_to":            st.MovingTo,
		"destination_selector": string(st.Selector),
		"cooldown_remaining_s": s.negotiator.CooldownRemaining().Seconds(),
		"queue_length":         s.queue.Len(),
		"clients":              s.registry.Count(),
	})
}

// handleLocations proxies the robot's named locations for client UIs.
func (s *Server) handleLocations(c *fiber.Ctx) error {
	locations, err := s.robot.GetLocations()
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"locations": locations})
}

// handleEvents returns recent session events.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	events, err := s.events.Recent(100)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(events)
}
