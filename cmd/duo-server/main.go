// duo-server is the coordination server for the two-operator Kachaka
// experiment: destination negotiation over /ws/kachaka, joystick servo
// control over /ws/servo.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hrilab/go-duo/internal/config"
	"github.com/hrilab/go-duo/internal/log"
	"github.com/hrilab/go-duo/pkg/actuator"
	"github.com/hrilab/go-duo/pkg/eventlog"
	"github.com/hrilab/go-duo/pkg/kachaka"
	"github.com/hrilab/go-duo/pkg/motion"
	"github.com/hrilab/go-duo/pkg/negotiation"
	"github.com/hrilab/go-duo/pkg/routes"
	"github.com/hrilab/go-duo/pkg/session"
	"github.com/hrilab/go-duo/pkg/web"
)

func main() {
	configPath := flag.String("config", "duo.yaml", "path to YAML config (optional)")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	log.Info("starting go-duo server")

	table := routes.Open(cfg.Negotiation.RouteTable)

	robot := kachaka.NewHTTPClient(cfg.Kachaka.URL())
	if version, err := robot.RobotVersion(); err != nil {
		log.Warn("kachaka not reachable yet, continuing", "url", cfg.Kachaka.URL(), "error", err)
	} else {
		log.Info("connected to kachaka", "version", version)
	}

	var sender actuator.PositionSender
	ics, err := actuator.OpenICS(cfg.Serial.Port, cfg.Serial.BaudRate)
	if err != nil {
		log.Warn("serial port unavailable, servo output disabled", "error", err)
		sender = actuator.Discard{}
	} else {
		defer ics.Close()
		sender = ics
	}

	rig := actuator.NewRig(sender, actuator.Config{
		Rate:     cfg.Rig.Rate,
		Step:     cfg.Rig.Step,
		MinAngle: cfg.Rig.MinAngle,
		MaxAngle: cfg.Rig.MaxAngle,
		Axes:     axisSpecs(cfg.Rig.Axes),
	})
	rig.Center()

	registry := session.NewRegistry()
	negotiator := negotiation.New(table, robot, registry.Present, negotiation.Config{
		InitialLocation: cfg.Negotiation.InitialLocation,
		Hubs:            cfg.Negotiation.Hubs,
		Cooldown:        cfg.Negotiation.Cooldown,
	})
	queue := motion.NewQueue()
	executor := motion.NewExecutor(queue, robot, negotiator, cfg.Kachaka.PollRate)

	var events *eventlog.Log
	if cfg.EventLog.Enabled {
		events, err = eventlog.Open(cfg.EventLog.Path)
		if err != nil {
			log.Warn("event log unavailable, continuing without it", "error", err)
			events = nil
		} else {
			defer events.Close()
		}
	}

	server := web.New(web.Deps{
		Registry:   registry,
		Negotiator: negotiator,
		Queue:      queue,
		Executor:   executor,
		Rig:        rig,
		Robot:      robot,
		Events:     events,
	})

	go rig.Run()
	go executor.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		executor.Stop()
		rig.Stop()
		server.Shutdown()
	}()

	addr := cfg.Web.Host + ":" + cfg.Web.Port
	log.Info("listening", "addr", addr)
	if err := server.Listen(addr); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("goodbye")
}

func axisSpecs(axes []config.AxisConfig) []actuator.AxisSpec {
	specs := make([]actuator.AxisSpec, len(axes))
	for i, ax := range axes {
		specs[i] = actuator.AxisSpec{
			User:     ax.User,
			Axis:     ax.Axis,
			ServoID:  ax.ServoID,
			Inverted: ax.Inverted,
		}
	}
	return specs
}
