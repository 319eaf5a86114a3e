package actuator

import (
	"fmt"
	"sync"
	"time"

	"github.com/hrilab/go-duo/internal/log"
)

// Direction is an operator-set movement direction for one axis.
type Direction string

const (
	DirIncrease Direction = "increase"
	DirDecrease Direction = "decrease"
	DirStop     Direction = "stop"
)

// AxisKey identifies one operator axis on the shared rig.
type AxisKey struct {
	User string
	Axis string // "horizontal" or "vertical"
}

func (k AxisKey) String() string {
	return k.User + "/" + k.Axis
}

// AxisSpec configures one axis.
type AxisSpec struct {
	User    string
	Axis    string
	ServoID int

	// Inverted flips the increase/decrease sense. Vertical axes are
	// mounted mirrored, so "increase" drives the angle down. This is a
	// fixed mounting property, not an operator setting.
	Inverted bool
}

// Config holds the rig parameters.
type Config struct {
	Rate     time.Duration
	Step     float64
	MinAngle float64
	MaxAngle float64
	Axes     []AxisSpec
}

// axisState is the per-axis mutable state. direction is written by the
// message handlers; angle is owned by the loop. Both live under the rig
// mutex so the handler never does a read-modify-write on the angle.
type axisState struct {
	servoID  int
	inverted bool
	angle    float64
	dir      Direction
}

type pending struct {
	servoID int
	angle   float64
}

// Rig advances every non-stopped axis by one step per tick and re-sends
// the commanded angle. Commands are re-sent even when the angle is pinned
// at a clamp, because the send channel is fire-and-forget and lossy.
type Rig struct {
	driver PositionSender
	rate   time.Duration
	step   float64
	min    float64
	max    float64

	mu   sync.Mutex
	axes map[AxisKey]*axisState

	stop chan struct{}
}

// NewRig creates the rig from its axis specs.
func NewRig(driver PositionSender, cfg Config) *Rig {
	if cfg.Rate <= 0 {
		cfg.Rate = 10 * time.Millisecond
	}
	if cfg.Step <= 0 {
		cfg.Step = 1.0
	}
	if cfg.MinAngle == 0 && cfg.MaxAngle == 0 {
		cfg.MinAngle, cfg.MaxAngle = -40, 40
	}

	axes := make(map[AxisKey]*axisState, len(cfg.Axes))
	for _, spec := range cfg.Axes {
		axes[AxisKey{User: spec.User, Axis: spec.Axis}] = &axisState{
			servoID:  spec.ServoID,
			inverted: spec.Inverted,
			dir:      DirStop,
		}
	}

	return &Rig{
		driver: driver,
		rate:   cfg.Rate,
		step:   cfg.Step,
		min:    cfg.MinAngle,
		max:    cfg.MaxAngle,
		axes:   axes,
		stop:   make(chan struct{}),
	}
}

// Run starts the control loop. Blocks until Stop is called.
func (r *Rig) Run() {
	ticker := time.NewTicker(r.rate)
	defer ticker.Stop()

	log.Info("actuator rig started",
		"axes", len(r.axes), "rate", r.rate, "step", r.step)

	for {
		select {
		case <-r.stop:
			log.Info("actuator rig stopped")
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

// Stop halts the control loop.
func (r *Rig) Stop() {
	close(r.stop)
}

// tick advances every moving axis one step under the lock, then sends the
// commands after releasing it. The serial send never runs under the mutex.
func (r *Rig) tick() {
	r.mu.Lock()
	sends := make([]pending, 0, len(r.axes))
	for _, ax := range r.axes {
		if ax.dir == DirStop {
			continue
		}
		delta := r.step
		if ax.dir == DirDecrease {
			delta = -delta
		}
		if ax.inverted {
			delta = -delta
		}
		ax.angle = clamp(ax.angle+delta, r.min, r.max)
		sends = append(sends, pending{servoID: ax.servoID, angle: ax.angle})
	}
	r.mu.Unlock()

	for _, s := range sends {
		r.driver.SendPosition(s.servoID, s.angle)
	}
}

// SetDirection sets the movement direction for one operator axis.
func (r *Rig) SetDirection(user, axis string, dir Direction) error {
	key := AxisKey{User: user, Axis: axis}

	r.mu.Lock()
	defer r.mu.Unlock()
	ax, ok := r.axes[key]
	if !ok {
		return fmt.Errorf("unknown axis %s", key)
	}
	ax.dir = dir
	return nil
}

// StopUser stops every axis belonging to the given operator. Called on
// disconnect so an absent operator's axes do not keep drifting.
func (r *Rig) StopUser(user string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, ax := range r.axes {
		if key.User == user {
			ax.dir = DirStop
		}
	}
}

// Center zeroes every axis and sends the neutral position once.
// Called at startup.
func (r *Rig) Center() {
	r.mu.Lock()
	sends := make([]pending, 0, len(r.axes))
	for _, ax := range r.axes {
		ax.angle = 0
		ax.dir = DirStop
		sends = append(sends, pending{servoID: ax.servoID, angle: 0})
	}
	r.mu.Unlock()

	for _, s := range sends {
		r.driver.SendPosition(s.servoID, s.angle)
	}
}

// Angle returns the commanded angle for one axis, for status reporting
// and tests.
func (r *Rig) Angle(user, axis string) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ax, ok := r.axes[AxisKey{User: user, Axis: axis}]
	if !ok {
		return 0, false
	}
	return ax.angle, true
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
