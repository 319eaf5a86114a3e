package motion

import (
	"time"

	"github.com/hrilab/go-duo/internal/log"
	"github.com/hrilab/go-duo/pkg/kachaka"
	"github.com/hrilab/go-duo/pkg/negotiation"
)

// Outcome tags how a move finished. The fleet API offers no reliable
// failure signal beyond the busy flag, so a driver error is recorded but
// still treated as an arrival at the attempted target. This is a documented
// trade-off, not a bug: the true result cannot be disambiguated from this
// driver surface.
type Outcome int

const (
	Arrived Outcome = iota
	DriverError
)

func (o Outcome) String() string {
	if o == DriverError {
		return "driver_error"
	}
	return "arrived"
}

// Result is the outcome of one dispatched move.
type Result struct {
	Loc     kachaka.Location
	Outcome Outcome
	Err     error
}

// Driver is the robot surface the executor needs.
type Driver interface {
	kachaka.Mover
	kachaka.BusyPoller
}

// Coordinator receives move lifecycle events; implemented by the
// negotiation state machine.
type Coordinator interface {
	BeginMove(loc kachaka.Location) negotiation.Status
	OnArrival(locationName string, queueEmpty bool) negotiation.Status
}

// Default executor timings.
const (
	DefaultPollRate = 500 * time.Millisecond

	// busyPollLimit releases a stuck busy flag: after this many polls the
	// next command is force-issued.
	busyPollLimit = 10

	// settleDelay gives the robot time to flip its busy flag after a
	// command is accepted, before the arrival wait starts.
	settleDelay = 1 * time.Second
)

// Executor drains the queue one target at a time. The blocking move call
// runs on a dedicated worker goroutine per move; the polling loop itself
// never blocks, so it stays responsive to Stop and to queue growth.
type Executor struct {
	queue    *Queue
	robot    Driver
	coord    Coordinator
	pollRate time.Duration

	// OnMoving and OnArrived are broadcast hooks set by the web layer.
	// Called from the executor goroutine.
	OnMoving  func(st negotiation.Status, loc kachaka.Location)
	OnArrived func(st negotiation.Status, res Result)

	inflight *kachaka.Location
	results  chan Result
	stop     chan struct{}
	settle   time.Duration
}

// NewExecutor creates an executor over the shared queue.
func NewExecutor(queue *Queue, robot Driver, coord Coordinator, pollRate time.Duration) *Executor {
	if pollRate <= 0 {
		pollRate = DefaultPollRate
	}
	return &Executor{
		queue:    queue,
		robot:    robot,
		coord:    coord,
		pollRate: pollRate,
		results:  make(chan Result, 1),
		stop:     make(chan struct{}),
		settle:   settleDelay,
	}
}

// Run starts the polling loop. Blocks until Stop is called.
func (e *Executor) Run() {
	ticker := time.NewTicker(e.pollRate)
	defer ticker.Stop()

	log.Info("motion executor started", "poll_rate", e.pollRate)
	for {
		select {
		case <-e.stop:
			log.Info("motion executor stopped")
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

// Stop halts the polling loop. An in-flight robot move cannot be
// cancelled; its worker finishes on its own.
func (e *Executor) Stop() {
	close(e.stop)
}

// tick runs one poll cycle: reap a finished move, then dispatch the next.
func (e *Executor) tick() {
	if e.inflight != nil {
		select {
		case res := <-e.results:
			e.inflight = nil
			st := e.coord.OnArrival(res.Loc.Name, e.queue.Len() == 0)
			if e.OnArrived != nil {
				e.OnArrived(st, res)
			}
		default:
			// Still travelling.
			return
		}
	}

	running, err := e.robot.IsCommandRunning()
	if err != nil {
		log.Warn("busy poll failed", "error", err)
		return
	}
	if running {
		return
	}

	loc, ok := e.queue.PopFront()
	if !ok {
		return
	}

	e.inflight = &loc
	st := e.coord.BeginMove(loc)
	if e.OnMoving != nil {
		e.OnMoving(st, loc)
	}
	go e.moveSync(loc)
}

// moveSync issues one blocking move and reports the tagged result. Runs on
// its own goroutine because MoveToLocation blocks for the physical travel
// duration.
func (e *Executor) moveSync(loc kachaka.Location) {
	// A previous command may still be winding down. Wait it out, but
	// force-issue after busyPollLimit polls so a lying busy flag cannot
	// wedge the whole queue.
	for i := 0; ; i++ {
		running, err := e.robot.IsCommandRunning()
		if err != nil || !running {
			break
		}
		if i >= busyPollLimit {
			log.Warn("busy flag stuck, force starting next command", "target", loc.Name)
			break
		}
		time.Sleep(e.pollRate)
	}

	log.Info("moving", "target", loc.Name, "id", loc.ID)

	res := Result{Loc: loc, Outcome: Arrived}
	if err := e.robot.MoveToLocation(loc.ID); err != nil {
		// Best-effort policy: log and report arrival at the attempted
		// target anyway; the busy flag is the only truth we have.
		log.Error("move failed, treating as arrival", "target", loc.Name, "error", err)
		res.Outcome = DriverError
		res.Err = err
	} else {
		time.Sleep(e.settle)
		for {
			running, err := e.robot.IsCommandRunning()
			if err != nil || !running {
				break
			}
			time.Sleep(e.pollRate)
		}
		log.Info("move finished", "target", loc.Name)
	}

	e.results <- res
}
