package actuator

import (
	"sync"
	"testing"
)

// recordingSender captures every position command.
type recordingSender struct {
	mu    sync.Mutex
	sends []pending
}

func (s *recordingSender) SendPosition(servoID int, angle float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, pending{servoID: servoID, angle: angle})
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sends)
}

func (s *recordingSender) last() (pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sends) == 0 {
		return pending{}, false
	}
	return s.sends[len(s.sends)-1], true
}

func testRig(sender PositionSender) *Rig {
	return NewRig(sender, Config{
		Step:     1.0,
		MinAngle: -40,
		MaxAngle: 40,
		Axes: []AxisSpec{
			{User: "user_1", Axis: "horizontal", ServoID: 7},
			{User: "user_1", Axis: "vertical", ServoID: 5, Inverted: true},
			{User: "user_2", Axis: "horizontal", ServoID: 8},
			{User: "user_2", Axis: "vertical", ServoID: 6, Inverted: true},
		},
	})
}

// Ticks are driven by hand; Run is not started.
func TestRig_HorizontalIncrease(t *testing.T) {
	sender := &recordingSender{}
	r := testRig(sender)

	if err := r.SetDirection("user_1", "horizontal", DirIncrease); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		r.tick()
	}

	angle, ok := r.Angle("user_1", "horizontal")
	if !ok {
		t.Fatal("axis missing")
	}
	if angle != 3 {
		t.Errorf("angle: got %v, want 3", angle)
	}
	if sender.count() != 3 {
		t.Errorf("sends: got %d, want 3 (one per tick)", sender.count())
	}
}

// Vertical axes are mounted mirrored: "increase" drives the angle down.
func TestRig_VerticalInversion(t *testing.T) {
	sender := &recordingSender{}
	r := testRig(sender)

	if err := r.SetDirection("user_1", "vertical", DirIncrease); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		r.tick()
	}

	angle, _ := r.Angle("user_1", "vertical")
	if angle != -3 {
		t.Errorf("angle: got %v, want -3", angle)
	}
}

func TestRig_StopHoldsAngle(t *testing.T) {
	sender := &recordingSender{}
	r := testRig(sender)

	r.SetDirection("user_2", "horizontal", DirDecrease)
	r.tick()
	r.tick()
	r.SetDirection("user_2", "horizontal", DirStop)

	before := sender.count()
	r.tick()
	r.tick()

	angle, _ := r.Angle("user_2", "horizontal")
	if angle != -2 {
		t.Errorf("angle: got %v, want -2", angle)
	}
	if sender.count() != before {
		t.Errorf("stopped axis must not send, got %d extra", sender.count()-before)
	}
}

func TestRig_ClampAtLimits(t *testing.T) {
	sender := &recordingSender{}
	r := testRig(sender)

	r.SetDirection("user_1", "horizontal", DirIncrease)
	for i := 0; i < 100; i++ {
		r.tick()
	}

	angle, _ := r.Angle("user_1", "horizontal")
	if angle != 40 {
		t.Errorf("angle: got %v, want clamp at 40", angle)
	}
	// Pinned axes keep re-sending the clamped angle.
	last, ok := sender.last()
	if !ok || last.angle != 40 {
		t.Errorf("last send: got %+v, want angle 40", last)
	}
}

func TestRig_UnknownAxisRejected(t *testing.T) {
	r := testRig(&recordingSender{})
	if err := r.SetDirection("user_3", "horizontal", DirIncrease); err == nil {
		t.Error("expected error for unknown axis")
	}
	if err := r.SetDirection("user_1", "diagonal", DirIncrease); err == nil {
		t.Error("expected error for unknown axis name")
	}
}

func TestRig_StopUser(t *testing.T) {
	sender := &recordingSender{}
	r := testRig(sender)

	r.SetDirection("user_1", "horizontal", DirIncrease)
	r.SetDirection("user_1", "vertical", DirIncrease)
	r.SetDirection("user_2", "horizontal", DirIncrease)
	r.tick()

	r.StopUser("user_1")
	r.tick()

	if angle, _ := r.Angle("user_1", "horizontal"); angle != 1 {
		t.Errorf("user_1 horizontal: got %v, want 1 (stopped after one tick)", angle)
	}
	if angle, _ := r.Angle("user_2", "horizontal"); angle != 2 {
		t.Errorf("user_2 horizontal: got %v, want 2 (still moving)", angle)
	}
}

func TestRig_CenterZeroesAndSends(t *testing.T) {
	sender := &recordingSender{}
	r := testRig(sender)

	r.SetDirection("user_1", "horizontal", DirIncrease)
	r.tick()
	r.tick()

	r.Center()

	if angle, _ := r.Angle("user_1", "horizontal"); angle != 0 {
		t.Errorf("angle after center: got %v, want 0", angle)
	}
	// One neutral command per axis.
	sender.mu.Lock()
	zeros := 0
	for _, s := range sender.sends {
		if s.angle == 0 {
			zeros++
		}
	}
	sender.mu.Unlock()
	if zeros != 4 {
		t.Errorf("neutral sends: got %d, want 4", zeros)
	}

	// Center also stops the axis.
	before, _ := r.Angle("user_1", "horizontal")
	r.tick()
	after, _ := r.Angle("user_1", "horizontal")
	if before != after {
		t.Error("axis kept moving after Center")
	}
}

func TestAngleToPosition(t *testing.T) {
	cases := []struct {
		angle float64
		want  int
	}{
		{0, 7500},
		{30, 8500},
		{-30, 6500},
		{60, 9500},
		{-60, 5500},
		{500, icsMax},
		{-500, icsMin},
	}
	for _, c := range cases {
		if got := angleToPosition(c.angle); got != c.want {
			t.Errorf("angleToPosition(%v): got %d, want %d", c.angle, got, c.want)
		}
	}
}
