package viewer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/0x5844/rigid2d/engine"
	"github.com/0x5844/rigid2d/physics"
	"github.com/0x5844/rigid2d/vector"
)

func dropSnapshot(t *testing.T) engine.Snapshot {
	t.Helper()
	w := physics.NewWorld(physics.DefaultGravity)
	w.NewRectangle(vector.NewVector2D(0, 100), 200, 20, 0, 0.2, 0.5)
	w.NewCircle(vector.NewVector2D(0, 50), 10, 1, 0.2, 0.5)
	return engine.Capture(w, 1, 0, physics.DefaultRestThreshold,
		[]physics.Collision{{A: 2, B: 1, Point: vector.NewVector2D(0, 90)}})
}

func TestFit(t *testing.T) {
	bounds := physics.NewAABB(vector.NewVector2D(-100, 40), vector.NewVector2D(100, 110))
	p := Fit(bounds, 80, 24, 0)
	if p.Scale != 0.4 {
		t.Errorf("Fit scale = %v, want 0.4", p.Scale)
	}

	tests := []struct {
		world      vector.Vector2D
		wantX, wantY int
	}{
		{vector.NewVector2D(-100, 40), 0, 0},
		{vector.NewVector2D(0, 50), 40, 2},
		{vector.NewVector2D(0, 100), 40, 12},
		{vector.NewVector2D(99, 109), 79, 13},
	}
	for _, tt := range tests {
		x, y := p.ToCell(tt.world)
		if x != tt.wantX || y != tt.wantY {
			t.Errorf("ToCell(%v) = (%d, %d), want (%d, %d)", tt.world, x, y, tt.wantX, tt.wantY)
		}
		if bx, by := p.ToCell(p.ToWorld(x, y)); bx != x || by != y {
			t.Errorf("ToWorld(%d, %d) maps back to (%d, %d)", x, y, bx, by)
		}
	}
}

func TestFitDegenerateBounds(t *testing.T) {
	p := Fit(physics.AABB{}, 80, 24, 0)
	if p.Scale <= 0 {
		t.Errorf("Fit of empty bounds gave scale %v", p.Scale)
	}
}

func TestRasterize(t *testing.T) {
	s := dropSnapshot(t)
	c := Rasterize(s, Fit(s.Bounds, 80, 24, 0), 80, 24)

	if got := c.At(40, 2); got != CellCircle {
		t.Errorf("ball center cell = %v, want circle", got)
	}
	if got := c.At(40, 10); got != CellCollision {
		t.Errorf("contact cell = %v, want collision marker", got)
	}
	if got, want := c.Row(12), strings.Repeat("█", 80); got != want {
		t.Errorf("floor row = %q", got)
	}
	if got := c.Count(CellStatic); got != 80*4-1 {
		t.Errorf("floor covers %d cells, want %d", got, 80*4-1)
	}
	if c.At(40, 20) != CellEmpty || c.At(-1, 0) != CellEmpty || c.At(0, 99) != CellEmpty {
		t.Error("cells outside every body are not empty")
	}
}

func TestRasterizeTinyBody(t *testing.T) {
	w := physics.NewWorld(physics.DefaultGravity)
	w.NewRectangle(vector.NewVector2D(0, 0), 1000, 10, 0, 0.2, 0.5)
	pin := w.NewRectangle(vector.NewVector2D(200, -100), 2, 2, 0, 0.2, 0.5)
	if err := w.AllowPinnedRotation(pin.ID, 1); err != nil {
		t.Fatal(err)
	}
	s := engine.Capture(w, 0, 0, physics.DefaultRestThreshold, nil)
	p := Fit(s.Bounds, 40, 12, 0)
	c := Rasterize(s, p, 40, 12)

	x, y := p.ToCell(vector.NewVector2D(200, -100))
	if got := c.At(x, y); got != CellPinned {
		t.Errorf("tiny pinned body cell = %v, want pinned", got)
	}
}

func TestIsQuit(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want bool
	}{
		{tcell.KeyEscape, 0, true},
		{tcell.KeyCtrlC, 0, true},
		{tcell.KeyRune, 'q', true},
		{tcell.KeyRune, 'Q', true},
		{tcell.KeyRune, 'x', false},
		{tcell.KeyEnter, 0, false},
	}
	for _, tt := range tests {
		if got := isQuit(tt.key, tt.r); got != tt.want {
			t.Errorf("isQuit(%v, %q) = %v, want %v", tt.key, tt.r, got, tt.want)
		}
	}
}

func simulationViewer(t *testing.T) *Viewer {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	screen.SetSize(80, 24)
	v := New(screen)
	t.Cleanup(v.Close)
	return v
}

func TestDrawReservesStatusLine(t *testing.T) {
	v := simulationViewer(t)
	v.Draw(dropSnapshot(t))

	f := v.Frame()
	if f == nil {
		t.Fatal("Draw kept no frame")
	}
	if f.Width != 80 || f.Height != 23 {
		t.Errorf("frame is %dx%d, want 80x23", f.Width, f.Height)
	}
	if f.Count(CellCircle) == 0 || f.Count(CellStatic) == 0 {
		t.Error("frame is missing bodies")
	}
}

func TestStatusLine(t *testing.T) {
	s := dropSnapshot(t)
	s.AtRest = true
	line := statusLine(s)
	for _, want := range []string{"step 1", "bodies 2", "collisions 1", "at rest", "q to quit"} {
		if !strings.Contains(line, want) {
			t.Errorf("status line %q lacks %q", line, want)
		}
	}
}

func TestRunRedrawsLatestSnapshot(t *testing.T) {
	v := simulationViewer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()

	v.OnStep(dropSnapshot(t))
	deadline := time.Now().Add(2 * time.Second)
	for v.Frame() == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if v.Frame() == nil {
		t.Error("Run never drew the pending snapshot")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestPumpEventsStopsWhenDone(t *testing.T) {
	events := make(chan tcell.Event, 1)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		pumpEvents(func() tcell.Event { return &tcell.EventResize{} }, events, done)
		close(finished)
	}()

	// The buffer fills after one event and the pump blocks on the next.
	<-events
	close(done)
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("pumpEvents kept blocking after done closed")
	}
}

func TestPumpEventsStopsOnNilEvent(t *testing.T) {
	polls := 0
	poll := func() tcell.Event {
		polls++
		if polls > 2 {
			return nil
		}
		return &tcell.EventResize{}
	}
	events := make(chan tcell.Event, 10)
	pumpEvents(poll, events, make(chan struct{}))
	if len(events) != 2 {
		t.Errorf("forwarded %d events, want 2", len(events))
	}
}
