package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/0x5844/rigid2d/physics"
	"github.com/0x5844/rigid2d/vector"
)

func dropWorld(t *testing.T) (*physics.World, *physics.Body) {
	t.Helper()
	w := physics.NewWorld(physics.DefaultGravity)
	floor := w.NewRectangle(vector.NewVector2D(0, 100), 200, 20, 0, 0.2, 0.5)
	floor.Payload = "floor"
	ball := w.NewCircle(vector.NewVector2D(0, 50), 10, 1, 0.2, 0.5)
	return w, ball
}

func TestTickRecordsStats(t *testing.T) {
	w, ball := dropWorld(t)
	e := New(w, DefaultOptions())

	var got []Snapshot
	e.AddListener(ListenerFunc(func(s Snapshot) { got = append(got, s) }))

	for i := 0; i < 120; i++ {
		e.Tick()
	}
	if len(got) != 120 {
		t.Fatalf("listener saw %d steps, want 120", len(got))
	}
	for i, s := range got {
		if s.Step != int64(i+1) {
			t.Fatalf("snapshot %d has step %d", i, s.Step)
		}
	}

	stats := e.Stats()
	if stats.Steps != 120 || stats.SimTime != 2 {
		t.Errorf("steps/sim time = %d/%v, want 120/2", stats.Steps, stats.SimTime)
	}
	if stats.Bodies != 2 || stats.Dynamic != 1 {
		t.Errorf("bodies/dynamic = %d/%d, want 2/1", stats.Bodies, stats.Dynamic)
	}
	if stats.Collisions == 0 {
		t.Error("ball landed without a recorded collision")
	}
	if stats.MinFrameTime > stats.MaxFrameTime || stats.AvgFrameTime < 0 {
		t.Errorf("frame times min %v avg %v max %v", stats.MinFrameTime, stats.AvgFrameTime, stats.MaxFrameTime)
	}

	last := e.Last()
	state, ok := last.Body(ball.ID)
	if !ok {
		t.Fatal("ball missing from snapshot")
	}
	if state.Center != ball.Center || state.Shape != "circle" || state.Radius != 10 {
		t.Errorf("ball state = %+v", state)
	}
}

func TestCaptureCopiesState(t *testing.T) {
	w, ball := dropWorld(t)
	collisions := []physics.Collision{{A: 1, B: 2, Depth: 1}}
	snap := Capture(w, 7, 0.5, physics.DefaultRestThreshold, collisions)

	collisions[0].Depth = 99
	ball.Move(vector.NewVector2D(5, 0))
	if snap.Collisions[0].Depth != 1 {
		t.Error("snapshot shares the collision slice")
	}
	state, _ := snap.Body(ball.ID)
	if state.Center.X != 0 {
		t.Errorf("snapshot follows the live body: %v", state.Center)
	}

	floor, ok := snap.Body(1)
	if !ok || floor.Tag != "floor" || !floor.Static || len(floor.Vertices) != 4 {
		t.Errorf("floor state = %+v", floor)
	}
	if floor.Width != 200 || floor.Height != 20 {
		t.Errorf("floor size = %vx%v, want 200x20", floor.Width, floor.Height)
	}
	if snap.Bounds.Min.Y != 40 || snap.Bounds.Max.Y != 110 {
		t.Errorf("bounds = %+v, want y from 40 to 110", snap.Bounds)
	}
	if snap.AtRest {
		t.Error("falling ball reported at rest")
	}
}

func TestCaptureSkipsDisabledBodies(t *testing.T) {
	w, ball := dropWorld(t)
	if err := w.DisableBody(ball.ID); err != nil {
		t.Fatal(err)
	}
	snap := Capture(w, 0, 0, physics.DefaultRestThreshold, nil)
	if _, ok := snap.Body(ball.ID); ok {
		t.Error("disabled body captured")
	}
	if len(snap.Bodies) != 1 {
		t.Errorf("captured %d bodies, want 1", len(snap.Bodies))
	}
}

func TestRunStopsAtRest(t *testing.T) {
	w := physics.NewWorld(physics.DefaultGravity)
	w.NewRectangle(vector.NewVector2D(0, 100), 200, 20, 0, 0.2, 0.5)

	opts := DefaultOptions()
	opts.FPS = 200
	opts.StopAtRest = true
	e := New(w, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run = %v, want nil once the world rests", err)
	}
	if steps := e.Stats().Steps; steps != 1 {
		t.Errorf("ran %d steps, want 1", steps)
	}
}

func TestRunHonorsContext(t *testing.T) {
	w, _ := dropWorld(t)
	opts := DefaultOptions()
	opts.FPS = 500
	e := New(w, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := e.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run = %v, want context.DeadlineExceeded", err)
	}
	if e.Stats().Steps == 0 {
		t.Error("engine never ticked")
	}
}

func TestRunRejectsConcurrentRuns(t *testing.T) {
	w, _ := dropWorld(t)
	e := New(w, DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.Run(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for e.Stats().Steps == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := e.Run(ctx); !errors.Is(err, ErrRunning) {
		t.Errorf("second Run = %v, want ErrRunning", err)
	}
	cancel()
	wg.Wait()
}

func TestNewAppliesDefaults(t *testing.T) {
	w, _ := dropWorld(t)
	e := New(w, Options{})
	if e.opts.FPS != 60 || e.opts.RestThreshold != physics.DefaultRestThreshold {
		t.Errorf("options = %+v, want defaults", e.opts)
	}
	if e.Last().Step != 0 || len(e.Last().Bodies) != 2 {
		t.Errorf("initial snapshot = %+v", e.Last())
	}
}
