// Package engine drives a physics.World in real time at a fixed step rate
// and fans every step out to listeners.
package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0x5844/rigid2d/physics"
)

var ErrRunning = errors.New("engine already running")

// Listener receives a snapshot after every step. OnStep runs on the engine
// goroutine, so slow listeners slow the simulation down.
type Listener interface {
	OnStep(Snapshot)
}

type ListenerFunc func(Snapshot)

func (f ListenerFunc) OnStep(s Snapshot) { f(s) }

type Options struct {
	// FPS is both the tick rate and the step rate handed to World.Step.
	FPS           int
	RestThreshold float64
	// StopAtRest ends Run once every dynamic body has rested for
	// RestThreshold seconds.
	StopAtRest bool
}

func DefaultOptions() Options {
	return Options{FPS: 60, RestThreshold: physics.DefaultRestThreshold}
}

type Stats struct {
	FPS          float64
	AvgFrameTime float64 // milliseconds
	MinFrameTime float64
	MaxFrameTime float64
	// RecentFrameTime averages the last historySize frames.
	RecentFrameTime float64

	Steps          int64
	SimTime        float64
	Bodies         int
	Dynamic        int
	Resting        int
	Collisions     int64
	LastCollisions int
	AtRest         bool
}

type Engine struct {
	world     *physics.World
	opts      Options
	listeners []Listener
	running   int32

	mu           sync.RWMutex
	stats        Stats
	frameCount   int64
	frameTimeSum float64
	lastFrame    time.Time
	frameHistory []float64
	historySize  int
	last         Snapshot
}

func New(world *physics.World, opts Options) *Engine {
	if opts.FPS <= 0 {
		opts.FPS = DefaultOptions().FPS
	}
	if opts.RestThreshold <= 0 {
		opts.RestThreshold = physics.DefaultRestThreshold
	}
	e := &Engine{
		world:       world,
		opts:        opts,
		historySize: 100,
	}
	e.frameHistory = make([]float64, 0, e.historySize)
	e.last = Capture(world, 0, 0, opts.RestThreshold, nil)
	return e
}

// AddListener registers l. It must not be called while Run is active.
func (e *Engine) AddListener(l Listener) {
	e.listeners = append(e.listeners, l)
}

func (e *Engine) World() *physics.World {
	return e.world
}

// Run steps the world once per tick until ctx ends, or until the world
// comes to rest when StopAtRest is set, in which case it returns nil.
func (e *Engine) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&e.running, 0, 1) {
		return ErrRunning
	}
	defer atomic.StoreInt32(&e.running, 0)

	ticker := time.NewTicker(time.Second / time.Duration(e.opts.FPS))
	defer ticker.Stop()

	e.mu.Lock()
	e.lastFrame = time.Now()
	e.mu.Unlock()

	for {
		select {
		case <-ticker.C:
			snap := e.Tick()
			if e.opts.StopAtRest && snap.AtRest {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Tick advances the world by one step, updates statistics and notifies
// listeners. Run calls it on every tick; tests and offline tools may call
// it directly.
func (e *Engine) Tick() Snapshot {
	start := time.Now()
	collisions := e.world.Step(float64(e.opts.FPS))
	snap := e.record(start, collisions)
	for _, l := range e.listeners {
		l.OnStep(snap)
	}
	return snap
}

func (e *Engine) record(frameStart time.Time, collisions []physics.Collision) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	if !e.lastFrame.IsZero() {
		if frameTime := now.Sub(e.lastFrame).Seconds(); frameTime > 0 {
			e.stats.FPS = 1.0 / frameTime
		}
	}
	e.lastFrame = now
	e.updateFrameTimes(now.Sub(frameStart).Seconds())

	e.stats.Steps++
	e.stats.SimTime = float64(e.stats.Steps) / float64(e.opts.FPS)
	e.stats.Collisions += int64(len(collisions))
	e.stats.LastCollisions = len(collisions)

	snap := Capture(e.world, e.stats.Steps, e.stats.SimTime, e.opts.RestThreshold, collisions)
	e.stats.Bodies = len(snap.Bodies)
	e.stats.Dynamic, e.stats.Resting = 0, 0
	for _, b := range snap.Bodies {
		if b.Static {
			continue
		}
		e.stats.Dynamic++
		if b.Resting {
			e.stats.Resting++
		}
	}
	e.stats.AtRest = snap.AtRest
	e.last = snap
	return snap
}

func (e *Engine) updateFrameTimes(frameTime float64) {
	e.frameCount++
	e.frameTimeSum += frameTime
	e.stats.AvgFrameTime = e.frameTimeSum / float64(e.frameCount) * 1000

	ms := frameTime * 1000
	if e.stats.MinFrameTime == 0 || ms < e.stats.MinFrameTime {
		e.stats.MinFrameTime = ms
	}
	if ms > e.stats.MaxFrameTime {
		e.stats.MaxFrameTime = ms
	}

	e.frameHistory = append(e.frameHistory, frameTime)
	if len(e.frameHistory) > e.historySize {
		e.frameHistory = e.frameHistory[1:]
	}
	var sum float64
	for _, ft := range e.frameHistory {
		sum += ft
	}
	e.stats.RecentFrameTime = sum / float64(len(e.frameHistory)) * 1000
}

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats
}

// Last returns the snapshot of the most recent step, or of the initial
// world before the first step.
func (e *Engine) Last() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}
