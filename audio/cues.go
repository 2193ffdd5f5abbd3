// Package audio turns collisions into short impact sounds.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/0x5844/rigid2d/engine"
	"github.com/0x5844/rigid2d/physics"
)

const (
	sampleRate = beep.SampleRate(48000)

	DefaultMinInterval = 60 * time.Millisecond
	// DefaultMinDepth ignores the resting contacts every settled body
	// reports on each step.
	DefaultMinDepth = 0.5
	// DefaultFullDepth is the penetration that plays at full volume.
	DefaultFullDepth = 8.0
	maxVoices        = 8
)

type Options struct {
	MinInterval time.Duration
	MinDepth    float64
	FullDepth   float64
}

func DefaultOptions() Options {
	return Options{
		MinInterval: DefaultMinInterval,
		MinDepth:    DefaultMinDepth,
		FullDepth:   DefaultFullDepth,
	}
}

// Cues is an engine.Listener that plays one impact per step for the
// deepest collision, at most once per MinInterval. Without Initialize it
// only counts the cues it would play.
type Cues struct {
	mu          sync.Mutex
	opts        Options
	mixer       *beep.Mixer
	initialized bool
	lastPlay    time.Time
	played      int
	now         func() time.Time
}

func NewCues(opts Options) *Cues {
	if opts.FullDepth <= 0 {
		opts.FullDepth = DefaultFullDepth
	}
	return &Cues{
		opts:  opts,
		mixer: &beep.Mixer{},
		now:   time.Now,
	}
}

// Initialize opens the speaker. It fails on machines without an audio
// device, in which case the simulation should carry on silently.
func (c *Cues) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

func (c *Cues) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.initialized = false
}

func (c *Cues) OnStep(s engine.Snapshot) {
	loudness, ok := c.pick(s.Collisions)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.lastPlay.IsZero() && now.Sub(c.lastPlay) < c.opts.MinInterval {
		return
	}
	c.lastPlay = now
	c.played++

	if !c.initialized {
		return
	}
	speaker.Lock()
	if c.mixer.Len() < maxVoices {
		c.mixer.Add(Impact(sampleRate, loudness))
	}
	speaker.Unlock()
}

// pick returns the loudness of the deepest solid collision.
func (c *Cues) pick(collisions []physics.Collision) (float64, bool) {
	deepest := -1.0
	for _, col := range collisions {
		if col.PassThrough {
			continue
		}
		deepest = max(deepest, col.Depth)
	}
	if deepest < c.opts.MinDepth {
		return 0, false
	}
	return min(deepest/c.opts.FullDepth, 1), true
}

// Played returns how many cues have been triggered.
func (c *Cues) Played() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.played
}
