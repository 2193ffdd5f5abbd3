// Package viewer draws simulation snapshots in a terminal.
package viewer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/0x5844/rigid2d/engine"
)

const (
	refreshInterval = 33 * time.Millisecond
	worldMargin     = 10.0
)

var styles = map[CellKind]tcell.Style{
	CellEmpty:     tcell.StyleDefault,
	CellStatic:    tcell.StyleDefault.Foreground(tcell.ColorGray),
	CellCircle:    tcell.StyleDefault.Foreground(tcell.ColorGreen),
	CellRectangle: tcell.StyleDefault.Foreground(tcell.ColorBlue),
	CellPinned:    tcell.StyleDefault.Foreground(tcell.ColorYellow),
	CellResting:   tcell.StyleDefault.Foreground(tcell.ColorTeal),
	CellCollision: tcell.StyleDefault.Foreground(tcell.ColorRed),
}

// Viewer is an engine.Listener that keeps the latest snapshot and redraws
// it from its own goroutine, so a slow terminal never stalls the engine.
type Viewer struct {
	screen tcell.Screen

	mu     sync.Mutex
	latest engine.Snapshot
	dirty  bool
	frame  *Canvas
}

// NewTerminal opens the controlling terminal.
func NewTerminal() (*Viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return New(screen), nil
}

// New wraps an initialized screen.
func New(screen tcell.Screen) *Viewer {
	return &Viewer{screen: screen}
}

func (v *Viewer) OnStep(s engine.Snapshot) {
	v.mu.Lock()
	v.latest = s
	v.dirty = true
	v.mu.Unlock()
}

// Draw renders s on the screen immediately. The bottom row holds a status
// line.
func (v *Viewer) Draw(s engine.Snapshot) {
	width, height := v.screen.Size()
	area := max(height-1, 0)
	canvas := Rasterize(s, Fit(s.Bounds, width, area, worldMargin), width, area)

	v.screen.Clear()
	for y := 0; y < canvas.Height; y++ {
		for x := 0; x < canvas.Width; x++ {
			if k := canvas.At(x, y); k != CellEmpty {
				v.screen.SetContent(x, y, k.Glyph(), nil, styles[k])
			}
		}
	}
	if height > 0 {
		drawText(v.screen, 0, height-1, statusLine(s), tcell.StyleDefault.Reverse(true))
	}
	v.screen.Show()

	v.mu.Lock()
	v.frame = canvas
	v.mu.Unlock()
}

// Frame returns the canvas of the last Draw, or nil.
func (v *Viewer) Frame() *Canvas {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame
}

func statusLine(s engine.Snapshot) string {
	line := fmt.Sprintf(" step %d  t=%.2fs  bodies %d  collisions %d", s.Step, s.Time, len(s.Bodies), len(s.Collisions))
	if s.AtRest {
		line += "  at rest"
	}
	return line + "  (q to quit) "
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// isQuit reports whether a key press should close the viewer.
func isQuit(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return r == 'q' || r == 'Q'
	}
	return false
}

// Run redraws the latest snapshot until ctx ends or the user quits, in
// which case it returns nil.
func (v *Viewer) Run(ctx context.Context) error {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go pumpEvents(v.screen.PollEvent, eventChan, done)

	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if isQuit(ev.Key(), ev.Rune()) {
					return nil
				}
			case *tcell.EventResize:
				v.screen.Sync()
				v.mu.Lock()
				v.dirty = true
				v.mu.Unlock()
			}
		case <-ticker.C:
			v.mu.Lock()
			s, dirty := v.latest, v.dirty
			v.dirty = false
			v.mu.Unlock()
			if dirty {
				v.Draw(s)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// pumpEvents forwards polled events until poll returns nil or done closes.
func pumpEvents(poll func() tcell.Event, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := poll()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// Close restores the terminal.
func (v *Viewer) Close() {
	v.screen.Fini()
}
