package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// ImpactGenerator is a sine tone with an exponential decay, the sound of
// one collision.
type ImpactGenerator struct {
	sr     beep.SampleRate
	freq   float64
	volume float64
	decay  float64
	pos    int
}

func NewImpactGenerator(sr beep.SampleRate, freq, volume float64) *ImpactGenerator {
	return &ImpactGenerator{
		sr:     sr,
		freq:   freq,
		volume: volume,
		decay:  18,
	}
}

func (g *ImpactGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Short linear attack avoids a click at the start.
		attack := math.Min(t/0.002, 1.0)
		envelope := attack * math.Exp(-t*g.decay)

		tone := math.Sin(2*math.Pi*g.freq*t) + 0.3*math.Sin(2*math.Pi*g.freq*2.7*t)
		sample := g.volume * envelope * tone * 0.3

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ImpactGenerator) Err() error {
	return nil
}

// Impact returns a finite streamer for one collision of the given loudness
// in [0, 1]. Louder impacts sound lower.
func Impact(sr beep.SampleRate, loudness float64) beep.Streamer {
	loudness = math.Max(0, math.Min(1, loudness))
	freq := 880 - 560*loudness
	return beep.Take(sr.N(impactLength), NewImpactGenerator(sr, freq, loudness))
}

const impactLength = 250 * time.Millisecond
