package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// toneStreamer is an endless square wave at freqHz scaled to vol.
func toneStreamer(rate beep.SampleRate, freqHz uint32, vol float64) (beep.Streamer, error) {
	wave, err := generators.SquareTone(rate, float64(freqHz))
	if err != nil {
		return nil, fmt.Errorf("audio: %d Hz tone: %w", freqHz, err)
	}
	return withVolume(wave, vol), nil
}

// withVolume scales s by vol in [0, 1]; zero is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// BeepSink plays tones on the system speaker.
type BeepSink struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	volume float64
	open   bool
}

// NewBeepSink initializes the speaker. The error is returned as-is so the
// caller can fall back to SilentSink.
func NewBeepSink(sampleRate int, volume float64) (*BeepSink, error) {
	rate := beep.SampleRate(sampleRate)
	if err := speaker.Init(rate, rate.N(20*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("audio: speaker init: %w", err)
	}
	return &BeepSink{rate: rate, volume: volume, open: true}, nil
}

// Start replaces whatever is playing with a square wave at freqHz.
func (b *BeepSink) Start(freqHz uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return
	}
	speaker.Clear()
	// tones at or above half the sample rate cannot be synthesized; they stay silent
	if wave, err := toneStreamer(b.rate, freqHz, b.volume); err == nil {
		speaker.Play(wave)
	}
}

// Stop silences the speaker.
func (b *BeepSink) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open {
		speaker.Clear()
	}
}

// Close releases the speaker.
func (b *BeepSink) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return
	}
	speaker.Clear()
	speaker.Close()
	b.open = false
}
