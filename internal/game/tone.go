package game

// Tone is one buzzer request.
type Tone struct {
	FreqHz     uint32
	DurationMs uint32
}

// Audible reports whether the tone should be played at all.
func (t Tone) Audible() bool {
	return t.FreqHz > 0 && t.DurationMs > 0
}

var (
	// EatTones acknowledge a fruit.
	EatTones = []Tone{{250, 15}, {750, 30}, {250, 15}}

	// PauseTone sounds on the pause button.
	PauseTone = Tone{250, 50}

	// ResetTone sounds on the reset button.
	ResetTone = Tone{500, 50}
)

// TonePoster queues tones without blocking. Drops are silent.
type TonePoster interface {
	PostTone(freqHz, durationMs uint32) bool
}

// PostTones posts each tone in order and returns how many were accepted.
func PostTones(p TonePoster, tones ...Tone) int {
	n := 0
	for _, t := range tones {
		if p.PostTone(t.FreqHz, t.DurationMs) {
			n++
		}
	}
	return n
}
