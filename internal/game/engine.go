package game

import (
	"math/rand"
	"sync"
)

// Config sizes the playfield.
type Config struct {
	Width       int
	Height      int
	StartLength int
}

// DefaultConfig returns the 16×16 grid with a 4-cell snake.
func DefaultConfig() Config {
	return Config{Width: 16, Height: 16, StartLength: 4}
}

// DirectionSource yields at most one pending direction per call.
type DirectionSource interface {
	TryReceive() (Direction, bool)
}

// FrameNotifier is told when a new frame is ready.
type FrameNotifier interface {
	MarkDirty()
}

// Engine advances the simulation. It is the only writer of the heading, the
// death flag, the snake, the fruit and the score.
type Engine struct {
	cfg   Config
	state *State
	dirs  DirectionSource
	gate  FrameNotifier
	tones TonePoster
	clock *Clock
	rng   *rand.Rand

	snake     Snake
	fruit     Point
	hasFruit  bool
	score     int
	highScore int
	ticks     uint64

	mu    sync.RWMutex
	frame Frame
}

// NewEngine wires an engine and performs the initial reset.
func NewEngine(cfg Config, state *State, dirs DirectionSource, gate FrameNotifier, tones TonePoster, clock *Clock, seed int64) *Engine {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		def := DefaultConfig()
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.StartLength <= 0 {
		cfg.StartLength = DefaultConfig().StartLength
	}
	if clock == nil {
		clock = NewClock(ClockStep)
	}

	e := &Engine{
		cfg:   cfg,
		state: state,
		dirs:  dirs,
		gate:  gate,
		tones: tones,
		clock: clock,
		rng:   rand.New(rand.NewSource(seed)),
	}
	e.Reset()
	return e
}

// Reset reinitializes the round: centered snake heading Right, zero score,
// zero clock and a fresh fruit. The high score is kept.
func (e *Engine) Reset() {
	center := Point{X: e.cfg.Width / 2, Y: e.cfg.Height / 2}
	e.snake.Place(center, e.cfg.StartLength, Right, e.cfg.Width, e.cfg.Height)
	e.score = 0
	e.clock.Reset()
	e.state.restart()
	e.spawnFruit()
	e.publish()
	e.markDirty()
}

// Tick runs one simulation step.
func (e *Engine) Tick() {
	e.ticks++

	if e.state.NeedsReset() {
		e.Reset()
	}

	if e.dirs != nil {
		if d, ok := e.dirs.TryReceive(); ok {
			e.state.setDirection(d)
		}
	}

	if e.state.Killed() {
		// a pause toggle racing the death tick must not revive the snake
		e.state.running.Store(false)
		return
	}
	if !e.state.Running() {
		return
	}

	e.snake.Step(e.state.Direction(), e.cfg.Width, e.cfg.Height)

	if e.snake.HeadHitsBody() {
		e.state.kill()
		e.publish()
		e.markDirty()
		return
	}

	if e.hasFruit && e.snake.Head() == e.fruit {
		e.score++
		e.snake.Grow()
		if e.tones != nil {
			PostTones(e.tones, EatTones...)
		}
		e.spawnFruit()
	}

	if e.score > e.highScore {
		e.highScore = e.score
	}

	e.publish()
	e.markDirty()
}

func (e *Engine) markDirty() {
	if e.gate != nil {
		e.gate.MarkDirty()
	}
}

// spawnFruit picks a random free cell. Rejection sampling is bounded; a
// nearly full grid falls back to choosing among the free cells directly.
func (e *Engine) spawnFruit() {
	cells := e.cfg.Width * e.cfg.Height
	for attempt := 0; attempt < 4*cells; attempt++ {
		p := Point{X: e.rng.Intn(e.cfg.Width), Y: e.rng.Intn(e.cfg.Height)}
		if !e.snake.Contains(p) {
			e.fruit = p
			e.hasFruit = true
			return
		}
	}

	free := make([]Point, 0, cells-e.snake.Len())
	for y := 0; y < e.cfg.Height; y++ {
		for x := 0; x < e.cfg.Width; x++ {
			p := Point{X: x, Y: y}
			if !e.snake.Contains(p) {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		e.hasFruit = false
		return
	}
	e.fruit = free[e.rng.Intn(len(free))]
	e.hasFruit = true
}

func (e *Engine) publish() {
	f := Frame{
		Seq:       e.ticks,
		Width:     e.cfg.Width,
		Height:    e.cfg.Height,
		Snake:     e.snake.Cells(),
		Fruit:     e.fruit,
		HasFruit:  e.hasFruit,
		Score:     e.score,
		HighScore: e.highScore,
		Direction: e.state.Direction(),
		Phase:     e.state.Phase(),
	}
	e.mu.Lock()
	e.frame = f
	e.mu.Unlock()
}

// Frame returns the last published frame with the current clock reading
// and phase. Pausing does not publish.
func (e *Engine) Frame() Frame {
	e.mu.RLock()
	f := e.frame
	e.mu.RUnlock()
	f.ElapsedMs = e.clock.ElapsedMs()
	f.Phase = e.state.Phase()
	return f
}

// State returns the shared game state.
func (e *Engine) State() *State { return e.state }

// Clock returns the game clock.
func (e *Engine) Clock() *Clock { return e.clock }

// Config returns the playfield configuration.
func (e *Engine) Config() Config { return e.cfg }

// Score returns the current score.
func (e *Engine) Score() int { return e.score }

// HighScore returns the best score since start-up.
func (e *Engine) HighScore() int { return e.highScore }

// Snake returns the live body. Only the engine's task may call this.
func (e *Engine) Snake() *Snake { return &e.snake }

// Fruit returns the fruit cell and whether one is present.
func (e *Engine) Fruit() (Point, bool) { return e.fruit, e.hasFruit }
