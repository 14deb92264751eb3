// SPDX-License-Identifier: MIT
/*
Package scheduler drives the stimulation run loop. A Scheduler owns its
timer handle and emits one Frame per tick; the frame carries a single
position value that every consumer (audio pan, visual renderer) receives
in the same tick, which is the core phase-agreement invariant of the
system.

States: Idle → Running → Idle. Start while running and repeated Stop are
no-ops. Mode and pattern changes while running take effect on the next
tick; switching to beat sync without a tempo estimate fails soft and
leaves the manual oscillation in place.
*/
package scheduler

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/Arcadesys/doctorfeelgood-sub001/internal/dsp"
	applog "github.com/Arcadesys/doctorfeelgood-sub001/internal/log"
)

// ErrNoTempo is reported when beat sync is requested without a valid tempo
// estimate. The scheduler stays in manual oscillation.
var ErrNoTempo = errors.New("beat data unavailable")

// TickInterval is the frame cadence, chosen for visual smoothness.
const TickInterval = 16 * time.Millisecond

// Frame is the per-tick output. Position is the normalized [0,1] visual
// target; Pan is the same value mapped to the [-1,1] stereo range.
type Frame struct {
	Position  float64 `json:"position"`
	Pan       float64 `json:"pan"`
	Beat      int     `json:"beat"`       // -1 in manual mode
	LeftPhase bool    `json:"left_phase"` // beat mode parity
	Pulse     bool    `json:"pulse"`      // beat boundary this tick
}

// State is the runtime schedule state, reset on every Stop.
type State struct {
	StartTimestamp time.Time
	CurrentPan     float64 // normalized [0,1] position, centered at reset
	BeatIndex      int
	IsLeftPhase    bool
}

func initialState() State {
	return State{CurrentPan: 0.5, IsLeftPhase: true}
}

// Scheduler computes the instantaneous stimulus position at a fixed tick
// rate. It is the exclusive owner of its timer handle and of the schedule
// state; consumers observe frames, never mutate.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	now      func() time.Time
	emit     func(Frame)

	settings Settings
	strategy strategy

	running    bool
	done       chan struct{}
	stopOnce   *sync.Once
	wg         sync.WaitGroup
	state      State
	lastPulsed int
}

// New creates an idle scheduler emitting frames through emit. The emit
// callback runs on the tick goroutine and must not block.
func New(settings Settings, emit func(Frame)) *Scheduler {
	s := &Scheduler{
		interval:   TickInterval,
		now:        time.Now,
		emit:       emit,
		state:      initialState(),
		lastPulsed: -1,
	}
	// Whatever the requested mode, a fresh scheduler has no tempo estimate
	// yet, so it always comes up oscillating manually.
	settings.Mode = ModeManual
	s.settings = settings
	s.strategy = manualStrategy{settings: settings}
	return s
}

// Apply installs new settings, effective on the next tick without a
// stop/start cycle. Beat mode requires a tempo estimate: when tempo is nil
// the scheduler keeps the manual oscillation for the remaining parameters
// and reports ErrNoTempo.
func (s *Scheduler) Apply(settings Settings, tempo *dsp.Estimate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if settings.Mode == ModeBeat {
		if tempo == nil {
			settings.Mode = ModeManual
			s.settings = settings
			s.strategy = manualStrategy{settings: settings}
			return ErrNoTempo
		}
		s.settings = settings
		s.strategy = beatStrategy{settings: settings, tempo: *tempo}
		return nil
	}

	s.settings = settings
	s.strategy = manualStrategy{settings: settings}
	return nil
}

// Settings returns the currently applied settings.
func (s *Scheduler) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Start begins ticking. Valid only from idle; calling it while running is
// a no-op, not an error.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		applog.Debugf("scheduler: start ignored, already running")
		return
	}
	s.running = true
	s.state = initialState()
	s.state.StartTimestamp = s.now()
	s.lastPulsed = -1
	s.done = make(chan struct{})
	s.stopOnce = &sync.Once{}
	done := s.done
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Tick(s.now())
			case <-done:
				return
			}
		}
	}()
}

// Stop cancels the tick and resets the schedule state to its initial
// values (target centered, beat index zero). Safe to call repeatedly and
// from contexts that never started the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.state = initialState()
		s.mu.Unlock()
		return
	}
	s.running = false
	stopOnce := s.stopOnce
	done := s.done
	s.mu.Unlock()

	stopOnce.Do(func() { close(done) })
	s.wg.Wait()

	s.mu.Lock()
	s.state = initialState()
	s.lastPulsed = -1
	s.mu.Unlock()
}

// Running reports whether the tick loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// State returns a copy of the current schedule state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Tick computes the frame for the given instant and emits it. Called by
// the tick loop; exposed so tests can drive virtual time deterministically.
func (s *Scheduler) Tick(now time.Time) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}

	elapsed := now.Sub(s.state.StartTimestamp).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	pos, beat, boundary := s.strategy.position(elapsed)

	// A boundary fires at most once per beat regardless of how many ticks
	// land inside the epsilon window.
	pulse := false
	if boundary && beat != s.lastPulsed {
		pulse = true
		s.lastPulsed = beat
	}

	s.state.CurrentPan = pos
	if beat >= 0 {
		s.state.BeatIndex = beat
		s.state.IsLeftPhase = beat%2 == 0
	}

	frame := Frame{
		Position:  pos,
		Pan:       pos*2 - 1,
		Beat:      beat,
		LeftPhase: beat < 0 || beat%2 == 0,
		Pulse:     pulse,
	}
	emit := s.emit
	s.mu.Unlock()

	if emit != nil {
		emit(frame)
	}
}

// SetClock replaces the time source. Test hook.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sine is the smooth sweep law: zero at phase 0, peak at a quarter cycle.
func sine(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

// triangle is the linear ping-pong equivalent with the same phase
// convention as sine: 0 at phase 0, +1 at 0.25, -1 at 0.75.
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	switch {
	case p < 0.25:
		return 4 * p
	case p < 0.75:
		return 2 - 4*p
	default:
		return 4*p - 4
	}
}
