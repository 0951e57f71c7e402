// Package lottery resolves contested first-round picks and sequences their
// timed reveal.
package lottery

import (
	"sort"
	"sync"
	"time"

	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/domain/types"
	"github.com/okian/draftsim/pkg/metrics"
)

// Phase is a step of one contested player's reveal.
type Phase string

// Reveal phases in the order they are shown.
const (
	PhaseInfo    Phase = "info"
	PhaseDrawing Phase = "drawing"
	PhasePapers  Phase = "papers"
	PhaseOpen    Phase = "open"
	PhaseWinner  Phase = "winner"
	PhaseFadeout Phase = "fadeout"
)

var phases = []Phase{PhaseInfo, PhaseDrawing, PhasePapers, PhaseOpen, PhaseWinner, PhaseFadeout}

// Durations sets how long each phase is shown.
type Durations struct {
	Info    time.Duration
	Drawing time.Duration
	Papers  time.Duration
	Open    time.Duration
	Winner  time.Duration
	Fadeout time.Duration
}

// DefaultDurations returns the stock reveal timings.
func DefaultDurations() Durations {
	return Durations{
		Info:    3 * time.Second,
		Drawing: 3 * time.Second,
		Papers:  2 * time.Second,
		Open:    3 * time.Second,
		Winner:  5 * time.Second,
		Fadeout: 1 * time.Second,
	}
}

// Of returns the dwell time of p.
func (d Durations) Of(p Phase) time.Duration {
	switch p {
	case PhaseInfo:
		return d.Info
	case PhaseDrawing:
		return d.Drawing
	case PhasePapers:
		return d.Papers
	case PhaseOpen:
		return d.Open
	case PhaseWinner:
		return d.Winner
	case PhaseFadeout:
		return d.Fadeout
	default:
		return 0
	}
}

// PerEntry is the total reveal time of one contested player.
func (d Durations) PerEntry() time.Duration {
	return d.Info + d.Drawing + d.Papers + d.Open + d.Winner + d.Fadeout
}

// Frame is what the reveal shows while a phase is active.
type Frame struct {
	Index int                `json:"index"`
	Entry model.LotteryEntry `json:"entry"`
	Phase Phase              `json:"phase"`
	// Teams lists the competing teams in league priority order during the
	// papers and open phases.
	Teams []string `json:"teams,omitempty"`
}

// Sequencer is a time-driven state machine over contested entries. Exactly
// one timer is armed at any time.
type Sequencer struct {
	mu sync.Mutex
	// emit serializes callbacks with Cancel.
	emit       sync.Mutex
	entries    []model.LotteryEntry
	durations  Durations
	priority   map[string]int
	sched      Scheduler
	onPhase    func(Frame)
	onComplete func()

	index   int
	step    int
	timer   Timer
	gen     uint64
	started bool
	done    bool
	stopped bool
}

// DefaultPriority returns the league priority used to order competing teams.
func DefaultPriority() []string {
	all := types.AllTeams()
	out := make([]string, len(all))
	for i, t := range all {
		out[i] = t.ID
	}
	return out
}

// NewSequencer creates a sequencer over entries. It does nothing until Start.
func NewSequencer(entries []model.LotteryEntry, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		entries:    append([]model.LotteryEntry(nil), entries...),
		durations:  DefaultDurations(),
		sched:      ClockScheduler{},
		onPhase:    func(Frame) {},
		onComplete: func() {},
	}
	WithPriority(DefaultPriority())(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start shows the first phase of the first entry. An empty sequence completes
// immediately. Calling Start more than once has no effect.
func (s *Sequencer) Start() {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	if len(s.entries) == 0 {
		s.done = true
		s.gen++
		gen := s.gen
		s.mu.Unlock()
		s.deliver(gen, s.onComplete)
		return
	}
	s.mu.Unlock()
	s.enter()
}

// Cancel tears down the pending timer and waits for a callback already in
// flight. No callback fires after it returns. It must not be called from
// inside a callback.
func (s *Sequencer) Cancel() {
	s.mu.Lock()
	s.stopped = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.emit.Lock()
	s.emit.Unlock() //nolint:staticcheck // barrier
}

// Done reports whether the completion callback has fired.
func (s *Sequencer) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// enter publishes the current phase and arms the timer that leaves it.
func (s *Sequencer) enter() {
	s.mu.Lock()
	if s.stopped || s.done {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	frame := s.frame()
	dwell := s.durations.Of(frame.Phase)
	s.mu.Unlock()

	if !s.deliver(gen, func() {
		metrics.RecordLotteryPhase(string(frame.Phase))
		s.onPhase(frame)
	}) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.stopped {
		return
	}
	s.timer = s.sched.AfterFunc(dwell, func() { s.advance(gen) })
}

// advance moves to the next phase if the firing timer is still current.
func (s *Sequencer) advance(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.stopped || s.done {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.step++
	if s.step == len(phases) {
		s.step = 0
		s.index++
	}
	if s.index == len(s.entries) {
		s.done = true
		s.gen++
		gen := s.gen
		s.mu.Unlock()
		s.deliver(gen, s.onComplete)
		return
	}
	s.mu.Unlock()
	s.enter()
}

// deliver runs fn if gen is still current and the sequencer was not
// cancelled. It reports whether fn ran.
func (s *Sequencer) deliver(gen uint64, fn func()) bool {
	s.emit.Lock()
	defer s.emit.Unlock()
	s.mu.Lock()
	live := gen == s.gen && !s.stopped
	s.mu.Unlock()
	if !live {
		return false
	}
	fn()
	return true
}

// frame must be called with s.mu held.
func (s *Sequencer) frame() Frame {
	entry := s.entries[s.index]
	f := Frame{Index: s.index, Entry: entry, Phase: phases[s.step]}
	if f.Phase == PhasePapers || f.Phase == PhaseOpen {
		f.Teams = s.byPriority(entry.CompetingTeams)
	}
	return f
}

// byPriority orders teams by league priority; unknown teams keep their
// relative order after known ones.
func (s *Sequencer) byPriority(teams []string) []string {
	out := append([]string(nil), teams...)
	sort.SliceStable(out, func(i, j int) bool {
		return rank(s.priority, out[i]) < rank(s.priority, out[j])
	})
	return out
}

func rank(priority map[string]int, team string) int {
	if r, ok := priority[team]; ok {
		return r
	}
	return len(priority)
}
