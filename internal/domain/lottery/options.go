package lottery

import "time"

// SequencerOption applies a configuration option to the Sequencer.
type SequencerOption func(*Sequencer)

// WithDurations overrides the phase timings. Zero fields keep their default.
func WithDurations(d Durations) SequencerOption {
	return func(s *Sequencer) {
		def := DefaultDurations()
		pick := func(v, fallback time.Duration) time.Duration {
			if v > 0 {
				return v
			}
			return fallback
		}
		s.durations = Durations{
			Info:    pick(d.Info, def.Info),
			Drawing: pick(d.Drawing, def.Drawing),
			Papers:  pick(d.Papers, def.Papers),
			Open:    pick(d.Open, def.Open),
			Winner:  pick(d.Winner, def.Winner),
			Fadeout: pick(d.Fadeout, def.Fadeout),
		}
	}
}

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(sched Scheduler) SequencerOption {
	return func(s *Sequencer) {
		if sched != nil {
			s.sched = sched
		}
	}
}

// WithPriority sets the league priority used to order competing teams.
func WithPriority(teams []string) SequencerOption {
	return func(s *Sequencer) {
		if len(teams) == 0 {
			return
		}
		s.priority = make(map[string]int, len(teams))
		for i, t := range teams {
			if _, ok := s.priority[t]; !ok {
				s.priority[t] = i
			}
		}
	}
}

// OnPhase registers the callback invoked when a phase becomes active.
func OnPhase(fn func(Frame)) SequencerOption {
	return func(s *Sequencer) {
		if fn != nil {
			s.onPhase = fn
		}
	}
}

// OnComplete registers the callback invoked once after the last phase.
func OnComplete(fn func()) SequencerOption {
	return func(s *Sequencer) {
		if fn != nil {
			s.onComplete = fn
		}
	}
}
