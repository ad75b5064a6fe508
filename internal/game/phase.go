package game

import (
	"fmt"
	"time"
)

// Phase is one stage of a poker round.
type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseAnte       Phase = "ante"
	PhaseDealPlayer Phase = "deal_player"
	PhaseDealDealer Phase = "deal_dealer"
	PhaseBetting    Phase = "betting"
	PhaseReveal     Phase = "reveal"
	PhasePayout     Phase = "payout"
)

// String returns the string representation of a phase
func (p Phase) String() string {
	return string(p)
}

// Valid reports whether p is one of the seven known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseWaiting, PhaseAnte, PhaseDealPlayer, PhaseDealDealer, PhaseBetting, PhaseReveal, PhasePayout:
		return true
	}
	return false
}

// PhaseConfig describes how long a phase lasts and what it allows.
type PhaseConfig struct {
	Phase        Phase
	Duration     time.Duration
	AutoAdvance  bool
	AllowActions bool
}

// Pipeline is the ordered list of phases a round walks through. Waiting is
// not part of it: it is where a round starts and ends.
type Pipeline []PhaseConfig

// DefaultPipeline returns the standard Caribbean Poker timings.
func DefaultPipeline() Pipeline {
	return Pipeline{
		{Phase: PhaseAnte, Duration: 5 * time.Second, AutoAdvance: true},
		{Phase: PhaseDealPlayer, Duration: 1 * time.Second, AutoAdvance: true},
		{Phase: PhaseDealDealer, Duration: 1 * time.Second, AutoAdvance: true},
		{Phase: PhaseBetting, Duration: 15 * time.Second, AutoAdvance: true, AllowActions: true},
		{Phase: PhaseReveal, Duration: 4 * time.Second, AutoAdvance: true},
		{Phase: PhasePayout, Duration: 4 * time.Second, AutoAdvance: true},
	}
}

// Lookup returns the configuration of phase.
func (p Pipeline) Lookup(phase Phase) (PhaseConfig, bool) {
	for _, c := range p {
		if c.Phase == phase {
			return c, true
		}
	}
	return PhaseConfig{}, false
}

// Next returns the phase after current. Waiting leads into the first phase,
// the last phase (and anything unknown) leads back to waiting.
func (p Pipeline) Next(current Phase) Phase {
	if len(p) == 0 {
		return PhaseWaiting
	}
	if current == PhaseWaiting {
		return p[0].Phase
	}
	for i, c := range p {
		if c.Phase == current {
			if i+1 < len(p) {
				return p[i+1].Phase
			}
			return PhaseWaiting
		}
	}
	return PhaseWaiting
}

// AllowsActions reports whether players may bet during phase. Waiting and
// unknown phases are locked.
func (p Pipeline) AllowsActions(phase Phase) bool {
	c, ok := p.Lookup(phase)
	return ok && c.AllowActions
}

// WithDuration returns a copy of p with phase lasting d.
func (p Pipeline) WithDuration(phase Phase, d time.Duration) (Pipeline, error) {
	if d <= 0 {
		return nil, fmt.Errorf("phase %s: duration must be positive, got %s", phase, d)
	}
	out := make(Pipeline, len(p))
	copy(out, p)
	for i := range out {
		if out[i].Phase == phase {
			out[i].Duration = d
			return out, nil
		}
	}
	return nil, fmt.Errorf("unknown phase %q", phase)
}
