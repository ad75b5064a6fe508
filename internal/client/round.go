package client

import (
	"fmt"
	"sync"

	"github.com/lox/caribbeanpoker/internal/protocol"
)

// RoundMirror holds the latest round payload. Payloads replace each other
// wholesale; only the local feedback line survives between them.
type RoundMirror struct {
	mu       sync.Mutex
	state    protocol.PokerState
	feedback string
}

// NewRoundMirror returns a mirror in the waiting phase.
func NewRoundMirror() *RoundMirror {
	r := &RoundMirror{}
	r.state = emptyRound()
	return r
}

func emptyRound() protocol.PokerState {
	return protocol.PokerState{
		Phase:            "waiting",
		WinningPlayerIDs: []string{},
		PlayerBets:       map[string]protocol.BetState{},
		Community:        protocol.Community{PlayerHands: map[string]protocol.HandCards{}},
	}
}

// Apply replaces the round with a server payload. Feedback is dropped when
// the phase changes, when the payload carries no last action or when a next
// round is scheduled.
func (r *RoundMirror) Apply(state protocol.PokerState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state.Phase != r.state.Phase || state.LastAction == nil || state.NextRoundStartAt != nil {
		r.feedback = ""
	}
	r.state = state.Clone()
}

// ApplyAck turns an action acknowledgement into feedback.
func (r *RoundMirror) ApplyAck(ack protocol.ActionAck) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedback = AckFeedback(ack)
}

// SetFeedback overrides the feedback line ("" clears it).
func (r *RoundMirror) SetFeedback(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedback = msg
}

// Feedback returns the current feedback line.
func (r *RoundMirror) Feedback() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.feedback
}

// State returns a copy of the latest round.
func (r *RoundMirror) State() protocol.PokerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Reset returns to an empty waiting round.
func (r *RoundMirror) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = emptyRound()
	r.feedback = ""
}

// AckFeedback renders an acknowledgement for the player.
func AckFeedback(ack protocol.ActionAck) string {
	if !ack.Success {
		return ack.Reason.Text()
	}
	if ack.Amount > 0 {
		return fmt.Sprintf("%s %d accepted", ack.Action, ack.Amount)
	}
	return ack.Action + " accepted"
}
