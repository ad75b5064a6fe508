package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/lox/caribbeanpoker/internal/protocol"
)

// Action is a betting action a seated player may take.
type Action string

const (
	ActionFold      Action = "fold"
	ActionBet       Action = "bet"
	ActionRaise     Action = "raise"
	ActionCall      Action = "call"
	ActionInsurance Action = "insurance"
)

// ParseAction normalises a client supplied action name. Unknown names are
// returned as-is and reported as not ok.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionFold, ActionBet, ActionRaise, ActionCall, ActionInsurance:
		return a, true
	}
	return a, false
}

// BetState is one player's wagers for the current round.
type BetState struct {
	Ante      int
	Bet       int
	Insurance int
	HasFolded bool
}

// Total is the amount the player contributes to the pot.
func (b BetState) Total() int {
	return max(0, b.Ante) + max(0, b.Bet)
}

// LastAction is the most recent accepted betting action.
type LastAction struct {
	PlayerID string
	Action   Action
	Amount   int
}

// Result describes an accepted action.
type Result struct {
	Action Action
	Amount int
}

// ActionError rejects a betting action with a wire reason.
type ActionError struct {
	Reason protocol.Reason
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action rejected: %s", e.Reason)
}

func reject(r protocol.Reason) error {
	return &ActionError{Reason: r}
}

// ClampAmount floors amount into [minBet, maxBet]. Missing, non-finite and
// non-positive amounts clamp to 0, which every amount-taking action rejects.
func ClampAmount(amount *float64, minBet, maxBet int) int {
	if amount == nil || math.IsNaN(*amount) || math.IsInf(*amount, 0) {
		return 0
	}
	rounded := math.Floor(*amount)
	if rounded <= 0 {
		return 0
	}
	if rounded > float64(maxBet) {
		return maxBet
	}
	return max(minBet, int(rounded))
}
