package game

import (
	"github.com/lox/caribbeanpoker/internal/deck"
	"github.com/lox/caribbeanpoker/internal/protocol"
)

// DealerVisibility is how much of the dealer hand a phase shows.
type DealerVisibility int

const (
	DealerHidden DealerVisibility = iota
	DealerFirstCard
	DealerRevealed
)

// DealerVisibilityFor returns what clients may see of the dealer hand in
// phase.
func DealerVisibilityFor(phase Phase) DealerVisibility {
	switch phase {
	case PhaseReveal, PhasePayout:
		return DealerRevealed
	case PhaseDealDealer, PhaseBetting:
		return DealerFirstCard
	default:
		return DealerHidden
	}
}

// PlayerHandsVisible reports whether dealt player hands are shown in phase.
// Every client sees every hand once dealt; only the dealer is staged.
func PlayerHandsVisible(phase Phase) bool {
	switch phase {
	case PhaseDealPlayer, PhaseBetting, PhaseReveal, PhasePayout:
		return true
	}
	return false
}

// MaskDealerHand projects the dealer hand for phase.
func MaskDealerHand(cards []deck.Card, phase Phase) []deck.Card {
	vis := DealerVisibilityFor(phase)
	if vis == DealerHidden {
		return []deck.Card{}
	}
	out := make([]deck.Card, len(cards))
	for i, c := range cards {
		if vis == DealerRevealed || i == 0 {
			out[i] = c
		} else {
			out[i] = deck.Hidden
		}
	}
	return out
}

// State returns the round as clients may see it.
func (e *Engine) State() protocol.PokerState {
	state := protocol.PokerState{
		Phase:            e.phase.String(),
		DealerSeed:       e.dealerSeed,
		WinningPlayerIDs: append([]string{}, e.winners...),
		PlayerBets:       make(map[string]protocol.BetState, len(e.bets)),
		Community: protocol.Community{
			DealerHand:  MaskDealerHand(e.dealerHand, e.phase),
			PlayerHands: make(map[string]protocol.HandCards, len(e.playerHands)),
		},
		PotTotal: e.PotTotal(),
	}

	for id, b := range e.bets {
		state.PlayerBets[id] = protocol.BetState{
			Ante:      b.Ante,
			Bet:       b.Bet,
			Insurance: b.Insurance,
			HasFolded: b.HasFolded,
		}
	}

	showHands := PlayerHandsVisible(e.phase)
	for id, cards := range e.playerHands {
		visible := []deck.Card{}
		if showHands {
			visible = append(visible, cards...)
		}
		state.Community.PlayerHands[id] = protocol.HandCards{Cards: visible}
	}

	if e.lastAction != nil {
		state.LastAction = &protocol.LastAction{
			PlayerID: e.lastAction.PlayerID,
			Action:   string(e.lastAction.Action),
			Amount:   e.lastAction.Amount,
		}
	}
	if at, ok := e.NextRoundStartAt(); ok {
		ms := at.UnixMilli()
		state.NextRoundStartAt = &ms
	}
	return state
}
