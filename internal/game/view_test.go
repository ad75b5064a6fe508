package game

import (
	"testing"

	"github.com/lox/caribbeanpoker/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskDealerHand(t *testing.T) {
	cards := deck.Shuffle(7)[:5]

	tests := []struct {
		phase   Phase
		visible int
		hidden  int
	}{
		{PhaseWaiting, 0, 0},
		{PhaseAnte, 0, 0},
		{PhaseDealPlayer, 0, 0},
		{PhaseDealDealer, 1, 4},
		{PhaseBetting, 1, 4},
		{PhaseReveal, 5, 0},
		{PhasePayout, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			masked := MaskDealerHand(cards, tt.phase)
			require.Len(t, masked, tt.visible+tt.hidden)
			visible, hidden := 0, 0
			for i, c := range masked {
				if c.IsHidden() {
					hidden++
					continue
				}
				assert.Equal(t, cards[i], c)
				visible++
			}
			assert.Equal(t, tt.visible, visible)
			assert.Equal(t, tt.hidden, hidden)
			if tt.visible == 1 {
				assert.Equal(t, cards[0], masked[0], "the first card is the up card")
			}
		})
	}
}

func TestStateProjection(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StartRound()

	state := e.State()
	assert.Equal(t, "ante", state.Phase)
	assert.Equal(t, int64(42), state.DealerSeed)
	assert.Empty(t, state.Community.DealerHand)
	assert.Empty(t, state.Community.PlayerHands)
	assert.NotNil(t, state.WinningPlayerIDs)
	assert.Equal(t, 5, state.PotTotal)
	assert.Len(t, state.PlayerBets, 5)
	assert.Nil(t, state.LastAction)
	assert.Nil(t, state.NextRoundStartAt)

	e.Advance()
	state = e.State()
	require.Len(t, state.Community.PlayerHands, 5)
	assert.Equal(t, e.Hand("p2"), state.Community.PlayerHands["p2"].Cards)
	assert.Empty(t, state.Community.DealerHand)

	e.Advance()
	state = e.State()
	assert.Equal(t, "deal_dealer", state.Phase)
	assert.Empty(t, state.Community.PlayerHands["p2"].Cards, "player hands are staged out while the dealer deals")
	require.Len(t, state.Community.DealerHand, 5)
	assert.Equal(t, e.DealerHand()[0], state.Community.DealerHand[0])
	assert.True(t, state.Community.DealerHand[1].IsHidden())

	e.Advance()
	_, err := e.Act("p1", nil, "bet", amount(12))
	require.NoError(t, err)
	state = e.State()
	require.NotNil(t, state.LastAction)
	assert.Equal(t, "p1", state.LastAction.PlayerID)
	assert.Equal(t, "bet", state.LastAction.Action)
	assert.Equal(t, 12, state.LastAction.Amount)
	assert.Equal(t, 12, state.PlayerBets["p1"].Bet)
	assert.Equal(t, 17, state.PotTotal)

	e.Advance()
	state = e.State()
	assert.Equal(t, e.DealerHand(), state.Community.DealerHand)
	assert.Equal(t, e.Hand("p4"), state.Community.PlayerHands["p4"].Cards)
}

func TestStateIsDetached(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StartRound()
	e.Advance()

	state := e.State()
	state.Community.PlayerHands["p0"].Cards[0] = deck.Hidden
	assert.False(t, e.Hand("p0")[0].IsHidden())
}
