package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineNext(t *testing.T) {
	p := DefaultPipeline()

	order := []Phase{PhaseWaiting, PhaseAnte, PhaseDealPlayer, PhaseDealDealer, PhaseBetting, PhaseReveal, PhasePayout, PhaseWaiting}
	for i := 0; i+1 < len(order); i++ {
		assert.Equal(t, order[i+1], p.Next(order[i]), "after %s", order[i])
	}
	assert.Equal(t, PhaseWaiting, p.Next(Phase("bogus")))
	assert.Equal(t, PhaseWaiting, Pipeline(nil).Next(PhaseWaiting))
}

func TestPipelineActions(t *testing.T) {
	p := DefaultPipeline()
	for _, phase := range []Phase{PhaseWaiting, PhaseAnte, PhaseDealPlayer, PhaseDealDealer, PhaseReveal, PhasePayout} {
		assert.False(t, p.AllowsActions(phase), phase)
	}
	assert.True(t, p.AllowsActions(PhaseBetting))

	for _, c := range p {
		assert.True(t, c.AutoAdvance, c.Phase)
		assert.True(t, c.Phase.Valid())
	}
	assert.True(t, PhaseWaiting.Valid())
	assert.False(t, Phase("showdown").Valid())
}

func TestPipelineWithDuration(t *testing.T) {
	p := DefaultPipeline()

	fast, err := p.WithDuration(PhaseBetting, 3*time.Second)
	require.NoError(t, err)
	cfg, ok := fast.Lookup(PhaseBetting)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, cfg.Duration)

	orig, _ := p.Lookup(PhaseBetting)
	assert.Equal(t, 15*time.Second, orig.Duration, "original pipeline untouched")

	_, err = p.WithDuration(PhaseWaiting, time.Second)
	assert.Error(t, err)
	_, err = p.WithDuration(PhaseAnte, 0)
	assert.Error(t, err)
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction(" Raise ")
	assert.True(t, ok)
	assert.Equal(t, ActionRaise, a)

	_, ok = ParseAction("check")
	assert.False(t, ok)
}
