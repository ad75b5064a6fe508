package server

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/caribbeanpoker/internal/game"
	"github.com/lox/caribbeanpoker/internal/protocol"
	"github.com/lox/caribbeanpoker/internal/randutil"
	"github.com/lox/caribbeanpoker/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoom(t *testing.T) (*Room, *quartz.Mock, context.CancelFunc) {
	t.Helper()
	clock := quartz.NewMock(t)
	room, err := NewRoom(RoomConfig{
		Name:   "main",
		Table:  DefaultTableConfig("main"),
		Clock:  clock,
		Seeds:  randutil.Fixed(42),
		Logger: testLogger(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		assert.NoError(t, room.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return room, clock, cancel
}

func TestRoomSerialisesTimerCallbacks(t *testing.T) {
	room, clock, _ := runRoom(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessions := make([]*fakeSession, table.DefaultSeatCount)
	for i := range sessions {
		sessions[i] = newFakeSession(string(rune('a' + i)))
		require.NoError(t, room.Connect(ctx, sessions[i]))
		join, err := protocol.NewMessage(protocol.TypeTableJoin, protocol.TableJoin{SeatIndex: seat(i)})
		require.NoError(t, err)
		room.Handle(sessions[i].ID(), join)
	}
	start, err := protocol.NewMessage(protocol.TypeTableStart, nil)
	require.NoError(t, err)
	room.Handle("a", start)

	var phase game.Phase
	require.NoError(t, room.Inspect(ctx, func(g *Gateway) { phase = g.Engine().Phase() }))
	require.Equal(t, game.PhaseAnte, phase)

	// The timer only posts to the loop; the phase changes once the loop runs it.
	clock.Advance(5 * time.Second).MustWait(ctx)
	require.Eventually(t, func() bool {
		_ = room.Inspect(ctx, func(g *Gateway) { phase = g.Engine().Phase() })
		return phase == game.PhaseDealPlayer
	}, 5*time.Second, 10*time.Millisecond)

	info, err := room.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, table.StatusInProgress, info.Status)
	assert.Equal(t, table.DefaultSeatCount, info.Occupied)
	assert.Equal(t, protocol.SubgameCaribbeanPoker, info.Subgame)
}

func TestRoomClosed(t *testing.T) {
	room, _, cancel := runRoom(t)
	ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()

	s := newFakeSession("a")
	require.NoError(t, room.Connect(ctx, s))
	cancel()

	require.Eventually(t, func() bool {
		return room.Connect(ctx, newFakeSession("b")) == ErrRoomClosed
	}, 5*time.Second, 10*time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.True(t, s.closed, "disposing the room closes its sessions")
}
