package client

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/caribbeanpoker/internal/protocol"
	"github.com/lox/caribbeanpoker/internal/randutil"
	"github.com/lox/caribbeanpoker/internal/server"
	"github.com/lox/caribbeanpoker/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 5 * time.Second

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// startServer runs a real server with one two-seat table.
func startServer(t *testing.T) string {
	t.Helper()
	cfg := server.DefaultServerConfig()
	cfg.Tables[0].Seats = 2

	srv, err := server.NewServer(cfg, testLogger(), server.WithSeedSource(randutil.Fixed(42)))
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	base := "http://" + ln.Addr().String()
	waitCtx, waitCancel := context.WithTimeout(ctx, waitFor)
	defer waitCancel()
	require.NoError(t, server.WaitForHealthy(waitCtx, base))
	return base
}

func runClient(t *testing.T, base string) *Client {
	t.Helper()
	c := NewClient(base, "main", testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, c.Connect(ctx))

	runCtx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(runCtx) }()
	t.Cleanup(func() {
		stop()
		assert.NoError(t, <-done)
	})

	require.Eventually(t, func() bool { return c.SessionID() != "" }, waitFor, 10*time.Millisecond)
	return c
}

func TestClientReconcilesAgainstServer(t *testing.T) {
	base := startServer(t)
	host := runClient(t, base)
	guest := runClient(t, base)

	assert.Equal(t, "main", host.Welcome().Room)
	assert.Equal(t, 2, host.Welcome().SeatCount)
	require.Eventually(t, func() bool { return host.Table().View().IsHost }, waitFor, 10*time.Millisecond)
	assert.False(t, guest.Table().View().IsHost)

	require.NoError(t, host.Table().JoinSeat(0))
	assert.Equal(t, 0, host.Table().View().MySeat, "join is predicted before the server answers")

	require.Eventually(t, func() bool {
		v := guest.Table().View()
		return v.Seats[0].PlayerID == host.SessionID()
	}, waitFor, 10*time.Millisecond)
	require.Eventually(t, func() bool { return host.Table().View().Pending == 0 }, waitFor, 10*time.Millisecond)

	// The guest already sees seat 0 taken and refuses locally.
	require.ErrorIs(t, guest.Table().JoinSeat(0), ErrSeatUnavailable)
	require.NoError(t, guest.Table().JoinSeat(1))
	require.Eventually(t, func() bool { return host.Table().View().AllOccupied() }, waitFor, 10*time.Millisecond)

	assert.ErrorIs(t, guest.Table().RequestStart(), ErrCannotStart)
	require.NoError(t, host.Table().RequestStart())

	for _, c := range []*Client{host, guest} {
		require.Eventually(t, func() bool {
			return c.Table().View().Status == table.StatusInProgress && c.Round().State().Phase == "ante"
		}, waitFor, 10*time.Millisecond)
		assert.Equal(t, int64(42), c.Round().State().DealerSeed)
	}

	require.NoError(t, guest.Table().SendAction("bet", nil))
	require.Eventually(t, func() bool {
		return guest.Round().Feedback() == protocol.ReasonPhaseLocked.Text()
	}, waitFor, 10*time.Millisecond)
}

func TestClientRollbackFromServer(t *testing.T) {
	base := startServer(t)
	a := runClient(t, base)
	b := runClient(t, base)

	require.NoError(t, a.Table().JoinSeat(1))
	require.Eventually(t, func() bool { return a.Table().View().Pending == 0 }, waitFor, 10*time.Millisecond)

	// A join built from a stale view of the table.
	idx := 1
	require.NoError(t, b.Send(protocol.TypeTableJoin, protocol.TableJoin{SeatIndex: &idx, FrameID: 1}))

	require.Eventually(t, func() bool {
		v := b.Table().View()
		return v.Rollbacks > 0 && v.Seats[1].PlayerID == a.SessionID()
	}, waitFor, 10*time.Millisecond)
}

func TestClientUpdatesAndSync(t *testing.T) {
	base := startServer(t)
	c := runClient(t, base)

	require.NoError(t, c.RequestSync())

	seen := map[protocol.MessageType]bool{}
	deadline := time.After(waitFor)
	for !seen[protocol.TypeTableStateSync] || !seen[protocol.TypePokerStateUpdate] {
		select {
		case typ := <-c.Updates():
			seen[typ] = true
		case <-deadline:
			t.Fatalf("missing updates, saw %v", seen)
		}
	}
}

func TestClientDisconnect(t *testing.T) {
	base := startServer(t)
	c := runClient(t, base)

	require.NoError(t, c.Disconnect())
	require.Eventually(t, func() bool { return !c.IsConnected() }, waitFor, 10*time.Millisecond)
	assert.ErrorIs(t, c.Send(protocol.TypeTableSyncRequest, nil), ErrNotConnected)
}

func TestFetchTables(t *testing.T) {
	base := startServer(t)
	runClient(t, base)

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	tables, err := FetchTables(ctx, base)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "main", tables[0].Name)
	assert.Equal(t, 2, tables[0].SeatCount)
	assert.Equal(t, 1, tables[0].Clients)
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		in, room, want string
		wantErr        bool
	}{
		{in: "http://localhost:8080", want: "ws://localhost:8080/ws"},
		{in: "https://poker.example.com", room: "vip", want: "wss://poker.example.com/ws?room=vip"},
		{in: "ws://127.0.0.1:9000/anything", want: "ws://127.0.0.1:9000/ws"},
		{in: "ftp://localhost", wantErr: true},
		{in: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := WebSocketURL(tt.in, tt.room)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
