package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lox/caribbeanpoker/internal/protocol"
	"github.com/lox/caribbeanpoker/internal/randutil"
	"github.com/lox/caribbeanpoker/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, cfg *ServerConfig) string {
	t.Helper()
	srv, err := NewServer(cfg, testLogger(), WithSeedSource(randutil.Fixed(7)))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("server did not shut down")
		}
	})

	base := "http://" + ln.Addr().String()
	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	require.NoError(t, WaitForHealthy(waitCtx, base))
	return ln.Addr().String()
}

func dial(t *testing.T, addr, room string) *websocket.Conn {
	t.Helper()
	url := "ws://" + addr + "/ws"
	if room != "" {
		url += "?room=" + room
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) *protocol.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg protocol.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return &msg
}

// readUntil skips messages until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ protocol.MessageType, v any) {
	t.Helper()
	for i := 0; i < 20; i++ {
		msg := readMessage(t, conn)
		if msg.Type == typ {
			require.NoError(t, msg.Decode(v))
			return
		}
	}
	t.Fatalf("no %s message received", typ)
}

func writeMessage(t *testing.T, conn *websocket.Conn, typ protocol.MessageType, data any) {
	t.Helper()
	msg, err := protocol.NewMessage(typ, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

func TestServerWebSocketFlow(t *testing.T) {
	addr := startServer(t, DefaultServerConfig())

	host := dial(t, addr, "")
	var welcome protocol.Welcome
	readUntil(t, host, protocol.TypeWelcome, &welcome)
	assert.Equal(t, "main", welcome.Room)
	assert.NotEmpty(t, welcome.SessionID)

	var snap protocol.TableState
	readUntil(t, host, protocol.TypeTableStateSync, &snap)
	assert.Equal(t, welcome.SessionID, snap.HostID)
	var state protocol.PokerState
	readUntil(t, host, protocol.TypePokerStateUpdate, &state)
	assert.Equal(t, "waiting", state.Phase)

	guest := dial(t, addr, "main")
	var guestWelcome protocol.Welcome
	readUntil(t, guest, protocol.TypeWelcome, &guestWelcome)
	readUntil(t, guest, protocol.TypePokerStateUpdate, &state)

	// Browser-shaped join: frameId predicted by the client
	require.NoError(t, guest.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"table_join","data":{"seatIndex":3,"frameId":40}}`)))

	for _, conn := range []*websocket.Conn{host, guest} {
		readUntil(t, conn, protocol.TypeTableStateSync, &snap)
		assert.Equal(t, guestWelcome.SessionID, snap.Seats[3].PlayerID)
		assert.Equal(t, int64(40), snap.FrameID)
	}

	writeMessage(t, guest, protocol.TypeTableStart, nil)
	var denied protocol.TableStartDenied
	readUntil(t, guest, protocol.TypeTableStartDenied, &denied)
	assert.Equal(t, protocol.ReasonNotHost, denied.Reason)

	writeMessage(t, host, protocol.TypeTableJoin, protocol.TableJoin{SeatIndex: seat(3)})
	var rollback protocol.TableState
	readUntil(t, host, protocol.TypeTableRollback, &rollback)
	assert.Equal(t, guestWelcome.SessionID, rollback.Seats[3].PlayerID)

	// Malformed frames are answered, not fatal
	require.NoError(t, host.WriteMessage(websocket.TextMessage, []byte(`{not json`)))
	var errData protocol.ErrorData
	readUntil(t, host, protocol.TypeError, &errData)
	assert.Equal(t, protocol.ErrCodeInvalidMessage, errData.Code)

	// Dropping the guest frees the seat
	require.NoError(t, guest.Close())
	readUntil(t, host, protocol.TypeTableStateSync, &snap)
	assert.Empty(t, snap.Seats[3].PlayerID)
}

func TestServerTablesEndpoint(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Tables = append(cfg.Tables, DefaultTableConfig("side"))
	cfg.Tables[1].Seats = 2
	addr := startServer(t, cfg)

	conn := dial(t, addr, "side")
	readUntil(t, conn, protocol.TypePokerStateUpdate, &protocol.PokerState{})

	resp, err := http.Get("http://" + addr + "/tables")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var tables []protocol.TableInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tables))
	require.Len(t, tables, 2)
	assert.Equal(t, "main", tables[0].Name)
	assert.Equal(t, 0, tables[0].Clients)
	assert.Equal(t, "side", tables[1].Name)
	assert.Equal(t, 2, tables[1].SeatCount)
	assert.Equal(t, 1, tables[1].Clients)
	assert.Equal(t, table.StatusOpen, tables[1].Status)
	assert.Equal(t, protocol.SubgameNone, tables[1].Subgame)
}

func TestServerUnknownRoom(t *testing.T) {
	addr := startServer(t, DefaultServerConfig())

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws?room=nowhere", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerRoomFull(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Tables[0].MaxClients = 1
	addr := startServer(t, cfg)

	first := dial(t, addr, "")
	readUntil(t, first, protocol.TypeWelcome, &protocol.Welcome{})

	second := dial(t, addr, "")
	var errData protocol.ErrorData
	readUntil(t, second, protocol.TypeError, &errData)
	assert.Equal(t, protocol.ErrCodeRoomFull, errData.Code)

	require.NoError(t, second.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := second.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}

func TestNewServerRejectsBadTable(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Tables[0].Phases = []PhaseConfig{{Name: "turn", DurationMs: 10}}
	_, err := NewServer(cfg, testLogger())
	require.Error(t, err)

	cfg.Tables = nil
	_, err = NewServer(cfg, testLogger())
	require.Error(t, err)
}
