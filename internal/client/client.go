// Package client connects to a Caribbean Poker room and keeps a reconciled
// mirror of its table and round.
//
// The Client owns the socket. Inbound snapshots feed a TableMirror, which
// layers the player's unacknowledged seat intents over each authoritative
// snapshot, and round payloads feed a RoundMirror. Front-ends read both
// mirrors and listen on Updates for redraw hints.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/caribbeanpoker/internal/protocol"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
	updateBuf  = 64
)

// errClosed ends the pump group when the connection shuts down cleanly.
var errClosed = errors.New("connection closed")

// Client represents a WebSocket client for one room
type Client struct {
	serverURL string
	room      string
	conn      *websocket.Conn
	send      chan *protocol.Message
	updates   chan protocol.MessageType
	done      chan struct{}
	logger    *log.Logger

	table *TableMirror
	round *RoundMirror

	mu        sync.RWMutex
	connected bool
	welcome   protocol.Welcome
	closeOnce sync.Once
}

// NewClient creates a client for room on serverURL. An empty room joins the
// server's default room.
func NewClient(serverURL, room string, logger *log.Logger) *Client {
	return &Client{
		serverURL: serverURL,
		room:      room,
		send:      make(chan *protocol.Message, sendBuffer),
		updates:   make(chan protocol.MessageType, updateBuf),
		done:      make(chan struct{}),
		logger:    logger.WithPrefix("client"),
		table:     NewTableMirror(0),
		round:     NewRoundMirror(),
	}
}

// Table returns the seat mirror.
func (c *Client) Table() *TableMirror { return c.table }

// Round returns the round mirror.
func (c *Client) Round() *RoundMirror { return c.round }

// Updates yields the type of every applied server message. It is closed
// when Run returns. Slow readers miss hints, never state.
func (c *Client) Updates() <-chan protocol.MessageType { return c.updates }

// Welcome returns what the server told us on connect.
func (c *Client) Welcome() protocol.Welcome {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.welcome
}

// SessionID returns our player id, empty before the welcome arrives.
func (c *Client) SessionID() string { return c.Welcome().SessionID }

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// WebSocketURL turns an http(s) or ws(s) base URL into the room endpoint.
func WebSocketURL(serverURL, room string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q: missing host", serverURL)
	}

	u.Path = "/ws"
	q := u.Query()
	if room != "" {
		q.Set("room", room)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect(ctx context.Context) error {
	wsURL, err := WebSocketURL(c.serverURL, c.room)
	if err != nil {
		return err
	}
	c.logger.Info("Connecting to server", "url", wsURL)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	c.logger.Info("Connected to server")
	return nil
}

// Run pumps messages until ctx is cancelled or the connection drops.
func (c *Client) Run(ctx context.Context) error {
	if c.conn == nil {
		return errors.New("client not connected")
	}
	defer close(c.updates)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readPump(gctx) })
	g.Go(func() error { return c.writePump(gctx) })
	err := g.Wait()

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	c.table.SetNetworkContext(c.SessionID(), nil)
	c.closeOnce.Do(func() { close(c.done) })

	if ctx.Err() != nil || errors.Is(err, errClosed) {
		return nil
	}
	return err
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.conn != nil {
			_ = c.conn.Close() // Ignore close errors during shutdown
		}
		c.connected = false
		c.logger.Info("Disconnected from server")
	})
	return nil
}

// Send implements Sender.
func (c *Client) Send(t protocol.MessageType, data any) error {
	msg, err := protocol.NewMessage(t, data)
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// SendMessage queues a message for the server
func (c *Client) SendMessage(msg *protocol.Message) error {
	select {
	case <-c.done:
		return ErrNotConnected
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.done:
		return ErrNotConnected
	default:
		return fmt.Errorf("send buffer full")
	}
}

// RequestSync asks for a fresh snapshot and round payload.
func (c *Client) RequestSync() error {
	if err := c.Send(protocol.TypeTableSyncRequest, nil); err != nil {
		return err
	}
	return c.Send(protocol.TypePokerPhaseRequest, nil)
}

// readPump handles incoming messages from the server
func (c *Client) readPump(ctx context.Context) error {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return errClosed
			default:
			}
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errClosed
			}
			return fmt.Errorf("read: %w", err)
		}

		msg, err := protocol.ParseMessage(raw)
		if err != nil {
			c.logger.Warn("Dropping malformed message", "error", err)
			continue
		}
		c.logger.Debug("Received message", "type", msg.Type)
		c.handle(msg)
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Unblocks readPump
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				return fmt.Errorf("write %s: %w", message.Type, err)
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("ping: %w", err)
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil

		case <-ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
	}
}

// handle applies one server message to the mirrors
func (c *Client) handle(msg *protocol.Message) {
	var err error
	switch msg.Type {
	case protocol.TypeWelcome:
		var w protocol.Welcome
		if err = msg.Decode(&w); err == nil {
			c.mu.Lock()
			c.welcome = w
			c.mu.Unlock()
			c.table.SetNetworkContext(w.SessionID, c)
			c.logger.Info("Welcomed", "session", w.SessionID, "room", w.Room, "seats", w.SeatCount)
		}

	case protocol.TypeTableStateSync:
		var snap protocol.TableState
		if err = msg.Decode(&snap); err == nil {
			c.table.Hydrate(snap)
		}

	case protocol.TypeTableRollback:
		var snap protocol.TableState
		if err = msg.Decode(&snap); err == nil {
			c.logger.Debug("Rolled back", "frame", snap.FrameID)
			c.table.Rollback(snap)
		}

	case protocol.TypeTableStarted:
		var started protocol.TableStarted
		if err = msg.Decode(&started); err == nil {
			c.table.ApplyTableStart()
			c.round.SetFeedback("")
		}

	case protocol.TypeTableStartDenied:
		var denied protocol.TableStartDenied
		if err = msg.Decode(&denied); err == nil {
			c.round.SetFeedback(denied.Reason.Text())
		}

	case protocol.TypePokerStateUpdate:
		var state protocol.PokerState
		if err = msg.Decode(&state); err == nil {
			c.round.Apply(state)
		}

	case protocol.TypePokerActionAck:
		var ack protocol.ActionAck
		if err = msg.Decode(&ack); err == nil {
			c.round.ApplyAck(ack)
		}

	case protocol.TypeError:
		var data protocol.ErrorData
		if err = msg.Decode(&data); err == nil {
			c.logger.Error("Server error", "code", data.Code, "message", data.Message)
			c.round.SetFeedback(data.Message)
		}

	default:
		c.logger.Debug("No handler for message type", "type", msg.Type)
		return
	}

	if err != nil {
		c.logger.Warn("Failed to decode message", "type", msg.Type, "error", err)
		return
	}
	c.notify(msg.Type)
}

func (c *Client) notify(t protocol.MessageType) {
	select {
	case c.updates <- t:
	default:
	}
}
