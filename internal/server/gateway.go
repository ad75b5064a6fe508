package server

import (
	"errors"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/caribbeanpoker/internal/game"
	"github.com/lox/caribbeanpoker/internal/protocol"
	"github.com/lox/caribbeanpoker/internal/randutil"
	"github.com/lox/caribbeanpoker/internal/table"
)

var (
	ErrRoomFull        = errors.New("room is full")
	ErrDuplicateClient = errors.New("session already connected")
)

// Session is one connected client as seen by the gateway.
type Session interface {
	ID() string
	Send(msg *protocol.Message) error
	Close() error
}

// RoomConfig holds everything needed to build a room.
type RoomConfig struct {
	Name      string
	Table     TableConfig
	Clock     quartz.Clock
	Scheduler game.Scheduler
	Seeds     randutil.Source
	Logger    *log.Logger
}

// Gateway turns client intents into ledger and engine mutations and
// broadcasts the results. It is not safe for concurrent use; Room runs it on
// a single goroutine.
type Gateway struct {
	name       string
	maxClients int
	ledger     *table.Ledger
	engine     *game.Engine
	sessions   []Session
	subgame    string
	logger     *log.Logger
}

// NewGateway creates a gateway with an empty table.
func NewGateway(cfg RoomConfig) (*Gateway, error) {
	pipeline, err := cfg.Table.Pipeline()
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = game.ClockScheduler{Clock: clock}
	}

	g := &Gateway{
		name:       cfg.Name,
		maxClients: cfg.Table.MaxClients,
		ledger:     table.NewLedger(cfg.Table.Seats, cfg.Table.RollbackBuffer),
		subgame:    protocol.SubgameNone,
		logger:     logger.WithPrefix("room").With("room", cfg.Name),
	}
	if g.maxClients < 1 {
		g.maxClients = defaultMaxClients
	}
	g.engine = game.NewEngine(g.ledger,
		game.WithClock(clock),
		game.WithScheduler(scheduler),
		game.WithSeedSource(cfg.Seeds),
		game.WithLogger(g.logger),
		game.WithPipeline(pipeline),
		game.WithBetLimits(cfg.Table.MinBet, cfg.Table.MaxBet),
		game.WithIntermission(cfg.Table.Intermission()),
		game.WithOnChange(g.broadcastPokerState),
	)
	return g, nil
}

// Ledger exposes the table ledger.
func (g *Gateway) Ledger() *table.Ledger { return g.ledger }

// Engine exposes the round engine.
func (g *Gateway) Engine() *game.Engine { return g.engine }

// Subgame returns the active subgame name.
func (g *Gateway) Subgame() string { return g.subgame }

// Connect registers a session. The first session becomes host. The new
// session receives a welcome, the latest snapshot and the round state.
func (g *Gateway) Connect(s Session) error {
	if len(g.sessions) >= g.maxClients {
		g.logger.Warn("Rejecting client, room full", "session", s.ID(), "clients", len(g.sessions))
		return ErrRoomFull
	}
	if g.session(s.ID()) != nil {
		return ErrDuplicateClient
	}

	g.sessions = append(g.sessions, s)
	g.logger.Info("Client connected", "session", s.ID(), "clients", len(g.sessions))

	g.send(s, protocol.TypeWelcome, protocol.Welcome{
		SessionID: s.ID(),
		Room:      g.name,
		SeatCount: g.ledger.SeatCount(),
		MinBet:    g.engine.MinBet(),
		MaxBet:    g.engine.MaxBet(),
	})

	if snap, ok := g.ledger.ClaimHost(s.ID()); ok {
		g.logger.Info("Host assigned", "host", s.ID(), "frame", snap.FrameID)
		g.broadcast(protocol.TypeTableStateSync, snap)
	} else {
		g.send(s, protocol.TypeTableStateSync, g.ledger.Latest())
	}
	g.send(s, protocol.TypePokerStateUpdate, g.engine.State())
	return nil
}

// Disconnect forgets a session, releases its seat and hands host to the
// next connected session.
func (g *Gateway) Disconnect(id string) {
	idx := slices.IndexFunc(g.sessions, func(s Session) bool { return s.ID() == id })
	if idx < 0 {
		return
	}
	g.sessions = slices.Delete(g.sessions, idx, idx+1)
	g.logger.Info("Client disconnected", "session", id, "clients", len(g.sessions))

	if snap, ok := g.ledger.Release(id); ok {
		g.logger.Info("Seat released", "player", id, "frame", snap.FrameID)
		g.engine.RemovePlayer(id)
		g.engine.Reset()
		g.broadcast(protocol.TypeTableStateSync, snap)
		g.broadcastPokerState()
	}

	if g.ledger.HostID() == id {
		next := ""
		if len(g.sessions) > 0 {
			next = g.sessions[0].ID()
		}
		snap := g.ledger.PromoteHost(next)
		g.logger.Info("Host reassigned", "host", next, "frame", snap.FrameID)
		g.broadcast(protocol.TypeTableStateSync, snap)
	}
}

// Handle dispatches one inbound message from session id.
func (g *Gateway) Handle(id string, msg *protocol.Message) {
	s := g.session(id)
	if s == nil {
		g.logger.Warn("Message from unknown session", "session", id, "type", msg.Type)
		return
	}
	g.logger.Debug("Received message", "type", msg.Type, "session", id)

	switch msg.Type {
	case protocol.TypeTableJoin:
		var data protocol.TableJoin
		if err := msg.Decode(&data); err != nil {
			g.sendError(s, protocol.ErrCodeInvalidMessage, "Failed to parse table join data")
			return
		}
		g.handleJoin(s, data)

	case protocol.TypeTableLeave:
		var data protocol.TableLeave
		if err := msg.Decode(&data); err != nil {
			g.sendError(s, protocol.ErrCodeInvalidMessage, "Failed to parse table leave data")
			return
		}
		g.handleLeave(s, data)

	case protocol.TypeTableStart:
		g.handleStart(s)

	case protocol.TypePokerPlayerAction:
		var data protocol.PokerPlayerAction
		if err := msg.Decode(&data); err != nil {
			g.sendError(s, protocol.ErrCodeInvalidMessage, "Failed to parse poker action data")
			return
		}
		g.handleAction(s, data)

	case protocol.TypePokerPhaseRequest:
		g.send(s, protocol.TypePokerStateUpdate, g.engine.State())

	case protocol.TypeTableSyncRequest:
		g.send(s, protocol.TypeTableStateSync, g.ledger.Latest())

	default:
		g.sendError(s, protocol.ErrCodeUnknownType, "Unknown message type: "+msg.Type.String())
	}
}

func (g *Gateway) handleJoin(s Session, data protocol.TableJoin) {
	if data.SeatIndex == nil {
		g.rollback(s, "join without seat")
		return
	}

	snap, err := g.ledger.Join(*data.SeatIndex, s.ID(), data.FrameID)
	if err != nil {
		g.logger.Debug("Join rejected", "player", s.ID(), "seat", *data.SeatIndex, "error", err)
		g.rollback(s, err.Error())
		return
	}

	g.logger.Info("Seat taken", "player", s.ID(), "seat", *data.SeatIndex, "frame", snap.FrameID)
	g.broadcast(protocol.TypeTableStateSync, snap)
}

func (g *Gateway) handleLeave(s Session, data protocol.TableLeave) {
	snap, err := g.ledger.Leave(data.SeatIndex, s.ID())
	if err != nil {
		g.logger.Debug("Leave rejected", "player", s.ID(), "error", err)
		g.rollback(s, err.Error())
		return
	}

	g.logger.Info("Seat vacated", "player", s.ID(), "frame", snap.FrameID)
	g.engine.RemovePlayer(s.ID())
	g.engine.Reset()
	g.broadcast(protocol.TypeTableStateSync, snap)
	g.broadcastPokerState()
}

func (g *Gateway) handleStart(s Session) {
	snap, err := g.ledger.Start(s.ID())
	switch {
	case errors.Is(err, table.ErrNotHost):
		g.send(s, protocol.TypeTableStartDenied, protocol.TableStartDenied{Reason: protocol.ReasonNotHost})
		return
	case errors.Is(err, table.ErrSeatsNotFull):
		g.send(s, protocol.TypeTableStartDenied, protocol.TableStartDenied{Reason: protocol.ReasonSeatsNotFull})
		return
	case err != nil:
		g.logger.Error("Unexpected start failure", "error", err)
		return
	}

	g.subgame = protocol.SubgameCaribbeanPoker
	g.logger.Info("Table started", "host", s.ID(), "frame", snap.FrameID)
	g.broadcast(protocol.TypeTableStateSync, snap)
	g.broadcast(protocol.TypeTableStarted, protocol.TableStarted{FrameID: snap.FrameID, Subgame: g.subgame})

	g.engine.StartRound()
	g.broadcastPokerState()
}

func (g *Gateway) handleAction(s Session, data protocol.PokerPlayerAction) {
	res, err := g.engine.Act(s.ID(), data.SeatIndex, data.Action, data.Amount)
	if err != nil {
		var actionErr *game.ActionError
		if !errors.As(err, &actionErr) {
			g.logger.Error("Unexpected action failure", "error", err)
			return
		}
		g.logger.Debug("Action rejected", "player", s.ID(), "action", data.Action, "reason", actionErr.Reason)
		g.send(s, protocol.TypePokerActionAck, protocol.ActionAck{Success: false, Reason: actionErr.Reason})
		return
	}

	g.broadcastPokerState()
	g.send(s, protocol.TypePokerActionAck, protocol.ActionAck{
		Success: true,
		Action:  string(res.Action),
		Amount:  res.Amount,
	})
}

// Dispose cancels timers and closes every session.
func (g *Gateway) Dispose() {
	g.engine.Dispose()
	g.ledger.Reset()
	for _, s := range g.sessions {
		_ = s.Close() // Ignore close errors during shutdown
	}
	g.sessions = nil
	g.logger.Info("Room disposed")
}

// Info summarises the room for listings.
func (g *Gateway) Info() protocol.TableInfo {
	return protocol.TableInfo{
		Name:       g.name,
		Status:     g.ledger.Status(),
		Subgame:    g.subgame,
		SeatCount:  g.ledger.SeatCount(),
		Occupied:   len(g.ledger.SeatedPlayers()),
		Clients:    len(g.sessions),
		MaxClients: g.maxClients,
		FrameID:    g.ledger.Frame(),
	}
}

func (g *Gateway) session(id string) Session {
	for _, s := range g.sessions {
		if s.ID() == id {
			return s
		}
	}
	return nil
}

func (g *Gateway) rollback(s Session, why string) {
	snap := g.ledger.Latest()
	g.logger.Debug("Sending rollback", "session", s.ID(), "frame", snap.FrameID, "cause", why)
	g.send(s, protocol.TypeTableRollback, snap)
}

func (g *Gateway) broadcastPokerState() {
	g.broadcast(protocol.TypePokerStateUpdate, g.engine.State())
}

func (g *Gateway) broadcast(t protocol.MessageType, data any) {
	msg, err := protocol.NewMessage(t, data)
	if err != nil {
		g.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}

	count := 0
	for _, s := range g.sessions {
		if err := s.Send(msg); err != nil {
			g.logger.Error("Failed to send message to client", "error", err, "session", s.ID())
			continue
		}
		count++
	}
	g.logger.Debug("Broadcasted message", "type", t, "recipients", count)
}

func (g *Gateway) send(s Session, t protocol.MessageType, data any) {
	msg, err := protocol.NewMessage(t, data)
	if err != nil {
		g.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	if err := s.Send(msg); err != nil {
		g.logger.Error("Failed to send message to client", "error", err, "session", s.ID())
	}
}

// sendError sends an error message to the client
func (g *Gateway) sendError(s Session, code, message string) {
	g.send(s, protocol.TypeError, protocol.ErrorData{Code: code, Message: message})
}
