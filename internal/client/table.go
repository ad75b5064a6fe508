package client

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lox/caribbeanpoker/internal/protocol"
	"github.com/lox/caribbeanpoker/internal/table"
)

// MaxPendingActions bounds the unacknowledged seat intents a mirror keeps.
const MaxPendingActions = table.DefaultHistorySize

var (
	ErrNotConnected    = errors.New("not connected")
	ErrSeatUnavailable = errors.New("seat unavailable")
	ErrNotSeated       = errors.New("not seated")
	ErrCannotStart     = errors.New("table cannot be started")
)

// Sender delivers an intent to the server.
type Sender interface {
	Send(t protocol.MessageType, data any) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(t protocol.MessageType, data any) error

// Send implements Sender.
func (f SenderFunc) Send(t protocol.MessageType, data any) error { return f(t, data) }

// TableView is a point-in-time copy of the mirror for rendering.
type TableView struct {
	Seats                  []table.Seat
	Status                 table.Status
	HostID                 string
	IsHost                 bool
	PlayerID               string
	MySeat                 int
	LastAuthoritativeFrame int64
	LocalFrame             int64
	Pending                int
	Rollbacks              int
}

// AllOccupied reports whether every seat in the view is taken.
func (v TableView) AllOccupied() bool {
	for _, s := range v.Seats {
		if !s.Occupied() {
			return false
		}
	}
	return len(v.Seats) > 0
}

// CanStart reports whether a start request would be sent.
func (v TableView) CanStart() bool {
	return v.IsHost && v.Status == table.StatusOpen && v.AllOccupied()
}

// TableMirror is the client copy of the seat ledger. Local intents are
// applied immediately and kept as pending actions until a snapshot covers
// their frame; every snapshot is replayed with the still-pending actions on
// top. The local frame never falls behind the newest snapshot, so fresh
// intents always sort after everything the server has recorded.
type TableMirror struct {
	mu sync.Mutex

	sender   Sender
	playerID string

	seats      []table.Seat
	status     table.Status
	hostID     string
	lastFrame  int64
	localFrame int64
	pending    *table.Ring[table.PendingAction]
	rollbacks  int
}

// NewTableMirror creates a mirror of an empty table with seatCount seats.
func NewTableMirror(seatCount int) *TableMirror {
	if seatCount < 1 {
		seatCount = table.DefaultSeatCount
	}
	return &TableMirror{
		seats:   table.EmptySeats(seatCount),
		status:  table.StatusOpen,
		pending: table.NewRing[table.PendingAction](MaxPendingActions),
	}
}

// SetNetworkContext sets the local player id and the sender intents go
// through. A nil sender marks the mirror disconnected.
func (m *TableMirror) SetNetworkContext(playerID string, sender Sender) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playerID = playerID
	m.sender = sender
}

// Hydrate applies a routine snapshot.
func (m *TableMirror) Hydrate(snap table.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(snap)
}

// Rollback applies a corrective snapshot sent after a refused intent.
func (m *TableMirror) Rollback(snap table.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(snap)
	m.rollbacks++
}

func (m *TableMirror) apply(snap table.Snapshot) {
	seats, _ := table.Reconcile(snap, m.pending.Items())
	m.pending.Retain(func(a table.PendingAction) bool { return a.FrameID > snap.FrameID })

	m.seats = seats
	m.status = snap.Status
	m.hostID = snap.HostID
	m.lastFrame = snap.FrameID
	m.localFrame = max(m.localFrame, snap.FrameID)
}

// JoinSeat predicts taking seat idx and sends the join with the predicted
// frame.
func (m *TableMirror) JoinSeat(idx int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sender == nil || m.playerID == "" {
		return ErrNotConnected
	}
	if idx < 0 || idx >= len(m.seats) {
		return fmt.Errorf("seat %d: %w", idx, ErrSeatUnavailable)
	}
	if m.seats[idx].Occupied() {
		return fmt.Errorf("seat %d held by %s: %w", idx, m.seats[idx].PlayerID, ErrSeatUnavailable)
	}
	if current := table.SeatOf(m.seats, m.playerID); current >= 0 {
		return fmt.Errorf("seat %d (holding %d): %w", idx, current, ErrSeatUnavailable)
	}

	frame := m.nextFrame()
	m.seats[idx].PlayerID = m.playerID
	m.seats[idx].CommittedFrame = frame
	m.pending.Push(table.PendingAction{FrameID: frame, SeatIndex: idx, PlayerID: m.playerID, Kind: table.ActionJoin})

	return m.sender.Send(protocol.TypeTableJoin, protocol.TableJoin{SeatIndex: &idx, FrameID: frame})
}

// LeaveSeat predicts vacating a seat. A nil idx resolves the local player's
// own seat.
func (m *TableMirror) LeaveSeat(idx *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sender == nil || m.playerID == "" {
		return ErrNotConnected
	}
	target := table.SeatOf(m.seats, m.playerID)
	if idx != nil {
		target = *idx
	}
	if target < 0 || target >= len(m.seats) {
		return ErrNotSeated
	}
	if m.seats[target].PlayerID != m.playerID {
		return fmt.Errorf("seat %d held by %q: %w", target, m.seats[target].PlayerID, ErrNotSeated)
	}

	frame := m.nextFrame()
	m.seats[target].PlayerID = ""
	m.seats[target].CommittedFrame = frame
	m.pending.Push(table.PendingAction{FrameID: frame, SeatIndex: target, PlayerID: m.playerID, Kind: table.ActionLeave})

	return m.sender.Send(protocol.TypeTableLeave, protocol.TableLeave{SeatIndex: &target, FrameID: frame})
}

// RequestStart asks the server to start the table when the mirror says the
// local player is host, the table is open and every seat is taken.
func (m *TableMirror) RequestStart() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sender == nil {
		return ErrNotConnected
	}
	if !m.view().CanStart() {
		return ErrCannotStart
	}
	return m.sender.Send(protocol.TypeTableStart, nil)
}

// SendAction submits a betting action from the local player's seat.
func (m *TableMirror) SendAction(action string, amount *float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sender == nil || m.playerID == "" {
		return ErrNotConnected
	}
	payload := protocol.PokerPlayerAction{
		Action:   action,
		PlayerID: m.playerID,
		Amount:   amount,
	}
	if idx := table.SeatOf(m.seats, m.playerID); idx >= 0 {
		payload.SeatIndex = &idx
	}
	return m.sender.Send(protocol.TypePokerPlayerAction, payload)
}

// ApplyTableStart marks the table in progress after table_started.
func (m *TableMirror) ApplyTableStart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = table.StatusInProgress
}

// Reset forgets everything, including the network context.
func (m *TableMirror) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seats = table.EmptySeats(len(m.seats))
	m.status = table.StatusOpen
	m.hostID = ""
	m.lastFrame = 0
	m.localFrame = 0
	m.rollbacks = 0
	m.pending.Reset()
	m.sender = nil
	m.playerID = ""
}

// View returns a copy of the mirror.
func (m *TableMirror) View() TableView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view()
}

// Pending returns the unacknowledged intents, oldest first.
func (m *TableMirror) Pending() []table.PendingAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending.Items()
}

func (m *TableMirror) view() TableView {
	return TableView{
		Seats:                  table.CloneSeats(m.seats),
		Status:                 m.status,
		HostID:                 m.hostID,
		IsHost:                 m.playerID != "" && m.hostID == m.playerID,
		PlayerID:               m.playerID,
		MySeat:                 table.SeatOf(m.seats, m.playerID),
		LastAuthoritativeFrame: m.lastFrame,
		LocalFrame:             m.localFrame,
		Pending:                m.pending.Len(),
		Rollbacks:              m.rollbacks,
	}
}

func (m *TableMirror) nextFrame() int64 {
	m.localFrame++
	return m.localFrame
}
