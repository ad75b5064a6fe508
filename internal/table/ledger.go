package table

import "fmt"

const (
	// DefaultSeatCount is the number of seats at a Caribbean Poker table.
	DefaultSeatCount = 5
	// DefaultHistorySize keeps roughly two seconds of frames at 60 updates/s.
	DefaultHistorySize = 120
)

// Ledger is the authoritative seat array, host pointer, status and frame
// counter of one table. Every accepted mutation advances the frame and
// records a snapshot in the rollback history.
//
// Ledger is not safe for concurrent use; the owning room serialises access.
type Ledger struct {
	seats   []Seat
	status  Status
	hostID  string
	frame   int64
	history *Ring[Snapshot]
}

// NewLedger creates a ledger with seatCount vacant seats and records the
// initial frame-0 snapshot.
func NewLedger(seatCount, historySize int) *Ledger {
	if seatCount < 1 {
		seatCount = DefaultSeatCount
	}
	if historySize < 1 {
		historySize = DefaultHistorySize
	}
	l := &Ledger{
		seats:   EmptySeats(seatCount),
		status:  StatusOpen,
		history: NewRing[Snapshot](historySize),
	}
	l.record()
	return l
}

// Frame returns the current frame id.
func (l *Ledger) Frame() int64 { return l.frame }

// Status returns the table status.
func (l *Ledger) Status() Status { return l.status }

// HostID returns the current host, or "" when there is none.
func (l *Ledger) HostID() string { return l.hostID }

// SeatCount returns the number of seats.
func (l *Ledger) SeatCount() int { return len(l.seats) }

// Seats returns a copy of the current seats.
func (l *Ledger) Seats() []Seat { return CloneSeats(l.seats) }

// SeatOf returns the seat index held by playerID, or -1.
func (l *Ledger) SeatOf(playerID string) int { return SeatOf(l.seats, playerID) }

// SeatedPlayers returns occupant ids in seat order.
func (l *Ledger) SeatedPlayers() []string {
	var ids []string
	for _, s := range l.seats {
		if s.Occupied() {
			ids = append(ids, s.PlayerID)
		}
	}
	return ids
}

// AllOccupied reports whether every seat is taken.
func (l *Ledger) AllOccupied() bool {
	for _, s := range l.seats {
		if !s.Occupied() {
			return false
		}
	}
	return true
}

// Join seats playerID at seatIndex. clientFrame is the frame the requester
// predicted for the join; the committed frame is never lower than the next
// server frame, so frames stay monotonic whatever the client sends.
//
// Rejoining one's own seat recommits it.
func (l *Ledger) Join(seatIndex int, playerID string, clientFrame int64) (Snapshot, error) {
	if playerID == "" {
		return Snapshot{}, ErrNoPlayer
	}
	if seatIndex < 0 || seatIndex >= len(l.seats) {
		return Snapshot{}, fmt.Errorf("join seat %d: %w", seatIndex, ErrSeatOutOfRange)
	}

	seat := &l.seats[seatIndex]
	if seat.Occupied() && seat.PlayerID != playerID {
		return Snapshot{}, fmt.Errorf("join seat %d: %w", seatIndex, ErrSeatTaken)
	}
	if current := l.SeatOf(playerID); current >= 0 && current != seatIndex {
		return Snapshot{}, fmt.Errorf("join seat %d (holding %d): %w", seatIndex, current, ErrAlreadySeated)
	}

	// Client frames may run ahead by at most one history window.
	clientFrame = min(clientFrame, l.frame+int64(l.history.Cap()))
	committed := max(clientFrame, l.frame+1)
	seat.PlayerID = playerID
	seat.CommittedFrame = committed
	l.frame = committed
	return l.record(), nil
}

// Leave vacates a seat held by playerID. A nil seatIndex resolves the
// requester's current seat. Vacating reopens the table.
func (l *Ledger) Leave(seatIndex *int, playerID string) (Snapshot, error) {
	idx := l.SeatOf(playerID)
	if seatIndex != nil {
		idx = *seatIndex
	}
	if seatIndex == nil && idx < 0 {
		return Snapshot{}, fmt.Errorf("leave: %w", ErrNotOccupant)
	}
	if idx < 0 || idx >= len(l.seats) {
		return Snapshot{}, fmt.Errorf("leave seat %d: %w", idx, ErrSeatOutOfRange)
	}
	if playerID == "" || l.seats[idx].PlayerID != playerID {
		return Snapshot{}, fmt.Errorf("leave seat %d: %w", idx, ErrNotOccupant)
	}

	l.vacate(idx)
	return l.record(), nil
}

// Release vacates whatever seat playerID holds, used when a connection
// drops. It reports false when the player held no seat.
func (l *Ledger) Release(playerID string) (Snapshot, bool) {
	idx := l.SeatOf(playerID)
	if idx < 0 {
		return Snapshot{}, false
	}
	l.vacate(idx)
	return l.record(), true
}

func (l *Ledger) vacate(idx int) {
	l.frame++
	l.seats[idx].PlayerID = ""
	l.seats[idx].CommittedFrame = l.frame
	l.status = StatusOpen
}

// ClaimHost makes playerID host if the table has none.
func (l *Ledger) ClaimHost(playerID string) (Snapshot, bool) {
	if l.hostID != "" || playerID == "" {
		return Snapshot{}, false
	}
	l.hostID = playerID
	l.frame++
	return l.record(), true
}

// PromoteHost hands the host role to next ("" leaves the table hostless).
func (l *Ledger) PromoteHost(next string) Snapshot {
	l.hostID = next
	l.frame++
	return l.record()
}

// Start moves the table into play. Only the host may start, and only with
// every seat taken.
func (l *Ledger) Start(requester string) (Snapshot, error) {
	if requester == "" || requester != l.hostID {
		return Snapshot{}, ErrNotHost
	}
	if !l.AllOccupied() {
		return Snapshot{}, ErrSeatsNotFull
	}
	l.status = StatusInProgress
	l.frame++
	return l.record(), nil
}

// Reset vacates every seat, drops the host and reopens the table. The frame
// keeps counting so snapshots stay ordered across the reset.
func (l *Ledger) Reset() Snapshot {
	l.frame++
	l.seats = EmptySeats(len(l.seats))
	l.status = StatusOpen
	l.hostID = ""
	return l.record()
}

// Latest returns the most recently recorded snapshot.
func (l *Ledger) Latest() Snapshot {
	s, _ := l.history.Last()
	return s.Clone()
}

// SnapshotAt returns the newest recorded snapshot at or before frame.
func (l *Ledger) SnapshotAt(frame int64) (Snapshot, bool) {
	items := l.history.Items()
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].FrameID <= frame {
			return items[i].Clone(), true
		}
	}
	return Snapshot{}, false
}

func (l *Ledger) record() Snapshot {
	snap := Snapshot{
		FrameID: l.frame,
		Seats:   CloneSeats(l.seats),
		Status:  l.status,
		HostID:  l.hostID,
	}
	l.history.Push(snap)
	return snap.Clone()
}
