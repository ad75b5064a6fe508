// Package table holds the seat ledger shared by the authoritative room and
// the reconciling client.
//
// Every seat mutation advances a frame counter. The server records a
// snapshot per frame in a bounded ring; clients keep their own unacknowledged
// intents and rebuild their view as
//
//	Reconcile(snapshot, pending) = snapshot seats + pending actions newer than
//	the snapshot, replayed in frame order
//
// so a late or corrective snapshot never loses a local prediction that the
// server has not seen yet.
package table

import "errors"

// Status is the lifecycle state of the table.
type Status string

const (
	StatusOpen       Status = "open"
	StatusStarting   Status = "starting"
	StatusInProgress Status = "in_progress"
	StatusCooldown   Status = "cooldown"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusStarting, StatusInProgress, StatusCooldown:
		return true
	}
	return false
}

var (
	ErrSeatOutOfRange = errors.New("seat index out of range")
	ErrSeatTaken      = errors.New("seat occupied by another player")
	ErrAlreadySeated  = errors.New("player already holds another seat")
	ErrNotOccupant    = errors.New("player does not occupy seat")
	ErrNotHost        = errors.New("only the host may start the table")
	ErrSeatsNotFull   = errors.New("every seat must be occupied")
	ErrNoPlayer       = errors.New("player id required")
)

// Seat is one slot at the table. An empty PlayerID means the seat is free.
type Seat struct {
	Index          int    `json:"index"`
	PlayerID       string `json:"playerId"`
	CommittedFrame int64  `json:"committedFrame"`
}

// Occupied reports whether someone holds the seat.
func (s Seat) Occupied() bool { return s.PlayerID != "" }

// Snapshot is the authoritative seating at one frame.
type Snapshot struct {
	FrameID int64  `json:"frameId"`
	Seats   []Seat `json:"seats"`
	Status  Status `json:"status"`
	HostID  string `json:"hostId"`
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	s.Seats = CloneSeats(s.Seats)
	return s
}

// EmptySeats builds n vacant seats.
func EmptySeats(n int) []Seat {
	seats := make([]Seat, n)
	for i := range seats {
		seats[i].Index = i
	}
	return seats
}

// CloneSeats copies a seat slice.
func CloneSeats(seats []Seat) []Seat {
	out := make([]Seat, len(seats))
	copy(out, seats)
	return out
}

// SeatOf returns the index of the seat held by playerID, or -1.
func SeatOf(seats []Seat, playerID string) int {
	if playerID == "" {
		return -1
	}
	for i, s := range seats {
		if s.PlayerID == playerID {
			return i
		}
	}
	return -1
}
