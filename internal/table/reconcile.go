package table

import "sort"

// ActionKind is the kind of a predicted seat mutation.
type ActionKind string

const (
	ActionJoin  ActionKind = "join"
	ActionLeave ActionKind = "leave"
)

// PendingAction is a client-side seat mutation not yet confirmed by a
// snapshot.
type PendingAction struct {
	FrameID   int64      `json:"frameId"`
	SeatIndex int        `json:"seatIndex"`
	PlayerID  string     `json:"playerId"`
	Kind      ActionKind `json:"kind"`
}

// ApplyActions replays actions onto a copy of base in frame order. Joins
// follow the ledger's acceptance rule (the seat must be free or already the
// player's, and the player must not hold another seat) so a prediction never
// shows a seating the server would refuse. A leave with an empty PlayerID
// clears the seat unconditionally.
func ApplyActions(base []Seat, actions []PendingAction) []Seat {
	seats := CloneSeats(base)

	ordered := make([]PendingAction, len(actions))
	copy(ordered, actions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].FrameID < ordered[j].FrameID
	})

	for _, a := range ordered {
		if a.SeatIndex < 0 || a.SeatIndex >= len(seats) {
			continue
		}
		seat := &seats[a.SeatIndex]

		switch a.Kind {
		case ActionJoin:
			if a.PlayerID == "" {
				continue
			}
			if seat.Occupied() && seat.PlayerID != a.PlayerID {
				continue
			}
			if other := SeatOf(seats, a.PlayerID); other >= 0 && other != a.SeatIndex {
				continue
			}
			seat.PlayerID = a.PlayerID
			seat.CommittedFrame = max(seat.CommittedFrame, a.FrameID)
		case ActionLeave:
			if a.PlayerID == "" || seat.PlayerID == a.PlayerID {
				seat.PlayerID = ""
				seat.CommittedFrame = max(seat.CommittedFrame, a.FrameID)
			}
		}
	}

	return seats
}

// Reconcile drops every pending action the snapshot already covers
// (FrameID <= snapshot frame) and replays the rest on top of the snapshot's
// seats. It returns the speculative seats and the still-pending actions.
func Reconcile(snap Snapshot, pending []PendingAction) ([]Seat, []PendingAction) {
	kept := make([]PendingAction, 0, len(pending))
	for _, a := range pending {
		if a.FrameID > snap.FrameID {
			kept = append(kept, a)
		}
	}
	return ApplyActions(snap.Seats, kept), kept
}
