package protocol

// Reason is a rejection code sent in poker_action_ack and table_start_denied.
type Reason string

const (
	ReasonMissingAction  Reason = "missing_action"
	ReasonTableNotActive Reason = "table_not_active"
	ReasonInvalidSeat    Reason = "invalid_seat"
	ReasonNotInSeat      Reason = "not_in_seat"
	ReasonPhaseLocked    Reason = "phase_locked"
	ReasonInvalidAmount  Reason = "invalid_amount"
	ReasonNothingToCall  Reason = "nothing_to_call"
	ReasonUnknownAction  Reason = "unknown_action"
	ReasonNotHost        Reason = "not_host"
	ReasonSeatsNotFull   Reason = "seats_not_full"
)

var reasonText = map[Reason]string{
	ReasonMissingAction:  "No action given",
	ReasonTableNotActive: "The table has not started",
	ReasonInvalidSeat:    "That seat does not exist",
	ReasonNotInSeat:      "You are not sitting there",
	ReasonPhaseLocked:    "Wait for the betting phase",
	ReasonInvalidAmount:  "Enter an amount of at least 1",
	ReasonNothingToCall:  "There is no bet to call",
	ReasonUnknownAction:  "Unknown action",
	ReasonNotHost:        "Only the host can start the game",
	ReasonSeatsNotFull:   "All seats must be filled to start",
}

// Known reports whether r belongs to the reason vocabulary.
func (r Reason) Known() bool {
	_, ok := reasonText[r]
	return ok
}

// Text returns a short human readable description.
func (r Reason) Text() string {
	if s, ok := reasonText[r]; ok {
		return s
	}
	return string(r)
}
