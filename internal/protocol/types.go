package protocol

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Client to server messages
	TypeTableJoin         MessageType = "table_join"
	TypeTableLeave        MessageType = "table_leave"
	TypeTableStart        MessageType = "table_start"
	TypePokerPlayerAction MessageType = "poker_player_action"
	TypePokerPhaseRequest MessageType = "poker_phase_request"
	TypeTableSyncRequest  MessageType = "table_sync_request"

	// Server to client messages
	TypeWelcome          MessageType = "welcome"
	TypeTableStateSync   MessageType = "table_state_sync"
	TypeTableRollback    MessageType = "table_rollback"
	TypeTableStarted     MessageType = "table_started"
	TypeTableStartDenied MessageType = "table_start_denied"
	TypePokerStateUpdate MessageType = "poker_state_update"
	TypePokerActionAck   MessageType = "poker_action_ack"
	TypeError            MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

const (
	SubgameNone           = "none"
	SubgameCaribbeanPoker = "caribbean_poker"
)

// Error codes carried by TypeError messages.
const (
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeUnknownType    = "unknown_type"
	ErrCodeRoomFull       = "room_full"
	ErrCodeUnavailable    = "unavailable"
)
