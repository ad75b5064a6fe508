package protocol

import (
	"github.com/lox/caribbeanpoker/internal/deck"
	"github.com/lox/caribbeanpoker/internal/table"
)

// Client → Server Messages

// TableJoin asks for a seat. FrameID is the frame the client predicted for
// the join.
type TableJoin struct {
	SeatIndex *int  `json:"seatIndex"`
	FrameID   int64 `json:"frameId,omitempty"`
}

// TableLeave gives up a seat. A nil SeatIndex means "whatever seat I hold".
type TableLeave struct {
	SeatIndex *int  `json:"seatIndex,omitempty"`
	FrameID   int64 `json:"frameId,omitempty"`
}

// PokerPlayerAction is a betting action. PlayerID is informational; the
// server always acts for the sending session.
type PokerPlayerAction struct {
	Action    string   `json:"action"`
	PlayerID  string   `json:"playerId,omitempty"`
	Amount    *float64 `json:"amount,omitempty"`
	SeatIndex *int     `json:"seatIndex,omitempty"`
}

// Server → Client Messages

// TableState is the payload of table_state_sync and table_rollback.
type TableState = table.Snapshot

type Welcome struct {
	SessionID string `json:"sessionId"`
	Room      string `json:"room"`
	SeatCount int    `json:"seatCount"`
	MinBet    int    `json:"minBet"`
	MaxBet    int    `json:"maxBet"`
}

type TableStarted struct {
	FrameID int64  `json:"frameId"`
	Subgame string `json:"subgame"`
}

type TableStartDenied struct {
	Reason Reason `json:"reason"`
}

// BetState is one player's wagers for the current round.
type BetState struct {
	Ante      int  `json:"ante"`
	Bet       int  `json:"bet"`
	Insurance int  `json:"insurance"`
	HasFolded bool `json:"hasFolded"`
}

type LastAction struct {
	PlayerID string `json:"playerId"`
	Action   string `json:"action"`
	Amount   int    `json:"amount,omitempty"`
}

type HandCards struct {
	Cards []deck.Card `json:"cards"`
}

// Community holds every visible card. Hidden dealer cards encode as "??".
type Community struct {
	DealerHand  []deck.Card          `json:"dealerHand"`
	PlayerHands map[string]HandCards `json:"playerHands"`
}

// PokerState is the payload of poker_state_update. NextRoundStartAt is a
// Unix timestamp in milliseconds, present only while an intermission runs.
type PokerState struct {
	Phase            string              `json:"phase"`
	DealerSeed       int64               `json:"dealerSeed"`
	WinningPlayerIDs []string            `json:"winningPlayerIds"`
	PlayerBets       map[string]BetState `json:"playerBets"`
	Community        Community           `json:"community"`
	LastAction       *LastAction         `json:"lastAction"`
	PotTotal         int                 `json:"potTotal"`
	NextRoundStartAt *int64              `json:"nextRoundStartAt"`
}

// Clone returns a deep copy.
func (s PokerState) Clone() PokerState {
	out := s
	out.WinningPlayerIDs = append([]string{}, s.WinningPlayerIDs...)
	out.PlayerBets = make(map[string]BetState, len(s.PlayerBets))
	for id, b := range s.PlayerBets {
		out.PlayerBets[id] = b
	}
	out.Community.DealerHand = append([]deck.Card{}, s.Community.DealerHand...)
	out.Community.PlayerHands = make(map[string]HandCards, len(s.Community.PlayerHands))
	for id, h := range s.Community.PlayerHands {
		out.Community.PlayerHands[id] = HandCards{Cards: append([]deck.Card{}, h.Cards...)}
	}
	if s.LastAction != nil {
		la := *s.LastAction
		out.LastAction = &la
	}
	if s.NextRoundStartAt != nil {
		at := *s.NextRoundStartAt
		out.NextRoundStartAt = &at
	}
	return out
}

// ActionAck answers a poker_player_action.
type ActionAck struct {
	Success bool   `json:"success"`
	Action  string `json:"action,omitempty"`
	Amount  int    `json:"amount,omitempty"`
	Reason  Reason `json:"reason,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TableInfo describes a room for the /tables listing.
type TableInfo struct {
	Name       string       `json:"name"`
	Status     table.Status `json:"status"`
	Subgame    string       `json:"subgame"`
	SeatCount  int          `json:"seatCount"`
	Occupied   int          `json:"occupied"`
	Clients    int          `json:"clients"`
	MaxClients int          `json:"maxClients"`
	FrameID    int64        `json:"frameId"`
}
