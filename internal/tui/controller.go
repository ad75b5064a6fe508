package tui

import (
	"github.com/lox/caribbeanpoker/internal/client"
	"github.com/lox/caribbeanpoker/internal/protocol"
)

// Controller is everything the TUI needs from a connected client.
type Controller interface {
	TableView() client.TableView
	RoundState() protocol.PokerState
	Feedback() string
	SetFeedback(msg string)

	JoinSeat(idx int) error
	LeaveSeat() error
	RequestStart() error
	SendAction(action string, amount *float64) error
	RequestSync() error

	// Updates fires after every inbound message and is closed on disconnect.
	Updates() <-chan protocol.MessageType
}

// ClientController adapts a client.Client to Controller.
type ClientController struct {
	client *client.Client
}

// NewClientController creates a new adapter
func NewClientController(c *client.Client) *ClientController {
	return &ClientController{client: c}
}

func (cc *ClientController) TableView() client.TableView { return cc.client.Table().View() }

func (cc *ClientController) RoundState() protocol.PokerState { return cc.client.Round().State() }

func (cc *ClientController) Feedback() string { return cc.client.Round().Feedback() }

func (cc *ClientController) SetFeedback(msg string) { cc.client.Round().SetFeedback(msg) }

func (cc *ClientController) JoinSeat(idx int) error { return cc.client.Table().JoinSeat(idx) }

func (cc *ClientController) LeaveSeat() error { return cc.client.Table().LeaveSeat(nil) }

func (cc *ClientController) RequestStart() error { return cc.client.Table().RequestStart() }

func (cc *ClientController) SendAction(action string, amount *float64) error {
	return cc.client.Table().SendAction(action, amount)
}

func (cc *ClientController) RequestSync() error { return cc.client.RequestSync() }

func (cc *ClientController) Updates() <-chan protocol.MessageType { return cc.client.Updates() }
