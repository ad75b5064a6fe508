package server

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/caribbeanpoker/internal/game"
	"github.com/lox/caribbeanpoker/internal/protocol"
)

// ErrRoomClosed is returned when a room's event loop has stopped.
var ErrRoomClosed = errors.New("room closed")

const roomQueueSize = 256

// Room serialises every mutation of one table onto a single goroutine.
// Connection reads, lifecycle calls and phase timers all post closures into
// the same queue, so the gateway never sees concurrent access.
type Room struct {
	name    string
	gateway *Gateway
	events  chan func()
	done    chan struct{}
	stop    sync.Once
	logger  *log.Logger
}

// NewRoom creates a room whose phase timers run on its event loop.
func NewRoom(cfg RoomConfig) (*Room, error) {
	r := &Room{
		name:   cfg.Name,
		events: make(chan func(), roomQueueSize),
		done:   make(chan struct{}),
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = game.ClockScheduler{Clock: cfg.Clock, Post: func(fn func()) { r.post(fn) }}
	}

	g, err := NewGateway(cfg)
	if err != nil {
		return nil, err
	}
	r.gateway = g
	r.logger = g.logger
	return r, nil
}

// Name returns the room name.
func (r *Room) Name() string { return r.name }

// Run drains the event queue until ctx is cancelled, then disposes the
// room.
func (r *Room) Run(ctx context.Context) error {
	r.logger.Info("Room loop started")
	defer r.stop.Do(func() { close(r.done) })

	for {
		select {
		case <-ctx.Done():
			r.gateway.Dispose()
			return nil
		case fn := <-r.events:
			fn()
		}
	}
}

// post queues fn on the event loop. It reports false once the room stopped.
func (r *Room) post(fn func()) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.events <- fn:
		return true
	case <-r.done:
		return false
	}
}

// do runs fn on the event loop and waits for it to finish.
func (r *Room) do(ctx context.Context, fn func(g *Gateway)) error {
	finished := make(chan struct{})
	if !r.post(func() {
		defer close(finished)
		fn(r.gateway)
	}) {
		return ErrRoomClosed
	}

	select {
	case <-finished:
		return nil
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connect registers a session and waits for the result.
func (r *Room) Connect(ctx context.Context, s Session) error {
	var connectErr error
	if err := r.do(ctx, func(g *Gateway) { connectErr = g.Connect(s) }); err != nil {
		return err
	}
	return connectErr
}

// Disconnect queues the removal of a session.
func (r *Room) Disconnect(id string) {
	r.post(func() { r.gateway.Disconnect(id) })
}

// Handle queues an inbound message.
func (r *Room) Handle(id string, msg *protocol.Message) {
	r.post(func() { r.gateway.Handle(id, msg) })
}

// Info returns the room summary.
func (r *Room) Info(ctx context.Context) (protocol.TableInfo, error) {
	var info protocol.TableInfo
	err := r.do(ctx, func(g *Gateway) { info = g.Info() })
	return info, err
}

// Inspect runs fn on the event loop with access to the gateway.
func (r *Room) Inspect(ctx context.Context, fn func(g *Gateway)) error {
	return r.do(ctx, fn)
}
