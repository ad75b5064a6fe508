package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/caribbeanpoker/internal/tui"
)

// JoinCommand connects to a room and starts the TUI
type JoinCommand struct {
	Seat int `long:"seat" help:"Seat to claim once connected (1-based, 0 to spectate)"`
}

func (cmd *JoinCommand) Run(flags *GlobalFlags) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsClient, cfg, logger, cleanup, err := SetupClientWithFileLogging(ctx, flags)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Starting Caribbean Poker client",
		"server", cfg.Server.URL,
		"room", cfg.Server.Room,
		"player", cfg.Player.Name)

	runErr := make(chan error, 1)
	go func() { runErr <- wsClient.Run(ctx) }()

	model := tui.NewTUIModel(tui.NewClientController(wsClient), logger, tui.Options{
		PlayerName:       cfg.Player.Name,
		DefaultBet:       cfg.Player.DefaultBet,
		FeedbackDuration: cfg.FeedbackDuration(),
		AutoJoinSeat:     cmd.Seat,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	cancel()
	if err := <-runErr; err != nil {
		logger.Warn("Connection ended with error", "error", err)
	}
	return nil
}
