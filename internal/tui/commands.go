package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/caribbeanpoker/internal/game"
)

// CommandKind names a typed command.
type CommandKind string

const (
	CmdNone   CommandKind = ""
	CmdJoin   CommandKind = "join"
	CmdLeave  CommandKind = "leave"
	CmdStart  CommandKind = "start"
	CmdAction CommandKind = "action"
	CmdSync   CommandKind = "sync"
	CmdHelp   CommandKind = "help"
	CmdQuit   CommandKind = "quit"
)

// Command is a parsed line of input. Seat is zero-based; players type
// one-based seat numbers.
type Command struct {
	Kind   CommandKind
	Seat   int
	Action game.Action
	Amount *float64
}

// HelpText lists the commands the input accepts.
const HelpText = "join <seat> • leave • start • bet [n] • raise [n] • call • fold • insurance <n> • sync • quit"

// ParseCommand turns input into a Command. Bet and raise fall back to
// defaultBet when no amount is given.
func ParseCommand(input string, defaultBet int) (Command, error) {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return Command{Kind: CmdNone}, nil
	}
	name, args := parts[0], parts[1:]

	switch name {
	case "join", "sit":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("usage: join <seat>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return Command{}, fmt.Errorf("invalid seat %q", args[0])
		}
		return Command{Kind: CmdJoin, Seat: n - 1}, nil
	case "leave", "stand":
		return Command{Kind: CmdLeave}, nil
	case "start":
		return Command{Kind: CmdStart}, nil
	case "sync":
		return Command{Kind: CmdSync}, nil
	case "help", "?":
		return Command{Kind: CmdHelp}, nil
	case "quit", "exit", "q":
		return Command{Kind: CmdQuit}, nil
	}

	action, ok := game.ParseAction(name)
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q", name)
	}
	cmd := Command{Kind: CmdAction, Action: action}

	switch action {
	case game.ActionBet, game.ActionRaise, game.ActionInsurance:
		if len(args) == 0 {
			if action == game.ActionInsurance {
				return Command{}, fmt.Errorf("usage: insurance <amount>")
			}
			amount := float64(defaultBet)
			cmd.Amount = &amount
			return cmd, nil
		}
		amount, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return Command{}, fmt.Errorf("invalid amount %q", args[0])
		}
		cmd.Amount = &amount
	}
	return cmd, nil
}
