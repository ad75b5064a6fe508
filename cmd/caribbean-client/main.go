package main

import (
	"github.com/alecthomas/kong"
	"github.com/lox/caribbeanpoker/internal/client/commands"
)

var CLI struct {
	commands.GlobalFlags `embed:""`

	Join   commands.JoinCommand       `cmd:"" default:"withargs" help:"Connect to a room and play in the terminal"`
	Tables commands.ListTablesCommand `cmd:"" help:"List the rooms a server hosts"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("caribbean-client"),
		kong.Description("Terminal client for Caribbean Poker"),
		kong.UsageOnError(),
	)

	err := ctx.Run(&CLI.GlobalFlags)
	ctx.FatalIfErrorf(err)
}
