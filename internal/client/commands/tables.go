package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lox/caribbeanpoker/internal/client"
	"github.com/lox/caribbeanpoker/internal/protocol"
)

// ListTablesCommand lists the rooms a server hosts
type ListTablesCommand struct{}

func (cmd *ListTablesCommand) Run(flags *GlobalFlags) error {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout())
	defer cancel()

	tables, err := client.FetchTables(ctx, cfg.Server.URL)
	if err != nil {
		return err
	}

	printTables(os.Stdout, tables)
	return nil
}

func printTables(w io.Writer, tables []protocol.TableInfo) {
	if len(tables) == 0 {
		fmt.Fprintln(w, "No tables available")
		return
	}
	fmt.Fprintln(w, "Available tables:")
	for _, t := range tables {
		fmt.Fprintf(w, "  %s: %d/%d seats, %d connected, %s (%s)\n",
			t.Name, t.Occupied, t.SeatCount, t.Clients, t.Status, t.Subgame)
	}
}
