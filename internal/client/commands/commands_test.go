package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/caribbeanpoker/internal/protocol"
	"github.com/lox/caribbeanpoker/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigAppliesOverrides(t *testing.T) {
	flags := &GlobalFlags{
		Config:   filepath.Join(t.TempDir(), "missing.hcl"),
		Server:   "ws://poker.example.com:9000",
		Room:     "vip",
		Player:   "bob",
		LogLevel: "debug",
		LogFile:  "bob.log",
	}

	cfg, err := LoadConfig(flags)
	require.NoError(t, err)
	assert.Equal(t, "ws://poker.example.com:9000", cfg.Server.URL)
	assert.Equal(t, "vip", cfg.Server.Room)
	assert.Equal(t, "bob", cfg.Player.Name)
	assert.Equal(t, "debug", cfg.UI.LogLevel)
	assert.Equal(t, "bob.log", cfg.UI.LogFile)
}

func TestLoadConfigRejectsBadOverride(t *testing.T) {
	_, err := LoadConfig(&GlobalFlags{
		Config: filepath.Join(t.TempDir(), "missing.hcl"),
		Server: "gopher://nowhere",
	})
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn")
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = NewLogger(&buf, "loud")
	assert.Error(t, err)
}

func TestPrintTables(t *testing.T) {
	var buf bytes.Buffer
	printTables(&buf, nil)
	assert.Equal(t, "No tables available\n", buf.String())

	buf.Reset()
	printTables(&buf, []protocol.TableInfo{{
		Name:      "main",
		Status:    table.StatusOpen,
		Subgame:   "none",
		SeatCount: 5,
		Occupied:  2,
		Clients:   3,
	}})
	assert.Equal(t, "Available tables:\n  main: 2/5 seats, 3 connected, open (none)\n", buf.String())
}
