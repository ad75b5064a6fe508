package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/caribbeanpoker/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadServerConfigMissingFile(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServerConfig(), cfg)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())
}

func TestLoadServerConfig(t *testing.T) {
	path := writeConfig(t, `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
  seed      = 42
}

table "high-rollers" {
  seats           = 3
  min_bet         = 5
  max_bet         = 500
  intermission_ms = 2000
  max_clients     = 500

  phase "betting" {
    duration_ms = 30000
  }

  phase "reveal" {
    duration_ms = 1000
  }
}

table "lobby" {}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, int64(42), cfg.Server.Seed)
	require.Len(t, cfg.Tables, 2)

	high := tableNamed(cfg, "high-rollers")
	require.NotNil(t, high)
	assert.Equal(t, 3, high.Seats)
	assert.Equal(t, 5, high.MinBet)
	assert.Equal(t, 500, high.MaxBet)
	assert.Equal(t, 2*time.Second, high.Intermission())
	assert.Equal(t, maxClientsCeiling, high.MaxClients, "max clients is clamped")

	pipeline, err := high.Pipeline()
	require.NoError(t, err)
	betting, ok := pipeline.Lookup(game.PhaseBetting)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, betting.Duration)
	reveal, _ := pipeline.Lookup(game.PhaseReveal)
	assert.Equal(t, time.Second, reveal.Duration)
	ante, _ := pipeline.Lookup(game.PhaseAnte)
	assert.Equal(t, 5*time.Second, ante.Duration)

	lobby := tableNamed(cfg, "lobby")
	require.NotNil(t, lobby)
	def := DefaultTableConfig("lobby")
	assert.Equal(t, def.Seats, lobby.Seats)
	assert.Equal(t, def.MinBet, lobby.MinBet)
	assert.Equal(t, def.MaxBet, lobby.MaxBet)
	assert.Equal(t, def.RollbackBuffer, lobby.RollbackBuffer)
	assert.Equal(t, def.MaxClients, lobby.MaxClients)
	assert.Empty(t, lobby.Phases)

	assert.Nil(t, tableNamed(cfg, "missing"))
}

func TestLoadServerConfigParseError(t *testing.T) {
	path := writeConfig(t, `server { port = }`)
	_, err := LoadServerConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")

	path = writeConfig(t, `server { colour = "red" }`)
	_, err = LoadServerConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL")
}

func TestServerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{name: "defaults"},
		{
			name:    "bad port",
			mutate:  func(c *ServerConfig) { c.Server.Port = 70000 },
			wantErr: "invalid port",
		},
		{
			name:    "no tables",
			mutate:  func(c *ServerConfig) { c.Tables = nil },
			wantErr: "at least one table",
		},
		{
			name: "duplicate table",
			mutate: func(c *ServerConfig) {
				c.Tables = append(c.Tables, DefaultTableConfig("main"))
			},
			wantErr: "configured twice",
		},
		{
			name:    "too many seats",
			mutate:  func(c *ServerConfig) { c.Tables[0].Seats = 11 },
			wantErr: "seats must be between",
		},
		{
			name:    "max below min",
			mutate:  func(c *ServerConfig) { c.Tables[0].MaxBet = 0 },
			wantErr: "max bet",
		},
		{
			name:    "negative intermission",
			mutate:  func(c *ServerConfig) { c.Tables[0].IntermissionMs = -1 },
			wantErr: "intermission",
		},
		{
			name: "unknown phase",
			mutate: func(c *ServerConfig) {
				c.Tables[0].Phases = []PhaseConfig{{Name: "flop", DurationMs: 100}}
			},
			wantErr: "flop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func tableNamed(cfg *ServerConfig, name string) *TableConfig {
	for i := range cfg.Tables {
		if cfg.Tables[i].Name == name {
			return &cfg.Tables[i]
		}
	}
	return nil
}
