package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/caribbeanpoker/internal/game"
	"github.com/lox/caribbeanpoker/internal/table"
)

const (
	defaultMaxClients = 50
	maxClientsCeiling = 100
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	// Seed makes dealer seeds reproducible. Zero picks random seeds.
	Seed int64 `hcl:"seed,optional"`
}

// TableConfig defines one room hosting a Caribbean Poker table
type TableConfig struct {
	Name           string        `hcl:"name,label"`
	Seats          int           `hcl:"seats,optional"`
	MinBet         int           `hcl:"min_bet,optional"`
	MaxBet         int           `hcl:"max_bet,optional"`
	RollbackBuffer int           `hcl:"rollback_buffer,optional"`
	IntermissionMs int           `hcl:"intermission_ms,optional"`
	MaxClients     int           `hcl:"max_clients,optional"`
	Phases         []PhaseConfig `hcl:"phase,block"`
}

// PhaseConfig overrides the duration of one phase
type PhaseConfig struct {
	Name       string `hcl:"name,label"`
	DurationMs int    `hcl:"duration_ms"`
}

// DefaultTableConfig returns the standard table
func DefaultTableConfig(name string) TableConfig {
	return TableConfig{
		Name:           name,
		Seats:          table.DefaultSeatCount,
		MinBet:         game.DefaultMinBet,
		MaxBet:         game.DefaultMaxBet,
		RollbackBuffer: table.DefaultHistorySize,
		IntermissionMs: int(game.DefaultIntermission / time.Millisecond),
		MaxClients:     defaultMaxClients,
	}
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Tables: []TableConfig{DefaultTableConfig("main")},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if len(c.Tables) == 0 {
		c.Tables = []TableConfig{DefaultTableConfig("main")}
	}

	for i := range c.Tables {
		t := &c.Tables[i]
		def := DefaultTableConfig(t.Name)
		if t.Seats == 0 {
			t.Seats = def.Seats
		}
		if t.MinBet == 0 {
			t.MinBet = def.MinBet
		}
		if t.MaxBet == 0 {
			t.MaxBet = def.MaxBet
		}
		if t.RollbackBuffer == 0 {
			t.RollbackBuffer = def.RollbackBuffer
		}
		if t.IntermissionMs == 0 {
			t.IntermissionMs = def.IntermissionMs
		}
		if t.MaxClients == 0 {
			t.MaxClients = def.MaxClients
		}
		t.MaxClients = max(1, min(maxClientsCeiling, t.MaxClients))
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	seen := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if t.Name == "" {
			return fmt.Errorf("table name must not be empty")
		}
		if seen[t.Name] {
			return fmt.Errorf("table %s: configured twice", t.Name)
		}
		seen[t.Name] = true

		if t.Seats < 1 || t.Seats > 10 {
			return fmt.Errorf("table %s: seats must be between 1 and 10", t.Name)
		}
		if t.MinBet < 1 {
			return fmt.Errorf("table %s: min bet must be positive", t.Name)
		}
		if t.MaxBet < t.MinBet {
			return fmt.Errorf("table %s: max bet must be at least min bet", t.Name)
		}
		if t.RollbackBuffer < 1 {
			return fmt.Errorf("table %s: rollback buffer must be positive", t.Name)
		}
		if t.IntermissionMs < 0 {
			return fmt.Errorf("table %s: intermission must not be negative", t.Name)
		}
		if _, err := t.Pipeline(); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Pipeline returns the default phase pipeline with this table's overrides.
func (t TableConfig) Pipeline() (game.Pipeline, error) {
	p := game.DefaultPipeline()
	for _, override := range t.Phases {
		var err error
		p, err = p.WithDuration(game.Phase(override.Name), time.Duration(override.DurationMs)*time.Millisecond)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Intermission returns the pause between rounds.
func (t TableConfig) Intermission() time.Duration {
	return time.Duration(t.IntermissionMs) * time.Millisecond
}
