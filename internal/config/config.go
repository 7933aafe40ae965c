// Package config holds the application configuration: a YAML file with
// environment variable expansion, validated with ozzo-validation.
package config

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Board  BoardConfig       `yaml:"board"`
	Agent  AgentConfig       `yaml:"agent"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Board.Validate(); err != nil {
		return err
	}
	return c.Agent.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// SQLiteConfig holds the path of the board database.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// BoardConfig names the board a process works against.
type BoardConfig struct {
	ID string `yaml:"id"`
}

// Validate validates the board configuration.
func (c *BoardConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ID, validation.Required),
	)
}

// AgentConfig holds settings for the batch tool runner.
type AgentConfig struct {
	// Actor is the author recorded on objects the agent creates.
	Actor string `yaml:"actor"`
}

// Validate validates the agent configuration.
func (c *AgentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Actor, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		SQLite: SQLiteConfig{
			Path: "./easel.db",
		},
		Board: BoardConfig{
			ID: "default",
		},
		Agent: AgentConfig{
			Actor: "assistant",
		},
	}
}
