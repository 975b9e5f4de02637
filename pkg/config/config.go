// Package config provides configuration loading for the canvas editor
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the editor configuration, loaded from an optional YAML file.
type Config struct {
	History   HistoryConfig   `yaml:"history"`
	Layout    LayoutConfig    `yaml:"layout"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	NodeTypes []NodeTypeEntry `yaml:"node_types" validate:"dive"`
}

// HistoryConfig bounds the undo stack.
type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries" validate:"min=1,max=10000"`
}

// LayoutConfig controls where new, inserted and duplicated nodes are placed.
type LayoutConfig struct {
	StartX          int `yaml:"start_x"`
	StartY          int `yaml:"start_y"`
	NodeSpacing     int `yaml:"node_spacing"      validate:"min=1"`
	DuplicateOffset int `yaml:"duplicate_offset"  validate:"min=0"`
}

// SessionsConfig limits the open canvases kept in memory.
type SessionsConfig struct {
	MaxSessions   int           `yaml:"max_sessions"   validate:"min=1"`
	TTL           time.Duration `yaml:"ttl"            validate:"min=0"`
	SweepSchedule string        `yaml:"sweep_schedule" validate:"required"`
}

// NodeTypeEntry maps a node type to the display name new nodes receive.
type NodeTypeEntry struct {
	Type        string `yaml:"type"         validate:"required"`
	DisplayName string `yaml:"display_name" validate:"required"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		History: HistoryConfig{MaxEntries: 100},
		Layout: LayoutConfig{
			StartX:          420,
			StartY:          220,
			NodeSpacing:     220,
			DuplicateOffset: 20,
		},
		Sessions: SessionsConfig{
			MaxSessions:   100,
			TTL:           2 * time.Hour,
			SweepSchedule: "@every 1m",
		},
		NodeTypes: []NodeTypeEntry{
			{Type: "n8n-nodes-base.manualTrigger", DisplayName: "When clicking 'Test workflow'"},
			{Type: "n8n-nodes-base.scheduleTrigger", DisplayName: "Schedule Trigger"},
			{Type: "n8n-nodes-base.code", DisplayName: "Code"},
			{Type: "n8n-nodes-base.set", DisplayName: "Edit Fields"},
			{Type: "n8n-nodes-base.switch", DisplayName: "Switch"},
			{Type: "n8n-nodes-base.httpRequest", DisplayName: "HTTP Request"},
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// DisplayName returns the configured display name of a node type, falling
// back to the type itself.
func (c Config) DisplayName(nodeType string) string {
	for _, entry := range c.NodeTypes {
		if entry.Type == nodeType {
			return entry.DisplayName
		}
	}

	return nodeType
}
