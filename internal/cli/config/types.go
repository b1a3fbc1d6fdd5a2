// Package config provides configuration management for the reviewer CLI.
//
// Configuration is layered: defaults, then an optional reviewer.yaml file,
// then REVIEWER_-prefixed environment variables, then CLI flags.
package config

import (
	"github.com/vitale232/WMXDataReviewerTools/internal/adapter"
	"github.com/vitale232/WMXDataReviewerTools/internal/milepoint"
	"github.com/vitale232/WMXDataReviewerTools/internal/validate"
)

// WorkspaceConfig describes the feature store connection holding the
// Milepoint table.
type WorkspaceConfig struct {
	Type     string `koanf:"type" yaml:"type"`
	Path     string `koanf:"path" yaml:"path,omitempty"`
	Host     string `koanf:"host" yaml:"host,omitempty"`
	Port     int    `koanf:"port" yaml:"port,omitempty"`
	Database string `koanf:"database" yaml:"database,omitempty"`
	Username string `koanf:"username" yaml:"username,omitempty"`
	Password string `koanf:"password" yaml:"password,omitempty"`
	Schema   string `koanf:"schema" yaml:"schema,omitempty"`
}

// Config holds all CLI configuration options.
type Config struct {
	Table          string           `koanf:"table" yaml:"table"`
	Domain         string           `koanf:"domain" yaml:"domain"`
	User           string           `koanf:"user" yaml:"user,omitempty"`
	JobID          string           `koanf:"job_id" yaml:"job_id,omitempty"`
	EditedSince    string           `koanf:"edited_since" yaml:"edited_since,omitempty"`
	FullDB         bool             `koanf:"full_db" yaml:"full_db"`
	MaxCountyOrder int              `koanf:"max_county_order" yaml:"max_county_order"`
	ReviewerPath   string           `koanf:"reviewer_path" yaml:"reviewer_path"`
	Verbose        bool             `koanf:"verbose" yaml:"-"`
	Workspace      *WorkspaceConfig `koanf:"workspace" yaml:"workspace,omitempty"`
}

// Default configuration values.
const (
	DefaultReviewerFile = ".reviewer/reviewer.db"
	DefaultTable        = milepoint.DefaultTable
	DefaultDomain       = milepoint.DefaultDomain
)

// AdapterConfig converts the workspace section into an adapter config.
func (c *Config) AdapterConfig() adapter.Config {
	w := c.Workspace
	if w == nil {
		w = &WorkspaceConfig{Type: "sqlite"}
	}
	return adapter.Config{
		Type:     w.Type,
		Path:     w.Path,
		Host:     w.Host,
		Port:     w.Port,
		Database: w.Database,
		Username: w.Username,
		Password: w.Password,
		Schema:   w.Schema,
	}
}

// Checker builds the attribute rule checker from the configured county
// order bound.
func (c *Config) Checker() validate.Checker {
	return validate.Checker{MaxCountyOrder: c.MaxCountyOrder}
}
