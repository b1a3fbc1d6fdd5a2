package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitale232/WMXDataReviewerTools/internal/milepoint"
)

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "LRSN_Milepoint_evw", cfg.Table)
	assert.Equal(t, "SVC", cfg.Domain)
	assert.Equal(t, 28, cfg.MaxCountyOrder)
	assert.Equal(t, DefaultReviewerFile, cfg.ReviewerPath)
	assert.False(t, cfg.FullDB)
	require.NotNil(t, cfg.Workspace)
	assert.Equal(t, "sqlite", cfg.Workspace.Type)
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()

	content := `table: Milepoint_Test
user: avitale
edited_since: "2026-08-01"
max_county_order: 12
workspace:
  type: postgres
  host: db.example.com
  port: 5432
  database: roads
  username: reviewer
`
	cfgFile := filepath.Join(t.TempDir(), "reviewer.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0644))

	cfg, err := LoadConfig(cfgFile, nil)
	require.NoError(t, err)

	assert.Equal(t, "Milepoint_Test", cfg.Table)
	assert.Equal(t, "avitale", cfg.User)
	assert.Equal(t, 12, cfg.MaxCountyOrder)
	assert.Equal(t, "postgres", cfg.Workspace.Type)
	assert.Equal(t, "db.example.com", cfg.Workspace.Host)
	assert.Equal(t, 5432, cfg.Workspace.Port)
	assert.Equal(t, cfgFile, GetConfigFileUsed())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	ResetConfig()

	t.Setenv("REVIEWER_USER", "envuser")
	t.Setenv("REVIEWER_JOB_ID", "42")
	t.Setenv("REVIEWER_WORKSPACE__TYPE", "duckdb")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "envuser", cfg.User)
	assert.Equal(t, "42", cfg.JobID)
	assert.Equal(t, "duckdb", cfg.Workspace.Type)
}

func TestLoadConfigFlagsWin(t *testing.T) {
	ResetConfig()

	t.Setenv("REVIEWER_USER", "envuser")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("user", "", "")
	flags.String("reviewer", "", "")
	flags.Int("max-county-order", 0, "")
	require.NoError(t, flags.Parse([]string{
		"--user", "flaguser",
		"--reviewer", "/tmp/results.db",
		"--max-county-order", "30",
	}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "flaguser", cfg.User)
	assert.Equal(t, "/tmp/results.db", cfg.ReviewerPath)
	assert.Equal(t, 30, cfg.MaxCountyOrder)
}

func TestLoadConfigUnsetFlagsIgnored(t *testing.T) {
	ResetConfig()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("table", "", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	// Unchanged flags must not clobber the default with "".
	assert.Equal(t, "LRSN_Milepoint_evw", cfg.Table)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "scoped run",
			cfg:  Config{Table: "T", User: "avitale", EditedSince: "2026-08-01"},
		},
		{
			name: "full db run needs no scope",
			cfg:  Config{Table: "T", FullDB: true},
		},
		{
			name:    "missing table",
			cfg:     Config{},
			wantErr: "table is required",
		},
		{
			name:    "missing user",
			cfg:     Config{Table: "T", EditedSince: "2026-08-01"},
			wantErr: "user is required",
		},
		{
			name:    "missing edited since",
			cfg:     Config{Table: "T", User: "avitale"},
			wantErr: "edited-since is required",
		},
		{
			name:    "bad edited since",
			cfg:     Config{Table: "T", User: "avitale", EditedSince: "August 1st"},
			wantErr: "invalid edited-since",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestScopeClause(t *testing.T) {
	full := Config{Table: "T", FullDB: true}
	clause, err := full.ScopeClause()
	require.NoError(t, err)
	assert.Equal(t, milepoint.ActiveRoutesWhereClause, clause)

	scoped := Config{Table: "T", User: "avitale", EditedSince: "2026-08-01", Domain: "SVC"}
	clause, err = scoped.ScopeClause()
	require.NoError(t, err)
	assert.Contains(t, clause, "EDITED_DATE >= '2026-08-01 00:00:00'")
	assert.Contains(t, clause, "EDITED_BY = 'AVITALE'")
	assert.Contains(t, clause, "EDITED_BY = 'avitale@svc'")
}

func TestAdapterConfig(t *testing.T) {
	cfg := Config{Workspace: &WorkspaceConfig{
		Type: "postgres", Host: "h", Port: 5432, Database: "d", Username: "u",
	}}
	ac := cfg.AdapterConfig()
	assert.Equal(t, "postgres", ac.Type)
	assert.Equal(t, "h", ac.Host)
	assert.Equal(t, 5432, ac.Port)

	// Nil workspace falls back to sqlite.
	assert.Equal(t, "sqlite", (&Config{}).AdapterConfig().Type)
}
