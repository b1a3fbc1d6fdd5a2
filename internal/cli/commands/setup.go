package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitale232/WMXDataReviewerTools/internal/adapter"
	"github.com/vitale232/WMXDataReviewerTools/internal/cli/config"
	"github.com/vitale232/WMXDataReviewerTools/internal/reviewer"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	DB     adapter.Adapter
	Store  *reviewer.Store
}

// getConfig returns the loaded configuration, falling back to defaults
// when no config has been loaded (e.g. in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Table:        config.DefaultTable,
		Domain:       config.DefaultDomain,
		ReviewerPath: config.DefaultReviewerFile,
	}
}

// NewCommandContext connects to the workspace and opens the reviewer
// results store. Returns the context and a cleanup function that must be
// called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	db, err := adapter.New(cfg.AdapterConfig())
	if err != nil {
		return nil, nil, err
	}
	if err := db.Connect(cmd.Context(), cfg.AdapterConfig()); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to workspace: %w", err)
	}

	store := reviewer.NewStore(logger)
	if dir := filepath.Dir(cfg.ReviewerPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to create reviewer directory: %w", err)
		}
	}
	if err := store.Open(cfg.ReviewerPath); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		_ = db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = store.Close()
		_ = db.Close()
	}

	return &CommandContext{
		Cfg:    cfg,
		Logger: logger,
		DB:     db,
		Store:  store,
	}, cleanup, nil
}

// NewRun resolves the reviewer session for this run and records its start.
// Results are filed under "Session {session_id} : {job_id}".
func (c *CommandContext) NewRun(scope string) (*reviewer.Run, *reviewer.RunSink, error) {
	user := c.Cfg.User
	if user == "" {
		user = "reviewer"
	}
	jobID := c.Cfg.JobID
	if jobID == "" {
		jobID = time.Now().UTC().Format("20060102T150405")
	}

	sess, err := c.Store.EnsureSession(user, jobID)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Info("using reviewer session", "session", sess.Name)

	run, err := c.Store.CreateRun(sess.SessionID, scope)
	if err != nil {
		return nil, nil, err
	}

	return run, c.Store.Sink(run.ID, c.Cfg.Table), nil
}
