package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vitale232/WMXDataReviewerTools/internal/cli/config"
	"github.com/vitale232/WMXDataReviewerTools/internal/validate"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter reviewer.yaml config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing reviewer.yaml")

	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	const path = "reviewer.yaml"

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	starter := config.Config{
		Table:          config.DefaultTable,
		Domain:         config.DefaultDomain,
		MaxCountyOrder: validate.DefaultMaxCountyOrder,
		ReviewerPath:   config.DefaultReviewerFile,
		Workspace: &config.WorkspaceConfig{
			Type: "postgres",
			Host: "localhost",
			Port: 5432,
		},
	}

	data, err := yaml.Marshal(&starter)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
