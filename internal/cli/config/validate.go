package config

import (
	"fmt"
	"time"

	"github.com/vitale232/WMXDataReviewerTools/internal/milepoint"
)

// editedSinceFormats are the accepted layouts for --edited-since.
var editedSinceFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Validate checks if the configuration is valid for a validation run.
func (c *Config) Validate() error {
	if c.Table == "" {
		return fmt.Errorf("table is required")
	}
	if !c.FullDB {
		if c.User == "" {
			return fmt.Errorf("user is required unless --full-db is set")
		}
		if c.EditedSince == "" {
			return fmt.Errorf("edited-since is required unless --full-db is set")
		}
		if _, err := c.editedSince(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) editedSince() (time.Time, error) {
	for _, layout := range editedSinceFormats {
		if ts, err := time.Parse(layout, c.EditedSince); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid edited-since %q: expected 'YYYY-MM-DD' or 'YYYY-MM-DD HH:MM:SS'", c.EditedSince)
}

// ScopeClause builds the WHERE clause selecting the records this run
// validates. A full-db run takes every active record; otherwise the scope
// narrows to active records edited by the configured user since the
// edited-since timestamp.
func (c *Config) ScopeClause() (string, error) {
	if c.FullDB {
		return milepoint.ActiveRoutesWhereClause, nil
	}
	since, err := c.editedSince()
	if err != nil {
		return "", err
	}
	return milepoint.EditedRoutesWhereClause(since, c.User, c.Domain), nil
}
