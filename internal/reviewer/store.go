// Package reviewer persists validation results into a reviewer workspace
// backed by SQLite. Each run of the checks is recorded against a reviewer
// session so analysts can pick up the flagged records later.
package reviewer

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RunStatus describes the lifecycle state of a validation run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Session is a reviewer session that validation results are filed under.
type Session struct {
	SessionID int64
	Username  string
	JobID     string
	Name      string
	CreatedAt time.Time
}

// Run records a single execution of the validation checks.
type Run struct {
	ID          string
	SessionID   int64
	Scope       string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// Result is one check outcome written to the reviewer workspace.
type Result struct {
	ID          string
	RunID       string
	OriginTable string
	Description string
	WhereClause string
	RecordCount int
	WrittenAt   time.Time
}

// NoSessionError indicates that no reviewer session exists for the
// given user and job combination.
type NoSessionError struct {
	Username string
	JobID    string
}

func (e *NoSessionError) Error() string {
	return fmt.Sprintf("no reviewer session for user %q and job %q", e.Username, e.JobID)
}

// Store is a SQLite-backed reviewer workspace.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewStore creates a reviewer store. The store must be opened before use.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger}
}

// Open opens a connection to the reviewer database.
// Use ":memory:" for an in-memory database.
func (s *Store) Open(path string) error {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open reviewer database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping reviewer database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("reviewer store opened", "path", path)
	return nil
}

// Close closes the reviewer database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SessionName formats the display name for a reviewer session.
func SessionName(sessionID int64, jobID string) string {
	return fmt.Sprintf("Session %d : %s", sessionID, jobID)
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// GetSession looks up the reviewer session for a user and job. Usernames
// in the workspace are not stored with consistent casing, so the lookup
// retries with upper and lower cased variants before giving up.
func (s *Store) GetSession(username, jobID string) (*Session, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	candidates := []string{username}
	if upper := strings.ToUpper(username); upper != username {
		candidates = append(candidates, upper)
	}
	if lower := strings.ToLower(username); lower != username {
		candidates = append(candidates, lower)
	}

	for _, candidate := range candidates {
		sess := &Session{}
		err := s.db.QueryRow(
			`SELECT session_id, username, job_id, session_name, created_at
			 FROM sessions WHERE username = ? AND job_id = ?`,
			candidate, jobID,
		).Scan(&sess.SessionID, &sess.Username, &sess.JobID, &sess.Name, &sess.CreatedAt)

		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
		return sess, nil
	}

	return nil, &NoSessionError{Username: username, JobID: jobID}
}

// EnsureSession returns the session for a user and job, creating it when
// none exists yet.
func (s *Store) EnsureSession(username, jobID string) (*Session, error) {
	sess, err := s.GetSession(username, jobID)
	if err == nil {
		return sess, nil
	}
	var noSess *NoSessionError
	if !errors.As(err, &noSess) {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.Exec(
		`INSERT INTO sessions (username, job_id, session_name, created_at) VALUES (?, ?, '', ?)`,
		username, jobID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read session id: %w", err)
	}

	name := SessionName(id, jobID)
	if _, err := tx.Exec(`UPDATE sessions SET session_name = ? WHERE session_id = ?`, name, id); err != nil {
		return nil, fmt.Errorf("failed to name session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("created reviewer session", "session_id", id, "name", name)
	return &Session{SessionID: id, Username: username, JobID: jobID, Name: name, CreatedAt: now}, nil
}

// CreateRun records the start of a validation run against a session.
func (s *Store) CreateRun(sessionID int64, scope string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:        generateID(),
		SessionID: sessionID,
		Scope:     scope,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, session_id, scope, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.SessionID, run.Scope, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// CompleteRun marks a run as finished with the given status.
func (s *Store) CompleteRun(id string, status RunStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	result, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		status, now, errorPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{}
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := s.db.QueryRow(
		`SELECT id, session_id, scope, status, started_at, completed_at, error FROM runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.SessionID, &run.Scope, &run.Status, &run.StartedAt, &completedAt, &errMsg)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}

	return run, nil
}

// WriteResult files a check outcome under a run.
func (s *Store) WriteResult(runID, originTable, description, whereClause string, recordCount int) (*Result, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	result := &Result{
		ID:          generateID(),
		RunID:       runID,
		OriginTable: originTable,
		Description: description,
		WhereClause: whereClause,
		RecordCount: recordCount,
		WrittenAt:   time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO results (id, run_id, origin_table, check_description, where_clause, record_count, written_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.RunID, result.OriginTable, result.Description, result.WhereClause, result.RecordCount, result.WrittenAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to write result: %w", err)
	}

	return result, nil
}

// ListResults retrieves all results for a run in write order.
func (s *Store) ListResults(runID string) ([]*Result, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, origin_table, check_description, where_clause, record_count, written_at
		 FROM results WHERE run_id = ? ORDER BY rowid`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		r := &Result{}
		if err := rows.Scan(&r.ID, &r.RunID, &r.OriginTable, &r.Description, &r.WhereClause, &r.RecordCount, &r.WrittenAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// RunSink writes check outcomes for one run and origin table.
type RunSink struct {
	store       *Store
	runID       string
	originTable string
}

// Sink returns a sink that files results under the given run.
func (s *Store) Sink(runID, originTable string) *RunSink {
	return &RunSink{store: s, runID: runID, originTable: originTable}
}

// Write records a single check outcome.
func (rs *RunSink) Write(description, whereClause string, recordCount int) error {
	_, err := rs.store.WriteResult(rs.runID, rs.originTable, description, whereClause, recordCount)
	return err
}
