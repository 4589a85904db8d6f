package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"tsurface/internal/engine/inventory"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
	// fixed width so ts_utc orders lexically
	tsLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store persists inventory snapshots in a single SQLite file.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts while watch mode records.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSnapshot stores snapshot under projectKey and returns it with its
// generated ID and timestamp filled in.
func (s *Store) SaveSnapshot(projectKey string, snapshot Snapshot) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot.ProjectKey = normalizeKey(projectKey)
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}
	if snapshot.Report == nil {
		snapshot.Report = inventory.NewReport()
	}

	document, err := json.Marshal(snapshot.Report)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode snapshot document: %w", err)
	}

	const query = `
INSERT INTO snapshots (
  id, project_key, schema_version, ts_utc, mode, file_count, function_count, external_count, document
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	err = s.withRetry("save snapshot", func() error {
		_, err := s.db.Exec(
			query,
			snapshot.ID,
			snapshot.ProjectKey,
			snapshot.SchemaVersion,
			snapshot.Timestamp.UTC().Format(tsLayout),
			snapshot.Mode,
			snapshot.FileCount,
			snapshot.FunctionCount,
			snapshot.ExternalCount,
			string(document),
		)
		return err
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}

// LatestSnapshot returns the most recent snapshot of projectKey, or nil when
// none has been recorded.
func (s *Store) LatestSnapshot(projectKey string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = selectColumns + ` WHERE project_key = ? ORDER BY ts_utc DESC, created_at_utc DESC, rowid DESC LIMIT 1`

	var rows *sql.Rows
	err := s.withRetry("load latest snapshot", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, normalizeKey(projectKey))
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate snapshot rows: %w", err)
		}
		return nil, nil
	}
	snapshot, err := scanSnapshot(rows)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// LoadSnapshots returns the snapshots of projectKey taken at or after since,
// oldest first. A zero since loads everything.
func (s *Store) LoadSnapshots(projectKey string, since time.Time) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := selectColumns + " WHERE project_key = ?"
	args := []any{normalizeKey(projectKey)}
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(tsLayout))
	}
	query += " ORDER BY ts_utc ASC, rowid ASC"

	var rows *sql.Rows
	err := s.withRetry("load snapshots", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snapshots, nil
}

const selectColumns = `
SELECT
  id, project_key, schema_version, ts_utc, mode, file_count, function_count, external_count, document
FROM snapshots`

func scanSnapshot(rows *sql.Rows) (Snapshot, error) {
	var (
		tsRaw    string
		document string
		snapshot Snapshot
	)
	if err := rows.Scan(
		&snapshot.ID,
		&snapshot.ProjectKey,
		&snapshot.SchemaVersion,
		&tsRaw,
		&snapshot.Mode,
		&snapshot.FileCount,
		&snapshot.FunctionCount,
		&snapshot.ExternalCount,
		&document,
	); err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshot row: %w", err)
	}

	ts, err := time.Parse(tsLayout, tsRaw)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot timestamp %q: %w", tsRaw, err)
	}
	snapshot.Timestamp = ts.UTC()

	report := inventory.NewReport()
	if err := json.Unmarshal([]byte(document), report); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %s: %w", snapshot.ID, err)
	}
	if report.Functions == nil {
		report.Functions = []inventory.FunctionRecord{}
	}
	if report.Externals == nil {
		report.Externals = []string{}
	}
	snapshot.Report = report
	return snapshot, nil
}

func normalizeKey(projectKey string) string {
	projectKey = strings.TrimSpace(projectKey)
	if projectKey == "" {
		return "default"
	}
	return projectKey
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
