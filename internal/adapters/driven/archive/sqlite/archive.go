// Package sqlite persists question store snapshots in a SQLite
// database. The archive is snapshot-oriented like the JSON file
// backend; Save replaces the table contents in one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"qbank/internal/adapters/driven/archive/sqlite/migrations"
	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/logger"
)

// DefaultFileName is the database file name under the app home.
const DefaultFileName = "questions.db"

const nextIDKey = "next_id"

// Archive stores snapshots in SQLite.
type Archive struct {
	db   *sql.DB
	path string
}

var _ driven.QuestionArchive = (*Archive)(nil)

// New opens (or creates) the archive database at path. If path is
// empty, defaults to ~/.qbank/questions.db.
func New(path string) (*Archive, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".qbank", DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &Archive{db: db, path: path}
	if err := a.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Path returns the database file path.
func (a *Archive) Path() string {
	return a.path
}

func (a *Archive) migrate(fsys embed.FS) error {
	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := a.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := a.db.Exec(string(content)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := a.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		logger.Debug("applied migration %s", name)
	}
	return nil
}

// Save replaces the archive contents with the snapshot in one
// transaction.
func (a *Archive) Save(ctx context.Context, snap driven.Snapshot) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM questions"); err != nil {
		return fmt.Errorf("clearing questions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions (
			id, question, options, correct_answer, note,
			question_hash, options_hash, combined_hash,
			source, imported, batch_id, image_path,
			superseded, superseded_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, q := range snap.Questions {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("encoding options for question %d: %w", q.ID, err)
		}

		var updatedAt any
		if !q.UpdatedAt.IsZero() {
			updatedAt = q.UpdatedAt
		}

		_, err = stmt.ExecContext(ctx,
			q.ID, q.Text, string(opts), q.Answer, q.Note,
			q.TextFP, q.OptionsFP, q.CombinedFP,
			q.Source, q.Imported, q.BatchID, q.ImageRef,
			q.Superseded, q.SupersededBy, q.CreatedAt, updatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting question %d: %w", q.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO archive_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, nextIDKey, strconv.FormatInt(snap.NextID, 10))
	if err != nil {
		return fmt.Errorf("recording next id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}

	logger.Debug("saved %d questions to %s", len(snap.Questions), a.path)
	return nil
}

// Load reads the full snapshot. An empty database yields an empty
// snapshot.
func (a *Archive) Load(ctx context.Context) (driven.Snapshot, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, question, options, correct_answer, note,
		       question_hash, options_hash, combined_hash,
		       source, imported, batch_id, image_path,
		       superseded, superseded_by, created_at, updated_at
		FROM questions ORDER BY id
	`)
	if err != nil {
		return driven.Snapshot{}, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	var snap driven.Snapshot
	for rows.Next() {
		var q domain.Question
		var opts string
		var updatedAt sql.NullTime

		err := rows.Scan(
			&q.ID, &q.Text, &opts, &q.Answer, &q.Note,
			&q.TextFP, &q.OptionsFP, &q.CombinedFP,
			&q.Source, &q.Imported, &q.BatchID, &q.ImageRef,
			&q.Superseded, &q.SupersededBy, &q.CreatedAt, &updatedAt,
		)
		if err != nil {
			return driven.Snapshot{}, fmt.Errorf("scanning question: %w", err)
		}
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return driven.Snapshot{}, fmt.Errorf("decoding options for question %d: %w", q.ID, err)
		}
		if updatedAt.Valid {
			q.UpdatedAt = updatedAt.Time
		}
		snap.Questions = append(snap.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return driven.Snapshot{}, fmt.Errorf("reading questions: %w", err)
	}

	snap.NextID, err = a.loadNextID(ctx)
	if err != nil {
		return driven.Snapshot{}, err
	}
	for _, q := range snap.Questions {
		if q.ID >= snap.NextID {
			snap.NextID = q.ID + 1
		}
	}
	return snap, nil
}

func (a *Archive) loadNextID(ctx context.Context) (int64, error) {
	var value string
	row := a.db.QueryRowContext(ctx, "SELECT value FROM archive_meta WHERE key = ?", nextIDKey)
	switch err := row.Scan(&value); {
	case err == sql.ErrNoRows:
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("reading next id: %w", err)
	}

	next, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing next id %q: %w", value, err)
	}
	return next, nil
}
