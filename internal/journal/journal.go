// Package journal records playground evaluations in a SQLite database so
// they can be listed later with `exprbridge journal`.
//
// Two drivers are supported: "sqlite" (modernc.org/sqlite, pure Go) and
// "sqlite3" (github.com/mattn/go-sqlite3, cgo). The schema is identical.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	_ "modernc.org/sqlite"          // registers "sqlite"

	"github.com/specialistvlad/exprbridge/internal/diag"
)

// Entry is one evaluated row.
type Entry struct {
	ID         int64
	RequestID  string
	Expression string
	InputNames []string
	Values     []string
	Result     string
	Diagnostic diag.Diagnostic
	CreatedAt  time.Time
}

// Journal is a SQLite-backed evaluation log. Safe for concurrent use.
type Journal struct {
	db        *sql.DB
	closeOnce sync.Once

	insertStmt *sql.Stmt
	recentStmt *sql.Stmt
	pruneStmt  *sql.Stmt
}

// Open opens or creates the journal at path using driver.
func Open(ctx context.Context, driver, path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path cannot be empty")
	}

	var dsn string
	switch driver {
	case "sqlite":
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	case "sqlite3":
		dsn = path + "?_busy_timeout=5000&_journal_mode=WAL"
	default:
		return nil, fmt.Errorf("unsupported journal driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	if err := j.prepareStatements(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) initSchema(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS evaluations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		expression TEXT NOT NULL,
		input_names TEXT NOT NULL,
		input_values TEXT NOT NULL,
		result TEXT NOT NULL,
		diagnostic TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at);
	`)
	return err
}

func (j *Journal) prepareStatements(ctx context.Context) error {
	var err error

	j.insertStmt, err = j.db.PrepareContext(ctx, `
		INSERT INTO evaluations (request_id, expression, input_names, input_values, result, diagnostic, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	j.recentStmt, err = j.db.PrepareContext(ctx, `
		SELECT id, request_id, expression, input_names, input_values, result, diagnostic, created_at
		FROM evaluations
		ORDER BY id DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare recent statement: %w", err)
	}

	j.pruneStmt, err = j.db.PrepareContext(ctx, `DELETE FROM evaluations WHERE created_at < ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}
	return nil
}

// Record appends entries in one transaction. Zero CreatedAt means now.
func (j *Journal) Record(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin journal transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt := tx.StmtContext(ctx, j.insertStmt)
	now := time.Now()
	for _, e := range entries {
		names, err := json.Marshal(e.InputNames)
		if err != nil {
			return err
		}
		values, err := json.Marshal(e.Values)
		if err != nil {
			return err
		}
		d, err := json.Marshal(e.Diagnostic)
		if err != nil {
			return err
		}
		created := e.CreatedAt
		if created.IsZero() {
			created = now
		}
		if _, err := stmt.ExecContext(ctx, e.RequestID, e.Expression, string(names), string(values), e.Result, string(d), created.UnixNano()); err != nil {
			return fmt.Errorf("failed to record journal entry: %w", err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.recentStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                Entry
			names, values, d string
			createdAt        int64
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Expression, &names, &values, &e.Result, &d, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		if err := json.Unmarshal([]byte(names), &e.InputNames); err != nil {
			return nil, fmt.Errorf("journal entry %d: input names: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(values), &e.Values); err != nil {
			return nil, fmt.Errorf("journal entry %d: input values: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(d), &e.Diagnostic); err != nil {
			return nil, fmt.Errorf("journal entry %d: diagnostic: %w", e.ID, err)
		}
		e.CreatedAt = time.Unix(0, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune deletes entries created before cutoff and returns how many were removed.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := j.pruneStmt.ExecContext(ctx, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database. Safe to call more than once.
func (j *Journal) Close() error {
	var err error
	j.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{j.insertStmt, j.recentStmt, j.pruneStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = j.db.Close()
	})
	return err
}
