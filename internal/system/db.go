package system

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// HistoryEntry is one recorded operation.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	Service   string    `json:"service"`
	Action    string    `json:"action"`
	Result    string    `json:"result"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Results stored in HistoryEntry.Result.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// InitDB opens (creating if needed) the history database at path.
func InitDB(path string) (*sql.DB, error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Safety: fail early if DB is not writable
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func initSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		service TEXT NOT NULL,
		action TEXT NOT NULL,
		result TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS history_service ON history(service);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// RecordHistory appends one entry. A zero CreatedAt is stamped with now.
func RecordHistory(db *sql.DB, e HistoryEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := db.Exec(
		`INSERT INTO history (service, action, result, detail, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.Service, e.Action, e.Result, e.Detail, e.CreatedAt.UTC(),
	)
	return err
}

// ListHistory returns the newest entries first. An empty service lists every
// service; limit <= 0 means no limit.
func ListHistory(db *sql.DB, service string, limit int) ([]HistoryEntry, error) {
	query := `SELECT id, service, action, result, detail, created_at FROM history`
	var args []any
	if service != "" {
		query += ` WHERE service = ?`
		args = append(args, service)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Service, &e.Action, &e.Result, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
