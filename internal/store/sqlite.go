package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps tabs in a local sqlite database with the same row
// semantics as the spreadsheet. Used for dry runs and tests; nothing in the
// pipeline can tell the two stores apart.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initializes) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS rows (
			tab   TEXT    NOT NULL,
			pos   INTEGER NOT NULL,
			cells TEXT    NOT NULL,
			PRIMARY KEY (tab, pos)
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// ReadRows returns a tab's rows in insertion order.
func (s *SQLiteStore) ReadRows(ctx context.Context, tab string) ([][]string, error) {
	result, err := s.db.QueryContext(ctx, `SELECT cells FROM rows WHERE tab = ? ORDER BY pos`, tab)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", tab, err)
	}
	defer result.Close()

	var rows [][]string
	for result.Next() {
		var cells string
		if err := result.Scan(&cells); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", tab, err)
		}
		var row []string
		if err := json.Unmarshal([]byte(cells), &row); err != nil {
			return nil, fmt.Errorf("decoding %s row: %w", tab, err)
		}
		rows = append(rows, row)
	}
	return rows, result.Err()
}

// AppendRows appends rows after the tab's existing data in one transaction.
func (s *SQLiteStore) AppendRows(ctx context.Context, tab string, rows [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(pos), -1) + 1 FROM rows WHERE tab = ?`, tab).Scan(&next)
	if err != nil {
		return fmt.Errorf("finding append position: %w", err)
	}

	for i, row := range rows {
		cells, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encoding row: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO rows (tab, pos, cells) VALUES (?, ?, ?)`, tab, next+i, string(cells)); err != nil {
			return fmt.Errorf("appending to %s: %w", tab, err)
		}
	}

	return tx.Commit()
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
