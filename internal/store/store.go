// Package store keeps flat tables in an SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/drawlens/internal/flatfile"

	_ "modernc.org/sqlite" // SQLite driver.
)

// rowColumn orders imported rows. Tables created elsewhere may lack it.
const rowColumn = "_row"

// ErrNoTable is returned when a table does not exist.
var ErrNoTable = errors.New("no such table")

// Store wraps SQLite access for flat tables.
type Store struct {
	db *sql.DB
}

// TableInfo describes an imported table.
type TableInfo struct {
	Name       string
	Rows       int
	ImportedAt time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS drawlens_imports (
			name TEXT PRIMARY KEY,
			row_count INTEGER NOT NULL,
			imported_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ImportTable replaces the table named tbl.Name with the rows of tbl. Every
// column is stored as TEXT; absent fields are stored as NULL.
func (s *Store) ImportTable(ctx context.Context, tbl flatfile.Table) (err error) {
	if tbl.Name == "" {
		return fmt.Errorf("import: table has no name")
	}
	if len(tbl.Header) == 0 {
		return fmt.Errorf("import %s: table has no header", tbl.Name)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	name := quoteIdent(tbl.Name)
	cols := make([]string, 0, len(tbl.Header)+1)
	cols = append(cols, quoteIdent(rowColumn)+" INTEGER PRIMARY KEY")
	placeholders := make([]string, 0, len(tbl.Header)+1)
	placeholders = append(placeholders, "?")
	for _, h := range tbl.Header {
		cols = append(cols, quoteIdent(h)+" TEXT")
		placeholders = append(placeholders, "?")
	}
	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(cols, ", "))); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", name, strings.Join(placeholders, ", ")))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	args := make([]any, len(tbl.Header)+1)
	for i, row := range tbl.Rows {
		args[0] = i + 1
		for j, h := range tbl.Header {
			if v, ok := row[h]; ok {
				args[j+1] = v.Text
			} else {
				args[j+1] = nil
			}
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO drawlens_imports (name, row_count, imported_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET row_count = excluded.row_count, imported_at = excluded.imported_at`,
		tbl.Name, tbl.Len(), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	return tx.Commit()
}

// HasTable reports whether a table named name exists.
func (s *Store) HasTable(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReadTable reads every row of the table named name. Column order follows
// the table definition; NULL values are left absent from the row.
func (s *Store) ReadTable(ctx context.Context, name string) (flatfile.Table, error) {
	ok, err := s.HasTable(ctx, name)
	if err != nil {
		return flatfile.Table{}, err
	}
	if !ok {
		return flatfile.Table{}, fmt.Errorf("%w: %s", ErrNoTable, name)
	}

	query := "SELECT * FROM " + quoteIdent(name)
	cols, err := s.columns(ctx, name)
	if err != nil {
		return flatfile.Table{}, err
	}
	for _, c := range cols {
		if c == rowColumn {
			query += " ORDER BY " + quoteIdent(rowColumn)
			break
		}
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return flatfile.Table{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	names, err := rows.Columns()
	if err != nil {
		return flatfile.Table{}, err
	}
	tbl := flatfile.Table{Name: name}
	for _, n := range names {
		if n != rowColumn {
			tbl.Header = append(tbl.Header, n)
		}
	}
	values := make([]sql.NullString, len(names))
	dest := make([]any, len(names))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return flatfile.Table{}, err
		}
		row := make(flatfile.Row, len(names))
		for i, n := range names {
			if n == rowColumn || !values[i].Valid {
				continue
			}
			row[n] = flatfile.NewValue(values[i].String)
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return flatfile.Table{}, err
	}
	return tbl, nil
}

func (s *Store) columns(ctx context.Context, name string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListImports returns the tables written by ImportTable, by name.
func (s *Store) ListImports(ctx context.Context) ([]TableInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, row_count, imported_at FROM drawlens_imports ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []TableInfo
	for rows.Next() {
		var info TableInfo
		var importedAt string
		if err := rows.Scan(&info.Name, &info.Rows, &importedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, importedAt)
		if err != nil {
			return nil, err
		}
		info.ImportedAt = parsed
		result = append(result, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
