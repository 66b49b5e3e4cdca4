package inkwell

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested index row does not exist.
var ErrNotFound = sql.ErrNoRows

// PageRecord is one row of the build index: a source document and the
// output page it produced in the last successful build.
type PageRecord struct {
	Source string // content-relative source path, primary key
	Hash   string // content hash of the source file
	Slug   string
	Title  string
	Date   string // pubDate as written in front matter
	Output string // output-relative path of the rendered page
}

// Index wraps a SQLite database tracking what the last build produced. It
// lets watch mode skip no-op rebuilds and lets builds prune output pages
// whose sources were deleted, without wiping the output directory.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (or creates) the build index at path, ensures the parent
// directory exists, and runs schema setup.
func OpenIndex(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the preview server read the index while a rebuild writes it;
	// the busy timeout makes writers wait instead of failing on SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	ix := &Index{db: db}
	if err := ix.ensureSchema(); err != nil {
		return nil, err
	}
	return ix, nil
}

// Close closes the underlying database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) ensureSchema() error {
	_, err := ix.db.Exec(`
CREATE TABLE IF NOT EXISTS pages (
    source TEXT PRIMARY KEY,
    hash   TEXT NOT NULL,
    slug   TEXT NOT NULL,
    title  TEXT NOT NULL,
    date   TEXT NOT NULL,
    output TEXT NOT NULL
);
`)
	return err
}

// Upsert records (or refreshes) the index row for a source document.
func (ix *Index) Upsert(r PageRecord) error {
	_, err := ix.db.Exec(
		`INSERT OR REPLACE INTO pages (source, hash, slug, title, date, output) VALUES (?, ?, ?, ?, ?, ?)`,
		r.Source, r.Hash, r.Slug, r.Title, r.Date, r.Output)
	return err
}

// Get returns the index row for a source path, or ErrNotFound.
func (ix *Index) Get(source string) (PageRecord, error) {
	r := PageRecord{Source: source}
	err := ix.db.QueryRow(
		`SELECT hash, slug, title, date, output FROM pages WHERE source = ?`, source).
		Scan(&r.Hash, &r.Slug, &r.Title, &r.Date, &r.Output)
	if err != nil {
		return PageRecord{}, err
	}
	return r, nil
}

// List returns every index row ordered by source path.
func (ix *Index) List() ([]PageRecord, error) {
	rows, err := ix.db.Query(`SELECT source, hash, slug, title, date, output FROM pages ORDER BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PageRecord
	for rows.Next() {
		var r PageRecord
		if err := rows.Scan(&r.Source, &r.Hash, &r.Slug, &r.Title, &r.Date, &r.Output); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Delete removes the index row for a source path.
func (ix *Index) Delete(source string) error {
	_, err := ix.db.Exec(`DELETE FROM pages WHERE source = ?`, source)
	return err
}
