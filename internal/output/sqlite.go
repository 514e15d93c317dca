package output

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// manifestTable holds the manifest as key/value rows.
const manifestTable = "manifest"

// WriteSQLite writes every extract and the manifest into a SQLite file at
// path, replacing any existing file. The database is built under a
// temporary name and renamed into place only once it is complete.
func WriteSQLite(path string, extracts []Extract, manifest any) error {
	tmp, err := BuildSQLite(path, extracts, manifest)
	if err != nil {
		return err
	}
	return CommitSQLite(tmp, path)
}

// BuildSQLite writes the database to a temporary file next to path and
// returns its name. The caller moves it into place with CommitSQLite or
// removes it.
func BuildSQLite(path string, extracts []Extract, manifest any) (string, error) {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.New().String())
	if err := writeSQLiteFile(tmp, extracts, manifest); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return tmp, nil
}

// CommitSQLite renames a database built by BuildSQLite to path.
func CommitSQLite(tmp, path string) error {
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move sqlite file into place: %w", err)
	}
	return nil
}

func writeSQLiteFile(path string, extracts []Extract, manifest any) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite file: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin sqlite transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range extracts {
		if err := writeTable(tx, e); err != nil {
			return fmt.Errorf("failed to write table %s: %w", e.Name, err)
		}
	}

	if manifest != nil {
		if err := writeManifestTable(tx, manifest); err != nil {
			return fmt.Errorf("failed to write manifest table: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sqlite file: %w", err)
	}
	return nil
}

func writeTable(tx *sql.Tx, e Extract) error {
	defs := make([]string, 0, len(e.Columns))
	quoted := make([]string, 0, len(e.Columns))
	for _, c := range e.Columns {
		t := e.Types[c]
		if t == "" {
			t = "TEXT"
		}
		defs = append(defs, fmt.Sprintf("%q %s", c, t))
		quoted = append(quoted, fmt.Sprintf("%q", c))
	}

	if _, err := tx.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, e.Name)); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf(`CREATE TABLE %q (%s)`, e.Name, strings.Join(defs, ","))); err != nil {
		return err
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(e.Columns)), ",")
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`, e.Name, strings.Join(quoted, ","), ph))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range e.Rows {
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}

	for _, col := range e.Indexes {
		idx := fmt.Sprintf("idx_%s_%s", e.Name, strings.ToLower(col))
		if _, err := tx.Exec(fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %q ON %q(%q)`, idx, e.Name, col)); err != nil {
			return err
		}
	}
	return nil
}

// writeManifestTable stores the manifest's JSON fields as key/value rows so
// the staging database is self-describing.
func writeManifestTable(tx *sql.Tx, manifest any) error {
	data, err := json.Marshal(manifest)
	if err != nil {
		return err
	}
	// Numbers stay as their JSON text so large counts are not rewritten
	// in exponent form.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return err
	}

	if _, err := tx.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, manifestTable)); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf(`CREATE TABLE %q ("key" TEXT PRIMARY KEY, "value" TEXT)`, manifestTable)); err != nil {
		return err
	}
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %q ("key", "value") VALUES (?, ?)`, manifestTable))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for k, v := range fields {
		if _, err := stmt.Exec(k, fmt.Sprint(v)); err != nil {
			return err
		}
	}
	return nil
}
