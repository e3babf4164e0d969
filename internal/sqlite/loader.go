// JSONL loading for startup.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/brightmill/storefront/pkg/catalog"
)

// loadAllJSONL reads each kind's document file from dataDir and inserts the
// records into SQLite. Loading is transactional: either every file loads or
// the database stays empty. Malformed lines are skipped; record kinds
// follow from the file they were read from.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	recordStmt, err := tx.Prepare(
		"INSERT INTO records (record_id, store_id, kind, fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer recordStmt.Close()

	refStmt, err := tx.Prepare(
		"INSERT INTO record_refs (record_id, field, ref_id) VALUES (?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("preparing ref insert: %w", err)
	}
	defer refStmt.Close()

	for _, kind := range catalog.Kinds() {
		def := catalog.MustDef(kind)
		lines, err := readJSONL(jsonlPath(dataDir, def))
		if err != nil {
			return fmt.Errorf("reading %s.jsonl: %w", def.Plural, err)
		}

		for _, line := range lines {
			var rec catalog.Record
			if err := json.Unmarshal(line, &rec); err != nil {
				// Skip lines that do not decode to a record.
				continue
			}
			if rec.ID == "" {
				continue
			}
			rec.Kind = kind

			if err := insertRecord(recordStmt, refStmt, def, rec); err != nil {
				return fmt.Errorf("loading %s %s: %w", def.Kind, rec.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecord writes one loaded record and its reference rows.
func insertRecord(recordStmt, refStmt *sql.Stmt, def catalog.Definition, rec catalog.Record) error {
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("encoding fields: %w", err)
	}

	_, err = recordStmt.Exec(
		rec.ID,
		rec.StoreID,
		string(rec.Kind),
		string(fieldsJSON),
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	for field, refID := range recordRefs(def, rec) {
		if _, err := refStmt.Exec(rec.ID, field, refID); err != nil {
			return err
		}
	}
	return nil
}
