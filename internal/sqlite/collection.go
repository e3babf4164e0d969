package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/brightmill/storefront/pkg/catalog"
)

// Compile-time interface check: collection must implement catalog.Collection.
var _ catalog.Collection = (*collection)(nil)

// collection implements catalog.Collection for one entity kind. Each
// operation hydrates between records table rows and catalog.Record values
// and persists changes to the kind's JSONL file atomically.
type collection struct {
	backend *Backend
	def     catalog.Definition
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Get retrieves a record by ID and hydrates the row to a catalog.Record.
func (c *collection) Get(id string) (catalog.Record, error) {
	db, err := c.backend.handle()
	if err != nil {
		return catalog.Record{}, err
	}
	if id == "" {
		return catalog.Record{}, catalog.ErrInvalidID
	}

	row := db.QueryRow(
		"SELECT record_id, store_id, fields, created_at, updated_at FROM records WHERE record_id = ? AND kind = ?",
		id, string(c.def.Kind),
	)
	rec, err := c.scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return catalog.Record{}, catalog.ErrNotFound
		}
		return catalog.Record{}, fmt.Errorf("getting %s %s: %w", c.def.Kind, id, err)
	}
	return rec, nil
}

// Put persists a record. If id is empty, a UUID v7 is generated and the
// record is created with fresh timestamps. If id is provided, the existing
// record is replaced; its creation time is preserved, its update time
// touched, and catalog.ErrNotFound returned when no such record exists.
// Returns the actual ID used.
func (c *collection) Put(id string, rec catalog.Record) (string, error) {
	db, err := c.backend.handle()
	if err != nil {
		return "", err
	}
	if rec.Fields == nil {
		return "", catalog.ErrInvalidData
	}

	now := time.Now().UTC()
	isCreate := id == ""

	if isCreate {
		id = generateUUID()
		rec.CreatedAt = now
	} else {
		existing, err := c.Get(id)
		if err != nil {
			return "", err
		}
		// Identity and creation time survive updates.
		rec.StoreID = existing.StoreID
		rec.CreatedAt = existing.CreatedAt
	}
	rec.ID = id
	rec.Kind = c.def.Kind
	rec.UpdatedAt = now

	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return "", fmt.Errorf("encoding %s fields: %w", c.def.Kind, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	createdAtStr := rec.CreatedAt.Format(time.RFC3339)
	updatedAtStr := rec.UpdatedAt.Format(time.RFC3339)

	if isCreate {
		_, err = tx.Exec(
			"INSERT INTO records (record_id, store_id, kind, fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			id, rec.StoreID, string(c.def.Kind), string(fieldsJSON), createdAtStr, updatedAtStr,
		)
	} else {
		_, err = tx.Exec(
			"UPDATE records SET fields = ?, updated_at = ? WHERE record_id = ?",
			string(fieldsJSON), updatedAtStr, id,
		)
	}
	if err != nil {
		return "", fmt.Errorf("persisting %s: %w", c.def.Kind, err)
	}

	if err := replaceRefs(tx, c.def, rec); err != nil {
		return "", fmt.Errorf("persisting %s references: %w", c.def.Kind, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing %s: %w", c.def.Kind, err)
	}

	if err := c.persistJSONL(); err != nil {
		return "", fmt.Errorf("persisting %s.jsonl: %w", c.def.Plural, err)
	}

	return id, nil
}

// Delete removes a record and its reference rows.
func (c *collection) Delete(id string) error {
	db, err := c.backend.handle()
	if err != nil {
		return err
	}
	if id == "" {
		return catalog.ErrInvalidID
	}

	var one int
	err = db.QueryRow(
		"SELECT 1 FROM records WHERE record_id = ? AND kind = ?", id, string(c.def.Kind),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return catalog.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking %s existence: %w", c.def.Kind, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM record_refs WHERE record_id = ?", id); err != nil {
		return fmt.Errorf("deleting %s references: %w", c.def.Kind, err)
	}
	if _, err := tx.Exec("DELETE FROM records WHERE record_id = ?", id); err != nil {
		return fmt.Errorf("deleting %s: %w", c.def.Kind, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s deletion: %w", c.def.Kind, err)
	}

	if err := c.persistJSONL(); err != nil {
		return fmt.Errorf("persisting %s.jsonl: %w", c.def.Plural, err)
	}

	return nil
}

// List returns records matching the query, newest first. Field filters
// compare against values inside the JSON document.
func (c *collection) List(q catalog.Query) ([]catalog.Record, error) {
	db, err := c.backend.handle()
	if err != nil {
		return nil, err
	}

	where := []string{"kind = ?"}
	args := []any{string(c.def.Kind)}

	if q.StoreID != "" {
		where = append(where, "store_id = ?")
		args = append(args, q.StoreID)
	}
	for name, value := range q.Fields {
		where = append(where, "json_extract(fields, '$.'||?) = ?")
		args = append(args, name, filterValue(value))
	}

	query := "SELECT record_id, store_id, fields, created_at, updated_at FROM records WHERE " +
		strings.Join(where, " AND ") +
		" ORDER BY created_at DESC, record_id DESC"

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	} else if q.Offset > 0 {
		query += " LIMIT -1"
	}
	if q.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, q.Offset)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.def.Plural, err)
	}
	defer rows.Close()

	var records []catalog.Record
	for rows.Next() {
		rec, err := c.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", c.def.Kind, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", c.def.Plural, err)
	}
	return records, nil
}

// scanRecord hydrates one records table row.
func (c *collection) scanRecord(row rowScanner) (catalog.Record, error) {
	var (
		id, storeID, fieldsJSON string
		createdAt, updatedAt    string
	)
	if err := row.Scan(&id, &storeID, &fieldsJSON, &createdAt, &updatedAt); err != nil {
		return catalog.Record{}, err
	}

	var fields catalog.Fields
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return catalog.Record{}, fmt.Errorf("decoding fields: %w", err)
	}
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return catalog.Record{}, fmt.Errorf("parsing created_at: %w", err)
	}
	updated, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return catalog.Record{}, fmt.Errorf("parsing updated_at: %w", err)
	}

	return catalog.Record{
		ID:        id,
		StoreID:   storeID,
		Kind:      c.def.Kind,
		Fields:    fields,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

// persistJSONL rewrites this kind's JSONL file from the records table.
func (c *collection) persistJSONL() error {
	db, err := c.backend.handle()
	if err != nil {
		return err
	}

	rows, err := db.Query(
		"SELECT record_id, store_id, fields, created_at, updated_at FROM records WHERE kind = ? ORDER BY created_at ASC, record_id ASC",
		string(c.def.Kind),
	)
	if err != nil {
		return fmt.Errorf("querying %s for persist: %w", c.def.Plural, err)
	}
	defer rows.Close()

	var lines []json.RawMessage
	for rows.Next() {
		rec, err := c.scanRecord(rows)
		if err != nil {
			return err
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding %s document: %w", c.def.Kind, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return writeJSONL(jsonlPath(c.backend.dataDir(), c.def), lines)
}

// replaceRefs rewrites the record_refs rows for one record: the implicit
// store ownership reference plus every reference field value.
func replaceRefs(tx *sql.Tx, def catalog.Definition, rec catalog.Record) error {
	if _, err := tx.Exec("DELETE FROM record_refs WHERE record_id = ?", rec.ID); err != nil {
		return err
	}
	for field, refID := range recordRefs(def, rec) {
		if _, err := tx.Exec(
			"INSERT INTO record_refs (record_id, field, ref_id) VALUES (?, ?, ?)",
			rec.ID, field, refID,
		); err != nil {
			return err
		}
	}
	return nil
}

// recordRefs collects the outgoing references of a record as field → id.
func recordRefs(def catalog.Definition, rec catalog.Record) map[string]string {
	refs := make(map[string]string)
	if rec.StoreID != "" {
		refs["storeId"] = rec.StoreID
	}
	for _, f := range def.References() {
		if id := rec.Fields.String(f.Name); id != "" {
			refs[f.Name] = id
		}
	}
	return refs
}

// filterValue normalizes a filter value for comparison against
// json_extract output, which yields integers for JSON booleans.
func filterValue(value any) any {
	if b, ok := value.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return value
}
