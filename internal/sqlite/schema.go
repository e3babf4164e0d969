// Package sqlite implements the catalog storage backend. SQLite is the
// query engine; per-kind JSONL document files are the source of truth and
// are reloaded on every Attach.
package sqlite

// Schema DDL. The records table holds every document; record_refs mirrors
// reference fields (including implicit store ownership) so deletion guards
// can run as a single reverse lookup.
const (
	createRecords = `CREATE TABLE records (
    record_id TEXT PRIMARY KEY,
    store_id TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL,
    fields TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createRecordRefs = `CREATE TABLE record_refs (
    record_id TEXT NOT NULL,
    field TEXT NOT NULL,
    ref_id TEXT NOT NULL,
    PRIMARY KEY (record_id, field),
    FOREIGN KEY (record_id) REFERENCES records(record_id)
);`
)

// Index DDL for scope listings and reverse reference lookups.
const (
	idxRecordsKindStore = `CREATE INDEX idx_records_kind_store ON records(kind, store_id);`
	idxRecordsCreated   = `CREATE INDEX idx_records_created ON records(created_at);`
	idxRecordRefsRef    = `CREATE INDEX idx_record_refs_ref ON record_refs(ref_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createRecords,
	createRecordRefs,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxRecordsKindStore,
	idxRecordsCreated,
	idxRecordRefsRef,
}
