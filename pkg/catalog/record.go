package catalog

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Fields holds the named field values of a record. Values are JSON-native:
// strings, bools, string lists, and decimal strings for prices.
type Fields map[string]any

// String returns the named field as a string, or "" when absent or not a
// string.
func (f Fields) String(name string) string {
	s, _ := f[name].(string)
	return s
}

// Bool returns the named field as a bool, or false when absent.
func (f Fields) Bool(name string) bool {
	b, _ := f[name].(bool)
	return b
}

// Strings returns the named field as a string list. JSON decoding produces
// []any; both representations are accepted.
func (f Fields) Strings(name string) []string {
	switch v := f[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Decimal parses the named field as a decimal. String, json.Number, and
// float64 representations are accepted.
func (f Fields) Decimal(name string) (decimal.Decimal, error) {
	switch v := f[name].(type) {
	case string:
		return decimal.NewFromString(v)
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case nil:
		return decimal.Decimal{}, fmt.Errorf("field %q is empty", name)
	default:
		return decimal.Decimal{}, fmt.Errorf("field %q is not a number", name)
	}
}

// Clone returns a shallow copy of the field map.
func (f Fields) Clone() Fields {
	cp := make(Fields, len(f))
	for k, v := range f {
		cp[k] = v
	}
	return cp
}

// Record is one stored catalog document. StoreID is empty for records of
// KindStore. Kind is carried in memory only; on the wire and in document
// files a record's kind follows from its collection.
type Record struct {
	ID        string
	StoreID   string
	Kind      Kind
	Fields    Fields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reserved document keys that never appear in Fields.
const (
	keyID        = "id"
	keyStoreID   = "storeId"
	keyCreatedAt = "createdAt"
	keyUpdatedAt = "updatedAt"
)

// MarshalJSON flattens the record: metadata keys and field values share one
// JSON object, the shape the REST API and the document files use.
func (r Record) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.Fields)+4)
	for k, v := range r.Fields {
		doc[k] = v
	}
	doc[keyID] = r.ID
	if r.StoreID != "" {
		doc[keyStoreID] = r.StoreID
	}
	doc[keyCreatedAt] = r.CreatedAt.UTC().Format(time.RFC3339)
	doc[keyUpdatedAt] = r.UpdatedAt.UTC().Format(time.RFC3339)
	return json.Marshal(doc)
}

// UnmarshalJSON is the inverse of MarshalJSON. Kind is left unset; the
// owning collection assigns it.
func (r *Record) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	rec := Record{Fields: make(Fields, len(doc))}
	for k, v := range doc {
		switch k {
		case keyID:
			rec.ID, _ = v.(string)
		case keyStoreID:
			rec.StoreID, _ = v.(string)
		case keyCreatedAt, keyUpdatedAt:
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("record %s: %s is not a timestamp string", rec.ID, k)
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return fmt.Errorf("record %s: parsing %s: %w", rec.ID, k, err)
			}
			if k == keyCreatedAt {
				rec.CreatedAt = t
			} else {
				rec.UpdatedAt = t
			}
		default:
			rec.Fields[k] = v
		}
	}

	*r = rec
	return nil
}
