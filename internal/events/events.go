// Package events publishes catalog change notifications. The service emits
// one event per successful mutation; sinks decide where it goes (log line,
// Kafka topic, nothing).
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brightmill/storefront/pkg/catalog"
)

// Op identifies what happened to a record.
type Op string

const (
	OpCreated Op = "record.created"
	OpUpdated Op = "record.updated"
	OpDeleted Op = "record.deleted"
)

// Event describes one catalog mutation.
type Event struct {
	ID       string       `json:"id"`
	Op       Op           `json:"op"`
	Kind     catalog.Kind `json:"kind"`
	StoreID  string       `json:"storeId,omitempty"`
	RecordID string       `json:"recordId"`
	At       time.Time    `json:"at"`
}

// New builds an event for one mutation of rec.
func New(op Op, rec catalog.Record) Event {
	return Event{
		ID:       uuid.NewString(),
		Op:       op,
		Kind:     rec.Kind,
		StoreID:  rec.StoreID,
		RecordID: rec.ID,
		At:       time.Now().UTC(),
	}
}

// Sink receives catalog events. Publish must be safe for concurrent use.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
