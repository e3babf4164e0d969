// Package logx annotates context-bound pslog loggers with catalog
// identifiers.
package logx

import (
	"context"

	"pkt.systems/pslog"

	"github.com/brightmill/storefront/pkg/catalog"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithStore annotates the logger with the store id if present.
func WithStore(ctx context.Context, storeID string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if storeID != "" {
		log = log.With("store", storeID)
	}
	return log
}

// WithRecord annotates the logger with store, kind, and record identifiers.
func WithRecord(ctx context.Context, storeID string, kind catalog.Kind, recordID string) pslog.Logger {
	log := WithStore(ctx, storeID)
	if kind != "" {
		log = log.With("kind", string(kind))
	}
	if recordID != "" {
		log = log.With("record", recordID)
	}
	return log
}
