package events

import (
	"context"

	"pkt.systems/pslog"
)

// LogSink writes each event as a structured log line.
type LogSink struct {
	log pslog.Logger
}

// NewLogSink creates a sink logging through the given logger.
func NewLogSink(log pslog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(_ context.Context, event Event) error {
	s.log.Info("catalog event",
		"op", string(event.Op),
		"kind", string(event.Kind),
		"store_id", event.StoreID,
		"record_id", event.RecordID,
		"event_id", event.ID,
	)
	return nil
}

func (s *LogSink) Close() error { return nil }

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Publish(context.Context, Event) error { return nil }

func (NopSink) Close() error { return nil }
