package events

import "context"

// Fanout delivers each event to every sink. All sinks are attempted even
// when one fails; the first error wins.
type Fanout struct {
	sinks []Sink
}

// NewFanout combines sinks into one. Nil sinks are tolerated and skipped.
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *Fanout) Close() error {
	var firstErr error
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
