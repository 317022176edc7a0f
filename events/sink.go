package events

import (
	"github.com/zkbridge/zkbridge/log"
)

// Sink receives the events a state machine emits. Implementations must
// not block the caller; a slow consumer drops events rather than
// stalling a state transition.
type Sink interface {
	Emit(typ EventType, data interface{})
}

// LogSink writes each event as a structured log line. It is the
// default sink when a component is configured without one.
type LogSink struct {
	l *log.Logger
}

// NewLogSink creates a LogSink writing through the given logger. A nil
// logger falls back to the process default.
func NewLogSink(l *log.Logger) *LogSink {
	if l == nil {
		l = log.Default()
	}
	return &LogSink{l: l.Module("events")}
}

// Emit logs the event with its payload flattened into attributes.
func (s *LogSink) Emit(typ EventType, data interface{}) {
	kv := []interface{}{"type", string(typ)}
	switch f := data.(type) {
	case fielder:
		kv = append(kv, f.fields()...)
	case nil:
	default:
		kv = append(kv, "data", data)
	}
	s.l.Info("event", kv...)
}

// Tee duplicates every event to each of the given sinks, in order.
// Nil entries are skipped.
func Tee(sinks ...Sink) Sink {
	out := make(teeSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type teeSink []Sink

func (t teeSink) Emit(typ EventType, data interface{}) {
	for _, s := range t {
		s.Emit(typ, data)
	}
}
