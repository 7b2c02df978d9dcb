package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// EventType names a kind of session event.
type EventType string

const (
	EventSessionStart   EventType = "session_start"
	EventSessionEnd     EventType = "session_end"
	EventRunCommand     EventType = "run_command"
	EventUnknownCommand EventType = "unknown_command"
	EventPanic          EventType = "panic"
	EventInvalidUsage   EventType = "invalid_usage"
	EventOpenTTYLog     EventType = "open_tty_log"
)

// Event is a single entry in the session event log. Field values must be
// strings, numbers, booleans, or nested maps and slices of those.
type Event struct {
	Time      time.Time
	SessionID string
	Type      EventType
	Fields    map[string]interface{}
}

// String returns a field as a string, or the empty string.
func (e *Event) String(key string) string {
	if v, ok := e.Fields[key].(string); ok {
		return v
	}
	return ""
}

// Int returns a numeric field as an int, or zero.
func (e *Event) Int(key string) int {
	switch v := e.Fields[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (e *Event) toStruct() (*structpb.Struct, error) {
	fields := e.Fields
	if fields == nil {
		fields = map[string]interface{}{}
	}

	return structpb.NewStruct(map[string]interface{}{
		"timestamp_micros": e.Time.UnixMicro(),
		"session_id":       e.SessionID,
		"type":             string(e.Type),
		"fields":           fields,
	})
}

func eventFromStruct(s *structpb.Struct) Event {
	raw := s.AsMap()

	var event Event
	if ts, ok := raw["timestamp_micros"].(float64); ok {
		event.Time = time.UnixMicro(int64(ts)).UTC()
	}
	event.SessionID, _ = raw["session_id"].(string)
	if t, ok := raw["type"].(string); ok {
		event.Type = EventType(t)
	}
	event.Fields, _ = raw["fields"].(map[string]interface{})
	return event
}

// Recorder stores events in an external datastore.
type Recorder interface {
	Record(Event) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(Event) error

// Record implements Recorder.
func (f RecorderFunc) Record(e Event) error {
	return f(e)
}

// NopRecorder discards all events.
var NopRecorder Recorder = RecorderFunc(func(Event) error { return nil })

// NewJSONLinesRecorder creates a Recorder that exports events as newline
// delimited JSON objects.
func NewJSONLinesRecorder(w io.Writer) Recorder {
	var mu sync.Mutex
	return RecorderFunc(func(e Event) error {
		entry, err := e.toStruct()
		if err != nil {
			return fmt.Errorf("encoding %s event: %w", e.Type, err)
		}
		out, err := protojson.Marshal(entry)
		if err != nil {
			return err
		}

		mu.Lock()
		defer mu.Unlock()
		_, err = fmt.Fprintln(w, string(out))
		return err
	})
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(e Event)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var rawEntry json.RawMessage
		if err := decoder.Decode(&rawEntry); err != nil {
			return err
		}

		var entry structpb.Struct
		if err := protojson.Unmarshal(rawEntry, &entry); err != nil {
			return err
		}

		handler(eventFromStruct(&entry))
	}
	return nil
}

// SessionRecorder stamps events with a shared session ID and the time.
type SessionRecorder struct {
	Recorder  Recorder
	SessionID string
	Now       func() time.Time
}

// Record stores an event of the given type.
func (s *SessionRecorder) Record(eventType EventType, fields map[string]interface{}) error {
	if s == nil || s.Recorder == nil {
		return nil
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	return s.Recorder.Record(Event{
		Time:      now(),
		SessionID: s.SessionID,
		Type:      eventType,
		Fields:    fields,
	})
}
