package logger

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Report holds statistics about logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	Sessions       int        `json:"sessions"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	Commands        StrCounter   `json:"commands"`
	FailedCommands  *PathCounter `json:"failed_commands"`
	UnknownCommands *PathCounter `json:"unknown_commands"`
	InvalidUsage    *PathCounter `json:"invalid_usage"`
	Panics          []string     `json:"panics"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{
		FailedCommands:  NewPathCounter("line", "status"),
		UnknownCommands: NewPathCounter("command", "kind"),
		InvalidUsage:    NewPathCounter("command", "error"),
	}
}

// Update adds a single event to the report.
func (r *Report) Update(e Event) {
	r.LogEntries++

	switch e.Type {
	case EventSessionStart:
		r.Sessions++
	case EventRunCommand:
		line := e.String("line")
		r.Commands.Increment(line)
		if status := e.Int("status"); status != 0 {
			r.FailedCommands.Increment(line, strconv.Itoa(status))
		}
	case EventUnknownCommand:
		r.UnknownCommands.Increment(e.String("command"), e.String("kind"))
	case EventInvalidUsage:
		r.InvalidUsage.Increment(e.String("command"), e.String("error"))
	case EventPanic:
		r.Panics = append(r.Panics, e.String("command")+": "+e.String("message"))
	case EventSessionEnd, EventOpenTTYLog:
		// Ignore
	default:
		r.InvalidEntries.Increment(string(e.Type))
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns how many times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// MarshalJSON implements custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

// NewPathCounter creates a counter keyed by one value per column.
func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts tuples of strings.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given tuple.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Count returns how many times the tuple was seen.
func (ctr *PathCounter) Count(vals ...string) int {
	return ctr.internal[toKey(vals...)]
}

// MarshalJSON implements custom JSON marshaler, most frequent tuples first.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		path   string
	}

	out := []count{}
	for k, v := range ctr.internal {
		c := count{
			Count:  v,
			path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			c.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].path < out[j].path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
