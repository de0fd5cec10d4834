// Package synclog records server sync traffic as serialized events for
// offline debugging and replay. It is operational tooling: the document
// core never touches it, and sessions take a Sink so the whole thing can
// be disabled or swapped out.
package synclog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// EnvVar names the environment variable that enables sync logging. Its
// value is the path of the log file to append to.
const EnvVar = "EDIT_TEXT_SYNC_LOG"

// Event is one logged sync occurrence.
type Event struct {
	Time     time.Time   `json:"time"`
	Kind     string      `json:"kind"`
	DocID    string      `json:"docId,omitempty"`
	ClientID string      `json:"clientId,omitempty"`
	Detail   interface{} `json:"detail,omitempty"`
}

// Sink receives sync events. Implementations must be safe for use from
// multiple sessions at once.
type Sink interface {
	Record(e Event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Record(Event) {}

// FileSink appends events to a shared log file, one JSON object per line.
type FileSink struct {
	mu sync.Mutex
	f  *os.File
}

// NewFileSink opens (or creates) the log file for appending.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open sync log: %w", err)
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) Record(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.Write(append(data, '\n'))
}

// Close flushes and closes the log file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}

// FromEnv returns a FileSink when EnvVar is set to a path, and Nop
// otherwise.
func FromEnv() (Sink, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Nop{}, nil
	}
	return NewFileSink(path)
}
