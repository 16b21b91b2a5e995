package framework

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// EventType categorizes telemetry events.
type EventType string

const (
	EventSwarmStart     EventType = "swarm_start"
	EventClassify       EventType = "classify"
	EventDelegateStart  EventType = "delegate_start"
	EventDelegateFinish EventType = "delegate_finish"
	EventDelegateError  EventType = "delegate_error"
	EventSynthesize     EventType = "synthesize"
	EventReset          EventType = "reset"
)

// Event captures structured telemetry data emitted while a request moves
// through the swarm.
type Event struct {
	Type      EventType              `json:"type"`
	Handler   string                 `json:"handler,omitempty"`
	Task      string                 `json:"task,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Telemetry receives execution traces from the orchestrator. Tests typically
// swap in lightweight recorders.
type Telemetry interface {
	Emit(event Event)
}

// NopTelemetry discards all events.
type NopTelemetry struct{}

// Emit does nothing.
func (NopTelemetry) Emit(Event) {}

// MultiplexTelemetry broadcasts events to multiple sinks.
type MultiplexTelemetry struct {
	Sinks []Telemetry
}

// Emit forwards the event to all registered sinks.
func (m MultiplexTelemetry) Emit(event Event) {
	for _, s := range m.Sinks {
		s.Emit(event)
	}
}

// JSONFileTelemetry writes events as newline-delimited JSON to a file so
// external tools can tail and process the stream.
type JSONFileTelemetry struct {
	path string
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewJSONFileTelemetry opens (or creates) the log file.
func NewJSONFileTelemetry(path string) (*JSONFileTelemetry, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONFileTelemetry{
		path: path,
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes the JSON record.
func (j *JSONFileTelemetry) Emit(event Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.enc != nil {
		_ = j.enc.Encode(event)
	}
}

// Close releases the file handle.
func (j *JSONFileTelemetry) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file != nil {
		return j.file.Close()
	}
	return nil
}

// LoggerTelemetry emits events via the standard logger. Tiny but handy while
// debugging a run locally: every delegation becomes visible without extra
// tooling.
type LoggerTelemetry struct {
	Logger *log.Logger
}

// Emit logs the event.
func (t LoggerTelemetry) Emit(event Event) {
	logger := t.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("[%s] handler=%s task=%q msg=%s\n", event.Type, event.Handler, event.Task, event.Message)
}
