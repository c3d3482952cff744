package provisioning

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-logr/logr"
)

// Logger is the minimal printf-style logging interface.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines the interface for structured observability during a deployment.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a phase
	Progress(phase string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured deployment event.
type Event struct {
	Type      EventType         `json:"type"`
	Phase     string            `json:"phase,omitempty"`
	Message   string            `json:"message"`
	Resource  string            `json:"resource,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// EventType represents the type of deployment event.
type EventType string

const (
	// EventPhaseStarted indicates a phase has started issuing operations.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a phase issued all of its operations.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a phase could not be issued.
	EventPhaseFailed EventType = "phase.failed"

	// EventNodeScheduled indicates an operation was registered in the graph.
	EventNodeScheduled EventType = "node.scheduled"
	// EventNodeStarted indicates an operation's predecessors resolved and it began executing.
	EventNodeStarted EventType = "node.started"
	// EventNodeSucceeded indicates an operation resolved successfully.
	EventNodeSucceeded EventType = "node.succeeded"
	// EventNodeFailed indicates an operation failed.
	EventNodeFailed EventType = "node.failed"
	// EventNodeSkipped indicates an operation did not run because a predecessor failed.
	EventNodeSkipped EventType = "node.skipped"

	// EventTeardownStarted indicates a teardown action is being issued.
	EventTeardownStarted EventType = "teardown.started"
	// EventTeardownCompleted indicates a teardown action finished.
	EventTeardownCompleted EventType = "teardown.completed"
	// EventTeardownFailed indicates a teardown action failed.
	EventTeardownFailed EventType = "teardown.failed"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// IsFailure reports whether the event type describes a failure.
func (t EventType) IsFailure() bool {
	return t == EventPhaseFailed || t == EventNodeFailed || t == EventTeardownFailed
}

// LogObserver implements Observer on top of a logr.Logger.
type LogObserver struct {
	log           logr.Logger
	contextFields map[string]string
}

// NewLogObserver creates an observer writing to log.
func NewLogObserver(log logr.Logger) *LogObserver {
	return &LogObserver{
		log:           log,
		contextFields: make(map[string]string),
	}
}

// Printf implements Logger.
func (o *LogObserver) Printf(format string, v ...interface{}) {
	o.log.Info(fmt.Sprintf(format, v...), o.keysAndValues(nil)...)
}

// Event implements Observer.
func (o *LogObserver) Event(event Event) {
	event = o.enrich(event)

	kv := []interface{}{"event", string(event.Type)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	kv = append(kv, o.keysAndValues(event.Fields)...)

	if event.Type.IsFailure() {
		o.log.Error(nil, event.Message, kv...)
		return
	}
	o.log.Info(event.Message, kv...)
}

// Progress implements Observer.
func (o *LogObserver) Progress(phase string, current, total int) {
	percentage := 0
	if total > 0 {
		percentage = (current * 100) / total
	}
	o.log.V(1).Info("progress", "phase", phase, "current", current, "total", total, "percent", percentage)
}

// WithFields implements Observer.
func (o *LogObserver) WithFields(fields map[string]string) Observer {
	return &LogObserver{
		log:           o.log,
		contextFields: mergeFields(o.contextFields, fields),
	}
}

func (o *LogObserver) enrich(event Event) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Fields = mergeFields(o.contextFields, event.Fields)
	return event
}

// keysAndValues flattens context and extra fields into sorted logr pairs.
func (o *LogObserver) keysAndValues(extra map[string]string) []interface{} {
	fields := mergeFields(o.contextFields, extra)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return kv
}

// mergeFields returns a copy of base overlaid with extra.
func mergeFields(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// MultiObserver fans events out to several observers.
type MultiObserver []Observer

// Printf implements Logger.
func (m MultiObserver) Printf(format string, v ...interface{}) {
	for _, o := range m {
		o.Printf(format, v...)
	}
}

// Event implements Observer.
func (m MultiObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	for _, o := range m {
		o.Event(event)
	}
}

// Progress implements Observer.
func (m MultiObserver) Progress(phase string, current, total int) {
	for _, o := range m {
		o.Progress(phase, current, total)
	}
}

// WithFields implements Observer.
func (m MultiObserver) WithFields(fields map[string]string) Observer {
	out := make(MultiObserver, len(m))
	for i, o := range m {
		out[i] = o.WithFields(fields)
	}
	return out
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}
