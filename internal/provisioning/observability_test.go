package provisioning

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockObserver is a test implementation of Observer that records events.
type MockObserver struct {
	mu       sync.Mutex
	events   []Event
	messages []string
	fields   map[string]string
}

func NewMockObserver() *MockObserver {
	return &MockObserver{
		events:   make([]Event, 0),
		messages: make([]string, 0),
		fields:   make(map[string]string),
	}
}

func (m *MockObserver) Printf(format string, v ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, fmt.Sprintf(format, v...))
}

func (m *MockObserver) Event(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *MockObserver) Progress(phase string, current, total int) {
	m.Event(Event{Type: EventProgress, Phase: phase, Message: fmt.Sprintf("%d/%d", current, total)})
}

func (m *MockObserver) WithFields(fields map[string]string) Observer {
	return m
}

func (m *MockObserver) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// captureLogger returns a logr.Logger that appends formatted lines to out.
func captureLogger(out *[]string) logr.Logger {
	return funcr.New(func(prefix, args string) {
		*out = append(*out, prefix+" "+args)
	}, funcr.Options{Verbosity: 1})
}

func TestLogObserver_Event(t *testing.T) {
	var lines []string
	observer := NewLogObserver(captureLogger(&lines))

	observer.WithFields(map[string]string{"deployment": "bench"}).Event(Event{
		Type:     EventNodeSucceeded,
		Phase:    "install",
		Resource: "install/server-or",
		Message:  "resolved",
		Fields:   map[string]string{"machine": "server-or"},
	})

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"msg"="resolved"`)
	assert.Contains(t, lines[0], `"event"="node.succeeded"`)
	assert.Contains(t, lines[0], `"resource"="install/server-or"`)
	assert.Contains(t, lines[0], `"deployment"="bench"`)
	assert.Contains(t, lines[0], `"machine"="server-or"`)
}

func TestLogObserver_FailureIsError(t *testing.T) {
	var lines []string
	observer := NewLogObserver(captureLogger(&lines))

	observer.Event(Event{Type: EventNodeFailed, Message: "exit status 1"})

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"error"=null`)
}

func TestLogObserver_WithFieldsDoesNotMutateParent(t *testing.T) {
	var lines []string
	parent := NewLogObserver(captureLogger(&lines))
	_ = parent.WithFields(map[string]string{"role": "server"})

	parent.Printf("hello %s", "world")

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "hello world")
	assert.NotContains(t, lines[0], "role")
}

func TestLogObserver_Progress(t *testing.T) {
	var lines []string
	observer := NewLogObserver(captureLogger(&lines))

	observer.Progress("deployment", 1, 4)
	observer.Progress("deployment", 0, 0)

	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"percent"=25`)
	assert.Contains(t, lines[1], `"percent"=0`)
}

func TestMultiObserver(t *testing.T) {
	a, b := NewMockObserver(), NewMockObserver()
	multi := MultiObserver{a, b}

	multi.Event(Event{Type: EventPhaseStarted, Phase: "run"})
	multi.WithFields(map[string]string{"k": "v"}).Printf("msg")

	for _, o := range []*MockObserver{a, b} {
		events := o.Events()
		require.Len(t, events, 1)
		assert.False(t, events[0].Timestamp.IsZero(), "timestamp should be filled once for all sinks")
		assert.Equal(t, []string{"msg"}, o.messages)
	}
}

func TestEventType_IsFailure(t *testing.T) {
	assert.True(t, EventNodeFailed.IsFailure())
	assert.True(t, EventTeardownFailed.IsFailure())
	assert.False(t, EventNodeSkipped.IsFailure())
	assert.False(t, EventPhaseCompleted.IsFailure())
}

func TestLogPhaseHelpers(t *testing.T) {
	observer := NewMockObserver()

	LogPhaseStart(observer, "provision")
	LogPhaseComplete(observer, "provision", 1500*time.Millisecond)
	LogPhaseFailed(observer, "provision", errors.New("quota exceeded"))

	events := observer.Events()
	require.Len(t, events, 3)
	assert.Equal(t, EventPhaseStarted, events[0].Type)
	assert.Equal(t, "completed in 1.5s", events[1].Message)
	assert.True(t, strings.HasSuffix(events[2].Message, "quota exceeded"))
}
