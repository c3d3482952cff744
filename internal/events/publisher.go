package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/imamik/paxosfleet/internal/provisioning"
)

// conn is the subset of *nats.Conn the observer publishes through.
type conn interface {
	Publish(subject string, data []byte) error
	IsClosed() bool
	Drain() error
	Close()
}

// Observer publishes deployment events as JSON to a NATS subject.
// Publishing is fire-and-forget: a failed publish is remembered and
// reported by Err, it never blocks the deployment.
type Observer struct {
	nc         conn
	subject    string
	deployment string
	fields     map[string]string

	mu  *sync.Mutex
	err *error
}

// Connect dials url and returns an observer publishing to subject.
func Connect(url, subject, deployment string) (*Observer, error) {
	opts := []nats.Option{
		nats.Name("paxosfleet-" + deployment),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return newObserver(nc, subject, deployment), nil
}

func newObserver(nc conn, subject, deployment string) *Observer {
	var err error
	return &Observer{
		nc:         nc,
		subject:    subject,
		deployment: deployment,
		fields:     map[string]string{},
		mu:         &sync.Mutex{},
		err:        &err,
	}
}

// message is the JSON payload published for every event.
type message struct {
	Deployment string `json:"deployment"`
	provisioning.Event
}

// Printf implements provisioning.Logger. Free-form log lines are not published.
func (o *Observer) Printf(string, ...interface{}) {}

// Event implements provisioning.Observer.
func (o *Observer) Event(event provisioning.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if len(o.fields) > 0 {
		merged := make(map[string]string, len(o.fields)+len(event.Fields))
		for k, v := range o.fields {
			merged[k] = v
		}
		for k, v := range event.Fields {
			merged[k] = v
		}
		event.Fields = merged
	}
	o.publish(o.subject+"."+string(event.Type), message{Deployment: o.deployment, Event: event})
}

// Progress implements provisioning.Observer.
func (o *Observer) Progress(phase string, current, total int) {
	o.Event(provisioning.Event{
		Type:    provisioning.EventProgress,
		Phase:   phase,
		Message: fmt.Sprintf("%d/%d", current, total),
		Fields:  map[string]string{"current": fmt.Sprint(current), "total": fmt.Sprint(total)},
	})
}

// WithFields implements provisioning.Observer.
func (o *Observer) WithFields(fields map[string]string) provisioning.Observer {
	merged := make(map[string]string, len(o.fields)+len(fields))
	for k, v := range o.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Observer{
		nc:         o.nc,
		subject:    o.subject,
		deployment: o.deployment,
		fields:     merged,
		mu:         o.mu,
		err:        o.err,
	}
}

func (o *Observer) publish(subject string, m message) {
	data, err := json.Marshal(m)
	if err == nil {
		if o.nc == nil || o.nc.IsClosed() {
			err = fmt.Errorf("nats not connected")
		} else {
			err = o.nc.Publish(subject, data)
		}
	}
	if err != nil {
		o.mu.Lock()
		if *o.err == nil {
			*o.err = fmt.Errorf("failed to publish to %s: %w", subject, err)
		}
		o.mu.Unlock()
	}
}

// Err returns the first publish failure, if any.
func (o *Observer) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return *o.err
}

// Close flushes pending messages and closes the connection.
func (o *Observer) Close() {
	if o.nc != nil {
		_ = o.nc.Drain()
		o.nc.Close()
	}
}
