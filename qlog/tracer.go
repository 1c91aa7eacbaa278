// Package qlog writes the events of a run as newline-delimited JSON.
package qlog

import (
	"io"
	"sync"
	"time"

	"github.com/francoispqt/gojay"
	"github.com/google/uuid"
)

// A Tracer records the events of a run. It is safe for concurrent use.
type Tracer struct {
	mu    sync.Mutex
	w     io.Writer
	runID uuid.UUID
	start time.Time
	err   error
}

func NewTracer(w io.Writer) *Tracer {
	return &Tracer{
		w:     w,
		runID: uuid.New(),
		start: time.Now(),
	}
}

// RunID identifies the run in the trace.
func (t *Tracer) RunID() uuid.UUID { return t.runID }

func (t *Tracer) RunStarted(r RunStarted) {
	t.recordEvent(eventRunStarted{RunID: t.runID.String(), RunStarted: r})
}

func (t *Tracer) PacketProcessed(p PacketProcessed) {
	t.recordEvent(eventPacketProcessed(p))
}

func (t *Tracer) RunFinished(f RunFinished) {
	t.recordEvent(eventRunFinished(f))
}

// Err returns the first error writing the trace.
// Once writing failed, all further events are dropped.
func (t *Tracer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Tracer) recordEvent(details eventDetails) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	b, err := gojay.MarshalJSONObject(event{
		RelativeTime: time.Since(t.start),
		eventDetails: details,
	})
	if err != nil {
		t.err = err
		return
	}
	b = append(b, '\n')
	if _, err := t.w.Write(b); err != nil {
		t.err = err
	}
}
