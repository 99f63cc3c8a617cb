package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/ipquiz/internal/store"
)

// EventSink persists session lifecycle events.
type EventSink interface {
	AppendSessionEvent(ctx context.Context, data store.SessionEventData) error
}

const recordTimeout = 5 * time.Second

// Recorder writes transitions to an EventSink in the background. A failed
// write is logged and otherwise ignored; the session keeps its state.
type Recorder struct {
	sink EventSink
	log  logrus.FieldLogger
	wg   sync.WaitGroup
}

// NewRecorder creates a Recorder. A nil sink makes Observe a no-op.
func NewRecorder(sink EventSink, log logrus.FieldLogger) *Recorder {
	return &Recorder{sink: sink, log: log}
}

// Observe is an Observer.
func (r *Recorder) Observe(t Transition) {
	if r.sink == nil {
		return
	}
	data, ok := eventFor(t)
	if !ok {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := r.sink.AppendSessionEvent(ctx, data); err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{
				"session_id": data.SessionID,
				"action":     data.Action,
			}).Warn("Failed to record session event")
		}
	}()
}

// Wait blocks until pending writes complete.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func eventFor(t Transition) (store.SessionEventData, bool) {
	data := store.SessionEventData{
		SessionID: t.SessionID,
		Questions: len(t.Basket),
	}
	switch {
	case t.To == PhaseRunning:
		data.Action = store.ActionStart
	case t.To == PhaseFinished && t.Summary != nil:
		data.Action = store.ActionFinish
		data.Total = t.Summary.Total
		data.Possible = t.Summary.Possible
		data.DurationSecs = int(t.Summary.Duration().Seconds())
		data.ByTopic = t.Summary.ByTopic
		data.ByLevel = make(map[string]int, len(t.Summary.ByLevel))
		for l, v := range t.Summary.ByLevel {
			data.ByLevel[string(l)] = v
		}
	case t.To == PhasePicking && (t.From == PhaseRunning || t.From == PhaseConfirming):
		data.Action = store.ActionAbandon
	default:
		return data, false
	}
	return data, true
}
