// Package batch runs workflow invocations in the degenerate non-streaming
// mode: each topic is submitted under a fresh session and the complete
// response is collected in one shot, with no event aggregation involved.
package batch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tickerchat/model"
)

// Result is the outcome of one batch invocation.
type Result struct {
	Topic     string
	SessionID string
	Response  json.RawMessage
	Duration  time.Duration
	RanAt     time.Time
	Err       string // empty on success
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool {
	return r.Err == ""
}

// Recorder persists batch results as they complete.
type Recorder interface {
	RecordResult(ctx context.Context, res Result) error
}

// Summary aggregates one batch run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Runner drives topics through the sync invocation path one at a time.
// Topics are independent: each gets its own session ID so no conversational
// state leaks between them, and one failure never stops the rest.
type Runner struct {
	invoker model.Invoker
	rec     Recorder
	log     *logrus.Entry
}

// NewRunner creates a batch runner. The recorder may be nil, in which case
// results are only returned to the caller.
func NewRunner(invoker model.Invoker, rec Recorder) *Runner {
	return &Runner{
		invoker: invoker,
		rec:     rec,
		log:     logrus.WithField("component", "batch"),
	}
}

// Run invokes every topic in order and returns the per-topic results plus a
// summary. Invocation failures are recorded in their Result and the run
// continues; only context cancellation aborts the remaining topics, returning
// the results collected so far alongside the context error.
func (r *Runner) Run(ctx context.Context, topics []string) (Summary, []Result, error) {
	started := time.Now()
	summary := Summary{Total: len(topics)}
	results := make([]Result, 0, len(topics))

	for _, topic := range topics {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(started)
			return summary, results, err
		}

		res := r.runOne(ctx, topic)
		if res.OK() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		results = append(results, res)

		if r.rec != nil {
			if err := r.rec.RecordResult(ctx, res); err != nil {
				r.log.WithError(err).WithField("topic", topic).Error("failed to record result")
			}
		}
	}

	summary.Elapsed = time.Since(started)
	r.log.WithFields(logrus.Fields{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"elapsed":   summary.Elapsed.Round(time.Millisecond),
	}).Info("batch run complete")
	return summary, results, nil
}

func (r *Runner) runOne(ctx context.Context, topic string) Result {
	res := Result{
		Topic:     topic,
		SessionID: uuid.New().String(),
		RanAt:     time.Now(),
	}
	log := r.log.WithFields(logrus.Fields{"topic": topic, "session": res.SessionID})
	log.Debug("invoking topic")

	start := time.Now()
	raw, err := r.invoker.InvokeSync(ctx, model.InvokeRequest{
		Input:     topic,
		SessionID: res.SessionID,
	})
	res.Duration = time.Since(start)

	if err != nil {
		res.Err = err.Error()
		log.WithError(err).WithField("duration", res.Duration.Round(time.Millisecond)).Error("topic failed")
		return res
	}
	res.Response = raw
	log.WithField("duration", res.Duration.Round(time.Millisecond)).Info("topic complete")
	return res
}
