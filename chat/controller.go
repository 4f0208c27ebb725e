package chat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tickerchat/model"
)

// State is the stream session lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateClosing:
		return "closing"
	}
	return "unknown"
}

// Marker records a stream lifecycle sentinel or an observed function call,
// kept for observability alongside the conversation.
type Marker struct {
	Type string // "start", "end", or "function_call"
	Name string // directive name for function_call markers
	At   time.Time
}

// Controller owns the lifecycle of streaming invocations for one session:
// open, cancel, close, error-to-terminal-state transitions, and the
// elapsed-time indicator shown while a stream is live.
//
// A controller owns at most one live connection. Submitting while a previous
// stream is still open aborts it first; events from a superseded or aborted
// stream are discarded via a generation check, because the transport may
// still deliver records that were queued before the abort was observed.
//
// All turn mutation happens inside the controller's own callbacks, one event
// at a time. External callers only read committed snapshots.
type Controller struct {
	mu      sync.Mutex
	invoker model.Invoker
	rec     *Reconciler
	acc     *Accumulator
	session string
	state   State
	busy    bool
	gen     uint64
	cancel  context.CancelFunc
	curID   string // carryover event id for the active stream
	tick    chan struct{}
	elapsed atomic.Int64 // tenths of a second
	markers []Marker
	log     *logrus.Entry
}

// NewController creates a controller with a fresh session ID.
func NewController(invoker model.Invoker) *Controller {
	return &Controller{
		invoker: invoker,
		rec:     NewReconciler(),
		session: uuid.New().String(),
		log:     logrus.WithField("component", "chat"),
	}
}

// Submit sends a prompt and consumes the resulting stream to completion.
// It blocks until the stream closes, fails, or is aborted; snapshots taken
// from other goroutines observe the turn growing while it runs.
//
// A previous stream still open when Submit is called is aborted first. The
// returned error is nil on normal close and on user cancellation; hard
// transport errors are returned after the open turn is marked failed.
func (c *Controller) Submit(ctx context.Context, prompt string) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen

	cctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.acc = NewAccumulator()
	c.curID = ""
	c.rec.StartHumanTurn(prompt)
	c.rec.StartAgentTurn()
	c.busy = true
	c.state = StateConnecting
	c.stopTimerLocked()
	c.startTimerLocked()
	req := model.InvokeRequest{Input: prompt, SessionID: c.session}
	c.mu.Unlock()

	c.log.WithField("session", req.SessionID).Debug("submitting prompt")

	err := c.invoker.Invoke(cctx, req, model.StreamCallbacks{
		OnOpen:  func() { c.streamOpened(gen) },
		OnEvent: func(ev model.StreamEvent) error { return c.dispatch(gen, ev) },
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	cancel()
	if gen != c.gen {
		// Superseded by a newer submission; its state is not ours to touch.
		return nil
	}
	c.cancel = nil
	c.busy = false
	c.stopTimerLocked()

	switch {
	case err == nil:
		c.state = StateClosing
		c.recordMarkerLocked("end", "")
		c.rec.Finalize()
		c.state = StateIdle
		return nil

	case errors.Is(err, context.Canceled):
		// User abort: the turn stays exactly as last reconciled.
		c.log.WithField("session", req.SessionID).Debug("stream aborted")
		c.rec.Finalize()
		c.state = StateIdle
		return nil

	default:
		c.log.WithField("session", req.SessionID).WithError(err).Error("stream failed")
		c.rec.ApplyError(TransportErrorText)
		c.rec.Finalize()
		c.state = StateIdle
		return err
	}
}

// Cancel aborts the in-flight stream, if any. The blocked Submit call
// observes the abort and performs the terminal state transition, so state
// settles once Submit returns.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// ResetSession aborts any in-flight stream, clears the conversation, and
// starts a fresh session. Returns the new session ID.
func (c *Controller) ResetSession() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.session = uuid.New().String()
	c.rec = NewReconciler()
	c.acc = nil
	c.markers = nil
	c.busy = false
	c.state = StateIdle
	c.stopTimerLocked()
	return c.session
}

// SetSession resumes an existing session ID. Only meaningful while idle.
func (c *Controller) SetSession(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = id
}

// SessionID returns the current session identifier.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Turns returns a deep-copied snapshot of the conversation.
func (c *Controller) Turns() []model.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rec.Turns()
}

// Busy reports whether a stream is currently live.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Elapsed returns the wall-clock seconds the current stream has been live,
// in tenths. Zero whenever no stream is active.
func (c *Controller) Elapsed() float64 {
	return float64(c.elapsed.Load()) / 10
}

// Markers returns a copy of the recorded lifecycle and function-call markers.
func (c *Controller) Markers() []Marker {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Marker, len(c.markers))
	copy(out, c.markers)
	return out
}

func (c *Controller) streamOpened(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.state = StateStreaming
	c.recordMarkerLocked("start", "")
}

// dispatch routes one stream event through the decoder, accumulator, and
// reconciler. Every failure is contained here: a malformed event degrades
// the turn at worst, it never terminates the stream.
func (c *Controller) dispatch(gen uint64, ev model.StreamEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil // stale event from an aborted or superseded stream
	}

	defer func() {
		if p := recover(); p != nil {
			c.log.WithField("panic", p).Error("event reconciliation failed")
			c.rec.ApplyError(ErrorText)
		}
	}()

	// Every record's id becomes the carryover id, whatever its kind, so an
	// id-less fragment that follows an id-bearing function_call or error
	// still lands in the right step.
	if ev.ID != "" {
		c.curID = ev.ID
	}

	switch ev.Kind {
	case model.KindFunctionCall:
		d, err := DecodeDirective(ev.Data)
		if err != nil {
			c.log.WithError(err).WithField("data", ev.Data).Warn("dropping malformed directive")
			return nil
		}
		c.recordMarkerLocked("function_call", d.Name)
		if target, ok := ToggleTarget(d); ok {
			c.log.WithField("target", target).Debug("toggling step link")
			c.rec.ApplyLink(target)
		} else if d.Name == DirectiveToggle {
			c.log.WithField("args", d.Args).Warn("toggle directive without a symbol")
		} else {
			c.log.WithField("function", d.Name).Debug("ignoring unrecognized directive")
		}

	case model.KindError:
		c.rec.ApplyError(ev.Data)

	case model.KindMessage:
		if ev.IsEnd() {
			return nil
		}
		key := c.curID
		if key == "" {
			key = c.acc.OrdinalKey()
			c.curID = key
		}
		c.acc.Append(key, ev.Data)
		c.rec.ApplySteps(c.acc.Snapshot())
	}
	return nil
}

func (c *Controller) recordMarkerLocked(typ, name string) {
	c.markers = append(c.markers, Marker{Type: typ, Name: name, At: time.Now()})
}

// startTimerLocked starts the elapsed indicator: every 100ms the counter
// gains a tenth of a second until the stream reaches a terminal state.
func (c *Controller) startTimerLocked() {
	c.elapsed.Store(0)
	stop := make(chan struct{})
	c.tick = stop
	go func() {
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				c.elapsed.Add(1)
			case <-stop:
				return
			}
		}
	}()
}

func (c *Controller) stopTimerLocked() {
	if c.tick != nil {
		close(c.tick)
		c.tick = nil
	}
	c.elapsed.Store(0)
}
