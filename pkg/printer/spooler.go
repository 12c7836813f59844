package printer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrPrintUnavailable is returned when there is no usable print frame.
	ErrPrintUnavailable = errors.New("printer: print frame unavailable")
	// ErrPrintInProgress is returned when a job is already running.
	ErrPrintInProgress = errors.New("printer: a print job is already in progress")
)

// State is the stage of the current print job.
type State int

const (
	StateIdle State = iota
	StateRendering
	StateAwaitingFrameLoad
	StateFocused
	StatePrintDialogOpen
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StateAwaitingFrameLoad:
		return "awaiting_frame_load"
	case StateFocused:
		return "focused"
	case StatePrintDialogOpen:
		return "print_dialog_open"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Transition is reported to SpoolerOptions.OnTransition on every state change.
type Transition struct {
	Job  uint64
	From State
	To   State
	Err  error
	At   time.Time
}

type SpoolerOptions struct {
	// SettleDelay runs between load and focus to let layout settle.
	SettleDelay time.Duration
	// AfterPrint runs after the print hand-off before the job resolves.
	AfterPrint   time.Duration
	OnTransition func(Transition)
}

// Status is a snapshot of the spooler.
type Status struct {
	Frame     string `json:"frame"`
	Available bool   `json:"available"`
	Ready     bool   `json:"ready"`
	Printing  bool   `json:"printing"`
	State     State  `json:"state"`
	LastError string `json:"last_error,omitempty"`
	Jobs      uint64 `json:"jobs"`
}

// Spooler runs print jobs through its Frame, one at a time:
//
//	Idle -> Rendering -> AwaitingFrameLoad -> Focused -> PrintDialogOpen -> Idle
//
// Any stage may move to Failed. The next job starts from Failed as from Idle.
type Spooler struct {
	opts SpoolerOptions
	busy atomic.Bool
	jobs atomic.Uint64

	mu      sync.Mutex
	frame   Frame
	state   State
	lastErr error
}

// NewSpooler takes ownership of frame. A nil frame is allowed.
func NewSpooler(frame Frame, opts SpoolerOptions) *Spooler {
	return &Spooler{frame: frame, opts: opts}
}

// Print renders doc and drives it through the frame. It fails fast with
// ErrPrintUnavailable when no frame is mounted and with ErrPrintInProgress
// when another job is running. ctx cancels the job between stages.
func (s *Spooler) Print(ctx context.Context, doc Document) error {
	s.mu.Lock()
	frame := s.frame
	s.mu.Unlock()
	if frame == nil {
		return ErrPrintUnavailable
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrPrintInProgress
	}
	defer s.busy.Store(false)

	job := s.jobs.Add(1)

	s.move(job, StateRendering, nil)
	page, err := doc.Render()
	if err != nil {
		return s.fail(job, err)
	}

	s.move(job, StateAwaitingFrameLoad, nil)
	if err := frame.Load(ctx, page); err != nil {
		if errors.Is(err, ErrFrameClosed) {
			err = fmt.Errorf("%w: %v", ErrPrintUnavailable, err)
		}
		return s.fail(job, err)
	}
	if err := wait(ctx, s.opts.SettleDelay); err != nil {
		return s.abort(job, frame, err)
	}
	if err := frame.Focus(ctx); err != nil {
		return s.abort(job, frame, err)
	}
	s.move(job, StateFocused, nil)

	s.move(job, StatePrintDialogOpen, nil)
	if err := frame.Print(ctx); err != nil {
		return s.abort(job, frame, err)
	}
	if err := wait(ctx, s.opts.AfterPrint); err != nil {
		return s.abort(job, frame, err)
	}

	s.move(job, StateIdle, nil)
	return nil
}

// Status reports the current state of the spooler.
func (s *Spooler) Status() Status {
	s.mu.Lock()
	frame := s.frame
	st := Status{
		Available: frame != nil,
		Printing:  s.busy.Load(),
		State:     s.state,
		Jobs:      s.jobs.Load(),
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	s.mu.Unlock()

	if frame != nil {
		st.Frame = frame.Name()
		st.Ready = frame.Ready()
	}
	return st
}

// Close releases the frame. Later prints fail with ErrPrintUnavailable.
func (s *Spooler) Close() error {
	s.mu.Lock()
	frame := s.frame
	s.frame = nil
	s.mu.Unlock()
	if frame == nil {
		return nil
	}
	return frame.Close()
}

// abort fails a job whose page is already in the frame and drops the page.
func (s *Spooler) abort(job uint64, frame Frame, err error) error {
	frame.Unload()
	return s.fail(job, err)
}

func (s *Spooler) move(job uint64, to State, err error) {
	s.mu.Lock()
	from := s.state
	s.state = to
	if to == StateFailed {
		s.lastErr = err
	} else if to == StateRendering {
		s.lastErr = nil
	}
	s.mu.Unlock()

	if s.opts.OnTransition != nil {
		s.opts.OnTransition(Transition{Job: job, From: from, To: to, Err: err, At: time.Now()})
	}
}

func (s *Spooler) fail(job uint64, err error) error {
	s.move(job, StateFailed, err)
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
