// Package diag collects the non-fatal anomalies raised by the reactive core.
//
// Nothing in signaldom terminates the process. Problems the caller can act
// on are returned as errors, panics from user functions unwind to the caller
// of the write that triggered them, and everything else is reported here.
package diag

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	ErrDoubleDispose     = errors.New("double disposal detected")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnsupportedBranch = errors.New("unsupported branch shape")
	ErrCycle             = errors.New("notification cycle detected")
	ErrDetached          = errors.New("managed nodes detached from their parent")
	ErrRerender          = errors.New("component rendered more than once")
	ErrUnknownField      = errors.New("unknown field")
	ErrUnhashableKey     = errors.New("unhashable key")
)

// Handler receives every reported anomaly.
type Handler func(err error)

var (
	mu      sync.Mutex
	logger  = log.New(os.Stderr, "", log.LstdFlags)
	handler Handler
)

func defaultHandler(err error) {
	logger.Printf("signaldom: %v", err)
}

// Report hands err to the current handler.
func Report(err error) {
	if err == nil {
		return
	}
	mu.Lock()
	h := handler
	mu.Unlock()
	if h == nil {
		h = defaultHandler
	}
	h(err)
}

// Reportf is Report(fmt.Errorf(format, args...)).
func Reportf(format string, args ...any) {
	Report(fmt.Errorf(format, args...))
}

// SetHandler installs h and returns a func restoring the previous handler.
// A nil h restores logging.
func SetHandler(h Handler) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prev := handler
	handler = h
	return func() {
		mu.Lock()
		defer mu.Unlock()
		handler = prev
	}
}

// SetOutput redirects the trace and default report output. nil means stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logger.SetOutput(w)
}

// Tracef writes a trace line for named cells.
func Tracef(format string, args ...any) {
	logger.Printf(format, args...)
}

// Recorder is a Handler that keeps every report, handy in tests.
type Recorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *Recorder) Handle(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// Count returns how many reports match target according to errors.Is.
func (r *Recorder) Count(target error) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, err := range r.errs {
		if errors.Is(err, target) {
			n++
		}
	}
	return n
}

// Record installs a fresh Recorder and returns it with the restore func.
func Record() (*Recorder, func()) {
	r := &Recorder{}
	return r, SetHandler(r.Handle)
}
