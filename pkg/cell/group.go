package cell

import (
	"github.com/delaneyj/signaldom/pkg/diag"
)

// Group tears down a set of subscriptions exactly once.
type Group struct {
	disposers []Disposer
	disposed  bool
}

func NewGroup(disposers ...Disposer) *Group {
	return &Group{disposers: disposers}
}

// Add registers d. Adding to an already disposed group disposes d at once.
func (g *Group) Add(d Disposer) {
	if d == nil {
		return
	}
	if g.disposed {
		d()
		return
	}
	g.disposers = append(g.disposers, d)
}

// Dispose runs every registered disposer. Later calls only report
// diag.ErrDoubleDispose.
func (g *Group) Dispose() {
	if g.disposed {
		diag.Report(diag.ErrDoubleDispose)
		return
	}
	g.disposed = true
	for _, d := range g.disposers {
		d()
	}
	g.disposers = nil
}

func (g *Group) Disposed() bool {
	return g.disposed
}
