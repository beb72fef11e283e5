package render

import (
	"iter"
	"weak"

	"github.com/delaneyj/signaldom/pkg/cell"
	"github.com/delaneyj/signaldom/pkg/host"
)

type part struct {
	node    *host.Node
	dispose cell.Disposer
	rng     Ranger
	sw      Switcher
}

// Mounted remembers what a renderable turned into so its current nodes can
// be spliced again later, even after nested ranges or selectors changed.
type Mounted struct {
	parts []part
}

func (m *Mounted) add(p part) {
	if m != nil {
		m.parts = append(m.parts, p)
	}
}

// Mount renders r eagerly.
func Mount(parent weak.Pointer[host.Node], r Renderable) *Mounted {
	m := &Mounted{}
	for range mountNodes(parent, r, m) {
	}
	return m
}

// Nodes yields the nodes r currently occupies.
func (m *Mounted) Nodes() iter.Seq[*host.Node] {
	return func(yield func(*host.Node) bool) {
		for _, p := range m.parts {
			switch {
			case p.rng != nil:
				for n := range p.rng.Nodes() {
					if !yield(n) {
						return
					}
				}
			case p.sw != nil:
				if !yield(p.sw.Current()) {
					return
				}
			default:
				if !yield(p.node) {
					return
				}
			}
		}
	}
}

// Dispose stops every binding, range and selector created by the mount.
func (m *Mounted) Dispose() {
	for _, p := range m.parts {
		switch {
		case p.rng != nil:
			p.rng.Dispose()
		case p.sw != nil:
			p.sw.Dispose()
		case p.dispose != nil:
			p.dispose()
		}
	}
	m.parts = nil
}
