package render_test

import (
	"slices"
	"testing"
	"weak"

	"github.com/delaneyj/signaldom/pkg/cell"
	"github.com/delaneyj/signaldom/pkg/each"
	"github.com/delaneyj/signaldom/pkg/host"
	"github.com/delaneyj/signaldom/pkg/render"
	"github.com/stretchr/testify/assert"
)

// toggle is a minimal selector flipping between two fixed nodes.
type toggle struct {
	a, b     *host.Node
	showB    bool
	disposed int
}

func (s *toggle) Render() *host.Node { return s.Current() }
func (s *toggle) Dispose()           { s.disposed++ }

func (s *toggle) Current() *host.Node {
	if s.showB {
		return s.b
	}
	return s.a
}

func (s *toggle) flip() {
	old := s.Current()
	s.showB = !s.showB
	old.ReplaceWith(s.Current())
}

func TestKinds(t *testing.T) {
	tcs := []struct {
		r    render.Renderable
		kind render.Kind
		name string
	}{
		{render.Nil(), render.KindNil, "nil"},
		{render.Value(nil), render.KindNil, "nil"},
		{render.Value(3), render.KindValue, "value"},
		{render.Node(nil), render.KindNil, "nil"},
		{render.Node(host.NewText("")), render.KindNode, "node"},
		{render.Text[int](cell.New(1)), render.KindText, "text"},
		{render.Switch(&toggle{}), render.KindSwitch, "switch"},
		{render.Seq(), render.KindSeq, "sequence"},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, tc.r.Kind())
			assert.Equal(t, tc.name, tc.r.Kind().String())
		})
	}
	assert.Equal(t, "range", render.KindRange.String())
}

func TestFlatten(t *testing.T) {
	count := cell.New(1)
	em := host.NewElement("em", host.NewText("!"))
	sw := &toggle{a: host.NewText("A"), b: host.NewText("B")}

	p := host.NewElement("p")
	render.Append(p,
		render.Value("n="),
		render.Text[int](count),
		render.Nil(),
		render.Seq(render.Value(" "), render.Seq(render.Node(em))),
		render.Switch(sw),
	)
	assert.Equal(t, "<p>n=1 <em>!</em>A</p>", p.HTML())

	count.SetValue(2)
	sw.flip()
	assert.Equal(t, "<p>n=2 <em>!</em>B</p>", p.HTML())
}

func TestFlattenStopsEarly(t *testing.T) {
	nodes := render.Flatten(weak.Pointer[host.Node]{},
		render.Value("a"), render.Value("b"), render.Value("c"),
	)
	var got []string
	for n := range nodes {
		got = append(got, n.Data())
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestMount(t *testing.T) {
	//  Mounted: [ "x" ][ toggle ][ <!--> items... <!--> ]
	//  Nodes() re-reads the toggle and the range every time.
	ul := host.NewElement("ul")
	sw := &toggle{a: host.NewText("A"), b: host.NewText("B")}
	list := cell.New([]string{"1"})
	rng := each.Identity(list, func(v *cell.Cell[string], _ *cell.Cell[int], _ cell.Readable[[]string]) render.Renderable {
		return render.Text[string](v)
	})

	m := render.Mount(weak.Make(ul), render.Seq(render.Value("x"), render.Switch(sw), render.Range(rng)))
	ul.Append(slices.Collect(m.Nodes())...)
	assert.Equal(t, "<ul>xA<!---->1<!----></ul>", ul.HTML())

	sw.flip()
	list.SetValue([]string{"1", "2"})
	got := slices.Collect(m.Nodes())
	assert.Equal(t, ul.ChildNodes(), got)
	assert.Equal(t, "<ul>xB<!---->12<!----></ul>", ul.HTML())

	m.Dispose()
	assert.Equal(t, 1, sw.disposed)
	assert.Zero(t, list.SubscriberCount())
	assert.Empty(t, slices.Collect(m.Nodes()))
}

func TestMountDisposesText(t *testing.T) {
	count := cell.New(1)
	m := render.Mount(weak.Pointer[host.Node]{}, render.Text[int](count))
	assert.Equal(t, 1, count.SubscriberCount())
	m.Dispose()
	assert.Zero(t, count.SubscriberCount())
}
