package each_test

import (
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/delaneyj/signaldom/pkg/cell"
	"github.com/delaneyj/signaldom/pkg/diag"
	"github.com/delaneyj/signaldom/pkg/each"
	"github.com/delaneyj/signaldom/pkg/host"
	"github.com/delaneyj/signaldom/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type todo struct {
	ID    int
	Label string
}

// label renders <li>value</li> and counts how often it ran.
func label(calls *int) each.Factory[string] {
	return func(v *cell.Cell[string], _ *cell.Cell[int], _ cell.Readable[[]string]) render.Renderable {
		*calls++
		li := host.NewElement("li")
		render.Append(li, render.Text[string](v))
		return render.Node(li)
	}
}

// texts collects the text of every element child, skipping sentinels.
func texts(n *host.Node) []string {
	var out []string
	for _, c := range n.ChildNodes() {
		if c.Kind() == host.ElementNode {
			out = append(out, c.TextContent())
		}
	}
	return out
}

func byText(n *host.Node) map[string]*host.Node {
	out := map[string]*host.Node{}
	for _, c := range n.ChildNodes() {
		if c.Kind() == host.ElementNode {
			out[c.TextContent()] = c
		}
	}
	return out
}

func TestInitialRender(t *testing.T) {
	calls := 0
	list := cell.New([]string{"a", "b", "c"})
	ul := host.NewElement("ul")
	render.Append(ul, render.Range(each.Identity(list, label(&calls))))

	assert.Equal(t, 3, calls)
	assert.Equal(t, "<ul><!----><li>a</li><li>b</li><li>c</li><!----></ul>", ul.HTML())
}

func TestReorderKeepsNodes(t *testing.T) {
	//  [A B C] -> [A C B]
	//   |  \ /     |  | |
	//   same nodes, no new renders
	calls := 0
	list := cell.New([]string{"a", "b", "c"})
	ul := host.NewElement("ul")
	render.Append(ul, render.Range(each.Identity(list, label(&calls))))
	before := byText(ul)

	list.SetValue([]string{"a", "c", "b"})
	assert.Equal(t, 3, calls)
	assert.Equal(t, []string{"a", "c", "b"}, texts(ul))

	after := byText(ul)
	for k, n := range before {
		assert.Same(t, n, after[k], k)
	}
}

func TestInsertAndRemove(t *testing.T) {
	calls := 0
	list := cell.New([]string{"a", "b"})
	ul := host.NewElement("ul")
	e := each.Identity(list, label(&calls))
	render.Append(ul, render.Range(e))
	a := byText(ul)["a"]

	t.Run("insert renders only the new key", func(t *testing.T) {
		list.SetValue([]string{"a", "b", "d"})
		assert.Equal(t, 3, calls)
		assert.Equal(t, []string{"a", "b", "d"}, texts(ul))
		assert.Equal(t, 3, e.Len())
	})

	t.Run("remove drops the missing key", func(t *testing.T) {
		list.SetValue([]string{"a"})
		assert.Equal(t, 3, calls)
		assert.Equal(t, []string{"a"}, texts(ul))
		assert.Same(t, a, byText(ul)["a"])
		assert.Equal(t, 1, e.Len())
	})

	t.Run("removed keys render again when they come back", func(t *testing.T) {
		list.SetValue([]string{"b", "a"})
		assert.Equal(t, 4, calls)
		assert.Equal(t, []string{"b", "a"}, texts(ul))
	})

	t.Run("empty", func(t *testing.T) {
		list.SetValue([]string{})
		assert.Equal(t, "<ul><!----><!----></ul>", ul.HTML())
		assert.Zero(t, e.Len())
	})
}

func TestItemCellsUpdateInPlace(t *testing.T) {
	todos := cell.New([]todo{{1, "milk"}, {2, "eggs"}})
	calls := 0
	e, err := each.ByField[todo, int](todos, "ID", func(v *cell.Cell[todo], i *cell.Cell[int], src cell.Readable[[]todo]) render.Renderable {
		calls++
		assert.Same(t, todos, src)
		li := host.NewElement("li")
		render.Append(li,
			render.Text[int](i),
			render.Value(":"),
			render.Text[string](cell.Map(v, func(td todo) string { return td.Label })),
		)
		return render.Node(li)
	})
	require.NoError(t, err)

	ul := host.NewElement("ul")
	render.Append(ul, render.Range(e))
	assert.Equal(t, []string{"0:milk", "1:eggs"}, texts(ul))
	milk := ul.ChildNodes()[1]

	todos.SetValue([]todo{{2, "eggs"}, {1, "oat milk"}})
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"0:eggs", "1:oat milk"}, texts(ul))
	assert.Same(t, milk, ul.ChildNodes()[2])
}

func TestByFieldErrors(t *testing.T) {
	todos := cell.New([]todo{})
	_, err := each.ByField[todo, int](todos, "Missing", nil)
	assert.ErrorIs(t, err, diag.ErrUnknownField)

	_, err = each.ByField[todo, string](todos, "ID", nil)
	assert.ErrorIs(t, err, diag.ErrUnknownField)
}

func TestKeyFunc(t *testing.T) {
	todos := cell.New([]todo{{1, "a"}, {2, "b"}})
	calls := 0
	e := each.New(todos, func(td todo) string { return strconv.Itoa(td.ID) }, func(v *cell.Cell[todo], _ *cell.Cell[int], _ cell.Readable[[]todo]) render.Renderable {
		calls++
		return render.Text[string](cell.Map(v, func(td todo) string { return td.Label }))
	})
	p := host.NewElement("p")
	render.Append(p, render.Range(e))
	assert.Equal(t, "ab", p.TextContent())

	todos.SetValue([]todo{{2, "B"}, {1, "a"}, {3, "c"}})
	assert.Equal(t, "Bac", p.TextContent())
	assert.Equal(t, 3, calls)
}

func TestDuplicateKeys(t *testing.T) {
	rec, restore := diag.Record()
	defer restore()

	calls := 0
	list := cell.New([]string{"a", "b", "a"})
	ul := host.NewElement("ul")
	e := each.Identity(list, label(&calls))
	render.Append(ul, render.Range(e))

	assert.Equal(t, 1, rec.Count(diag.ErrDuplicateKey))
	assert.Equal(t, []string{"b", "a"}, texts(ul), "the last occurrence wins")
	assert.Equal(t, 2, e.Len())

	a := byText(ul)["a"]
	list.SetValue([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, texts(ul))
	assert.Same(t, a, byText(ul)["a"])

	list.SetValue([]string{"b", "b"})
	assert.Equal(t, 2, rec.Count(diag.ErrDuplicateKey))
	assert.Equal(t, []string{"b"}, texts(ul))
}

func TestUnhashableKeys(t *testing.T) {
	rec, restore := diag.Record()
	defer restore()

	list := cell.New([]any{1, []int{2}, "x"})
	e := each.Identity(list, func(v *cell.Cell[any], _ *cell.Cell[int], _ cell.Readable[[]any]) render.Renderable {
		li := host.NewElement("li")
		render.Append(li, render.Text[any](v))
		return render.Node(li)
	})
	ul := host.NewElement("ul")
	render.Append(ul, render.Range(e))

	assert.Equal(t, 1, rec.Count(diag.ErrUnhashableKey))
	assert.Equal(t, []string{"1", "x"}, texts(ul), "unhashable elements are skipped")

	list.SetValue([]any{"x", map[string]int{}, 1})
	assert.Equal(t, 2, rec.Count(diag.ErrUnhashableKey))
	assert.Equal(t, []string{"x", "1"}, texts(ul))
	assert.Equal(t, 2, e.Len())
}

func TestSiblingsArePreserved(t *testing.T) {
	calls := 0
	list := cell.New([]string{"a"})
	ul := host.NewElement("ul")
	render.Append(ul,
		render.Node(host.NewElement("li", host.NewText("head"))),
		render.Range(each.Identity(list, label(&calls))),
		render.Node(host.NewElement("li", host.NewText("foot"))),
	)

	list.SetValue([]string{"x", "a", "y"})
	assert.Equal(t, []string{"head", "x", "a", "y", "foot"}, texts(ul))

	list.SetValue([]string{})
	assert.Equal(t, []string{"head", "foot"}, texts(ul))
}

type group struct {
	Name  string
	Items *cell.Cell[[]string]
}

func TestNestedRanges(t *testing.T) {
	//  <ul>
	//    <!--> <li>fruit</li> <!--> <li>apple</li> <!--> ... <!-->
	//    ^ outer            ^ inner                         ^
	fruit := group{"fruit", cell.New([]string{"apple", "pear"})}
	veg := group{"veg", cell.New([]string{"kale"})}
	groups := cell.New([]group{fruit, veg})

	inner := 0
	e, err := each.ByField[group, string](groups, "Name", func(v *cell.Cell[group], _ *cell.Cell[int], _ cell.Readable[[]group]) render.Renderable {
		g := v.Value()
		return render.Seq(
			render.Node(host.NewElement("li", host.NewText(g.Name))),
			render.Range(each.Identity(g.Items, label(&inner))),
		)
	})
	require.NoError(t, err)

	ul := host.NewElement("ul")
	render.Append(ul, render.Range(e))
	assert.Equal(t, []string{"fruit", "apple", "pear", "veg", "kale"}, texts(ul))

	fruit.Items.SetValue([]string{"pear", "fig", "apple"})
	assert.Equal(t, []string{"fruit", "pear", "fig", "apple", "veg", "kale"}, texts(ul))
	assert.Equal(t, 4, inner)

	groups.SetValue([]group{veg, fruit})
	assert.Equal(t, []string{"veg", "kale", "fruit", "pear", "fig", "apple"}, texts(ul))
	assert.Equal(t, 4, inner)

	groups.SetValue([]group{fruit})
	assert.Equal(t, []string{"fruit", "pear", "fig", "apple"}, texts(ul))
	assert.Zero(t, veg.Items.SubscriberCount(), "dropped items tear down their nested ranges")
}

func TestDispose(t *testing.T) {
	rec, restore := diag.Record()
	defer restore()

	calls := 0
	list := cell.New([]string{"a"})
	ul := host.NewElement("ul")
	e := each.Identity(list, label(&calls))
	render.Append(ul, render.Range(e))
	require.Equal(t, 1, list.SubscriberCount())

	e.Dispose()
	assert.Zero(t, list.SubscriberCount())
	assert.Zero(t, e.Len())

	list.SetValue([]string{"b"})
	assert.Equal(t, []string{"a"}, texts(ul))

	e.Dispose()
	assert.Equal(t, 1, rec.Count(diag.ErrDoubleDispose))
}

func TestRenderTwice(t *testing.T) {
	rec, restore := diag.Record()
	defer restore()

	calls := 0
	list := cell.New([]string{"a"})
	e := each.Identity(list, label(&calls))
	render.Append(host.NewElement("ul"), render.Range(e))

	other := host.NewElement("ul")
	render.Append(other, render.Range(e))
	assert.Zero(t, other.Len())
	assert.Equal(t, 1, rec.Count(diag.ErrRerender))
	assert.Equal(t, 1, calls)
}

func TestDetachedSentinels(t *testing.T) {
	rec, restore := diag.Record()
	defer restore()

	calls := 0
	list := cell.New([]string{"a"})
	ul := host.NewElement("ul")
	render.Append(ul, render.Range(each.Identity(list, label(&calls))))

	ul.ChildNodes()[0].Remove()
	list.SetValue([]string{"b"})
	assert.Equal(t, 1, rec.Count(diag.ErrDetached))
	assert.Zero(t, list.SubscriberCount())
	assert.Equal(t, []string{"a"}, texts(ul))
}

func TestSelfDisposesAfterCollection(t *testing.T) {
	calls := 0
	list := cell.New([]string{"a"})
	func() {
		ul := host.NewElement("ul")
		render.Append(ul, render.Range(each.Identity(list, label(&calls))))
	}()
	require.Equal(t, 1, list.SubscriberCount())

	require.Eventually(t, func() bool {
		runtime.GC()
		list.SetValue([]string{"a", "b"})
		return list.SubscriberCount() == 0
	}, 5*time.Second, 10*time.Millisecond)
}
