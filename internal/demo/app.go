// Package demo drives a small todo list through the reactive core. Each
// scripted step writes to the source cells and reports the resulting markup
// together with how much of the list had to be rendered.
package demo

import (
	"fmt"

	"github.com/delaneyj/signaldom/pkg/bind"
	"github.com/delaneyj/signaldom/pkg/branch"
	"github.com/delaneyj/signaldom/pkg/cell"
	"github.com/delaneyj/signaldom/pkg/each"
	"github.com/delaneyj/signaldom/pkg/host"
	"github.com/delaneyj/signaldom/pkg/render"
)

// App is the todo page:
//
//	<section>
//	  <h1> "all done" | "n left" </h1>
//	  <ul> keyed list of visible items </ul>
//	  <footer> "showing <filter>" </footer>
//	</section>
type App struct {
	items     *cell.Cell[[]Item]
	filter    *cell.Cell[string]
	visible   *cell.Derived[[]Item]
	remaining *cell.Derived[int]

	root     *host.Node
	list     *each.Each[Item, int]
	header   *branch.Switch[int, bool]
	footer   *branch.Switch[string, string]
	rendered int
}

type Options struct {
	// Trace names the source cells so every write is logged.
	Trace bool
}

func NewApp(opts Options) (*App, error) {
	var itemOpts []cell.Option[[]Item]
	var filterOpts []cell.Option[string]
	if opts.Trace {
		itemOpts = append(itemOpts, cell.WithName[[]Item]("items"))
		filterOpts = append(filterOpts, cell.WithName[string]("filter"))
	}

	a := &App{
		items:  cell.New([]Item{}, itemOpts...),
		filter: cell.New(FilterAll, filterOpts...),
	}
	a.visible = cell.Combine2(a.items, a.filter, visible)
	a.remaining = cell.Map(a.items, func(items []Item) int {
		n := 0
		for _, it := range items {
			if !it.Done {
				n++
			}
		}
		return n
	})

	list, err := each.ByField[Item, int](a.visible, "ID", a.item)
	if err != nil {
		return nil, err
	}
	a.list = list

	left := cell.Map(a.remaining, func(n int) string { return fmt.Sprintf("%d left", n) })
	a.header = branch.When(a.remaining, func(n int) bool { return n == 0 },
		func(int) render.Renderable { return render.Value("all done") },
		func(int) render.Renderable { return render.Text[string](left) },
	)

	a.footer = branch.New(a.filter).From(map[string]branch.Factory[string]{
		FilterAll:    showing,
		FilterActive: showing,
		FilterDone:   showing,
	})

	h1 := host.NewElement("h1")
	render.Append(h1, a.header.Renderable())
	ul := host.NewElement("ul")
	render.Append(ul, render.Range(a.list))
	footer := host.NewElement("footer")
	render.Append(footer, a.footer.Renderable())
	a.root = host.NewElement("section", h1, ul, footer)
	return a, nil
}

func visible(items []Item, filter string) []Item {
	if filter == FilterAll {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Done == (filter == FilterDone) {
			out = append(out, it)
		}
	}
	return out
}

func showing(filter string) render.Renderable {
	return render.Value("showing " + filter)
}

func (a *App) item(v *cell.Cell[Item], _ *cell.Cell[int], _ cell.Readable[[]Item]) render.Renderable {
	a.rendered++

	class := cell.Map(v, func(it Item) string {
		if it.Done {
			return "todo done"
		}
		return "todo"
	})
	done := cell.Map(v, func(it Item) bool { return it.Done })
	label := cell.Map(v, func(it Item) string { return it.Label })

	li := host.NewElement("li")
	bind.Attr(li, "class", class)
	input := host.NewElement("input").SetAttr("type", "checkbox")
	bind.Attr(input, "checked", done)
	span := host.NewElement("span")
	render.Append(span, render.Text[string](label))
	li.Append(input, span)
	return render.Node(li)
}

// Apply writes step to the source cells.
func (a *App) Apply(step Step) {
	if step.Items != nil {
		a.items.SetValue(step.Items)
	}
	if step.Filter != "" {
		a.filter.SetValue(step.Filter)
	}
}

func (a *App) Root() *host.Node {
	return a.root
}

// Rendered counts item factory invocations so far.
func (a *App) Rendered() int {
	return a.rendered
}

// Visible is the number of items currently listed.
func (a *App) Visible() int {
	return a.list.Len()
}

func (a *App) Dispose() {
	a.list.Dispose()
	a.header.Dispose()
	a.footer.Dispose()
	a.visible.Dispose()
	a.remaining.Dispose()
}
