package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/delaneyj/signaldom/pkg/cell"
	"github.com/delaneyj/signaldom/pkg/each"
	"github.com/delaneyj/signaldom/pkg/host"
	"github.com/delaneyj/signaldom/pkg/render"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

var cpuProfile = flag.String("cpuprofile", "", "write a CPU profile to this file")

func main() {
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	log.Printf("warming up")
	benchmarkPropagate(false)
	benchmarkShuffle(false)

	benchmarkPropagate(true)
	benchmarkShuffle(true)
}

var (
	ww    = []int{1, 10, 100, 1_000}
	hh    = []int{1, 10, 100, 1_000}
	nn    = []int{10, 100, 1_000, 10_000}
	iters = 100
)

func addOne(v int) int {
	return v + 1
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func appendCalc(tbl table.Writer, name string, tach *tachymeter.Tachymeter) {
	calc := tach.Calc()
	tbl.AppendRows([]table.Row{
		{
			name,
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		},
	})
}

// benchmarkPropagate builds w chains of h mapped cells hanging off one source
// and times single writes to the source.
func benchmarkPropagate(shouldRender bool) {
	tbl := newTable("Cell propagation")

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			src := cell.New(1)
			sink := 0
			var chains []*cell.Derived[int]
			for range w {
				var last cell.Readable[int] = src
				for range h {
					d := cell.Map(last, addOne)
					chains = append(chains, d)
					last = d
				}
				last.Subscribe(func(v int, _ cell.Disposer) {
					sink += v
				})
			}

			for range iters {
				start := time.Now()
				src.Update(addOne)
				tach.AddTime(time.Since(start))
			}

			if want := w * iters; sink < want {
				log.Panicf("propagate %dx%d: sink %d below %d", w, h, sink, want)
			}
			for _, d := range chains {
				d.Dispose()
			}

			appendCalc(tbl, fmt.Sprintf("propagate: %d * %d", w, h), tach)
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkShuffle renders n keyed rows and times reconciling a shuffled
// copy of the list, which moves every row without rendering any.
func benchmarkShuffle(shouldRender bool) {
	tbl := newTable("Keyed shuffle")

	for _, n := range nn {
		tach := tachymeter.New(&tachymeter.Config{Size: iters})

		rows := make([]int, n)
		for i := range rows {
			rows[i] = i
		}
		list := cell.New(rows)
		rendered := 0
		rng := each.Identity(list, func(v *cell.Cell[int], _ *cell.Cell[int], _ cell.Readable[[]int]) render.Renderable {
			rendered++
			return render.Node(host.NewElement("tr", host.NewText(strconv.Itoa(v.Value()))))
		})
		tbody := host.NewElement("tbody")
		render.Append(tbody, render.Range(rng))

		for range iters {
			next := make([]int, n)
			copy(next, list.Value())
			rand.Shuffle(n, func(i, j int) {
				next[i], next[j] = next[j], next[i]
			})

			start := time.Now()
			list.SetValue(next)
			tach.AddTime(time.Since(start))
		}

		if rendered != n {
			log.Panicf("shuffle %d: rendered %d rows", n, rendered)
		}
		rng.Dispose()

		appendCalc(tbl, fmt.Sprintf("shuffle: %d rows", n), tach)
	}

	if shouldRender {
		tbl.Render()
	}
}
