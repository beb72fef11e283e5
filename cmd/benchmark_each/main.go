package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/delaneyj/signaldom/pkg/cell"
	"github.com/delaneyj/signaldom/pkg/each"
	"github.com/delaneyj/signaldom/pkg/host"
	"github.com/delaneyj/signaldom/pkg/render"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

type row struct {
	ID    int
	Label string
}

type scenario struct {
	name string
	// step derives the next list from the current one.
	step func(rows []row, iteration int) []row
}

var scenarios = []scenario{
	{
		name: "swap rows",
		step: func(rows []row, _ int) []row {
			next := append([]row(nil), rows...)
			if len(next) > 2 {
				next[1], next[len(next)-2] = next[len(next)-2], next[1]
			}
			return next
		},
	},
	{
		name: "update every 10th",
		step: func(rows []row, i int) []row {
			next := append([]row(nil), rows...)
			for j := 0; j < len(next); j += 10 {
				next[j].Label = fmt.Sprintf("row %d !%d", next[j].ID, i)
			}
			return next
		},
	},
	{
		name: "append 1",
		step: func(rows []row, i int) []row {
			id := len(rows) + i*1_000_000
			return append(append([]row(nil), rows...), row{ID: id, Label: strconv.Itoa(id)})
		},
	},
	{
		name: "remove first",
		step: func(rows []row, _ int) []row {
			if len(rows) == 0 {
				return rows
			}
			return append([]row(nil), rows[1:]...)
		},
	},
	{
		name: "reverse",
		step: func(rows []row, _ int) []row {
			next := make([]row, len(rows))
			for i, r := range rows {
				next[len(rows)-1-i] = r
			}
			return next
		},
	},
}

func main() {
	log.Print("Starting keyed range benchmark, please wait...")
	defer log.Print("Finished keyed range benchmark")

	sizes := []int{100, 1_000, 10_000}
	iterations := 50

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"scenario", "rows", "passes", "rendered", "time", "per pass", "rows/sec",
	})

	for _, sc := range scenarios {
		for _, size := range sizes {
			log.Printf("Running '%s' with %d rows", sc.name, size)
			rendered, elapsed := run(sc, size, iterations)

			perPass := elapsed / time.Duration(iterations)
			rowsPerSec := float64(size*iterations) / elapsed.Seconds()
			table.Append([]string{
				sc.name,
				humanize.Comma(int64(size)),
				strconv.Itoa(iterations),
				humanize.Comma(int64(rendered)),
				elapsed.String(),
				perPass.String(),
				humanize.Comma(int64(rowsPerSec)),
			})
		}
	}

	table.Render()
}

// run renders size rows, then applies sc iterations times and returns the
// number of factory calls made after the initial render.
func run(sc scenario, size, iterations int) (int, time.Duration) {
	rows := make([]row, size)
	for i := range rows {
		rows[i] = row{ID: i, Label: fmt.Sprintf("row %d", i)}
	}
	list := cell.New(rows)

	rendered := 0
	rng, err := each.ByField[row, int](list, "ID", func(v *cell.Cell[row], i *cell.Cell[int], _ cell.Readable[[]row]) render.Renderable {
		rendered++
		tr := host.NewElement("tr")
		render.Append(tr,
			render.Text[int](i),
			render.Text[string](cell.Map(v, func(r row) string { return r.Label })),
		)
		return render.Node(tr)
	})
	if err != nil {
		log.Fatal(err)
	}
	defer rng.Dispose()

	tbody := host.NewElement("tbody")
	render.Append(tbody, render.Range(rng))
	rendered = 0

	start := time.Now()
	for i := range iterations {
		list.SetValue(sc.step(list.Value(), i))
	}
	return rendered, time.Since(start)
}
