package demo

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Report describes the page after one step.
type Report struct {
	Step        string
	HTML        string
	Fingerprint uint64
	// Rendered is the number of items the step had to render from scratch,
	// Reused the number of visible items carried over from earlier steps.
	Rendered int
	Reused   int
}

type ReplayOptions struct {
	Options
	Color bool
}

type palette struct {
	title, step, stat func(format string, a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(string, ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintfFunc()
	}
	return palette{
		title: mk(color.FgMagenta, color.Bold),
		step:  mk(color.FgCyan),
		stat:  mk(color.FgGreen),
	}
}

// Replay applies every step of s to a fresh App and writes a summary of each
// to w.
func Replay(s *Script, w io.Writer, opts ReplayOptions) ([]Report, error) {
	app, err := NewApp(opts.Options)
	if err != nil {
		return nil, err
	}
	defer app.Dispose()

	p := newPalette(opts.Color)
	if s.Title != "" {
		if _, err := fmt.Fprintln(w, p.title("# %s", s.Title)); err != nil {
			return nil, err
		}
	}

	reports := make([]Report, 0, len(s.Steps))
	for i, step := range s.Steps {
		before := app.Rendered()
		app.Apply(step)

		r := Report{
			Step:        step.Name,
			HTML:        app.Root().HTML(),
			Fingerprint: app.Root().Fingerprint(),
			Rendered:    app.Rendered() - before,
		}
		r.Reused = max(app.Visible()-r.Rendered, 0)
		reports = append(reports, r)

		_, err := fmt.Fprintf(w, "%s %s\n  %s\n",
			p.step("[%d] %s", i+1, r.Step),
			p.stat("rendered=%d reused=%d fingerprint=%016x", r.Rendered, r.Reused, r.Fingerprint),
			r.HTML,
		)
		if err != nil {
			return nil, err
		}
	}
	return reports, nil
}
