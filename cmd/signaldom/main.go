package main

import (
	"context"
	"log"
	"os"

	"github.com/delaneyj/signaldom/internal/demo"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

const (
	noColorKey = "no-color"
	traceKey   = "trace"
)

func main() {
	cmd := &cli.Command{
		Name:  "signaldom",
		Usage: "Reactive cells bound to a document tree",
		Commands: []*cli.Command{
			{
				Name:      "replay",
				Usage:     "Replay a todo script through a keyed list and print every step",
				ArgsUsage: "[script.yaml]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  noColorKey,
						Usage: "Disable colored output",
					},
					&cli.BoolFlag{
						Name:  traceKey,
						Usage: "Log every write to the source cells",
					},
				},
				Action: replay,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func replay(ctx context.Context, cmd *cli.Command) error {
	var (
		script *demo.Script
		err    error
	)
	if path := cmd.Args().First(); path != "" {
		script, err = demo.Load(path)
	} else {
		script, err = demo.Default()
	}
	if err != nil {
		return err
	}

	reports, err := demo.Replay(script, os.Stdout, demo.ReplayOptions{
		Options: demo.Options{Trace: cmd.Bool(traceKey)},
		Color:   !cmd.Bool(noColorKey) && !color.NoColor,
	})
	if err != nil {
		return err
	}
	log.Printf("replayed %d steps", len(reports))
	return nil
}
