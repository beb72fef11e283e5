package demo

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

//go:embed todo.yaml
var defaultScript []byte

var ErrInvalidScript = errors.New("invalid script")

const (
	FilterAll    = "all"
	FilterActive = "active"
	FilterDone   = "done"
)

type Item struct {
	ID    int    `yaml:"id"`
	Label string `yaml:"label"`
	Done  bool   `yaml:"done"`
}

// Step replaces the item list, the filter, or both. Omitted fields keep
// their previous value.
type Step struct {
	Name   string `yaml:"name"`
	Items  []Item `yaml:"items"`
	Filter string `yaml:"filter"`
}

type Script struct {
	Title string `yaml:"title"`
	Steps []Step `yaml:"steps"`
}

func Default() (*Script, error) {
	return Parse(defaultScript)
}

func Load(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Parse(b []byte) (*Script, error) {
	s := &Script{}
	if err := yaml.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidScript)
	}
	for i, step := range s.Steps {
		switch step.Filter {
		case "", FilterAll, FilterActive, FilterDone:
		default:
			return nil, fmt.Errorf("%w: step %d has unknown filter %q", ErrInvalidScript, i, step.Filter)
		}
		if step.Name == "" {
			s.Steps[i].Name = fmt.Sprintf("step %d", i+1)
		}
	}
	return s, nil
}
