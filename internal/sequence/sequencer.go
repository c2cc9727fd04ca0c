// Package sequence runs the one-time initialization steps of the web
// container in strict order before the server process takes over:
// schema migration, admin provisioning, static asset collection.
package sequence

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Step is one initialization action. Steps run at most once per container
// start and must not be re-run concurrently.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Sequencer executes steps in strict order, aborting on the first failure
// so a later step never runs against the debris of an earlier one.
type Sequencer struct {
	steps  []Step
	out    io.Writer
	logger *slog.Logger
}

// New creates a Sequencer writing step banners to out.
func New(logger *slog.Logger, out io.Writer) *Sequencer {
	if out == nil {
		out = io.Discard
	}
	return &Sequencer{logger: logger, out: out}
}

// Add appends a step.
func (s *Sequencer) Add(name string, run func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{Name: name, Run: run})
}

// Run executes all steps in order. The first failing step aborts the
// sequence and its error is returned, wrapped with the step name.
func (s *Sequencer) Run(ctx context.Context) error {
	start := time.Now()
	for i, step := range s.steps {
		fmt.Fprintf(s.out, "=== Step %d/%d: %s ===\n", i+1, len(s.steps), step.Name)
		s.logger.Info("running startup step", "step", step.Name)

		if err := step.Run(ctx); err != nil {
			fmt.Fprintf(s.out, "step %s failed: %v\n", step.Name, err)
			return fmt.Errorf("startup step %s: %w", step.Name, err)
		}
	}
	fmt.Fprintf(s.out, "=== Startup sequence completed in %s ===\n", time.Since(start).Round(time.Millisecond))
	return nil
}
