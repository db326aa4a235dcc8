package challenge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// PressEnterPrompt is shown by TerminalGate before each result.
const PressEnterPrompt = "Press ENTER to see the result..."

// Gate decides when the next challenge may run. Returning io.EOF ends the
// walkthrough without error.
type Gate interface {
	Wait(ctx context.Context) error
}

// TerminalGate waits for a line on its input.
type TerminalGate struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalGate prompts on out and reads lines from in.
func NewTerminalGate(in io.Reader, out io.Writer) *TerminalGate {
	return &TerminalGate{in: bufio.NewReader(in), out: out}
}

// Wait prints the prompt and blocks until a line is read.
func (g *TerminalGate) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(g.out, PressEnterPrompt); err != nil {
		return err
	}
	_, err := g.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	return err
}

// NoGate never blocks.
type NoGate struct{}

// Wait returns immediately.
func (NoGate) Wait(ctx context.Context) error { return ctx.Err() }

// Runner runs challenges in order behind a gate.
type Runner struct {
	Session *Session
	Report  Report
	Gate    Gate
	// AfterEach, when set, is called once per challenge that ran.
	AfterEach func(c Challenge, elapsed time.Duration, err error)
}

// Run executes each challenge. A challenge error stops the walkthrough.
func (r *Runner) Run(ctx context.Context, challenges []Challenge) error {
	gate := r.Gate
	if gate == nil {
		gate = NoGate{}
	}
	logger := r.Session.Logger()

	for _, c := range challenges {
		r.Report.Section(c.Number, c.Description)

		if err := gate.Wait(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("walkthrough ended at prompt", slog.Int("challenge", c.Number))
				return nil
			}
			return err
		}

		logger.Debug("running challenge", slog.Int("challenge", c.Number), slog.String("slug", c.Slug))
		start := time.Now()
		err := c.Run(ctx, r.Session, r.Report)
		if r.AfterEach != nil {
			r.AfterEach(c, time.Since(start), err)
		}
		if err != nil {
			return fmt.Errorf("challenge %d (%s): %w", c.Number, c.Slug, err)
		}
	}
	return nil
}
