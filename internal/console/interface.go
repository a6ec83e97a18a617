// Package console runs UI verb steps typed one per line.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"ui-verbs/internal/scenario"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var errExit = errors.New("exit")

type Interface struct {
	runner *scenario.Runner
	logger *zap.Logger
	in     io.Reader
	out    io.Writer

	// reading tracks the goroutine that scans in. It ends once Start has
	// returned, unless it is blocked inside a Read.
	reading sync.WaitGroup
}

type Params struct {
	fx.In

	Runner *scenario.Runner
	Logger *zap.Logger
}

func NewInterface(params Params) *Interface {
	return New(params.Runner, params.Logger, os.Stdin, os.Stdout)
}

func New(runner *scenario.Runner, logger *zap.Logger, in io.Reader, out io.Writer) *Interface {
	return &Interface{
		runner: runner,
		logger: logger.With(zap.String(logg.Layer, "Console")),
		in:     in,
		out:    out,
	}
}

// Start reads steps until exit, end of input or ctx is done. It returns the
// error that ended the session when a step hit a fault the session cannot
// recover from.
func (i *Interface) Start(ctx context.Context) error {
	i.printBanner()
	i.printHelp()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)

	i.reading.Add(1)

	go func() {
		defer i.reading.Done()
		defer close(lines)

		scanner := bufio.NewScanner(i.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(i.out, "\n> ")

		var (
			line string
			ok   bool
		)

		select {
		case <-ctx.Done():
			fmt.Fprintln(i.out, "\n\nInterrupt received, stopping...")

			return nil
		case line, ok = <-lines:
		}

		if !ok {
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		err := i.handleCommand(ctx, input)
		if errors.Is(err, errExit) {
			return nil
		}

		if err != nil {
			i.logger.Error("Command error", zap.Error(err))
			fmt.Fprintf(i.out, "Error: %v\n", err)

			if apperr.IsFatal(err) {
				return err
			}
		}
	}
}

func (i *Interface) handleCommand(ctx context.Context, input string) error {
	switch input {
	case "help", "h":
		i.printHelp()

		return nil
	case "exit", "quit", "q":
		fmt.Fprintln(i.out, "Shutting down...")

		return errExit
	default:
		return i.executeStep(ctx, input)
	}
}

func (i *Interface) executeStep(ctx context.Context, input string) error {
	step, err := scenario.ParseLine(input)
	if err != nil {
		fmt.Fprintf(i.out, "Invalid step: %v\n", err)

		return nil
	}

	res, err := i.runner.Exec(ctx, step)
	if err != nil {
		return err
	}

	mark := "ok"
	if !res.Passed() {
		mark = "FAIL"
	}

	fmt.Fprintf(i.out, "[%s] %s\n", mark, res)

	return nil
}

func (i *Interface) printBanner() {
	banner := `
+-----------------------------------------------------------+
|                        UI Verbs                           |
|      Resilient browser actions, waits and checks          |
+-----------------------------------------------------------+
`
	fmt.Fprintln(i.out, banner)
}

func (i *Interface) printHelp() {
	help := `
Available commands:
  help, h       - Show this help message
  exit, quit, q - Exit the application

Anything else is read as one step in YAML flow form:
  Examples:
    - {action: open, url: "https://example.com"}
    - {action: click, locator: {css: "button[type=submit]"}}
    - {action: verify_title, mode: contains, expect: Example}
    - {action: get_text, row: {rows: tr, reference: {xpath: "./td[1]"}, expected: Jane, target: a.edit}}
`
	fmt.Fprintln(i.out, help)
}
