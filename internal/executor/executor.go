package executor

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"dario.lol/lfiam/internal/ui"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/spf13/cobra"
)

// Executor runs a read-only command in two stages, setup and fetch, and hands the result to
// display.
type Executor[S any, T any] struct {
	cmd             *cobra.Command
	args            []string
	setupMessage    string
	setup           func(cmd *cobra.Command) (S, error)
	fetchingMessage string
	fetch           func(ctx context.Context, setupResult S, args []string, progress chan<- string) (T, error)
	display         func(cmd *cobra.Command, setupResult S, data T, fetchDuration time.Duration, err error) error
}

type Builder[S any, T any] struct {
	executor *Executor[S, T]
}

func NewBuilder[S any, T any]() *Builder[S, T] {
	return &Builder[S, T]{executor: &Executor[S, T]{}}
}

func (b *Builder[S, T]) Setup(message string, task func(*cobra.Command) (S, error)) *Builder[S, T] {
	b.executor.setupMessage = message
	b.executor.setup = task
	return b
}

func (b *Builder[S, T]) Fetch(message string, task func(context.Context, S, []string, chan<- string) (T, error)) *Builder[S, T] {
	b.executor.fetchingMessage = message
	b.executor.fetch = task
	return b
}

func (b *Builder[S, T]) Display(displayFunc func(*cobra.Command, S, T, time.Duration, error) error) *Builder[S, T] {
	b.executor.display = displayFunc
	return b
}

func (b *Builder[S, T]) Build() *Executor[S, T] {
	if b.executor.fetch == nil || b.executor.display == nil {
		panic("Executor is not fully configured: Fetch and Display are required.")
	}
	return b.executor
}

func (e *Executor[S, T]) CobraRunE() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e.cmd = cmd
		e.args = args
		return e.Execute()
	}
}

func (e *Executor[S, T]) Execute() error {
	var zeroS S
	var zeroT T

	ctx := e.cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := e.cmd.OutOrStdout()
	writer := bufio.NewWriter(out)
	animate := isTerminal(out)

	var setupResult S
	if e.setup != nil {
		var setupErr error
		setupResult, _, setupErr = runStage(writer, e.setupMessage, animate, func(chan<- string) (S, error) {
			return e.setup(e.cmd)
		})
		if setupErr != nil {
			return e.display(e.cmd, zeroS, zeroT, 0, setupErr)
		}
	}

	fetchResult, fetchDuration, fetchErr := runStage(writer, e.fetchingMessage, animate, func(p chan<- string) (T, error) {
		return e.fetch(ctx, setupResult, e.args, p)
	})

	return e.display(e.cmd, setupResult, fetchResult, fetchDuration, fetchErr)
}

type result[T any] struct {
	res      T
	err      error
	duration time.Duration
}

// runStage shows a spinner with the latest progress message while task runs. Nothing is
// printed when the output is not a terminal.
func runStage[T any](writer *bufio.Writer, initialMessage string, animate bool, task func(progress chan<- string) (T, error)) (T, time.Duration, error) {
	resultChan := make(chan result[T], 1)
	progressChan := make(chan string)
	currentMessage := initialMessage

	go func() {
		start := time.Now()
		res, err := task(progressChan)
		duration := time.Since(start)
		close(progressChan)
		resultChan <- result[T]{res: res, err: err, duration: duration}
	}()

	var tick <-chan time.Time
	if animate {
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()
		tick = ticker.C
	}
	s := ui.StyledSpinner()
	progress := progressChan

	for {
		select {
		case res := <-resultChan:
			if animate {
				fmt.Fprint(writer, ansiEraseLine)
				_ = writer.Flush()
			}
			return res.res, res.duration, res.err
		case msg, ok := <-progress:
			if !ok {
				progress = nil
				continue
			}
			currentMessage = msg
		case <-tick:
			s, _ = s.Update(spinner.Tick())
			fmt.Fprintf(writer, "%s%s %s...", ansiEraseLine, s.View(), currentMessage)
			_ = writer.Flush()
		}
	}
}
