package executor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"dario.lol/lfiam/internal/awsclient"
	"dario.lol/lfiam/internal/flags"
	"dario.lol/lfiam/internal/logging"
	"dario.lol/lfiam/internal/prompt"
	"dario.lol/lfiam/internal/ui"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const (
	ansiEraseLine = "\r\x1b[2K"
	spinnerTick   = 80 * time.Millisecond
)

// errDeclined stops the pipeline without marking the run as failed.
var errDeclined = errors.New("declined")

// step represents a single step in the execution pipeline
type step struct {
	message string
	silent  bool
	run     func(ctx *Context, progress chan<- string) error
}

// ContextBuilder constructs an executor pipeline with context
type ContextBuilder struct {
	steps     []step
	displayFn func(ctx *Context) error
}

// New creates a new context-based executor builder
func New() *ContextBuilder {
	return &ContextBuilder{}
}

// WithClients adds a step that loads the configuration and creates the AWS clients.
func (b *ContextBuilder) WithClients(factory awsclient.Factory) *ContextBuilder {
	return b.Do(func(ctx *Context) error {
		session, err := OpenSession(ctx.Ctx, ctx.Cmd, factory)
		if err != nil {
			return err
		}
		ctx.Config = session.Config
		ctx.Clients = session.Clients
		ctx.RunID = uuid.NewString()
		ctx.Logger = session.Logger
		ctx.Ctx, ctx.cancel = session.Bound(ctx.Ctx)
		return nil
	})
}

// WithIdentity adds a step that resolves the caller's account.
func (b *ContextBuilder) WithIdentity() *ContextBuilder {
	return b.Do(func(ctx *Context) error {
		identity, err := awsclient.CallerIdentity(ctx.Ctx, ctx.Clients.STS)
		if err != nil {
			return err
		}
		ctx.Identity = identity
		ctx.Logger = logging.WithRun(ctx.Logger, ctx.RunID, identity.AccountID)
		return nil
	})
}

// Confirm asks question before the steps that follow it. A decline or Ctrl-C ends the pipeline
// cleanly; --yes skips the question.
func (b *ContextBuilder) Confirm(question string) *ContextBuilder {
	return b.Do(func(ctx *Context) error {
		if yes, _ := ctx.Cmd.Flags().GetBool(flags.YesFlag); yes {
			return nil
		}
		ok, err := prompt.Confirm(ctx.Cmd.InOrStdin(), ctx.Out, question)
		if errors.Is(err, prompt.ErrUserCancelled) {
			return errDeclined
		}
		if err != nil {
			return err
		}
		if !ok {
			return errDeclined
		}
		return nil
	})
}

// Do adds a silent step that only touches the context.
func (b *ContextBuilder) Do(fn func(ctx *Context) error) *ContextBuilder {
	b.steps = append(b.steps, step{
		silent: true,
		run: func(ctx *Context, _ chan<- string) error {
			return fn(ctx)
		},
	})
	return b
}

// Step adds a typed step to the pipeline. Non-silent steps are numbered in the order they run.
func (b *ContextBuilder) Step(s StepRunner) *ContextBuilder {
	b.steps = append(b.steps, step{
		message: s.getMessage(),
		silent:  s.isSilent(),
		run:     s.run,
	})
	return b
}

// Display sets the function that reports the outcome. Its error becomes the command's error.
func (b *ContextBuilder) Display(fn func(ctx *Context) error) *ContextBuilder {
	b.displayFn = fn
	return b
}

// RunE returns a cobra run function
func (b *ContextBuilder) RunE() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return b.execute(cmd, args)
	}
}

func (b *ContextBuilder) execute(cmd *cobra.Command, args []string) error {
	ctx := newContext(cmd, args)
	defer func() { ctx.cancel() }()

	writer := bufio.NewWriter(ctx.Out)
	animate := isTerminal(ctx.Out)
	start := time.Now()

	n := 0
	for _, s := range b.steps {
		var err error
		if s.message != "" && !s.silent {
			n++
			err = runStep(writer, ui.Step(n, s.message), animate, func(progress chan<- string) error {
				return s.run(ctx, progress)
			})
		} else {
			err = s.run(ctx, nil)
		}
		_ = writer.Flush()

		if errors.Is(err, errDeclined) {
			ctx.Declined = true
			break
		}
		if err != nil {
			ctx.Error = err
			ctx.Logger.Debug("step failed", zap.String("step", s.message), zap.Error(err))
			break
		}
	}
	ctx.Duration = time.Since(start)

	if b.displayFn == nil {
		return ctx.Error
	}
	return b.displayFn(ctx)
}

// runStep prints the step header, then every progress line the task sends. On a terminal a
// spinner runs below the last line until the task returns.
func runStep(writer *bufio.Writer, header string, animate bool, task func(progress chan<- string) error) error {
	fmt.Fprintln(writer, header)
	_ = writer.Flush()

	resultChan := make(chan error, 1)
	progressChan := make(chan string)
	go func() {
		err := task(progressChan)
		close(progressChan)
		resultChan <- err
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
		case err := <-resultChan:
			if animate {
				fmt.Fprint(writer, ansiEraseLine)
			}
			_ = writer.Flush()
			return err
		case msg, ok := <-progress:
			if !ok {
				progress = nil
				continue
			}
			if animate {
				fmt.Fprint(writer, ansiEraseLine)
			}
			fmt.Fprintln(writer, msg)
			_ = writer.Flush()
		case <-tick:
			s, _ = s.Update(spinner.Tick())
			fmt.Fprintf(writer, "\r%s %s", s.View(), ui.Muted("working..."))
			_ = writer.Flush()
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
