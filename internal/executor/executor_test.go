package executor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dario.lol/lfiam/internal/config"
	"dario.lol/lfiam/internal/flags"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd(input string, args ...string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "test", SilenceUsage: true, SilenceErrors: true}
	flags.RegisterConfirmation(cmd)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(append([]string{}, args...))
	return cmd, &out
}

func recordTask(message string, ran *[]string, progress ...string) *Task {
	return NewTask(message, func(_ *Context, p chan<- string) error {
		for _, line := range progress {
			p <- line
		}
		*ran = append(*ran, message)
		return nil
	})
}

func TestStepsAreNumberedAndPrintProgress(t *testing.T) {
	cmd, out := newTestCmd("y\n")
	var ran []string
	cmd.RunE = New().
		Confirm("Proceed? (y/n):").
		Step(recordTask("Modifying settings", &ran, "... first ...", "... second ...")).
		Step(recordTask("Revoking", &ran)).
		Display(func(ctx *Context) error { return ctx.Error }).
		RunE()

	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"Modifying settings", "Revoking"}, ran)

	text := out.String()
	assert.Contains(t, text, "1. Modifying settings...")
	assert.Contains(t, text, "2. Revoking...")
	assert.Less(t, strings.Index(text, "... first ..."), strings.Index(text, "... second ..."))
	assert.Less(t, strings.Index(text, "... second ..."), strings.Index(text, "2. Revoking..."))
}

func TestDeclineStopsBeforeAnyStep(t *testing.T) {
	cmd, _ := newTestCmd("maybe\nn\n")
	var ran []string
	var declined bool
	cmd.RunE = New().
		Confirm("Proceed? (y/n):").
		Step(recordTask("Modifying settings", &ran)).
		Display(func(ctx *Context) error {
			declined = ctx.Declined
			return ctx.Error
		}).
		RunE()

	require.NoError(t, cmd.Execute())
	assert.True(t, declined)
	assert.Empty(t, ran)
}

func TestYesSkipsTheQuestion(t *testing.T) {
	cmd, out := newTestCmd("", "--yes")
	var ran []string
	cmd.RunE = New().
		Confirm("Proceed? (y/n):").
		Step(recordTask("Modifying settings", &ran)).
		RunE()

	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"Modifying settings"}, ran)
	assert.NotContains(t, out.String(), "Proceed?")
}

func TestFailedStepEndsThePipeline(t *testing.T) {
	cmd, _ := newTestCmd("", "--yes")
	boom := errors.New("boom")
	var ran []string
	var seen error
	cmd.RunE = New().
		Step(NewTask("Failing", func(*Context, chan<- string) error { return boom })).
		Step(recordTask("Never", &ran)).
		Display(func(ctx *Context) error {
			seen = ctx.Error
			return ctx.Error
		}).
		RunE()

	err := cmd.Execute()
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, seen, boom)
	assert.Empty(t, ran)
}

func TestTypedStepStoresItsResult(t *testing.T) {
	cmd, _ := newTestCmd("")
	count := NewKey[int]("count")
	var got int
	cmd.RunE = New().
		Step(NewStep(count, "Counting").Func(func(*Context, chan<- string) (int, error) { return 3, nil })).
		Display(func(ctx *Context) error {
			assert.True(t, Has(ctx, count))
			got = Get(ctx, count)
			return nil
		}).
		RunE()

	require.NoError(t, cmd.Execute())
	assert.Equal(t, 3, got)
}

func TestExecutorPassesSetupToFetchAndDisplay(t *testing.T) {
	cmd, _ := newTestCmd("")
	var shown string
	cmd.RunE = NewBuilder[string, int]().
		Setup("Loading", func(*cobra.Command) (string, error) { return "session", nil }).
		Fetch("Fetching", func(_ context.Context, s string, _ []string, p chan<- string) (int, error) {
			p <- "halfway"
			return len(s), nil
		}).
		Display(func(_ *cobra.Command, s string, n int, _ time.Duration, err error) error {
			shown = s
			assert.Equal(t, 7, n)
			return err
		}).
		Build().
		CobraRunE()

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "session", shown)
}

func TestExecutorSkipsFetchWhenSetupFails(t *testing.T) {
	cmd, _ := newTestCmd("")
	boom := errors.New("no region")
	fetched := false
	cmd.RunE = NewBuilder[string, int]().
		Setup("Loading", func(*cobra.Command) (string, error) { return "", boom }).
		Fetch("Fetching", func(context.Context, string, []string, chan<- string) (int, error) {
			fetched = true
			return 0, nil
		}).
		Display(func(_ *cobra.Command, _ string, _ int, _ time.Duration, err error) error { return err }).
		Build().
		CobraRunE()

	assert.ErrorIs(t, cmd.Execute(), boom)
	assert.False(t, fetched)
}

func TestSilentStepHasNoHeader(t *testing.T) {
	cmd, out := newTestCmd("")
	name := NewKey[string]("name")
	var ran []string
	cmd.RunE = New().
		Step(NewStep(name, "Resolving").Func(func(*Context, chan<- string) (string, error) { return "sales", nil }).Silent()).
		Step(recordTask("Granting", &ran)).
		Display(func(ctx *Context) error {
			assert.Equal(t, "sales", Get(ctx, name))
			return nil
		}).
		RunE()

	require.NoError(t, cmd.Execute())
	assert.NotContains(t, out.String(), "Resolving")
	assert.Contains(t, out.String(), "1. ")
	assert.Equal(t, []string{"Granting"}, ran)
}

func TestSessionBound(t *testing.T) {
	ctx, cancel := Session{}.Bound(context.Background())
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)

	ctx, cancel = Session{Config: config.Config{Timeout: time.Minute}}.Bound(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
