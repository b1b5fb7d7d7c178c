package executor

import (
	"context"
	"io"
	"time"

	"dario.lol/lfiam/internal/awsclient"
	"dario.lol/lfiam/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Context holds all execution state passed through steps
type Context struct {
	// Command info
	Cmd  *cobra.Command
	Args []string
	Ctx  context.Context
	Out  io.Writer

	// Common values populated by With* methods
	Config   config.Config
	Clients  *awsclient.Clients
	Identity awsclient.Identity
	Logger   *zap.Logger
	RunID    string

	// Execution metadata
	Duration time.Duration
	Error    error
	Declined bool

	cancel context.CancelFunc

	// Typed data store for custom results
	data map[string]any
}

func newContext(cmd *cobra.Command, args []string) *Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		Cmd:    cmd,
		Args:   args,
		Ctx:    ctx,
		Out:    cmd.OutOrStdout(),
		Logger: zap.NewNop(),
		cancel: func() {},
		data:   make(map[string]any),
	}
}

// Set stores a typed value in the context
func Set[T any](ctx *Context, key Key[T], value T) {
	ctx.data[key.name] = value
}

// Get retrieves a typed value from the context
func Get[T any](ctx *Context, key Key[T]) T {
	if typed, ok := ctx.data[key.name].(T); ok {
		return typed
	}
	var zero T
	return zero
}

// Has checks if a key exists in the context
func Has[T any](ctx *Context, key Key[T]) bool {
	_, ok := ctx.data[key.name]
	return ok
}
