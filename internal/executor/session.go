package executor

import (
	"context"
	"io"

	"dario.lol/lfiam/internal/awsclient"
	"dario.lol/lfiam/internal/config"
	"dario.lol/lfiam/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Session is what every command needs before it can talk to AWS.
type Session struct {
	Config  config.Config
	Clients *awsclient.Clients
	Logger  *zap.Logger
}

// Bound limits ctx to the configured timeout. A zero timeout leaves ctx unbounded.
func (s Session) Bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Config.Timeout > 0 {
		return context.WithTimeout(ctx, s.Config.Timeout)
	}
	return ctx, func() {}
}

// LoadConfig resolves the configuration of cmd and builds the logger it asks for.
func LoadConfig(cmd *cobra.Command, logOut io.Writer) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logging.New(logOut, cfg.LogLevel), nil
}

// OpenSession loads the configuration and creates the AWS clients through factory.
func OpenSession(ctx context.Context, cmd *cobra.Command, factory awsclient.Factory) (Session, error) {
	cfg, logger, err := LoadConfig(cmd, cmd.ErrOrStderr())
	if err != nil {
		return Session{}, err
	}

	clients, err := factory(ctx, awsclient.Options{
		Profile:          cfg.Profile,
		Region:           cfg.Region,
		RetryMaxAttempts: cfg.RetryMaxAttempts,
	})
	if err != nil {
		return Session{}, err
	}
	logger.Debug("session opened",
		zap.String("profile", clients.Profile),
		zap.String("region", clients.Region))
	return Session{Config: cfg, Clients: clients, Logger: logger}, nil
}
