package cmd

import (
	"fmt"
	"strings"

	"dario.lol/lfiam/internal/config"
	"dario.lol/lfiam/internal/ui"
	"dario.lol/lfiam/internal/ui/response"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI defaults",
	}

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			path, err := config.Path()
			if err != nil {
				return err
			}
			response.New().To(cmd.OutOrStdout()).
				Summary(ui.Label("file"), path).
				Summary(ui.Label("profile"), orNone(cfg.Profile)).
				Summary(ui.Label("region"), orNone(cfg.Region)).
				Summary(ui.Label("log_level"), cfg.LogLevel).
				Summary(ui.Label("retry_max_attempts"), cfg.RetryMaxAttempts).
				Summary(ui.Label("timeout"), cfg.Timeout).
				Display()
			return nil
		},
	}

	configSetCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: fmt.Sprintf("Persist a default (%s)", strings.Join(config.Keys, ", ")),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])
			if _, err := config.Set(key, args[1]); err != nil {
				return err
			}
			response.New().To(cmd.OutOrStdout()).
				FooterSuccess("Configuration updated: %s set to %s", ui.Code.Render(key), args[1]).
				Display()
			return nil
		},
	}

	configCmd.AddCommand(configShowCmd, configSetCmd)
	return configCmd
}

func orNone(s string) string {
	if s == "" {
		return ui.Muted("(sdk default)")
	}
	return s
}
