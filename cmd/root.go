package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"dario.lol/lfiam/internal/awsclient"
	"dario.lol/lfiam/internal/constants"
	"dario.lol/lfiam/internal/executor"
	"dario.lol/lfiam/internal/flags"
	"dario.lol/lfiam/internal/migration"
	"dario.lol/lfiam/internal/ui"
	"dario.lol/lfiam/internal/ui/response"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"
)

const confirmQuestion = "Are you sure to make modifications on Lake Formation permissions to use only IAM access control? (y/n):"

// newClients is swapped out by tests.
var newClients awsclient.Factory = awsclient.New

var migratorKey = executor.NewKey[*migration.Migrator]("migrator")

func clientFactory(ctx context.Context, opts awsclient.Options) (*awsclient.Clients, error) {
	return newClients(ctx, opts)
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.ServiceName,
		Short: fmt.Sprintf("Switch Lake Formation to IAM-only access control (version %s)", constants.Version),
		Long: fmt.Sprintf(`Switches the Lake Formation permissions of an account to IAM access control only.

Default permissions of new databases and tables are set to %[1]s, every data lake
location is de-registered, ALL is granted to %[1]s on existing databases and tables,
and every other permission on resources owned by the account is revoked.`, constants.SentinelPrincipal),
		Version:      constants.Version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         migrationPipeline().RunE(),
	}

	flags.RegisterAWS(rootCmd)
	flags.RegisterConfirmation(rootCmd)

	rootCmd.AddCommand(newWhoAmICmd(), newVerifyCmd(), newConfigCmd())
	return rootCmd
}

func migrationPipeline() *executor.ContextBuilder {
	b := executor.New().
		Do(announceArguments).
		WithClients(clientFactory).
		WithIdentity().
		Do(printIdentity).
		Confirm(confirmQuestion).
		Step(executor.NewStep(migratorKey, "Preparing migration").Func(newMigrator).Silent())

	for i, title := range migration.PhaseTitles() {
		b.Step(executor.NewTask(title, func(ctx *executor.Context, progress chan<- string) error {
			return executor.Get(ctx, migratorKey).Phases()[i].Run(ctx.Ctx, progress)
		}))
	}

	return b.Display(displayMigration)
}

func newMigrator(ctx *executor.Context, _ chan<- string) (*migration.Migrator, error) {
	return migration.New(ctx.Clients.LakeFormation, ctx.Clients.Glue, ctx.Identity.AccountID, ctx.Logger), nil
}

func announceArguments(ctx *executor.Context) error {
	if profile, ok := flags.Changed(ctx.Cmd, flags.ProfileFlag); ok {
		fmt.Fprintln(ctx.Out, ui.Muted(fmt.Sprintf("Session uses %s profile based on the argument.", profile)))
	}
	if region, ok := flags.Changed(ctx.Cmd, flags.RegionFlag); ok {
		fmt.Fprintln(ctx.Out, ui.Muted(fmt.Sprintf("Session uses %s region based on the argument.", region)))
	}
	return nil
}

func printIdentity(ctx *executor.Context) error {
	fmt.Fprintf(ctx.Out, "- Account: %s\n- Profile: %s\n- Region: %s\n",
		ctx.Identity.AccountID, ctx.Clients.Profile, ctx.Clients.Region)
	return nil
}

func displayMigration(ctx *executor.Context) error {
	if ctx.Declined {
		fmt.Fprintln(ctx.Out, ui.Muted("No changes were made."))
		return nil
	}

	if !executor.Has(ctx, migratorKey) {
		return ctx.Error
	}

	report := executor.Get(ctx, migratorKey).Report()
	rb := response.New().To(ctx.Out)
	for _, line := range []struct {
		key   string
		value any
	}{
		{"settings_updated", report.SettingsUpdated},
		{"locations_deregistered", report.LocationsDeregistered},
		{"catalog_granted", report.CatalogGranted},
		{"databases_granted", report.DatabasesGranted},
		{"database_links_skipped", report.DatabaseLinksSkipped},
		{"tables_granted", report.TablesGranted},
		{"table_links_skipped", report.TableLinksSkipped},
		{"permissions_revoked", report.PermissionsRevoked},
		{"foreign_skipped", report.ForeignSkipped},
		{"revoke_failures", report.RevokeFailures},
		{"run_id", ctx.RunID},
		{"duration", ctx.Duration.Round(time.Millisecond)},
	} {
		rb.Summary(ui.Label(line.key), line.value)
	}

	if ctx.Error != nil {
		rb.FooterWarning("Stopped before completion, the catalog is only partially migrated").Display()
		return ctx.Error
	}

	if report.RevokeFailures > 0 {
		rb.FooterWarning("%d permission(s) could not be revoked", report.RevokeFailures)
	}
	rb.FooterSuccess("Completed!").Display()
	return nil
}

func configureColorScheme(_ lipgloss.LightDarkFunc) fang.ColorScheme {
	return ui.FangTheme()
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := fang.Execute(ctx, NewRootCmd(), fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {}), fang.WithColorSchemeFunc(configureColorScheme), fang.WithVersion(constants.Version)); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorBox("Error executing command", err))
		stop()
		os.Exit(1)
	}
}
