package cmd

import (
	"context"
	"time"

	"dario.lol/lfiam/internal/awsclient"
	"dario.lol/lfiam/internal/executor"
	"dario.lol/lfiam/internal/ui"
	"dario.lol/lfiam/internal/ui/response"
	"github.com/spf13/cobra"
)

func newWhoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the AWS identity a run would use",
		Args:  cobra.NoArgs,
		RunE: executor.NewBuilder[executor.Session, awsclient.Identity]().
			Setup("Loading AWS configuration", openSession).
			Fetch("Fetching caller identity", fetchIdentity).
			Display(printIdentityInfo).
			Build().
			CobraRunE(),
	}
}

func openSession(cmd *cobra.Command) (executor.Session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return executor.OpenSession(ctx, cmd, clientFactory)
}

func fetchIdentity(ctx context.Context, session executor.Session, _ []string, _ chan<- string) (awsclient.Identity, error) {
	ctx, cancel := session.Bound(ctx)
	defer cancel()
	return awsclient.CallerIdentity(ctx, session.Clients.STS)
}

func printIdentityInfo(cmd *cobra.Command, session executor.Session, id awsclient.Identity, fetchDuration time.Duration, err error) error {
	if err != nil {
		response.New().To(cmd.OutOrStdout()).Error("Error fetching caller identity", err).Display()
		return err
	}

	content := response.NewItemContent().
		Add("Account:", ui.Text(id.AccountID)).
		Add("ARN:", ui.Text(id.ARN)).
		Add("User ID:", ui.Muted(id.UserID)).
		Add("Profile:", ui.Text(session.Clients.Profile)).
		Add("Region:", ui.Text(session.Clients.Region))

	response.New().To(cmd.OutOrStdout()).
		Title("Caller Identity").
		AddItem("Identity", content.String()).
		FooterSuccess("Identity resolved (took %v)", fetchDuration.Round(time.Millisecond)).
		Display()
	return nil
}
