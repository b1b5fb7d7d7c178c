package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dario.lol/lfiam/internal/awsclient"
	"dario.lol/lfiam/internal/executor"
	"dario.lol/lfiam/internal/migration"
	"dario.lol/lfiam/internal/pagination"
	"dario.lol/lfiam/internal/ui"
	"dario.lol/lfiam/internal/ui/response"
	lftypes "github.com/aws/aws-sdk-go-v2/service/lakeformation/types"
	"github.com/spf13/cobra"
)

var ErrNotIAMOnly = errors.New("the catalog does not use IAM access control only")

type verifyResult struct {
	Identity     awsclient.Identity
	Verification migration.Verification
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check whether the catalog already uses IAM access control only",
		Long: `Reads the data lake settings, registered locations and permissions, and reports what
still differs from IAM-only access control. Nothing is modified. Exits non-zero when
anything is left to migrate.`,
		Args: cobra.NoArgs,
		RunE: executor.NewBuilder[executor.Session, verifyResult]().
			Setup("Loading AWS configuration", openSession).
			Fetch("Reading Lake Formation state", fetchVerification).
			Display(printVerification).
			Build().
			CobraRunE(),
	}
	pagination.RegisterFlags(cmd)
	return cmd
}

func fetchVerification(ctx context.Context, session executor.Session, _ []string, progress chan<- string) (verifyResult, error) {
	ctx, cancel := session.Bound(ctx)
	defer cancel()

	id, err := awsclient.CallerIdentity(ctx, session.Clients.STS)
	if err != nil {
		return verifyResult{}, err
	}
	m := migration.New(session.Clients.LakeFormation, session.Clients.Glue, id.AccountID, session.Logger)
	v, err := m.Verify(ctx, progress)
	if err != nil {
		return verifyResult{}, err
	}
	return verifyResult{Identity: id, Verification: v}, nil
}

func printVerification(cmd *cobra.Command, session executor.Session, res verifyResult, fetchDuration time.Duration, err error) error {
	rb := response.New().To(cmd.OutOrStdout())
	if err != nil {
		rb.Error("Error reading Lake Formation state", err).Display()
		return err
	}
	v := res.Verification

	rb.Title("IAM-only Verification").
		Summary("Account", res.Identity.AccountID).
		Summary("Region", session.Clients.Region).
		Summary("Database Defaults", status(v.DatabaseDefaultsOK)).
		Summary("Table Defaults", status(v.TableDefaultsOK)).
		Summary("Locations", len(v.Locations)).
		Summary("Offending Grants", len(v.Offending)).
		Summary("Foreign Grants", v.Foreign)

	if len(v.Locations) > 0 {
		rb.AddItem("Registered Locations", ui.BulletList(v.Locations))
	}
	if len(v.Offending) == 0 {
		rb.NoItemsMessage("No grants left to revoke")
	}

	page, info := pagination.Paginate(v.Offending, pagination.GetOptions(cmd))
	for _, p := range page {
		rb.AddItem(migration.PrincipalID(p.Principal), permissionContent(p))
	}
	if info.Limit > 0 && info.Total > 0 {
		rb.Summary("Showing", fmt.Sprintf("%d of %d (page %d)", info.Showing, info.Total, info.Page))
	}

	if !v.OK() {
		rb.FooterWarning("Not in IAM-only state yet (checked in %v)", fetchDuration.Round(time.Millisecond)).Display()
		return ErrNotIAMOnly
	}
	rb.FooterSuccess("The catalog uses IAM access control only (checked in %v)", fetchDuration.Round(time.Millisecond)).Display()
	return nil
}

func permissionContent(p lftypes.PrincipalResourcePermissions) string {
	content := response.NewItemContent().
		Add("Resource:", ui.Text(migration.DescribeResource(p.Resource))).
		Add("Permissions:", ui.Text(joinPermissions(p.Permissions)))
	if len(p.PermissionsWithGrantOption) > 0 {
		content.Add("Grantable:", ui.Text(joinPermissions(p.PermissionsWithGrantOption)))
	}
	return content.String()
}

func joinPermissions(perms []lftypes.Permission) string {
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func status(ok bool) string {
	if ok {
		return ui.Success("IAM only")
	}
	return ui.Warning("custom")
}
