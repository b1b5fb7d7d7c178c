package migration

import (
	"context"

	"dario.lol/lfiam/internal/awsclient"
	"dario.lol/lfiam/internal/ui"
	"github.com/aws/aws-sdk-go-v2/service/lakeformation"
	"go.uber.org/zap"
)

// RevokeNonSentinel removes every grant held by someone other than the sentinel on resources the
// caller's account owns. A failing revoke is reported and skipped.
func (m *Migrator) RevokeNonSentinel(ctx context.Context, progress chan<- string) error {
	permissions, err := awsclient.ListPermissions(ctx, m.lf)
	if err != nil {
		return err
	}

	for _, p := range permissions {
		if IsSentinel(p.Principal) {
			continue
		}
		principal := PrincipalID(p.Principal)
		resource := DescribeResource(p.Resource)
		notify(progress, "... Revoking permissions of %s on resource %s ...", principal, resource)

		if catalogID, _ := CatalogID(p.Resource); catalogID != m.accountID {
			notify(progress, "The resource '%s' is skipped since it is not owned by the account %s.", resource, m.accountID)
			m.report.ForeignSkipped++
			continue
		}

		m.log.Debug("revoking permissions",
			zap.String("principal", principal),
			zap.String("resource", resource),
			zap.Int("permissions", len(p.Permissions)))
		_, err := m.lf.RevokePermissions(ctx, &lakeformation.RevokePermissionsInput{
			Principal:                  p.Principal,
			Resource:                   p.Resource,
			Permissions:                p.Permissions,
			PermissionsWithGrantOption: p.PermissionsWithGrantOption,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.log.Warn("revoke failed", zap.String("principal", principal), zap.Error(err))
			notify(progress, "%s", ui.WarningMessage("Failed to revoke permissions of "+principal, err))
			m.report.RevokeFailures++
			continue
		}
		m.report.PermissionsRevoked++
	}
	return nil
}
