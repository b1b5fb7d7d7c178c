package migration

import (
	"context"
	"fmt"

	"dario.lol/lfiam/internal/awsclient"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lakeformation"
	lftypes "github.com/aws/aws-sdk-go-v2/service/lakeformation/types"
)

// Verification is the read-only state check behind `lfiam verify`.
type Verification struct {
	DatabaseDefaultsOK bool
	TableDefaultsOK    bool
	Locations          []string
	// Offending are non-sentinel grants on resources the account owns.
	Offending []lftypes.PrincipalResourcePermissions
	// Foreign counts non-sentinel grants the account cannot revoke.
	Foreign int
}

func (v Verification) OK() bool {
	return v.DatabaseDefaultsOK && v.TableDefaultsOK && len(v.Locations) == 0 && len(v.Offending) == 0
}

// Verify checks the catalog against the state a completed migration leaves behind. It never
// mutates anything.
func (m *Migrator) Verify(ctx context.Context, progress chan<- string) (Verification, error) {
	var v Verification

	notify(progress, "Reading data lake settings")
	out, err := m.lf.GetDataLakeSettings(ctx, &lakeformation.GetDataLakeSettingsInput{})
	if err != nil {
		return v, fmt.Errorf("failed to get data lake settings: %w", err)
	}
	if s := out.DataLakeSettings; s != nil {
		v.DatabaseDefaultsOK = IsSentinelDefault(s.CreateDatabaseDefaultPermissions)
		v.TableDefaultsOK = IsSentinelDefault(s.CreateTableDefaultPermissions)
	}

	notify(progress, "Listing registered locations")
	resources, err := awsclient.ListResources(ctx, m.lf)
	if err != nil {
		return v, err
	}
	for _, r := range resources {
		v.Locations = append(v.Locations, aws.ToString(r.ResourceArn))
	}

	notify(progress, "Listing permissions")
	permissions, err := awsclient.ListPermissions(ctx, m.lf)
	if err != nil {
		return v, err
	}
	for _, p := range permissions {
		if IsSentinel(p.Principal) {
			continue
		}
		if catalogID, _ := CatalogID(p.Resource); catalogID != m.accountID {
			v.Foreign++
			continue
		}
		v.Offending = append(v.Offending, p)
	}
	return v, nil
}
