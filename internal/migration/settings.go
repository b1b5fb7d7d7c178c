package migration

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/lakeformation"
	lftypes "github.com/aws/aws-sdk-go-v2/service/lakeformation/types"
	"go.uber.org/zap"
)

// UpdateSettings replaces both creation defaults with the sentinel grant and leaves every other
// setting (admins, trusted owners, external filtering) as it was.
func (m *Migrator) UpdateSettings(ctx context.Context, _ chan<- string) error {
	out, err := m.lf.GetDataLakeSettings(ctx, &lakeformation.GetDataLakeSettingsInput{})
	if err != nil {
		return fmt.Errorf("failed to get data lake settings: %w", err)
	}

	var settings lftypes.DataLakeSettings
	if out.DataLakeSettings != nil {
		settings = *out.DataLakeSettings
	}
	settings.CreateDatabaseDefaultPermissions = SentinelDefaults()
	settings.CreateTableDefaultPermissions = SentinelDefaults()

	m.log.Debug("putting data lake settings",
		zap.Int("admins", len(settings.DataLakeAdmins)))
	if _, err := m.lf.PutDataLakeSettings(ctx, &lakeformation.PutDataLakeSettingsInput{DataLakeSettings: &settings}); err != nil {
		return fmt.Errorf("failed to put data lake settings: %w", err)
	}
	m.report.SettingsUpdated = true
	return nil
}
