package migration

import (
	"context"
	"fmt"

	"dario.lol/lfiam/internal/awsclient"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/aws/aws-sdk-go-v2/service/lakeformation"
	lftypes "github.com/aws/aws-sdk-go-v2/service/lakeformation/types"
	"go.uber.org/zap"
)

func (m *Migrator) grant(ctx context.Context, resource lftypes.Resource, perms ...lftypes.Permission) error {
	_, err := m.lf.GrantPermissions(ctx, &lakeformation.GrantPermissionsInput{
		Principal:                  sentinel(),
		Resource:                   &resource,
		Permissions:                perms,
		PermissionsWithGrantOption: []lftypes.Permission{},
	})
	return err
}

// GrantCatalog lets the sentinel create databases in the default catalog.
func (m *Migrator) GrantCatalog(ctx context.Context, _ chan<- string) error {
	m.log.Debug("granting on catalog", zap.String("permission", string(lftypes.PermissionCreateDatabase)))
	if err := m.grant(ctx, lftypes.Resource{Catalog: &lftypes.CatalogResource{}}, lftypes.PermissionCreateDatabase); err != nil {
		return fmt.Errorf("failed to grant CREATE_DATABASE on catalog: %w", err)
	}
	m.report.CatalogGranted = true
	return nil
}

// GrantDatabasesAndTables grants ALL on every database and table of the catalog, and points the
// table creation default of every database at the sentinel. Resource links are never granted.
func (m *Migrator) GrantDatabasesAndTables(ctx context.Context, progress chan<- string) error {
	databases, err := awsclient.ListDatabases(ctx, m.glue)
	if err != nil {
		return err
	}

	for _, db := range databases {
		name := aws.ToString(db.Name)
		notify(progress, "... Granting permissions on database %s ...", name)

		if db.TargetDatabase != nil {
			notify(progress, "Database %s is skipped since it is a resource link.", name)
			m.report.DatabaseLinksSkipped++
			continue
		}

		m.log.Debug("granting on database", zap.String("database", name))
		if err := m.grant(ctx, lftypes.Resource{Database: &lftypes.DatabaseResource{Name: db.Name}}, lftypes.PermissionAll); err != nil {
			return fmt.Errorf("failed to grant ALL on database %s: %w", name, err)
		}
		m.report.DatabasesGranted++

		if _, err := m.glue.UpdateDatabase(ctx, &glue.UpdateDatabaseInput{
			Name:          db.Name,
			DatabaseInput: databaseInput(db),
		}); err != nil {
			return fmt.Errorf("failed to update database %s: %w", name, err)
		}

		if err := m.grantTables(ctx, name, progress); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) grantTables(ctx context.Context, database string, progress chan<- string) error {
	tables, err := awsclient.ListTables(ctx, m.glue, database)
	if err != nil {
		return err
	}

	for _, t := range tables {
		name := aws.ToString(t.Name)
		notify(progress, "... Granting permissions on table %s.%s ...", database, name)

		if t.TargetTable != nil {
			notify(progress, "Table %s.%s is skipped since it is a resource link.", database, name)
			m.report.TableLinksSkipped++
			continue
		}

		m.log.Debug("granting on table", zap.String("database", database), zap.String("table", name))
		resource := lftypes.Resource{Table: &lftypes.TableResource{DatabaseName: aws.String(database), Name: t.Name}}
		if err := m.grant(ctx, resource, lftypes.PermissionAll); err != nil {
			return fmt.Errorf("failed to grant ALL on table %s.%s: %w", database, name, err)
		}
		m.report.TablesGranted++
	}
	return nil
}

// databaseInput rewrites db with the sentinel table default. The location is only sent when
// the database has one; the update rejects an empty location.
func databaseInput(db gluetypes.Database) *gluetypes.DatabaseInput {
	params := db.Parameters
	if params == nil {
		params = map[string]string{}
	}
	input := &gluetypes.DatabaseInput{
		Name:                          db.Name,
		Description:                   aws.String(aws.ToString(db.Description)),
		Parameters:                    params,
		CreateTableDefaultPermissions: glueSentinelDefaults(),
	}
	if uri := aws.ToString(db.LocationUri); uri != "" {
		input.LocationUri = aws.String(uri)
	}
	return input
}
