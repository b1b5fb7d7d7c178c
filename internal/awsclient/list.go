package awsclient

import (
	"context"
	"fmt"

	"dario.lol/lfiam/internal/pagination"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/aws/aws-sdk-go-v2/service/lakeformation"
	lftypes "github.com/aws/aws-sdk-go-v2/service/lakeformation/types"
)

// Every lister drains its paginator before returning.

func ListResources(ctx context.Context, api LakeFormationAPI) ([]lftypes.ResourceInfo, error) {
	p := lakeformation.NewListResourcesPaginator(api, &lakeformation.ListResourcesInput{})
	resources, err := pagination.Collect(ctx, p.HasMorePages, func(ctx context.Context) ([]lftypes.ResourceInfo, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.ResourceInfoList, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list registered resources: %w", err)
	}
	return resources, nil
}

func ListPermissions(ctx context.Context, api LakeFormationAPI) ([]lftypes.PrincipalResourcePermissions, error) {
	p := lakeformation.NewListPermissionsPaginator(api, &lakeformation.ListPermissionsInput{})
	permissions, err := pagination.Collect(ctx, p.HasMorePages, func(ctx context.Context) ([]lftypes.PrincipalResourcePermissions, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.PrincipalResourcePermissions, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return permissions, nil
}

func ListDatabases(ctx context.Context, api GlueAPI) ([]gluetypes.Database, error) {
	p := glue.NewGetDatabasesPaginator(api, &glue.GetDatabasesInput{})
	databases, err := pagination.Collect(ctx, p.HasMorePages, func(ctx context.Context) ([]gluetypes.Database, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.DatabaseList, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	return databases, nil
}

func ListTables(ctx context.Context, api GlueAPI, database string) ([]gluetypes.Table, error) {
	p := glue.NewGetTablesPaginator(api, &glue.GetTablesInput{DatabaseName: aws.String(database)})
	tables, err := pagination.Collect(ctx, p.HasMorePages, func(ctx context.Context) ([]gluetypes.Table, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.TableList, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tables of database %s: %w", database, err)
	}
	return tables, nil
}
