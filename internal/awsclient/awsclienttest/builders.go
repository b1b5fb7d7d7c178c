package awsclienttest

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
	lftypes "github.com/aws/aws-sdk-go-v2/service/lakeformation/types"
)

func Principal(id string) *lftypes.DataLakePrincipal {
	return &lftypes.DataLakePrincipal{DataLakePrincipalIdentifier: aws.String(id)}
}

func Grant(principal string, resource lftypes.Resource, perms ...lftypes.Permission) lftypes.PrincipalResourcePermissions {
	return lftypes.PrincipalResourcePermissions{
		Principal:   Principal(principal),
		Resource:    &resource,
		Permissions: perms,
	}
}

func DatabaseResource(catalogID, name string) lftypes.Resource {
	return lftypes.Resource{Database: &lftypes.DatabaseResource{CatalogId: aws.String(catalogID), Name: aws.String(name)}}
}

func TableResource(catalogID, database, name string) lftypes.Resource {
	return lftypes.Resource{Table: &lftypes.TableResource{
		CatalogId:    aws.String(catalogID),
		DatabaseName: aws.String(database),
		Name:         aws.String(name),
	}}
}

func LocationResource(catalogID, arn string) lftypes.Resource {
	return lftypes.Resource{DataLocation: &lftypes.DataLocationResource{CatalogId: aws.String(catalogID), ResourceArn: aws.String(arn)}}
}

func Database(name string) gluetypes.Database {
	return gluetypes.Database{Name: aws.String(name)}
}

// DatabaseLink is a resource link pointing at a database in another account.
func DatabaseLink(name, targetCatalog, targetName string) gluetypes.Database {
	return gluetypes.Database{
		Name: aws.String(name),
		TargetDatabase: &gluetypes.DatabaseIdentifier{
			CatalogId:    aws.String(targetCatalog),
			DatabaseName: aws.String(targetName),
		},
	}
}

func Table(database, name string) gluetypes.Table {
	return gluetypes.Table{DatabaseName: aws.String(database), Name: aws.String(name)}
}

func TableLink(database, name, targetCatalog string) gluetypes.Table {
	return gluetypes.Table{
		DatabaseName: aws.String(database),
		Name:         aws.String(name),
		TargetTable: &gluetypes.TableIdentifier{
			CatalogId:    aws.String(targetCatalog),
			DatabaseName: aws.String(database),
			Name:         aws.String(name),
		},
	}
}
