package migration

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	lftypes "github.com/aws/aws-sdk-go-v2/service/lakeformation/types"
)

// DescribeResource renders a permission's resource for the progress narrative.
func DescribeResource(r *lftypes.Resource) string {
	switch {
	case r == nil:
		return "<none>"
	case r.Catalog != nil:
		return "Catalog{}"
	case r.Database != nil:
		return fmt.Sprintf("Database{CatalogId: %s, Name: %s}",
			aws.ToString(r.Database.CatalogId), aws.ToString(r.Database.Name))
	case r.Table != nil:
		name := aws.ToString(r.Table.Name)
		if r.Table.TableWildcard != nil {
			name = "*"
		}
		return fmt.Sprintf("Table{CatalogId: %s, DatabaseName: %s, Name: %s}",
			aws.ToString(r.Table.CatalogId), aws.ToString(r.Table.DatabaseName), name)
	case r.TableWithColumns != nil:
		t := r.TableWithColumns
		columns := strings.Join(t.ColumnNames, ",")
		if t.ColumnWildcard != nil {
			columns = "*"
		}
		return fmt.Sprintf("TableWithColumns{CatalogId: %s, DatabaseName: %s, Name: %s, Columns: %s}",
			aws.ToString(t.CatalogId), aws.ToString(t.DatabaseName), aws.ToString(t.Name), columns)
	case r.DataLocation != nil:
		return fmt.Sprintf("DataLocation{CatalogId: %s, ResourceArn: %s}",
			aws.ToString(r.DataLocation.CatalogId), aws.ToString(r.DataLocation.ResourceArn))
	case r.DataCellsFilter != nil:
		f := r.DataCellsFilter
		return fmt.Sprintf("DataCellsFilter{TableCatalogId: %s, DatabaseName: %s, TableName: %s, Name: %s}",
			aws.ToString(f.TableCatalogId), aws.ToString(f.DatabaseName), aws.ToString(f.TableName), aws.ToString(f.Name))
	case r.LFTag != nil:
		return fmt.Sprintf("LFTag{CatalogId: %s, TagKey: %s, TagValues: %s}",
			aws.ToString(r.LFTag.CatalogId), aws.ToString(r.LFTag.TagKey), strings.Join(r.LFTag.TagValues, ","))
	case r.LFTagPolicy != nil:
		return fmt.Sprintf("LFTagPolicy{CatalogId: %s, ResourceType: %s}",
			aws.ToString(r.LFTagPolicy.CatalogId), r.LFTagPolicy.ResourceType)
	}
	return "Resource{}"
}
