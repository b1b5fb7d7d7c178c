package migration

import (
	"reflect"
	"testing"

	"dario.lol/lfiam/internal/awsclient/awsclienttest"
	"github.com/aws/aws-sdk-go-v2/aws"
	lftypes "github.com/aws/aws-sdk-go-v2/service/lakeformation/types"
	"github.com/stretchr/testify/assert"
)

func TestCatalogID(t *testing.T) {
	tests := map[string]struct {
		resource *lftypes.Resource
		want     string
		found    bool
	}{
		"nil resource":   {resource: nil},
		"empty resource": {resource: &lftypes.Resource{}},
		"catalog has no CatalogId field": {
			resource: &lftypes.Resource{Catalog: &lftypes.CatalogResource{}},
		},
		"database": {
			resource: ptr(awsclienttest.DatabaseResource("111122223333", "sales")),
			want:     "111122223333", found: true,
		},
		"table": {
			resource: ptr(awsclienttest.TableResource("999988887777", "shared", "events")),
			want:     "999988887777", found: true,
		},
		"table wildcard": {
			resource: &lftypes.Resource{Table: &lftypes.TableResource{
				DatabaseName:  aws.String("sales"),
				TableWildcard: &lftypes.TableWildcard{},
				CatalogId:     aws.String("111122223333"),
			}},
			want: "111122223333", found: true,
		},
		"table with columns": {
			resource: &lftypes.Resource{TableWithColumns: &lftypes.TableWithColumnsResource{
				DatabaseName:   aws.String("sales"),
				Name:           aws.String("orders"),
				ColumnWildcard: &lftypes.ColumnWildcard{ExcludedColumnNames: []string{"ssn"}},
				CatalogId:      aws.String("111122223333"),
			}},
			want: "111122223333", found: true,
		},
		"data location": {
			resource: ptr(awsclienttest.LocationResource("111122223333", "arn:aws:s3:::raw")),
			want:     "111122223333", found: true,
		},
		"tag key": {
			resource: &lftypes.Resource{LFTag: &lftypes.LFTagKeyResource{
				CatalogId: aws.String("444455556666"),
				TagKey:    aws.String("domain"),
				TagValues: []string{"sales"},
			}},
			want: "444455556666", found: true,
		},
		"data cells filter only carries a table catalog": {
			resource: &lftypes.Resource{DataCellsFilter: &lftypes.DataCellsFilterResource{
				TableCatalogId: aws.String("111122223333"),
				DatabaseName:   aws.String("sales"),
				TableName:      aws.String("orders"),
				Name:           aws.String("eu_only"),
			}},
		},
		"empty catalog id": {
			resource: &lftypes.Resource{Database: &lftypes.DatabaseResource{CatalogId: aws.String(""), Name: aws.String("x")}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, found := CatalogID(tc.resource)
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.want, got)
		})
	}
}

// findCatalogIDOf searches any value, not just a Resource.
func findCatalogIDOf(v any) (string, bool) {
	return findCatalogID(reflect.ValueOf(v))
}

func TestFindCatalogIDPrefersOuterField(t *testing.T) {
	type inner struct{ CatalogId *string }
	type outer struct {
		Nested    *inner
		CatalogId *string
	}
	id, ok := findCatalogIDOf(outer{Nested: &inner{CatalogId: aws.String("inner")}, CatalogId: aws.String("outer")})
	assert.True(t, ok)
	assert.Equal(t, "outer", id)

	id, ok = findCatalogIDOf(outer{Nested: &inner{CatalogId: aws.String("inner")}})
	assert.True(t, ok)
	assert.Equal(t, "inner", id)

	id, ok = findCatalogIDOf([]outer{{}, {CatalogId: aws.String("second")}})
	assert.True(t, ok)
	assert.Equal(t, "second", id)
}

func TestDescribeResource(t *testing.T) {
	assert.Equal(t, "<none>", DescribeResource(nil))
	assert.Equal(t, "Catalog{}", DescribeResource(&lftypes.Resource{Catalog: &lftypes.CatalogResource{}}))
	assert.Equal(t, "Table{CatalogId: 1, DatabaseName: sales, Name: *}", DescribeResource(&lftypes.Resource{Table: &lftypes.TableResource{
		CatalogId:     aws.String("1"),
		DatabaseName:  aws.String("sales"),
		TableWildcard: &lftypes.TableWildcard{},
	}}))
	assert.Equal(t, "DataLocation{CatalogId: 1, ResourceArn: arn:aws:s3:::raw}", DescribeResource(ptr(awsclienttest.LocationResource("1", "arn:aws:s3:::raw"))))
}

func ptr[T any](v T) *T { return &v }
