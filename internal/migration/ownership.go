package migration

import (
	"reflect"

	lftypes "github.com/aws/aws-sdk-go-v2/service/lakeformation/types"
)

const catalogIDField = "CatalogId"

// CatalogID finds the catalog a permission's resource lives in. Resource kinds nest the id at
// different depths, so the record is searched depth first; a CatalogId on a struct wins over
// ones nested below it. Kinds without a CatalogId field report false.
func CatalogID(resource *lftypes.Resource) (string, bool) {
	if resource == nil {
		return "", false
	}
	return findCatalogID(reflect.ValueOf(resource))
}

func findCatalogID(v reflect.Value) (string, bool) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return "", false
		}
		return findCatalogID(v.Elem())

	case reflect.Struct:
		t := v.Type()
		if f, ok := t.FieldByName(catalogIDField); ok && f.IsExported() && len(f.Index) == 1 {
			if id, ok := stringValue(v.Field(f.Index[0])); ok {
				return id, true
			}
		}
		for i := range t.NumField() {
			if !t.Field(i).IsExported() || t.Field(i).Name == catalogIDField {
				continue
			}
			if id, ok := findCatalogID(v.Field(i)); ok {
				return id, true
			}
		}

	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if id, ok := findCatalogID(v.Index(i)); ok {
				return id, true
			}
		}
	}
	return "", false
}

func stringValue(v reflect.Value) (string, bool) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.String || v.String() == "" {
		return "", false
	}
	return v.String(), true
}
