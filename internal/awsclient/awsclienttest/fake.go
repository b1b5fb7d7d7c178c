// Package awsclienttest provides an in-memory Lake Formation, Glue and STS used by tests.
package awsclienttest

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"dario.lol/lfiam/internal/awsclient"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/aws/aws-sdk-go-v2/service/lakeformation"
	lftypes "github.com/aws/aws-sdk-go-v2/service/lakeformation/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

const DefaultAccountID = "111122223333"

// Fake keeps catalog state in memory and records every call. Listings are served in pages of
// PageSize items so callers have to follow NextToken.
type Fake struct {
	mu sync.Mutex

	AccountID string
	PageSize  int

	Settings    lftypes.DataLakeSettings
	Locations   []string
	Permissions []lftypes.PrincipalResourcePermissions
	Databases   []gluetypes.Database
	Tables      map[string][]gluetypes.Table

	// Errors makes the named operation fail.
	Errors map[string]error
	// RevokeError, when set, decides per request whether a revoke fails.
	RevokeError func(in *lakeformation.RevokePermissionsInput) error

	Calls           []string
	Grants          []lakeformation.GrantPermissionsInput
	Revokes         []lakeformation.RevokePermissionsInput
	Deregistered    []string
	DatabaseUpdates []glue.UpdateDatabaseInput
}

var (
	_ awsclient.STSAPI           = (*Fake)(nil)
	_ awsclient.GlueAPI          = (*Fake)(nil)
	_ awsclient.LakeFormationAPI = (*Fake)(nil)
)

var mutating = []string{"PutDataLakeSettings", "DeregisterResource", "GrantPermissions", "RevokePermissions", "UpdateDatabase"}

func New() *Fake {
	return &Fake{
		AccountID: DefaultAccountID,
		PageSize:  2,
		Tables:    map[string][]gluetypes.Table{},
		Errors:    map[string]error{},
	}
}

// Clients wraps the fake as a session for the given region.
func (f *Fake) Clients(region string) *awsclient.Clients {
	return &awsclient.Clients{
		Profile:       "default",
		Region:        region,
		STS:           f,
		Glue:          f,
		LakeFormation: f,
	}
}

// Factory returns an awsclient.Factory that always hands out this fake.
func (f *Fake) Factory() awsclient.Factory {
	return func(_ context.Context, opts awsclient.Options) (*awsclient.Clients, error) {
		region := opts.Region
		if region == "" {
			region = "us-east-1"
		}
		c := f.Clients(region)
		c.Profile = awsclient.ProfileName(opts.Profile)
		return c, nil
	}
}

// MutatingCalls counts calls that change remote state.
func (f *Fake) MutatingCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if slices.Contains(mutating, c) {
			n++
		}
	}
	return n
}

func (f *Fake) record(op string) error {
	f.Calls = append(f.Calls, op)
	if err, ok := f.Errors[op]; ok {
		return err
	}
	return nil
}

func page[T any](items []T, token *string, size int) ([]T, *string, error) {
	start := 0
	if t := aws.ToString(token); t != "" {
		n, err := strconv.Atoi(t)
		if err != nil || n < 0 || n > len(items) {
			return nil, nil, fmt.Errorf("invalid next token %q", t)
		}
		start = n
	}
	if size <= 0 {
		size = len(items)
	}
	end := min(start+size, len(items))
	out := slices.Clone(items[start:end])
	if end < len(items) {
		return out, aws.String(strconv.Itoa(end)), nil
	}
	return out, nil, nil
}

func (f *Fake) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetCallerIdentity"); err != nil {
		return nil, err
	}
	return &sts.GetCallerIdentityOutput{
		Account: aws.String(f.AccountID),
		Arn:     aws.String(fmt.Sprintf("arn:aws:iam::%s:role/DataLakeAdmin", f.AccountID)),
		UserId:  aws.String("AROAEXAMPLE"),
	}, nil
}

func (f *Fake) GetDataLakeSettings(_ context.Context, _ *lakeformation.GetDataLakeSettingsInput, _ ...func(*lakeformation.Options)) (*lakeformation.GetDataLakeSettingsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetDataLakeSettings"); err != nil {
		return nil, err
	}
	settings := f.Settings
	return &lakeformation.GetDataLakeSettingsOutput{DataLakeSettings: &settings}, nil
}

func (f *Fake) PutDataLakeSettings(_ context.Context, in *lakeformation.PutDataLakeSettingsInput, _ ...func(*lakeformation.Options)) (*lakeformation.PutDataLakeSettingsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("PutDataLakeSettings"); err != nil {
		return nil, err
	}
	if in.DataLakeSettings == nil {
		return nil, fmt.Errorf("DataLakeSettings is required")
	}
	f.Settings = *in.DataLakeSettings
	return &lakeformation.PutDataLakeSettingsOutput{}, nil
}

func (f *Fake) ListResources(_ context.Context, in *lakeformation.ListResourcesInput, _ ...func(*lakeformation.Options)) (*lakeformation.ListResourcesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListResources"); err != nil {
		return nil, err
	}
	arns, next, err := page(f.Locations, in.NextToken, f.PageSize)
	if err != nil {
		return nil, err
	}
	infos := make([]lftypes.ResourceInfo, 0, len(arns))
	for _, arn := range arns {
		infos = append(infos, lftypes.ResourceInfo{ResourceArn: aws.String(arn)})
	}
	return &lakeformation.ListResourcesOutput{ResourceInfoList: infos, NextToken: next}, nil
}

func (f *Fake) DeregisterResource(_ context.Context, in *lakeformation.DeregisterResourceInput, _ ...func(*lakeformation.Options)) (*lakeformation.DeregisterResourceOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeregisterResource"); err != nil {
		return nil, err
	}
	arn := aws.ToString(in.ResourceArn)
	i := slices.Index(f.Locations, arn)
	if i < 0 {
		return nil, fmt.Errorf("EntityNotFoundException: %s is not registered", arn)
	}
	f.Locations = slices.Delete(f.Locations, i, i+1)
	f.Deregistered = append(f.Deregistered, arn)
	return &lakeformation.DeregisterResourceOutput{}, nil
}

func (f *Fake) GrantPermissions(_ context.Context, in *lakeformation.GrantPermissionsInput, _ ...func(*lakeformation.Options)) (*lakeformation.GrantPermissionsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GrantPermissions"); err != nil {
		return nil, err
	}
	if in.Principal == nil || in.Resource == nil {
		return nil, fmt.Errorf("InvalidInputException: principal and resource are required")
	}
	f.Grants = append(f.Grants, *in)

	resource := f.normalize(*in.Resource)
	principal := aws.ToString(in.Principal.DataLakePrincipalIdentifier)
	key := f.ResourceKey(resource)
	for i, p := range f.Permissions {
		if aws.ToString(p.Principal.DataLakePrincipalIdentifier) == principal && f.ResourceKey(*p.Resource) == key {
			f.Permissions[i].Permissions = union(p.Permissions, in.Permissions)
			f.Permissions[i].PermissionsWithGrantOption = union(p.PermissionsWithGrantOption, in.PermissionsWithGrantOption)
			return &lakeformation.GrantPermissionsOutput{}, nil
		}
	}
	f.Permissions = append(f.Permissions, lftypes.PrincipalResourcePermissions{
		Principal:                  Principal(principal),
		Resource:                   &resource,
		Permissions:                slices.Clone(in.Permissions),
		PermissionsWithGrantOption: slices.Clone(in.PermissionsWithGrantOption),
	})
	return &lakeformation.GrantPermissionsOutput{}, nil
}

func (f *Fake) RevokePermissions(_ context.Context, in *lakeformation.RevokePermissionsInput, _ ...func(*lakeformation.Options)) (*lakeformation.RevokePermissionsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("RevokePermissions"); err != nil {
		return nil, err
	}
	f.Revokes = append(f.Revokes, *in)
	if f.RevokeError != nil {
		if err := f.RevokeError(in); err != nil {
			return nil, err
		}
	}

	principal := aws.ToString(in.Principal.DataLakePrincipalIdentifier)
	key := f.ResourceKey(*in.Resource)
	for i, p := range f.Permissions {
		if aws.ToString(p.Principal.DataLakePrincipalIdentifier) != principal || f.ResourceKey(*p.Resource) != key {
			continue
		}
		p.Permissions = subtract(p.Permissions, in.Permissions)
		p.PermissionsWithGrantOption = subtract(p.PermissionsWithGrantOption, in.PermissionsWithGrantOption)
		if len(p.Permissions) == 0 && len(p.PermissionsWithGrantOption) == 0 {
			f.Permissions = slices.Delete(f.Permissions, i, i+1)
		} else {
			f.Permissions[i] = p
		}
		return &lakeformation.RevokePermissionsOutput{}, nil
	}
	return nil, fmt.Errorf("InvalidInputException: no permissions revoked for %s on %s", principal, key)
}

func (f *Fake) ListPermissions(_ context.Context, in *lakeformation.ListPermissionsInput, _ ...func(*lakeformation.Options)) (*lakeformation.ListPermissionsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListPermissions"); err != nil {
		return nil, err
	}
	perms, next, err := page(f.Permissions, in.NextToken, f.PageSize)
	if err != nil {
		return nil, err
	}
	return &lakeformation.ListPermissionsOutput{PrincipalResourcePermissions: perms, NextToken: next}, nil
}

func (f *Fake) GetDatabases(_ context.Context, in *glue.GetDatabasesInput, _ ...func(*glue.Options)) (*glue.GetDatabasesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetDatabases"); err != nil {
		return nil, err
	}
	dbs, next, err := page(f.Databases, in.NextToken, f.PageSize)
	if err != nil {
		return nil, err
	}
	return &glue.GetDatabasesOutput{DatabaseList: dbs, NextToken: next}, nil
}

func (f *Fake) GetTables(_ context.Context, in *glue.GetTablesInput, _ ...func(*glue.Options)) (*glue.GetTablesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetTables"); err != nil {
		return nil, err
	}
	name := aws.ToString(in.DatabaseName)
	if !f.hasDatabase(name) {
		return nil, &gluetypes.EntityNotFoundException{Message: aws.String("Database " + name + " not found.")}
	}
	tables, next, err := page(f.Tables[name], in.NextToken, f.PageSize)
	if err != nil {
		return nil, err
	}
	return &glue.GetTablesOutput{TableList: tables, NextToken: next}, nil
}

func (f *Fake) UpdateDatabase(_ context.Context, in *glue.UpdateDatabaseInput, _ ...func(*glue.Options)) (*glue.UpdateDatabaseOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateDatabase"); err != nil {
		return nil, err
	}
	f.DatabaseUpdates = append(f.DatabaseUpdates, *in)
	name := aws.ToString(in.Name)
	for i, db := range f.Databases {
		if aws.ToString(db.Name) != name {
			continue
		}
		input := in.DatabaseInput
		db.Description = input.Description
		db.LocationUri = input.LocationUri
		db.Parameters = input.Parameters
		db.CreateTableDefaultPermissions = input.CreateTableDefaultPermissions
		f.Databases[i] = db
		return &glue.UpdateDatabaseOutput{}, nil
	}
	return nil, &gluetypes.EntityNotFoundException{Message: aws.String("Database " + name + " not found.")}
}

func (f *Fake) hasDatabase(name string) bool {
	return slices.ContainsFunc(f.Databases, func(db gluetypes.Database) bool {
		return aws.ToString(db.Name) == name
	})
}

// normalize fills the catalog id the service would default to the caller's account.
func (f *Fake) normalize(r lftypes.Resource) lftypes.Resource {
	switch {
	case r.Database != nil && r.Database.CatalogId == nil:
		db := *r.Database
		db.CatalogId = aws.String(f.AccountID)
		r.Database = &db
	case r.Table != nil && r.Table.CatalogId == nil:
		t := *r.Table
		t.CatalogId = aws.String(f.AccountID)
		r.Table = &t
	}
	return r
}

// ResourceKey identifies a resource regardless of whether its catalog id was spelled out.
func (f *Fake) ResourceKey(r lftypes.Resource) string {
	catalog := func(id *string) string {
		if id == nil {
			return f.AccountID
		}
		return *id
	}
	switch {
	case r.Catalog != nil:
		return "catalog"
	case r.Database != nil:
		return fmt.Sprintf("database:%s:%s", catalog(r.Database.CatalogId), aws.ToString(r.Database.Name))
	case r.Table != nil:
		name := aws.ToString(r.Table.Name)
		if r.Table.TableWildcard != nil {
			name = "*"
		}
		return fmt.Sprintf("table:%s:%s:%s", catalog(r.Table.CatalogId), aws.ToString(r.Table.DatabaseName), name)
	case r.TableWithColumns != nil:
		return fmt.Sprintf("columns:%s:%s:%s", catalog(r.TableWithColumns.CatalogId), aws.ToString(r.TableWithColumns.DatabaseName), aws.ToString(r.TableWithColumns.Name))
	case r.DataLocation != nil:
		return fmt.Sprintf("location:%s:%s", catalog(r.DataLocation.CatalogId), aws.ToString(r.DataLocation.ResourceArn))
	case r.LFTag != nil:
		return fmt.Sprintf("tag:%s:%s", catalog(r.LFTag.CatalogId), aws.ToString(r.LFTag.TagKey))
	}
	return "unknown"
}

func union(a, b []lftypes.Permission) []lftypes.Permission {
	out := slices.Clone(a)
	for _, p := range b {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func subtract(a, b []lftypes.Permission) []lftypes.Permission {
	return slices.DeleteFunc(slices.Clone(a), func(p lftypes.Permission) bool {
		return slices.Contains(b, p)
	})
}
