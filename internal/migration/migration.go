// Package migration switches a Lake Formation catalog to IAM-only access control.
//
// The work is split into phases that run in a fixed order. Each phase drains every listing it
// needs before it mutates anything, and reports what it does through a progress channel.
package migration

import (
	"context"
	"fmt"
	"slices"

	"dario.lol/lfiam/internal/awsclient"
	"dario.lol/lfiam/internal/constants"
	"github.com/aws/aws-sdk-go-v2/aws"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
	lftypes "github.com/aws/aws-sdk-go-v2/service/lakeformation/types"
	"go.uber.org/zap"
)

// Phase is one numbered part of the migration.
type Phase struct {
	Title string
	Run   func(ctx context.Context, progress chan<- string) error
}

// Report counts what a run changed.
type Report struct {
	SettingsUpdated       bool
	LocationsDeregistered int
	CatalogGranted        bool
	DatabasesGranted      int
	DatabaseLinksSkipped  int
	TablesGranted         int
	TableLinksSkipped     int
	PermissionsRevoked    int
	ForeignSkipped        int
	RevokeFailures        int
}

// Migrator runs the phases against one account and keeps the Report of what changed.
type Migrator struct {
	lf        awsclient.LakeFormationAPI
	glue      awsclient.GlueAPI
	accountID string
	log       *zap.Logger
	report    Report
}

// New returns a Migrator for accountID. A nil logger discards log output.
func New(lf awsclient.LakeFormationAPI, glue awsclient.GlueAPI, accountID string, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{lf: lf, glue: glue, accountID: accountID, log: logger}
}

var phaseTitles = []string{
	"Modifying Data Lake Settings to use IAM Controls only",
	"De-registering all the data lake locations",
	fmt.Sprintf("Granting CREATE_DATABASE to %s for catalog", constants.SentinelPrincipal),
	fmt.Sprintf("Granting ALL to %s for existing databases and tables", constants.SentinelPrincipal),
	fmt.Sprintf("Revoking all the permissions except %s", constants.SentinelPrincipal),
}

// PhaseTitles names the phases in the order Phases returns them.
func PhaseTitles() []string {
	return slices.Clone(phaseTitles)
}

// Phases lists the migration in the order it has to run.
func (m *Migrator) Phases() []Phase {
	runs := []func(context.Context, chan<- string) error{
		m.UpdateSettings,
		m.DeregisterLocations,
		m.GrantCatalog,
		m.GrantDatabasesAndTables,
		m.RevokeNonSentinel,
	}
	phases := make([]Phase, len(runs))
	for i, run := range runs {
		phases[i] = Phase{Title: phaseTitles[i], Run: run}
	}
	return phases
}

// Report returns the counts collected so far, also after a phase failed.
func (m *Migrator) Report() Report {
	return m.report
}

func notify(progress chan<- string, format string, a ...any) {
	if progress == nil {
		return
	}
	progress <- fmt.Sprintf(format, a...)
}

func sentinel() *lftypes.DataLakePrincipal {
	return &lftypes.DataLakePrincipal{DataLakePrincipalIdentifier: aws.String(constants.SentinelPrincipal)}
}

// SentinelDefaults is the only default grant left once the migration ran.
func SentinelDefaults() []lftypes.PrincipalPermissions {
	return []lftypes.PrincipalPermissions{{
		Principal:   sentinel(),
		Permissions: []lftypes.Permission{lftypes.PermissionAll},
	}}
}

func glueSentinelDefaults() []gluetypes.PrincipalPermissions {
	return []gluetypes.PrincipalPermissions{{
		Principal:   &gluetypes.DataLakePrincipal{DataLakePrincipalIdentifier: aws.String(constants.SentinelPrincipal)},
		Permissions: []gluetypes.Permission{gluetypes.PermissionAll},
	}}
}

// IsSentinelDefault reports whether perms is exactly the sentinel/ALL grant.
func IsSentinelDefault(perms []lftypes.PrincipalPermissions) bool {
	if len(perms) != 1 {
		return false
	}
	p := perms[0]
	return IsSentinel(p.Principal) &&
		len(p.Permissions) == 1 && p.Permissions[0] == lftypes.PermissionAll
}

// IsSentinel reports whether principal is IAM_ALLOWED_PRINCIPALS.
func IsSentinel(principal *lftypes.DataLakePrincipal) bool {
	return principal != nil && aws.ToString(principal.DataLakePrincipalIdentifier) == constants.SentinelPrincipal
}

// PrincipalID is the principal's identifier, or "<none>" for a missing principal.
func PrincipalID(principal *lftypes.DataLakePrincipal) string {
	if principal == nil {
		return "<none>"
	}
	return aws.ToString(principal.DataLakePrincipalIdentifier)
}
