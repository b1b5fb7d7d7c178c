package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dario.lol/lfiam/internal/awsclient"
	"dario.lol/lfiam/internal/awsclient/awsclienttest"
	"dario.lol/lfiam/internal/migration"
	"dario.lol/lfiam/internal/prompt"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
	lftypes "github.com/aws/aws-sdk-go-v2/service/lakeformation/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analyst = "arn:aws:iam::111122223333:role/analyst"

// isolate keeps the user's config file and AWS environment out of a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, env := range []string{"LFIAM_PROFILE", "LFIAM_REGION", "LFIAM_LOG_LEVEL", "LFIAM_TIMEOUT", "AWS_PROFILE", "AWS_DEFAULT_PROFILE"} {
		t.Setenv(env, "")
	}
	return home
}

func useFake(t *testing.T, fake *awsclienttest.Fake) {
	t.Helper()
	orig := newClients
	newClients = fake.Factory()
	t.Cleanup(func() { newClients = orig })
}

// deadlineSTS records whether each identity lookup ran under a deadline.
type deadlineSTS struct {
	awsclient.STSAPI
	deadlines []bool
}

func (d *deadlineSTS) GetCallerIdentity(ctx context.Context, in *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	_, ok := ctx.Deadline()
	d.deadlines = append(d.deadlines, ok)
	return d.STSAPI.GetCallerIdentity(ctx, in, optFns...)
}

func useDeadlineSTS(t *testing.T, fake *awsclienttest.Fake) *deadlineSTS {
	t.Helper()
	rec := &deadlineSTS{STSAPI: fake}
	orig := newClients
	newClients = func(ctx context.Context, opts awsclient.Options) (*awsclient.Clients, error) {
		c, err := fake.Factory()(ctx, opts)
		if err != nil {
			return nil, err
		}
		c.STS = rec
		return c, nil
	}
	t.Cleanup(func() { newClients = orig })
	return rec
}

func runCLI(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(append([]string{}, args...))
	err := root.Execute()
	return out.String(), err
}

func catalogFake() *awsclienttest.Fake {
	fake := awsclienttest.New()
	fake.Locations = []string{"arn:aws:s3:::raw"}
	fake.Databases = []gluetypes.Database{awsclienttest.Database("sales")}
	fake.Tables["sales"] = []gluetypes.Table{awsclienttest.Table("sales", "orders")}
	fake.Permissions = []lftypes.PrincipalResourcePermissions{
		awsclienttest.Grant(analyst, awsclienttest.DatabaseResource(awsclienttest.DefaultAccountID, "sales"), lftypes.PermissionAll),
	}
	return fake
}

func TestDeclineMakesNoChanges(t *testing.T) {
	isolate(t)
	fake := catalogFake()
	useFake(t, fake)

	out, err := runCLI(t, "n\n")
	require.NoError(t, err)
	assert.Zero(t, fake.MutatingCalls())
	assert.Contains(t, out, "- Account: 111122223333\n- Profile: default\n- Region: us-east-1")
	assert.Contains(t, out, confirmQuestion)
	assert.Contains(t, out, "No changes were made.")
	assert.NotContains(t, out, "Completed!")
}

func TestFullRunAfterReprompt(t *testing.T) {
	isolate(t)
	fake := catalogFake()
	useFake(t, fake)

	out, err := runCLI(t, "garbage\ny\n", "--region", "eu-west-1", "--profile", "lake")
	require.NoError(t, err)

	assert.Contains(t, out, "Session uses lake profile based on the argument.")
	assert.Contains(t, out, "Session uses eu-west-1 region based on the argument.")
	assert.Contains(t, out, "- Profile: lake\n- Region: eu-west-1")
	assert.Equal(t, 2, strings.Count(out, confirmQuestion))
	for i, title := range migration.PhaseTitles() {
		assert.Contains(t, out, fmt.Sprintf("%d. %s...", i+1, title))
	}
	assert.Contains(t, out, "... Deregistering arn:aws:s3:::raw ...")
	assert.Contains(t, out, "... Granting permissions on database sales ...")
	assert.Contains(t, out, "Completed!")

	assert.True(t, migration.IsSentinelDefault(fake.Settings.CreateDatabaseDefaultPermissions))
	assert.True(t, migration.IsSentinelDefault(fake.Settings.CreateTableDefaultPermissions))
	assert.Empty(t, fake.Locations)
	for _, p := range fake.Permissions {
		assert.True(t, migration.IsSentinel(p.Principal), "left %s", migration.PrincipalID(p.Principal))
	}
}

func TestYesSkipsPrompt(t *testing.T) {
	isolate(t)
	fake := catalogFake()
	useFake(t, fake)

	out, err := runCLI(t, "", "-y")
	require.NoError(t, err)
	assert.NotContains(t, out, confirmQuestion)
	assert.Contains(t, out, "Completed!")
}

func TestEndOfInputIsAnError(t *testing.T) {
	isolate(t)
	fake := catalogFake()
	useFake(t, fake)

	_, err := runCLI(t, "")
	assert.ErrorIs(t, err, prompt.ErrNoAnswer)
	assert.Zero(t, fake.MutatingCalls())
}

func TestRemoteErrorAbortsWithPartialSummary(t *testing.T) {
	isolate(t)
	fake := catalogFake()
	fake.Errors["DeregisterResource"] = errors.New("AccessDeniedException: not a data lake admin")
	useFake(t, fake)

	out, err := runCLI(t, "", "--yes")
	require.Error(t, err)
	assert.ErrorContains(t, err, "not a data lake admin")
	assert.Contains(t, out, "partially migrated")
	assert.NotContains(t, out, "Completed!")
	assert.Empty(t, fake.Grants)
}

func TestWhoAmI(t *testing.T) {
	isolate(t)
	fake := awsclienttest.New()
	useFake(t, fake)

	out, err := runCLI(t, "", "whoami", "-r", "ap-southeast-2")
	require.NoError(t, err)
	assert.Contains(t, out, "111122223333")
	assert.Contains(t, out, "arn:aws:iam::111122223333:role/DataLakeAdmin")
	assert.Contains(t, out, "ap-southeast-2")
	assert.Equal(t, []string{"GetCallerIdentity"}, fake.Calls)
}

func TestWhoAmIShowsRemoteErrors(t *testing.T) {
	isolate(t)
	fake := awsclienttest.New()
	fake.Errors["GetCallerIdentity"] = errors.New("ExpiredToken: the security token has expired")
	useFake(t, fake)

	out, err := runCLI(t, "", "whoami")
	require.Error(t, err)
	assert.Contains(t, out, "Error fetching caller identity")
	assert.Contains(t, out, "the security token has expired")
	assert.NotContains(t, out, "Identity resolved")
}

func TestTimeoutBoundsEveryCommand(t *testing.T) {
	isolate(t)
	t.Setenv("LFIAM_TIMEOUT", "1h")
	fake := catalogFake()
	rec := useDeadlineSTS(t, fake)

	for _, args := range [][]string{{"whoami"}, {"verify"}, {"--yes"}} {
		rec.deadlines = nil
		_, _ = runCLI(t, "", args...)
		require.NotEmpty(t, rec.deadlines, "%v", args)
		for _, ok := range rec.deadlines {
			assert.True(t, ok, "%v ran without a deadline", args)
		}
	}
}

func TestNoTimeoutLeavesContextUnbounded(t *testing.T) {
	isolate(t)
	rec := useDeadlineSTS(t, awsclienttest.New())

	_, err := runCLI(t, "", "whoami")
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, rec.deadlines)
}

func TestVerifyBeforeAndAfterMigration(t *testing.T) {
	isolate(t)
	fake := catalogFake()
	useFake(t, fake)

	out, err := runCLI(t, "", "verify")
	assert.ErrorIs(t, err, ErrNotIAMOnly)
	assert.Contains(t, out, analyst)
	assert.Contains(t, out, "arn:aws:s3:::raw")
	assert.Zero(t, fake.MutatingCalls())

	_, err = runCLI(t, "", "--yes")
	require.NoError(t, err)

	out, err = runCLI(t, "", "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "The catalog uses IAM access control only")
	assert.Contains(t, out, "No grants left to revoke")
}

func TestVerifyShowsRemoteErrors(t *testing.T) {
	isolate(t)
	fake := catalogFake()
	fake.Errors["ListPermissions"] = errors.New("AccessDeniedException: not a data lake admin")
	useFake(t, fake)

	out, err := runCLI(t, "", "verify")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotIAMOnly)
	assert.Contains(t, out, "Error reading Lake Formation state")
	assert.NotContains(t, out, "IAM-only Verification")
}

func TestConfigSetAndShow(t *testing.T) {
	home := isolate(t)

	out, err := runCLI(t, "", "config", "set", "region", "eu-central-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration updated")

	data, err := os.ReadFile(filepath.Join(home, ".lfiam.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "eu-central-1")

	out, err = runCLI(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "eu-central-1")
	assert.Contains(t, out, "Log Level")
}

func TestConfigSetRejectsUnknownKeys(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "", "config", "set", "colour", "blue")
	assert.Error(t, err)
}
