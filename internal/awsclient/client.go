package awsclient

import (
	"context"
	"errors"
	"fmt"
	"os"

	"dario.lol/lfiam/internal/constants"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/lakeformation"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

var ErrNoRegion = errors.New("no region configured, use --region or set one in the profile")

// Options selects the credentials and region a run talks to.
type Options struct {
	Profile          string
	Region           string
	RetryMaxAttempts int
}

// Clients bundles the service clients of one session.
type Clients struct {
	Profile string
	Region  string

	STS           STSAPI
	Glue          GlueAPI
	LakeFormation LakeFormationAPI
}

// Factory builds Clients. Commands take one so tests can hand in fakes.
type Factory func(ctx context.Context, opts Options) (*Clients, error)

func AppID() string {
	return fmt.Sprintf("%s/%s", constants.ServiceName, constants.Version)
}

// New loads the shared AWS configuration the same way the AWS CLI does.
func New(ctx context.Context, opts Options) (*Clients, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithAppID(AppID()),
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.RetryMaxAttempts > 0 {
		loadOpts = append(loadOpts, awsconfig.WithRetryMaxAttempts(opts.RetryMaxAttempts))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	return FromConfig(cfg, ProfileName(opts.Profile))
}

func FromConfig(cfg aws.Config, profile string) (*Clients, error) {
	if cfg.Region == "" {
		return nil, ErrNoRegion
	}
	return &Clients{
		Profile:       profile,
		Region:        cfg.Region,
		STS:           sts.NewFromConfig(cfg),
		Glue:          glue.NewFromConfig(cfg),
		LakeFormation: lakeformation.NewFromConfig(cfg),
	}, nil
}

// ProfileName reports the profile the SDK resolves when explicit is empty.
func ProfileName(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, env := range []string{"AWS_PROFILE", "AWS_DEFAULT_PROFILE"} {
		if p := os.Getenv(env); p != "" {
			return p
		}
	}
	return "default"
}
