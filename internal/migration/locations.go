package migration

import (
	"context"
	"fmt"

	"dario.lol/lfiam/internal/awsclient"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lakeformation"
	"go.uber.org/zap"
)

func (m *Migrator) DeregisterLocations(ctx context.Context, progress chan<- string) error {
	resources, err := awsclient.ListResources(ctx, m.lf)
	if err != nil {
		return err
	}

	for _, r := range resources {
		arn := aws.ToString(r.ResourceArn)
		notify(progress, "... Deregistering %s ...", arn)
		m.log.Debug("deregistering resource", zap.String("resource_arn", arn))
		if _, err := m.lf.DeregisterResource(ctx, &lakeformation.DeregisterResourceInput{ResourceArn: r.ResourceArn}); err != nil {
			return fmt.Errorf("failed to deregister %s: %w", arn, err)
		}
		m.report.LocationsDeregistered++
	}
	return nil
}
