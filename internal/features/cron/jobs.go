package cron_feature

import (
	"context"
	"fmt"

	"crm-reports/internal/features/defaults"

	"go.uber.org/zap"
)

const (
	JobDraftSweep     = "draft-sweep"
	JobDefaultReports = "default-reports"

	draftSweepSpec     = "@hourly"
	defaultReportsSpec = "45 3 * * *"
)

// DraftSweeper is the slice of the draft repository the sweep needs;
// the draft repository satisfies it as-is.
type DraftSweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// DefaultsEnsurer is the slice of the defaults service the nightly job
// needs; the defaults service satisfies it as-is.
type DefaultsEnsurer interface {
	EnsureDefaults(ctx context.Context, tenantID string) (*defaults.EnsureResult, error)
}

// TenantLister is the slice of the organization repository the nightly
// job needs; the organization repository satisfies it as-is.
type TenantLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// MaintenanceJobs builds the background jobs the server registers at
// startup.
func MaintenanceJobs(drafts DraftSweeper, seeder DefaultsEnsurer, tenants TenantLister, logger *zap.Logger) []Job {
	return []Job{
		DraftSweepJob(drafts, logger),
		DefaultReportsJob(seeder, tenants, logger),
	}
}

// DraftSweepJob removes drafts whose expiry has passed. The drafts
// collection carries a TTL index that does the same server-side; the
// sweep covers deployments where the TTL monitor is disabled.
func DraftSweepJob(drafts DraftSweeper, logger *zap.Logger) Job {
	return Job{
		Name: JobDraftSweep,
		Spec: draftSweepSpec,
		Run: func(ctx context.Context) error {
			n, err := drafts.DeleteExpired(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("expired drafts removed", zap.Int64("count", n))
			}
			return nil
		},
	}
}

// DefaultReportsJob re-runs the built-in report seeding for every
// organization, so catalog entries added in a release reach existing
// tenants. One failing tenant does not stop the rest.
func DefaultReportsJob(seeder DefaultsEnsurer, tenants TenantLister, logger *zap.Logger) Job {
	return Job{
		Name: JobDefaultReports,
		Spec: defaultReportsSpec,
		Run: func(ctx context.Context) error {
			ids, err := tenants.ListIDs(ctx)
			if err != nil {
				return err
			}

			var failed int
			for _, id := range ids {
				res, err := seeder.EnsureDefaults(ctx, id)
				if err != nil {
					failed++
					logger.Warn("default reports not ensured", zap.String("tenant", id), zap.Error(err))
					continue
				}
				if res.FoldersCreated > 0 || res.ReportsCreated > 0 {
					logger.Info("default reports ensured",
						zap.String("tenant", id),
						zap.Int("folders_created", res.FoldersCreated),
						zap.Int("reports_created", res.ReportsCreated),
					)
				}
			}
			if failed > 0 {
				return fmt.Errorf("default reports failed for %d of %d organizations", failed, len(ids))
			}
			return nil
		},
	}
}
