package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/wildtrail/safaridesk/internal/service"
)

// ShareSweepJob retires expired share tokens that are still flagged active.
// Purely hygienic: expiry is enforced at resolve time either way.
type ShareSweepJob struct {
	shares *service.ShareService
}

func NewShareSweepJob(shares *service.ShareService) *ShareSweepJob {
	return &ShareSweepJob{shares: shares}
}

func (j *ShareSweepJob) Name() string {
	return "share_sweep"
}

func (j *ShareSweepJob) Run(ctx context.Context) error {
	if j.shares == nil {
		return nil
	}
	swept, err := j.shares.SweepExpired(ctx)
	if err != nil {
		return err
	}
	if swept > 0 {
		logutil.GetLogger(ctx).Info("expired share tokens swept", zap.Int64("count", swept))
	}
	return nil
}
