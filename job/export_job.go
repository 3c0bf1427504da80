// Package jobs runs background maintenance tasks.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/krushndayshmookh/krushn-calendar/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const exportBatchSize = 20

type UserLister interface {
	ListIDs(ctx context.Context) ([]uint, error)
}

type Exporter interface {
	Export(ctx context.Context, user *models.User) (services.ExportResult, error)
}

// ExportJob snapshots every user's metadata on a schedule.
type ExportJob struct {
	users    UserLister
	exporter Exporter
	batches  *BatchProcessor
}

func NewExportJob(users UserLister, exporter Exporter) *ExportJob {
	job := &ExportJob{users: users, exporter: exporter}
	job.batches = NewBatchProcessor(exportBatchSize, time.Second, job.exportBatch)
	return job
}

// RunOnce exports every user and reports how many batches failed.
func (j *ExportJob) RunOnce(ctx context.Context) (int, error) {
	ids, err := j.users.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	return j.batches.ProcessInBatches(ctx, ids)
}

// Schedule runs the export on spec, standard cron syntax or a descriptor
// such as "@daily". A run still in progress when the next one is due is
// skipped. The caller stops the returned scheduler.
func (j *ExportJob) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := scheduler.AddFunc(spec, func() { j.run(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid export schedule %q: %w", spec, err)
	}
	scheduler.Start()

	logrus.WithField("schedule", spec).Info("Scheduled exports enabled")
	return scheduler, nil
}

func (j *ExportJob) run(ctx context.Context) {
	failed, err := j.RunOnce(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logrus.WithError(err).Error("Scheduled export failed")
		}
		return
	}
	logrus.WithField("failed_batches", failed).Info("Scheduled export finished")
}

func (j *ExportJob) exportBatch(ctx context.Context, userIDs []uint) error {
	var errs []error
	for _, id := range userIDs {
		if _, err := j.exporter.Export(ctx, &models.User{ID: id}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
