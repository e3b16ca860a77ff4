package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"docsummary/internal/database"
)

const (
	// DailyCleanupSpec runs retention cleanup once a day at a quiet hour.
	DailyCleanupSpec = "0 3 * * *"

	cleanupTimeout = 5 * time.Minute
)

// Scheduler prunes documents older than the retention window together
// with their upload files.
type Scheduler struct {
	ctx       context.Context
	cron      *cron.Cron
	db        *database.Database
	retention time.Duration
	log       *slog.Logger
}

func New(
	ctx context.Context,
	db *database.Database,
	retentionDays int,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.UTC))

	return &Scheduler{
		ctx:       ctx,
		cron:      c,
		db:        db,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(DailyCleanupSpec, s.cleanup); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) cleanup() {
	ctx, cancel := context.WithTimeout(s.ctx, cleanupTimeout)
	defer cancel()

	if ctx.Err() != nil {
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())

		return
	}

	cutoff := time.Now().UTC().Add(-s.retention)

	filepaths, err := s.db.DeleteDocumentsBefore(ctx, cutoff)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to prune old documents",
			"error", err,
			"cutoff", cutoff)

		return
	}

	for _, path := range filepaths {
		if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.WarnContext(ctx, "Failed to remove upload file",
				"error", err,
				"path", path)
		}
	}

	if len(filepaths) > 0 {
		s.log.InfoContext(ctx, "Old documents are pruned",
			"documentCount", len(filepaths),
			"cutoff", cutoff)
	}
}
