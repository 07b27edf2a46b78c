// Package jobs runs the scheduled daily import.
package jobs

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"testhub/internal/model"
	"testhub/internal/redmine"
	"testhub/internal/store"
)

// Scheduler fires a bulk Redmine import once a day for every project
// with daily imports enabled.
type Scheduler struct {
	store    *store.Store
	importer *redmine.Importer
	hour     int
	logger   *slog.Logger
}

// NewScheduler creates a scheduler firing at the given local hour.
func NewScheduler(st *store.Store, imp *redmine.Importer, hour int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if hour < 0 || hour > 23 {
		hour = 6
	}
	return &Scheduler{store: st, importer: imp, hour: hour, logger: logger}
}

// Start blocks until ctx is cancelled, running the daily import at the
// configured hour. Call it from its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	for {
		next := s.nextFire(time.Now())
		s.logger.Info("daily import scheduled", "at", next)

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error("daily import failed", "error", err)
		}
	}
}

func (s *Scheduler) nextFire(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunOnce imports yesterday's updates for every enabled project,
// recording one import run per project.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	projects, err := s.store.ListDailyImportProjects()
	if err != nil {
		return err
	}

	// Only issues touched since yesterday are worth refetching.
	since := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	query := url.Values{}
	query.Set("updated_on", ">="+since)

	for _, project := range projects {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.runProject(ctx, project, query)
	}
	return nil
}

func (s *Scheduler) runProject(ctx context.Context, project *model.Project, query url.Values) {
	run := &model.ImportRun{
		ID:        uuid.NewString(),
		ProjectID: project.ID,
		Kind:      "daily",
		Status:    model.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := s.store.CreateImportRun(run); err != nil {
		s.logger.Error("failed to record import run", "projectId", project.ID, "error", err)
		return
	}

	s.logger.Info("daily import started", "project", project.Name, "runId", run.ID)

	res, err := s.importer.ImportAll(ctx, project, query)
	run.ImportedCount = res.ImportedCount
	run.UpdatedCount = res.UpdatedCount
	run.SkippedCount = res.SkippedCount
	run.LogOutput = strings.Join(res.Errors, "\n")

	if err != nil {
		run.Status = model.RunStatusFailed
		run.ErrorMessage = err.Error()
		s.logger.Error("daily import failed", "project", project.Name, "runId", run.ID, "error", err)
	} else {
		run.Status = model.RunStatusSuccess
		s.logger.Info("daily import finished",
			"project", project.Name,
			"runId", run.ID,
			"imported", res.ImportedCount,
			"updated", res.UpdatedCount,
			"skipped", res.SkippedCount)
	}

	if err := s.store.FinishImportRun(run); err != nil {
		s.logger.Error("failed to finish import run", "runId", run.ID, "error", err)
	}
}
