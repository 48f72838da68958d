// Package scheduler triggers batch analysis runs on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/config"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

// BatchRunner is satisfied by *pipeline.Service
type BatchRunner interface {
	RunBatch(ctx context.Context) (*models.Digest, error)
}

// Service handles scheduling of batch analysis runs
type Service struct {
	config *config.Config
	runner BatchRunner
	cron   *cron.Cron
}

// NewService creates a scheduler in the configured time zone
func NewService(cfg *config.Config, runner BatchRunner) *Service {
	return &Service{
		config: cfg,
		runner: runner,
		cron:   cron.New(cron.WithSeconds(), cron.WithLocation(cfg.Location())),
	}
}

// Start registers the analysis job and starts the cron loop
func (s *Service) Start() error {
	if _, err := s.cron.AddFunc(s.config.AnalysisSchedule, s.runScheduled); err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with schedule %q (%s), next run at %s",
		s.config.AnalysisSchedule, s.config.TimeZone, s.NextRun().Format(time.RFC3339))
	return nil
}

func (s *Service) runScheduled() {
	logrus.Info("Starting scheduled batch analysis")
	digest, err := s.runner.RunBatch(context.Background())
	switch {
	case errors.Is(err, context.Canceled):
		logrus.Warn("Scheduled batch analysis cancelled")
	case err != nil:
		logrus.Errorf("Scheduled batch analysis failed: %v", err)
	default:
		logrus.Infof("Scheduled batch analysis finished: %s", digest)
	}
}

// NextRun returns when the analysis job fires next; zero before Start
func (s *Service) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}
