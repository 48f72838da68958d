// Package pipeline orchestrates transcript analysis: fetch, normalize, aggregate, store and notify.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/config"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/notifications"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/report"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/sources"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/storage"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/transcript"
)

// ErrBatchRunning is returned when a batch is triggered while another one is in flight
var ErrBatchRunning = errors.New("batch analysis already running")

// Service runs analyses on demand and in scheduled batches
type Service struct {
	config              *config.Config
	storage             storage.StorageInterface
	notificationService notifications.NotificationInterface
	aggregator          *report.Aggregator
	transcripts         *sources.StorageSource
	remote              sources.Source
	metrics             *Metrics
	mu                  sync.RWMutex
	batch               sync.Mutex
}

// Metrics holds pipeline counters
type Metrics struct {
	Runs                int            `json:"runs"`
	TranscriptsAnalyzed int            `json:"transcripts_analyzed"`
	ErrorCount          int            `json:"error_count"`
	LastRun             time.Time      `json:"last_run"`
	LastRunDuration     string         `json:"last_run_duration"`
	SectionFailures     map[string]int `json:"section_failures"`
}

// batchResult is what one transcript goroutine reports back
type batchResult struct {
	name   string
	report *models.Report
	err    error
}

// NewService creates a pipeline over the given storage and notification channels
func NewService(cfg *config.Config, store storage.StorageInterface, notificationService notifications.NotificationInterface, aggregator *report.Aggregator) *Service {
	return &Service{
		config:              cfg,
		storage:             store,
		notificationService: notificationService,
		aggregator:          aggregator,
		transcripts:         sources.NewStorageSource(store, cfg.TranscriptPrefix),
		remote:              sources.NewHTTPSource(cfg.RemoteTimeout, cfg.MaxUploadBytes),
		metrics: &Metrics{
			SectionFailures: make(map[string]int),
		},
	}
}

// DefaultRequest is the request used for batch runs: every participant, configured sections
func (s *Service) DefaultRequest() report.Request {
	return report.Request{
		Scope:     models.AllParticipants(),
		Sections:  s.config.DefaultSections,
		Anonymize: s.config.AnonymizeReports,
	}
}

// ReportKey is the storage key of the report generated for a transcript name
func (s *Service) ReportKey(name string) string {
	return s.config.ReportPrefix + name + ".json"
}

// AnalyzeTranscript normalizes raw transcript bytes, builds the report and stores it
func (s *Service) AnalyzeTranscript(ctx context.Context, name string, data []byte, req report.Request) (*models.Report, error) {
	opts := transcript.DefaultOptions()
	opts.Location = s.config.Location()
	opts.MediaPlaceholder = s.config.Policy.MediaPlaceholder

	log, err := transcript.ParseBytes(name, data, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcript %s: %w", name, err)
	}

	r, err := s.aggregator.Generate(log, req)
	if err != nil {
		return nil, err
	}

	if err := s.storeReport(ctx, name, r); err != nil {
		return nil, err
	}

	s.recordAnalysis(r)
	logrus.WithFields(logrus.Fields{
		"transcript": name,
		"report":     r.ID,
		"records":    len(log.Records),
	}).Info("Analyzed transcript")
	return r, nil
}

// AnalyzeRemote downloads a transcript over HTTP and analyzes it
func (s *Service) AnalyzeRemote(ctx context.Context, url string, req report.Request) (*models.Report, error) {
	t, err := s.remote.FetchTranscript(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeTranscript(ctx, t.Name, t.Data, req)
}

// GetReport returns the stored JSON report for a transcript name
func (s *Service) GetReport(ctx context.Context, name string) ([]byte, error) {
	return s.storage.Retrieve(ctx, s.ReportKey(name))
}

func (s *Service) storeReport(ctx context.Context, name string, r *models.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := s.storage.Store(ctx, s.ReportKey(name), data); err != nil {
		return fmt.Errorf("failed to store report for %s: %w", name, err)
	}
	return nil
}

// RunBatch analyzes every stored transcript that has no report yet and sends a digest
func (s *Service) RunBatch(ctx context.Context) (*models.Digest, error) {
	if !s.batch.TryLock() {
		return nil, ErrBatchRunning
	}
	defer s.batch.Unlock()

	start := time.Now()
	logrus.Info("Starting batch analysis run")

	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	pending, err := s.pendingTranscripts(ctx)
	if err != nil {
		s.recordRun(time.Since(start), 1)
		return nil, err
	}
	logrus.Infof("Found %d transcripts awaiting analysis", len(pending))

	var wg sync.WaitGroup
	results := make(chan batchResult, len(pending))

	for _, name := range pending {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			t, err := s.transcripts.FetchTranscript(ctx, name)
			if err != nil {
				results <- batchResult{name: name, err: err}
				return
			}
			r, err := s.AnalyzeTranscript(ctx, t.Name, t.Data, s.DefaultRequest())
			results <- batchResult{name: name, report: r, err: err}
		}(name)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	digest := &models.Digest{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}
	for res := range results {
		if res.err != nil {
			logrus.WithError(res.err).WithField("transcript", res.name).Error("Transcript analysis failed")
			digest.Errors = append(digest.Errors, fmt.Sprintf("%s: %v", res.name, res.err))
			continue
		}
		digest.Reports = append(digest.Reports, res.report)
	}
	sortDigest(digest)

	s.recordRun(time.Since(start), len(digest.Errors))

	if len(pending) > 0 {
		if err := s.notify(ctx, digest); err != nil {
			return digest, err
		}
	}

	logrus.Infof("Batch analysis completed in %v: %s", time.Since(start), digest)
	return digest, nil
}

// sortDigest orders the goroutine results by transcript name
func sortDigest(d *models.Digest) {
	sort.Slice(d.Reports, func(i, j int) bool {
		return d.Reports[i].Transcript < d.Reports[j].Transcript
	})
	sort.Strings(d.Errors)
}

func (s *Service) pendingTranscripts(ctx context.Context) ([]string, error) {
	names, err := s.transcripts.List(ctx)
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, name := range names {
		done, err := storage.Exists(ctx, s.storage, s.ReportKey(name))
		if err != nil {
			return nil, fmt.Errorf("failed to check report for %s: %w", name, err)
		}
		if !done {
			pending = append(pending, name)
		}
	}
	return pending, nil
}

func (s *Service) notify(ctx context.Context, digest *models.Digest) error {
	if len(digest.Errors) > 0 {
		alert := &models.Alert{
			ID:        uuid.NewString(),
			Type:      "warning",
			Title:     "Chat analysis errors",
			Message:   fmt.Sprintf("%d of %d transcripts failed in run %s", len(digest.Errors), len(digest.Errors)+len(digest.Reports), digest.RunID),
			CreatedAt: time.Now().UTC(),
		}
		if len(digest.Reports) == 0 {
			alert.Type = "critical"
		}
		if err := s.notificationService.SendAlert(ctx, alert); err != nil {
			logrus.Errorf("Failed to send alert: %v", err)
		}
	}

	if !s.config.NotificationsEnabled() {
		return nil
	}
	if err := s.notificationService.SendDigest(ctx, digest); err != nil {
		logrus.Errorf("Failed to send digest: %v", err)
		return err
	}
	return nil
}

func (s *Service) recordAnalysis(r *models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.TranscriptsAnalyzed++
	for section := range r.Failures {
		s.metrics.SectionFailures[section]++
	}
}

func (s *Service) recordRun(duration time.Duration, errorCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.Runs++
	s.metrics.LastRun = time.Now()
	s.metrics.LastRunDuration = duration.String()
	s.metrics.ErrorCount += errorCount
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
