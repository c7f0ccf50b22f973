package services

import (
	"context"
	"sync"
	"time"

	"liquor-analytics/internal/models"
	"liquor-analytics/internal/prediction"
	"liquor-analytics/internal/registry"
	"liquor-analytics/internal/repository"
	"liquor-analytics/pkg/logging"
	"liquor-analytics/pkg/metrics"
)

// RunState describes where a training run is in its lifecycle
type RunState string

const (
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
)

// RunStatus is the caller-visible progress of the latest training run
// for one target. Training is a blocking call; this lets a presentation
// layer poll progress from another request.
type RunStatus struct {
	Target     string                    `json:"target"`
	Algorithm  models.Algorithm          `json:"algorithm"`
	State      RunState                  `json:"state"`
	StartedAt  time.Time                 `json:"started_at"`
	FinishedAt *time.Time                `json:"finished_at,omitempty"`
	Error      string                    `json:"error,omitempty"`
	Metrics    *models.ValidationMetrics `json:"metrics,omitempty"`
}

// TrainingService orchestrates extract, impute, train, and registry save
type TrainingService struct {
	repo     repository.BatchRepository
	trainer  *prediction.Trainer
	registry *registry.FileRegistry
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector

	mu   sync.Mutex
	runs map[string]*RunStatus
}

// NewTrainingService creates a new training service
func NewTrainingService(
	repo repository.BatchRepository,
	trainer *prediction.Trainer,
	reg *registry.FileRegistry,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *TrainingService {
	return &TrainingService{
		repo:     repo,
		trainer:  trainer,
		registry: reg,
		logger:   logger,
		metrics:  metricsCollector,
		runs:     make(map[string]*RunStatus),
	}
}

// Train runs the full pipeline for one target: load records, extract the
// labeled dataset, impute, fit, and persist the artifact. Blocking; the
// run status is visible via Status while it executes.
func (s *TrainingService) Train(ctx context.Context, target string, algorithm models.Algorithm, filter prediction.RecordFilter) (*models.TrainedModel, error) {
	s.setRunning(target, algorithm)

	model, err := s.train(ctx, target, algorithm, filter)
	if err != nil {
		s.setFailed(target, err)
		return nil, err
	}

	s.setCompleted(target, model)
	return model, nil
}

func (s *TrainingService) train(ctx context.Context, target string, algorithm models.Algorithm, filter prediction.RecordFilter) (*models.TrainedModel, error) {
	records, err := s.repo.ListAllRecords(ctx)
	if err != nil {
		return nil, err
	}

	ds, err := prediction.BuildDataset(records, target, filter)
	if err != nil {
		return nil, err
	}

	prediction.Impute(ds)
	for _, w := range ds.Warnings {
		s.logger.Warn(ctx, "[TRAIN_WARNING] "+w, logging.Fields{
			"target": target,
		})
	}

	model, err := s.trainer.Train(ctx, algorithm, ds)
	if err != nil {
		return nil, err
	}

	if err := s.registry.Save(model); err != nil {
		return nil, err
	}

	return model, nil
}

// TrainAllResult summarizes a multi-target training run
type TrainAllResult struct {
	Models []*models.TrainedModel `json:"models"`
	Errors map[string]string      `json:"errors,omitempty"`
}

// TrainAll fits one model per sensory target with the same algorithm,
// continuing past per-target failures so one unlabeled target does not
// block the rest.
func (s *TrainingService) TrainAll(ctx context.Context, algorithm models.Algorithm, filter prediction.RecordFilter) (*TrainAllResult, error) {
	result := &TrainAllResult{Errors: make(map[string]string)}

	for _, target := range models.TargetNames() {
		model, err := s.Train(ctx, target, algorithm, filter)
		if err != nil {
			result.Errors[target] = err.Error()
			s.logger.Error(ctx, "[TRAIN_TARGET_ERROR] Target training failed", logging.Fields{
				"target":    target,
				"algorithm": string(algorithm),
			}, err)
			continue
		}
		result.Models = append(result.Models, model)
	}

	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return result, nil
}

// Status returns the latest run status per target
func (s *TrainingService) Status() []*RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*RunStatus, 0, len(s.runs))
	for _, target := range models.TargetNames() {
		if st, ok := s.runs[target]; ok {
			copied := *st
			out = append(out, &copied)
		}
	}
	return out
}

func (s *TrainingService) setRunning(target string, algorithm models.Algorithm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[target] = &RunStatus{
		Target:    target,
		Algorithm: algorithm,
		State:     RunStateRunning,
		StartedAt: time.Now().UTC(),
	}
}

func (s *TrainingService) setCompleted(target string, model *models.TrainedModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.runs[target]; ok {
		now := time.Now().UTC()
		st.State = RunStateCompleted
		st.FinishedAt = &now
		m := model.Metrics
		st.Metrics = &m
	}
}

func (s *TrainingService) setFailed(target string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.runs[target]; ok {
		now := time.Now().UTC()
		st.State = RunStateFailed
		st.FinishedAt = &now
		st.Error = err.Error()
	}
}
