package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"liquor-analytics/internal/models"
	"liquor-analytics/pkg/logging"
)

// FileRegistry persists trained model artifacts as one self-describing
// JSON file per (target, algorithm) key. Saving an existing key
// overwrites the prior artifact; there is no versioned history.
//
// Writes go to a temporary file in the same directory which is then
// renamed over the key, so a concurrent reader never observes a
// partially written model. Concurrent saves to the same key are
// last-write-wins.
type FileRegistry struct {
	dir    string
	logger *logging.StructuredLogger
}

// New creates a registry rooted at dir, creating it if needed
func New(dir string, logger *logging.StructuredLogger) (*FileRegistry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create registry dir: %w", err)
	}
	return &FileRegistry{dir: dir, logger: logger}, nil
}

func (r *FileRegistry) artifactPath(target string, algorithm models.Algorithm) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s_%s.json", target, algorithm))
}

// Save persists a trained model under its (target, algorithm) key,
// replacing any prior artifact atomically
func (r *FileRegistry) Save(model *models.TrainedModel) error {
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model artifact: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, ".artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact: %w", err)
	}

	path := r.artifactPath(model.Target, model.Algorithm)
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to promote artifact: %w", err)
	}

	r.logger.Info(context.Background(), "[REGISTRY_SAVE] Model artifact saved", logging.Fields{
		"target":    model.Target,
		"algorithm": string(model.Algorithm),
		"model_id":  model.ID,
		"path":      path,
	})

	return nil
}

// Load retrieves the trained model for a (target, algorithm) key
func (r *FileRegistry) Load(target string, algorithm models.Algorithm) (*models.TrainedModel, error) {
	data, err := os.ReadFile(r.artifactPath(target, algorithm))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Target: target, Algorithm: algorithm}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var model models.TrainedModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}

	return &model, nil
}

// Latest returns the most recently trained model for a target across
// all algorithms, by creation timestamp
func (r *FileRegistry) Latest(target string) (*models.TrainedModel, error) {
	var latest *models.TrainedModel

	for _, alg := range models.Algorithms() {
		model, err := r.Load(target, alg)
		if err != nil {
			if _, ok := err.(*NotFoundError); ok {
				continue
			}
			return nil, err
		}
		if latest == nil || model.CreatedAt.After(latest.CreatedAt) {
			latest = model
		}
	}

	if latest == nil {
		return nil, &NotFoundError{Target: target}
	}
	return latest, nil
}

// List returns every stored model artifact
func (r *FileRegistry) List() ([]*models.TrainedModel, error) {
	paths, err := filepath.Glob(filepath.Join(r.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list registry dir: %w", err)
	}

	out := make([]*models.TrainedModel, 0, len(paths))
	for _, path := range paths {
		if strings.HasPrefix(filepath.Base(path), ".") {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read model artifact: %w", err)
		}

		var model models.TrainedModel
		if err := json.Unmarshal(data, &model); err != nil {
			return nil, fmt.Errorf("failed to decode model artifact %s: %w", path, err)
		}
		out = append(out, &model)
	}

	return out, nil
}

// NotFoundError indicates no trained model exists for a requested key.
// Recoverable: the caller should train first.
type NotFoundError struct {
	Target    string
	Algorithm models.Algorithm
}

func (e *NotFoundError) Error() string {
	if e.Algorithm == "" {
		return fmt.Sprintf("no trained model found for target %s", e.Target)
	}
	return fmt.Sprintf("no trained model found for target %s with algorithm %s", e.Target, e.Algorithm)
}

// IsTransient returns false; the model must be trained before retrying
func (e *NotFoundError) IsTransient() bool {
	return false
}
