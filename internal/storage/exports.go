// Package storage persists lab instrument export files (GC-MS runs,
// spectrometer CSVs) in object storage so raw measurement evidence
// stays attached to its LOT.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"liquor-analytics/pkg/logging"
)

// ExportStore stores instrument export files in a MinIO bucket
type ExportStore struct {
	client *minio.Client
	bucket string
	logger *logging.StructuredLogger
}

// NewExportStore connects to MinIO and ensures the bucket exists
func NewExportStore(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool, logger *logging.StructuredLogger) (*ExportStore, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &ExportStore{client: cli, bucket: bucket, logger: logger}, nil
}

// Upload stores one instrument export under lot_number/timestamp_filename
// and returns the object key
func (s *ExportStore) Upload(ctx context.Context, lotNumber, filename string, r io.Reader, size int64) (string, error) {
	key := fmt.Sprintf("%s/%s_%s", lotNumber, time.Now().UTC().Format("20060102T150405"), path.Base(filename))

	contentType := "application/octet-stream"
	switch path.Ext(filename) {
	case ".csv":
		contentType = "text/csv"
	case ".json":
		contentType = "application/json"
	case ".txt":
		contentType = "text/plain"
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	s.logger.Info(ctx, "[EXPORT_UPLOAD] Instrument export stored", logging.Fields{
		"lot_number": lotNumber,
		"key":        key,
		"size_bytes": size,
	})

	return key, nil
}
