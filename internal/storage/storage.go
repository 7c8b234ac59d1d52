// Package storage archives rendered reconciliation reports to object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/exim-ops/ledgerrecon/internal/config"
)

// Archiver stores a finished report under key.
type Archiver interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// NopArchiver discards every report.
type NopArchiver struct{}

// Put does nothing.
func (NopArchiver) Put(context.Context, string, io.Reader, int64, string) error { return nil }

// S3Archiver writes reports to an S3-compatible bucket (AWS S3, MinIO, ...).
type S3Archiver struct {
	client *s3.Client
	bucket string
	logger zerolog.Logger
}

// Option configures an S3Archiver.
type Option func(*S3Archiver)

// WithLogger sets the logger used for archive events.
func WithLogger(l zerolog.Logger) Option {
	return func(a *S3Archiver) {
		a.logger = l
	}
}

// New returns an S3Archiver when storage is enabled and a NopArchiver otherwise.
func New(cfg config.StorageConfig, opts ...Option) (Archiver, error) {
	if !cfg.Enabled {
		return NopArchiver{}, nil
	}
	return NewS3Archiver(cfg, opts...)
}

// NewS3Archiver creates an archiver with static credentials. A custom
// endpoint and path-style addressing are used when configured.
func NewS3Archiver(cfg config.StorageConfig, opts ...Option) (*S3Archiver, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return nil, errors.New("storage access key and secret key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	a := &S3Archiver{
		client: client,
		bucket: cfg.Bucket,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Put uploads body as a single object.
func (a *S3Archiver) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	a.logger.Debug().Str("bucket", a.bucket).Str("key", key).Int64("size", size).Msg("report archived")
	return nil
}

// Key builds the object key <prefix>/<counterparty>/<requestID>.xlsx.
// Counterparty and request id become single path segments, so the key never
// leaves <prefix>/<counterparty>/.
func Key(prefix, counterparty, requestID string) string {
	counterparty = keySegment(counterparty, "unknown")
	requestID = keySegment(requestID, "report")
	return strings.TrimPrefix(path.Join(strings.Trim(prefix, "/"), counterparty, requestID+".xlsx"), "/")
}

var segmentReplacer = strings.NewReplacer("/", "_", "\\", "_")

// keySegment flattens separators and replaces dot-only names like "..".
func keySegment(s, fallback string) string {
	s = segmentReplacer.Replace(strings.TrimSpace(s))
	if strings.Trim(s, ".") == "" {
		return fallback
	}
	return s
}
