package uploader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/chatvault/chatvault/internal/infrastructure/config"
)

// Uploader ships settings export snapshots to an S3 bucket so a user can
// restore their lists on another machine.
type Uploader struct {
	s3Client   *s3.Client
	bucket     string
	prefix     string
	maxRetries int
	logger     *slog.Logger
}

// New creates a new S3 uploader. When an access key is configured it is
// used as a static credentials provider; otherwise the default AWS
// credential chain applies.
func New(ctx context.Context, cfg config.UploaderConfig, logger *slog.Logger) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Uploader{
		s3Client:   s3.NewFromConfig(awsCfg),
		bucket:     cfg.Bucket,
		prefix:     cfg.Prefix,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}, nil
}

// UploadSnapshot uploads one export snapshot under the configured prefix,
// retrying transient failures with linear backoff.
func (u *Uploader) UploadSnapshot(ctx context.Context, name string, data []byte) error {
	key := path.Join(u.prefix, name)

	var lastErr error
	for attempt := 1; attempt <= u.maxRetries; attempt++ {
		_, err := u.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(u.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String("application/yaml"),
		})
		if err == nil {
			u.logger.Info("snapshot uploaded",
				"bucket", u.bucket,
				"key", key,
				"bytes", len(data),
			)
			return nil
		}

		lastErr = err
		u.logger.Warn("snapshot upload failed",
			"key", key,
			"attempt", attempt,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}

	return fmt.Errorf("upload %s after %d attempts: %w", key, u.maxRetries, lastErr)
}
