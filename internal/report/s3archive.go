package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ignite/outreach-monitor/internal/config"
	"github.com/ignite/outreach-monitor/internal/pkg/logger"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archive persists generated CSV reports to an S3 bucket so exports
// survive beyond the request that produced them.
type Archive struct {
	client objectPutter
	bucket string
}

// NewArchive creates an S3 report archive.
func NewArchive(ctx context.Context, cfg config.ArchiveConfig) (*Archive, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for report archive: %w", err)
	}

	return &Archive{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
	}, nil
}

// Store uploads one CSV report and returns its object key.
func (a *Archive) Store(ctx context.Context, filename string, data []byte) (string, error) {
	key := "reports/" + filename

	contentType := "text/csv"
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("S3 PutObject %s/%s: %w", a.bucket, key, err)
	}

	logger.Info("report: archived csv", "bucket", a.bucket, "key", key, "bytes", len(data))
	return key, nil
}
