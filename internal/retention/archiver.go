package retention

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/edvin/cronhook/internal/model"
)

// S3Archiver writes pruned executions to an S3-compatible object store as
// JSON documents, one object per execution.
type S3Archiver struct {
	client *s3.Client
	bucket string
	logger zerolog.Logger
}

// NewS3Client creates an S3 client for the given endpoint and static
// credentials. endpoint may be empty to use the default AWS endpoint.
func NewS3Client(endpoint, region, accessKey, secretKey string) *s3.Client {
	opts := s3.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func NewS3Archiver(client *s3.Client, bucket string, logger zerolog.Logger) *S3Archiver {
	return &S3Archiver{
		client: client,
		bucket: bucket,
		logger: logger.With().Str("component", "s3-archiver").Logger(),
	}
}

// Archive stores the execution, including its status history, under
// executions/<cronjob_id>/<execution_id>.json.
func (a *S3Archiver) Archive(ctx context.Context, execution *model.Execution) error {
	payload, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("marshal execution %s: %w", execution.ID, err)
	}

	key := fmt.Sprintf("executions/%s/%s.json", execution.CronjobID, execution.ID)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	a.logger.Debug().Str("key", key).Msg("archived execution")
	return nil
}
