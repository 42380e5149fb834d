package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ashureev/talentscout/internal/domain"
)

// S3Config configures the transcript archive.
type S3Config struct {
	Bucket    string
	Prefix    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver stores each submission as a JSON object in an S3-compatible bucket.
type S3Archiver struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Archiver builds an archiver. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain applies.
func NewS3Archiver(ctx context.Context, cfg S3Config) (*S3Archiver, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archiver{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// ObjectKey returns the key a session's transcript is stored under.
func (a *S3Archiver) ObjectKey(sessionID string) string {
	return path.Join(a.prefix, sessionID+".json")
}

// Publish uploads sub, replacing any earlier transcript of the same session.
func (a *S3Archiver) Publish(ctx context.Context, sub domain.Submission) error {
	body, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	key := a.ObjectKey(sub.SessionID)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload transcript %s: %w", key, err)
	}
	return nil
}

// Close implements Publisher.
func (a *S3Archiver) Close() error { return nil }
