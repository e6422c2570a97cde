package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Config holds the CloudFlare R2 bucket settings
type R2Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	ObjectKey string
}

// objectPutter is the part of the S3 API the mirror needs
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Mirror uploads the JSON artifact to an R2 bucket through the S3 API
type R2Mirror struct {
	client objectPutter
	bucket string
	key    string
}

// NewR2Mirror builds an S3 client against the R2 endpoint
func NewR2Mirror(ctx context.Context, cfg R2Config) (*R2Mirror, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return newR2Mirror(client, cfg.Bucket, cfg.ObjectKey), nil
}

func newR2Mirror(client objectPutter, bucket, key string) *R2Mirror {
	return &R2Mirror{client: client, bucket: bucket, key: key}
}

// Put uploads data under the configured object key
func (m *R2Mirror) Put(ctx context.Context, data []byte) error {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(m.bucket),
		Key:          aws.String(m.key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("application/json; charset=utf-8"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", m.bucket, m.key, err)
	}
	return nil
}

// Location returns bucket/key for logging
func (m *R2Mirror) Location() string {
	return m.bucket + "/" + m.key
}
