package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectPutter is the part of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Storage struct {
	client  ObjectPutter
	region  string
	bucket  string
	baseURL string
}

func NewS3Storage(region, bucket, accessKeyID, secretAccessKey, baseURL string) *S3Storage {
	var cfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region: region,
			Credentials: credentials.NewStaticCredentialsProvider(
				accessKeyID,
				secretAccessKey,
				"",
			),
		}
	} else {
		// Use default credential chain (environment variables, ~/.aws/credentials, IAM role, etc.)
		cfg, err = config.LoadDefaultConfig(context.TODO(),
			config.WithRegion(region),
		)
		if err != nil {
			// If default config fails, create a basic config with region only
			cfg = aws.Config{
				Region: region,
			}
		}
	}

	return NewS3StorageWithClient(s3.NewFromConfig(cfg), region, bucket, baseURL)
}

func NewS3StorageWithClient(client ObjectPutter, region, bucket, baseURL string) *S3Storage {
	return &S3Storage{
		client:  client,
		region:  region,
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// ReportKey builds a unique object key for a report generated at t.
func ReportKey(name string, t time.Time) string {
	return fmt.Sprintf("reports/%s-%s-%s.xlsx", name, t.UTC().Format("20060102"), uuid.New().String())
}

// Upload writes body under key and returns the public URL of the object.
func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.ObjectURL(key), nil
}

func (s *S3Storage) ObjectURL(key string) string {
	if s.baseURL != "" {
		// Use CloudFront or custom domain
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
