// Package storage uploads product images to S3-compatible object storage
// and returns the public URL under which they are served.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/storefront/internal/server/config"
	"github.com/google/uuid"
)

// ImageStore persists an uploaded image and returns its public URL.
type ImageStore interface {
	Put(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// S3ImageStore writes objects to a single bucket.
type S3ImageStore struct {
	client    objectPutter
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewS3ImageStore builds an S3 client from the static credentials and
// endpoint in cfg. Path-style addressing keeps MinIO endpoints working.
func NewS3ImageStore(ctx context.Context, cfg *sc.Config) (*S3ImageStore, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3ImageStore(client, cfg.S3Bucket, cfg.S3PublicURL), nil
}

func newS3ImageStore(client objectPutter, bucket, publicURL string) *S3ImageStore {
	return &S3ImageStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// Put uploads body under a fresh random key that keeps the extension of
// filename.
func (s *S3ImageStore) Put(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error) {
	key := ObjectKey(s.now(), filename)

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return s.publicURL + "/" + key, nil
}

// ObjectKey returns products/<y>/<m>/<d>/<uuid><ext> for filename.
func ObjectKey(d time.Time, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("products/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}
