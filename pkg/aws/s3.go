package aws

import (
	"fmt"
	"strings"
	"time"

	"rna/pkg/config"

	"github.com/gofiber/storage/s3/v2"
)

// PackageTTL is how long an RNA package stays in the bucket.
const PackageTTL = time.Hour * 24 * 30

type S3 struct {
	bucket   *s3.Storage
	endpoint string
	name     string
	region   string
}

func NewS3Bucket(cfg *config.AppConfig) *S3 {
	bucket := s3.New(s3.Config{
		Endpoint: cfg.AWSEndpoint,
		Bucket:   cfg.AWSBucket,
		Region:   cfg.AWSDefaultRegion,
		Credentials: s3.Credentials{
			AccessKey:       cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		},
		MaxAttempts:    3,
		RequestTimeout: time.Second * 10,
		Reset:          false,
	})

	return &S3{
		bucket:   bucket,
		endpoint: cfg.AWSEndpoint,
		name:     cfg.AWSBucket,
		region:   cfg.AWSDefaultRegion,
	}
}

func (s *S3) Upload(key string, data []byte) error {
	return s.bucket.Set(key, data, PackageTTL)
}

// URL returns the public address of key.
func (s *S3) URL(key string) string {
	return ObjectURL(s.endpoint, s.name, s.region, key)
}

func (s *S3) Close() error {
	return s.bucket.Close()
}

// ObjectURL builds the MinIO style endpoint/bucket/key address when an
// endpoint is configured and the virtual-hosted AWS address otherwise.
func ObjectURL(endpoint, bucket, region, key string) string {
	if endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(endpoint, "/"), bucket, key)
	}

	if region != "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
	}

	return key
}

// PackageKey is the object key of the downloadable package of an RNA.
func PackageKey(rnaID string) string {
	return fmt.Sprintf("rnas/%s/package.json", rnaID)
}
