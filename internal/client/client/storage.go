package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
)

// DefaultBucket holds device manuals and images.
const DefaultBucket = "device-manuals"

// ObjectStorage uploads binary objects and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, token, path, contentType string, data []byte) (string, error)
}

// RESTStorage uploads through the storage API of the remote store.
type RESTStorage struct {
	c      *RESTClient
	bucket string
}

func NewRESTStorage(c *RESTClient, bucket string) *RESTStorage {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &RESTStorage{c: c, bucket: bucket}
}

func (s *RESTStorage) Upload(ctx context.Context, token, path, contentType string, data []byte) (string, error) {
	err := s.c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        storagePrefix + s.bucket + "/" + path,
		Token:       token,
		RawBody:     data,
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return s.PublicURL(path), nil
}

// PublicURL is deterministic in the object path.
func (s *RESTStorage) PublicURL(path string) string {
	return s.c.BaseURL() + storagePrefix + "public/" + s.bucket + "/" + path
}

// S3Options configure an S3-compatible bucket.
type S3Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicBaseURL prefixes public object URLs. Defaults to Endpoint.
	PublicBaseURL string
}

type s3PutAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Overridable in tests.
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

// S3Storage uploads objects with the AWS SDK.
type S3Storage struct {
	api  s3PutAPI
	opts S3Options
}

func NewS3Storage(ctx context.Context, opts S3Options) (*S3Storage, error) {
	if opts.Bucket == "" {
		opts.Bucket = DefaultBucket
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Storage{api: api, opts: opts}, nil
}

func (s *S3Storage) Upload(ctx context.Context, _ string, path, contentType string, data []byte) (string, error) {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w: %w", path, common.ErrRemoteRequestFailed, err)
	}
	return s.PublicURL(path), nil
}

func (s *S3Storage) PublicURL(path string) string {
	base := s.opts.PublicBaseURL
	if base == "" {
		base = s.opts.Endpoint
	}
	if base == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, path)
	}
	return strings.TrimRight(base, "/") + "/" + s.opts.Bucket + "/" + path
}
