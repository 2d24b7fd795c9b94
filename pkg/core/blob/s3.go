package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"car-catalog/pkg/common/config"
)

// S3API S3Store 用到的客户端方法，便于替换
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type S3Store struct {
	client  S3API
	bucket  string
	baseURL string
}

var _ Store = (*S3Store)(nil)

func NewS3Store(ctx context.Context, cfg config.BlobConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			// 兼容 MinIO 等自建 S3
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3StoreWithClient(client, cfg.Bucket, s3BaseURL(cfg, endpoint)), nil
}

func NewS3StoreWithClient(client S3API, bucket, baseURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func endpointURL(endpoint string, useSSL bool) string {
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func s3BaseURL(cfg config.BlobConfig, endpoint string) string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case endpoint != "":
		return strings.TrimSuffix(endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

func (s *S3Store) Put(ctx context.Context, name string, r io.Reader, size int64) (Object, error) {
	key, err := ObjectKey(name)
	if err != nil {
		return Object{}, err
	}

	ct := ContentType(name)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               r,
		ContentLength:      aws.Int64(size),
		ContentType:        aws.String(ct),
		ContentDisposition: aws.String(contentDisposition(key)),
		ACL:                types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	url := s.baseURL + "/" + key
	return Object{
		URL:                url,
		DownloadURL:        url + "?download=1",
		Pathname:           key,
		ContentType:        ct,
		ContentDisposition: contentDisposition(key),
		Size:               size,
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	key, err := keyFromURL(s.baseURL, url)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to remove file from S3: %w", err)
	}
	return nil
}

func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}
