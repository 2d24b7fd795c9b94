package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"car-catalog/pkg/common/config"
)

// publicReadPolicy 允许匿名读取桶内对象
const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

var _ Store = (*MinioStore)(nil)

func NewMinioStore(ctx context.Context, cfg config.BlobConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	// 确保存储桶存在且公开可读
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	if err := client.SetBucketPolicy(ctx, cfg.Bucket, fmt.Sprintf(publicReadPolicy, cfg.Bucket)); err != nil {
		return nil, fmt.Errorf("failed to set bucket policy: %w", err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s/%s", client.EndpointURL().String(), cfg.Bucket)
	}

	return &MinioStore{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (s *MinioStore) Put(ctx context.Context, name string, r io.Reader, size int64) (Object, error) {
	key, err := ObjectKey(name)
	if err != nil {
		return Object{}, err
	}

	ct := ContentType(name)
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:        ct,
		ContentDisposition: contentDisposition(key),
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload file to MinIO: %w", err)
	}

	url := s.baseURL + "/" + key
	return Object{
		URL:                url,
		DownloadURL:        url + "?download=1",
		Pathname:           key,
		ContentType:        ct,
		ContentDisposition: contentDisposition(key),
		Size:               info.Size,
	}, nil
}

func (s *MinioStore) Delete(ctx context.Context, url string) error {
	key, err := keyFromURL(s.baseURL, url)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove file from MinIO: %w", err)
	}
	return nil
}

func (s *MinioStore) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}
