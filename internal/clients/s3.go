package clients

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
}

// S3Client stores reports in an S3 compatible bucket and hands out presigned
// download links.
type S3Client struct {
	raw    *minio.Client
	bucket string
	prefix string
	urlTTL time.Duration
}

const defaultURLTTL = 48 * time.Hour

func NewS3Client(ctx context.Context, cfg S3Config) (*S3Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &S3Client{
		raw:    client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		urlTTL: defaultURLTTL,
	}, nil
}

func (c *S3Client) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	if c.raw == nil {
		return "", fmt.Errorf("s3 client is nil")
	}

	// unique per upload; the readable name only travels in Content-Disposition
	key := c.prefix + uuid.NewString() + "_" + fileName

	_, err := c.raw.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", fileName),
	})
	if err != nil {
		return "", fmt.Errorf("put object %q failed: %w", key, err)
	}

	return key, nil
}

func (c *S3Client) GetTemporaryURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if c.raw == nil {
		return "", fmt.Errorf("s3 client is nil")
	}

	u, err := c.raw.PresignedGetObject(ctx, c.bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign get object %q failed: %w", key, err)
	}

	return u.String(), nil
}

// Put uploads the file and returns a presigned URL valid for urlTTL.
func (c *S3Client) Put(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	key, err := c.Upload(ctx, fileName, contentType, data)
	if err != nil {
		return "", err
	}
	return c.GetTemporaryURL(ctx, key, c.urlTTL)
}
