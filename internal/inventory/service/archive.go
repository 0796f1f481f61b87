package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ReportArchiver keeps a copy of every exported report.
type ReportArchiver interface {
	Archive(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// MinioArchiver stores exports under reports/<yyyy>/<mm>/<dd>/ in a bucket.
type MinioArchiver struct {
	client *minio.Client
	bucket string
}

func NewMinioArchiver(client *minio.Client, bucket string) *MinioArchiver {
	return &MinioArchiver{client: client, bucket: bucket}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *MinioArchiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	return nil
}

func (a *MinioArchiver) Archive(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	objectName := fmt.Sprintf("reports/%s/%s-%s", time.Now().Format("2006/01/02"), uuid.New().String()[:8], filename)
	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}
	return objectName, nil
}
