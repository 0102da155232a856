package mediahost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSUploader は Google Cloud Storage のバケットへ画像を置き、公開URLを返します。
type GCSUploader struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSUploader は GCS クライアントを初期化します。credentialsFile が空ならADCを使うのだ。
func NewGCSUploader(ctx context.Context, bucket, prefix, credentialsFile string) (*GCSUploader, error) {
	if bucket == "" {
		return nil, errors.New("GCS_BUCKET が設定されていません")
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSUploader{client: client, bucket: bucket, prefix: prefix}, nil
}

func (u *GCSUploader) Upload(ctx context.Context, req UploadRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	f, err := os.Open(req.FilePath)
	if err != nil {
		return "", fmt.Errorf("アップロード対象を開けません: %w", err)
	}
	defer f.Close()

	key := path.Join(u.prefix, req.key()) + filepath.Ext(req.FilePath)
	obj := u.client.Bucket(u.bucket).Object(key)
	if !req.Overwrite {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}

	w := obj.NewWriter(ctx)
	w.ContentType = contentTypeFor(req.FilePath)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return publicGCSURL(u.bucket, key), nil
}

// Close は内部の storage クライアントを閉じます。
func (u *GCSUploader) Close() error {
	return u.client.Close()
}

func publicGCSURL(bucket, key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, key)
}
