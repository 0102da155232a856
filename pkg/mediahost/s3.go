package mediahost

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Uploader は Amazon S3 のバケットへ画像を置き、公開URLを返します。
type S3Uploader struct {
	client *s3.Client
	bucket string
	region string
	prefix string
}

func NewS3Uploader(ctx context.Context, bucket, region, prefix string) (*S3Uploader, error) {
	if bucket == "" {
		return nil, errors.New("S3_BUCKET が設定されていません")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("AWS 設定の読み込みに失敗しました: %w", err)
	}
	return &S3Uploader{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
		prefix: prefix,
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, req UploadRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	key := path.Join(u.prefix, req.key()) + filepath.Ext(req.FilePath)

	if !req.Overwrite {
		_, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(u.bucket),
			Key:    aws.String(key),
		})
		if err == nil {
			return u.publicURL(key), nil
		}
	}

	f, err := os.Open(req.FilePath)
	if err != nil {
		return "", fmt.Errorf("アップロード対象を開けません: %w", err)
	}
	defer f.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentTypeFor(req.FilePath)),
	})
	if err != nil {
		return "", fmt.Errorf("S3 へのアップロードに失敗しました (%s): %w", key, err)
	}
	return u.publicURL(key), nil
}

func (u *S3Uploader) publicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}
