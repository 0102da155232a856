package mediahost

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryUploader は Cloudinary へ画像をアップロードします。
// フォルダは prefix 配下に作られるのだ（例: financial_novel/characters）。
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	prefix string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, prefix string) (*CloudinaryUploader, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("Cloudinary の認証情報が不足しています")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("Cloudinary クライアントの初期化に失敗しました: %w", err)
	}
	return &CloudinaryUploader{cld: cld, prefix: prefix}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, req UploadRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	resp, err := u.cld.Upload.Upload(ctx, req.FilePath, uploader.UploadParams{
		Folder:    path.Join(u.prefix, req.Folder),
		PublicID:  req.PublicID,
		Overwrite: api.Bool(req.Overwrite),
	})
	if err != nil {
		return "", fmt.Errorf("Cloudinary へのアップロードに失敗しました (%s): %w", req.key(), err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("Cloudinary がエラーを返しました (%s): %s", req.key(), resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("Cloudinary の応答に secure_url がありません (%s)", req.key())
	}
	return resp.SecureURL, nil
}
