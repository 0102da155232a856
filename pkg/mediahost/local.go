package mediahost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

// LocalUploader はローカルのディレクトリへ画像をコピーし、静的配信用のURLを返します。
// 開発時やオフライン実行用のバックエンドなのだ。
type LocalUploader struct {
	baseDir string
	baseURL string
}

// NewLocalUploader は baseDir 配下に保存し、baseURL を前置したURLを返す LocalUploader を作ります。
func NewLocalUploader(baseDir, baseURL string) *LocalUploader {
	return &LocalUploader{baseDir: baseDir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (u *LocalUploader) Upload(ctx context.Context, req UploadRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fileName := req.PublicID + filepath.Ext(req.FilePath)
	dest, err := urlpath.ResolveOutputPath(filepath.Join(u.baseDir, req.Folder), fileName)
	if err != nil {
		return "", fmt.Errorf("保存先パスの解決に失敗しました: %w", err)
	}

	if !req.Overwrite {
		if _, err := os.Stat(dest); err == nil {
			return u.publicURL(req.Folder, fileName)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("保存先ディレクトリの作成に失敗しました: %w", err)
	}
	if err := copyFile(req.FilePath, dest); err != nil {
		return "", err
	}
	return u.publicURL(req.Folder, fileName)
}

func (u *LocalUploader) publicURL(folder, fileName string) (string, error) {
	if u.baseURL == "" {
		return "", errors.New("公開用のベースURLが設定されていません")
	}
	return url.JoinPath(u.baseURL, folder, fileName)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("コピー元を開けません: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("コピー先を作成できません: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("ファイルのコピーに失敗しました: %w", err)
	}
	return out.Close()
}
