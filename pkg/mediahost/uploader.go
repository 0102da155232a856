package mediahost

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// メディアホスト上のフォルダ名です。
const (
	FolderCovers      = "covers"
	FolderCharacters  = "characters"
	FolderBackgrounds = "backgrounds"
)

// UploadRequest はアップロード1件分の要求なのだ。
type UploadRequest struct {
	FilePath  string
	Folder    string
	PublicID  string
	Overwrite bool
}

func (r UploadRequest) validate() error {
	if r.FilePath == "" {
		return errors.New("アップロード対象のファイルパスが空です")
	}
	if r.PublicID == "" {
		return errors.New("公開IDが空です")
	}
	return nil
}

// key はホスト上のオブジェクトキー（拡張子なし）を返します。
func (r UploadRequest) key() string {
	return path.Join(r.Folder, r.PublicID)
}

// Uploader はローカルファイルをメディアホストへ送り、安全な公開URLを返す契約です。
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (string, error)
}

// DedupUploader は同じフォルダ・公開IDへのアップロードを1回にまとめるラッパーなのだ。
// 並行する同一要求は singleflight で合流します。
// 完了した結果を覚えて使い回すのは Overwrite でない要求だけです。
// Overwrite の要求は毎回ホストへ送り、同じファイルの並行呼び出しだけを合流させるのだ。
type DedupUploader struct {
	next  Uploader
	mu    sync.RWMutex
	urls  map[string]string
	group singleflight.Group
}

// NewDedupUploader は next を包んだ DedupUploader を返します。
func NewDedupUploader(next Uploader) *DedupUploader {
	return &DedupUploader{next: next, urls: make(map[string]string)}
}

func (d *DedupUploader) Upload(ctx context.Context, req UploadRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	key := req.key()
	if req.Overwrite {
		val, err, _ := d.group.Do("overwrite:"+key+"\x00"+req.FilePath, func() (interface{}, error) {
			return d.next.Upload(ctx, req)
		})
		return flightURL(val, err)
	}

	if url, ok := d.cached(key); ok {
		return url, nil
	}

	val, err, _ := d.group.Do(key, func() (interface{}, error) {
		// 待機中に別のゴルーチンが完了させている可能性があるので再確認するのだ
		if existing, ok := d.cached(key); ok {
			return existing, nil
		}

		uploaded, err := d.next.Upload(ctx, req)
		if err != nil {
			return nil, err
		}

		d.mu.Lock()
		d.urls[key] = uploaded
		d.mu.Unlock()
		return uploaded, nil
	})
	return flightURL(val, err)
}

func (d *DedupUploader) cached(key string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	url, ok := d.urls[key]
	return url, ok
}

func flightURL(val interface{}, err error) (string, error) {
	if err != nil {
		return "", err
	}

	url, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("unexpected return type from singleflight: %T", val)
	}
	return url, nil
}

// contentTypeFor はファイル拡張子から Content-Type を推定します。不明なら octet-stream なのだ。
func contentTypeFor(filePath string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filePath)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
