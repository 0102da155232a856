package enrich

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/webp"

	"github.com/shouni/go-fin-novel-kit/pkg/ai"
)

// writeTempPNG はインライン画像をデコードし、PNG として一時ファイルに書き出します。
// 呼び出し側が使い終わったら削除する責任を持つのだ。
func writeTempPNG(dir, id string, blob *ai.Blob) (string, error) {
	img, format, err := image.Decode(bytes.NewReader(blob.Data))
	if err != nil {
		return "", fmt.Errorf("画像データのデコードに失敗しました (mime=%s): %w", blob.MIMEType, err)
	}

	f, err := os.CreateTemp(dir, "temp_"+Sanitize(id)+"_*.png")
	if err != nil {
		return "", fmt.Errorf("一時ファイルの作成に失敗しました: %w", err)
	}
	path := f.Name()

	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("PNG エンコードに失敗しました (元形式=%s): %w", format, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("一時ファイルのクローズに失敗しました: %w", err)
	}
	return path, nil
}
