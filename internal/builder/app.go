package builder

import (
	"errors"

	"github.com/shouni/go-fin-novel-kit/internal/config"
	"github.com/shouni/go-fin-novel-kit/internal/pipeline"
	"github.com/shouni/go-fin-novel-kit/pkg/publisher"
	"github.com/shouni/go-fin-novel-kit/pkg/store"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// serve と generate の両コマンドはこれを受け取って動くのだ。
type AppContext struct {
	Config       *config.Config         // 環境変数から読み込まれた設定
	Orchestrator *pipeline.Orchestrator // 物語・クイズ・要約のユースケース
	Store        store.Store            // 生成物のキャッシュ
	Publisher    *publisher.StoryPublisher
	// MediaDir はローカルメディアを配信するディレクトリ。local 以外では空なのだ。
	MediaDir string

	closers []func() error
}

// Close は構築時に開いたクライアントを閉じます。
func (a *AppContext) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func (a *AppContext) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}
