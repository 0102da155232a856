package generator

import (
	"context"
	"time"

	"github.com/shouni/go-fin-novel-kit/pkg/domain"
)

// Enricher は生成済みストーリーに画像を付与する契約です。
// 実装は story.GeneratedImages を書き換え、同じ値を返します。
// 返されるエラーは個別アセットの失敗をまとめたもので、致命的ではないのだ。
type Enricher interface {
	Enrich(ctx context.Context, story *domain.Story, interest domain.SelectedInterest, ts time.Time) (*domain.GeneratedImages, error)
}
