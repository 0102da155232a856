package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/shouni/go-fin-novel-kit/pkg/ai"
	"github.com/shouni/go-fin-novel-kit/pkg/domain"
	"github.com/shouni/go-fin-novel-kit/pkg/mediahost"
	"github.com/shouni/go-fin-novel-kit/pkg/prompts"
)

const (
	// MaxCharacterImages を超えるキャラクターは黙って切り捨てるのだ。
	MaxCharacterImages = 5
	// TimestampLayout は公開IDに埋め込むタイムスタンプの書式です。
	TimestampLayout = "20060102_150405"
)

// Pipeline は表紙、キャラクター、背景の画像を順番に生成してアップロードします。
// 1枚ずつ直列に処理し、個別の失敗は記録して次へ進むのだ。
type Pipeline struct {
	client   ai.Client
	uploader mediahost.Uploader
	prompts  prompts.PromptBuilder
	limiter  *rate.Limiter
	model    string
	tempDir  string
}

// Option は Pipeline の任意設定です。
type Option func(*Pipeline)

// WithLimiter は画像リクエスト間のレート制限を設定します。
func WithLimiter(l *rate.Limiter) Option {
	return func(p *Pipeline) { p.limiter = l }
}

// WithTempDir は一時ファイルの作成先を設定します。空なら OS の既定なのだ。
func WithTempDir(dir string) Option {
	return func(p *Pipeline) { p.tempDir = dir }
}

// New は Pipeline を生成します。既定ではレート制限なしです。
func New(client ai.Client, uploader mediahost.Uploader, pb prompts.PromptBuilder, model string, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:   client,
		uploader: uploader,
		prompts:  pb,
		model:    model,
		limiter:  rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// asset は生成対象1件分の情報なのだ。
type asset struct {
	label  string
	mode   string
	data   prompts.TemplateData
	folder string
	id     string
}

// Enrich は物語に画像を付与し、story.GeneratedImages を更新します。
// 返すエラーは失敗したアセットをまとめたもので、成功分は常に反映されます。
func (p *Pipeline) Enrich(ctx context.Context, story *domain.Story, interest domain.SelectedInterest, ts time.Time) (*domain.GeneratedImages, error) {
	if story == nil {
		return nil, errors.New("story が nil です")
	}
	interest = interest.OrDefault()
	stamp := ts.Format(TimestampLayout)
	images := domain.NewGeneratedImages()
	var errs []error

	// 1. 表紙
	cover := asset{
		label:  "cover",
		mode:   prompts.ModeCover,
		data:   prompts.TemplateData{Story: story, Interest: interest},
		folder: mediahost.FolderCovers,
		id:     "cover_" + stamp,
	}
	if len(story.Visuals.Characters) > 0 {
		cover.data.Name = story.Visuals.Characters[0].Name
	}
	if url, err := p.produce(ctx, cover); err != nil {
		slog.WarnContext(ctx, "表紙画像の生成に失敗しました。表紙なしで続行します", "error", err)
		errs = append(errs, fmt.Errorf("cover: %w", err))
	} else if url != "" {
		images.Cover = url
	}

	// 2. キャラクター（最大5体）
	characters := story.Visuals.Characters
	if len(characters) > MaxCharacterImages {
		characters = characters[:MaxCharacterImages]
	}
	for _, c := range characters {
		a := asset{
			label:  "character",
			mode:   prompts.ModeCharacter,
			data:   prompts.TemplateData{Name: c.Name, Description: c.Description, Interest: interest},
			folder: mediahost.FolderCharacters,
			id:     compactName(c.Name) + stamp,
		}
		url, err := p.produce(ctx, a)
		if err != nil {
			slog.WarnContext(ctx, "キャラクター画像の生成に失敗しました。スキップします", "character", c.Name, "error", err)
			errs = append(errs, fmt.Errorf("character %s: %w", c.Name, err))
			continue
		}
		if url != "" {
			images.Characters[c.Name] = url
		}
	}

	// 3. 背景
	for _, b := range story.Visuals.Backgrounds {
		elements, ok := prompts.BackgroundFinancialElements[b.Type]
		if !ok {
			err := fmt.Errorf("不明な背景種別です: %s", b.Type)
			slog.WarnContext(ctx, "背景画像をスキップします", "background", b.Name, "error", err)
			errs = append(errs, fmt.Errorf("background %s: %w", b.Name, err))
			continue
		}
		a := asset{
			label: "background",
			mode:  prompts.ModeBackground,
			data: prompts.TemplateData{
				Name:              b.Name,
				Description:       b.Description,
				BackgroundType:    string(b.Type),
				FinancialElements: elements,
				Interest:          interest,
			},
			folder: mediahost.FolderBackgrounds,
			id:     string(b.Type) + compactName(b.Name) + "_" + stamp,
		}
		url, err := p.produce(ctx, a)
		if err != nil {
			slog.WarnContext(ctx, "背景画像の生成に失敗しました。スキップします", "background", b.Name, "type", b.Type, "error", err)
			errs = append(errs, fmt.Errorf("background %s: %w", b.Name, err))
			continue
		}
		if url != "" {
			images.Backgrounds[b.Type] = url
		}
	}

	story.GeneratedImages = images
	return images, errors.Join(errs...)
}

// produce は1枚の画像を生成し、一時ファイル経由でアップロードしてURLを返します。
// モデルが画像を返さなかった場合は空文字と nil を返すのだ。
func (p *Pipeline) produce(ctx context.Context, a asset) (string, error) {
	prompt, err := p.prompts.Build(a.mode, a.data)
	if err != nil {
		return "", err
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("レート制限の待機中に中断されました: %w", err)
	}

	slog.InfoContext(ctx, "画像を生成するのだ", "asset", a.label, "id", a.id)
	blob, err := p.generateImage(ctx, prompt)
	if err != nil {
		return "", err
	}
	if blob == nil {
		slog.InfoContext(ctx, "モデルが画像を返しませんでした", "asset", a.label, "id", a.id)
		return "", nil
	}

	path, err := writeTempPNG(p.tempDir, a.id, blob)
	if err != nil {
		return "", err
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.WarnContext(ctx, "一時ファイルの削除に失敗しました", "path", path, "error", rmErr)
		}
	}()

	return p.uploader.Upload(ctx, mediahost.UploadRequest{
		FilePath:  path,
		Folder:    a.folder,
		PublicID:  Sanitize(a.id),
		Overwrite: true,
	})
}

// generateImage はストリームを読み進め、最初に見つかったインライン画像を返します。
func (p *Pipeline) generateImage(ctx context.Context, prompt string) (*ai.Blob, error) {
	req := ai.Request{
		Model:              p.model,
		Prompt:             prompt,
		Temperature:        ptr(float32(1)),
		TopP:               ptr(float32(0.95)),
		TopK:               ptr(float32(40)),
		MaxOutputTokens:    8192,
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}
	for chunk, err := range p.client.Stream(ctx, req) {
		if err != nil {
			return nil, err
		}
		if chunk.HasImage() {
			return chunk.InlineData, nil
		}
	}
	return nil, nil
}

func ptr[T any](v T) *T { return &v }
