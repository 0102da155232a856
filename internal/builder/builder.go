package builder

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"golang.org/x/time/rate"

	"github.com/shouni/go-fin-novel-kit/internal/config"
	"github.com/shouni/go-fin-novel-kit/internal/pipeline"
	"github.com/shouni/go-fin-novel-kit/internal/session"
	"github.com/shouni/go-fin-novel-kit/pkg/ai"
	"github.com/shouni/go-fin-novel-kit/pkg/enrich"
	"github.com/shouni/go-fin-novel-kit/pkg/generator"
	"github.com/shouni/go-fin-novel-kit/pkg/mediahost"
	"github.com/shouni/go-fin-novel-kit/pkg/prompts"
	"github.com/shouni/go-fin-novel-kit/pkg/publisher"
	"github.com/shouni/go-fin-novel-kit/pkg/store"
)

// Build は設定からアプリケーションの依存関係をすべて組み立てます。
// 失敗した場合、それまでに開いたクライアントは閉じてから返すのだ。
func Build(ctx context.Context, cfg *config.Config) (_ *AppContext, err error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	app := &AppContext{Config: cfg}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	aiClient, err := InitializeAIClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	pb, err := prompts.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("プロンプトビルダーの初期化に失敗しました: %w", err)
	}

	enricher, err := BuildEnricher(ctx, app, aiClient, pb)
	if err != nil {
		return nil, err
	}

	st, err := BuildStore(ctx, app)
	if err != nil {
		return nil, err
	}
	app.Store = st

	gens := pipeline.Generators{
		Story:   generator.NewStoryGenerator(aiClient, pb, cfg.StoryModel, enricher),
		Quiz:    generator.NewQuizGenerator(aiClient, pb, cfg.QuizModel),
		Summary: generator.NewSummaryGenerator(aiClient, pb, cfg.SummaryModel),
		Tutor:   generator.NewTutor(aiClient, pb, cfg.TutorModel),
	}
	writer, err := BuildOutputWriter(ctx)
	if err != nil {
		return nil, err
	}
	app.Publisher = publisher.NewStoryPublisher(writer)

	sess := session.NewManager(cfg.UserDataFile, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
	app.Orchestrator = pipeline.New(gens, st, sess, pipeline.WithArchiver(archiveTo(app.Publisher, cfg.StoriesDir())))

	slog.InfoContext(ctx, "アプリケーションの構築が完了したのだ",
		"story_model", cfg.StoryModel,
		"media_backend", cfg.MediaBackend,
		"cache_backend", cfg.CacheBackend,
		"images", enricher != nil)
	return app, nil
}

// InitializeAIClient は gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (*ai.GeminiClient, error) {
	client, err := ai.NewGeminiClient(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return client, nil
}

// BuildEnricher は画像付与パイプラインを構築します。
// SKIP_IMAGES のときは nil を返し、物語は画像なしで生成されるのだ。
func BuildEnricher(ctx context.Context, app *AppContext, client ai.Client, pb prompts.PromptBuilder) (generator.Enricher, error) {
	cfg := app.Config
	if cfg.SkipImages {
		slog.InfoContext(ctx, "画像生成はスキップするのだ")
		return nil, nil
	}

	uploader, err := BuildUploader(ctx, app)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.ImageRateInterval > 0 {
		limit = rate.Every(cfg.ImageRateInterval)
	}
	return enrich.New(
		client,
		mediahost.NewDedupUploader(uploader),
		pb,
		cfg.ImageModel,
		enrich.WithLimiter(rate.NewLimiter(limit, 1)),
		enrich.WithTempDir(cfg.TempDir()),
	), nil
}

// BuildUploader は MEDIA_BACKEND に応じたアップローダーを返します。
func BuildUploader(ctx context.Context, app *AppContext) (mediahost.Uploader, error) {
	cfg := app.Config
	switch cfg.MediaBackend {
	case config.MediaCloudinary:
		u, err := mediahost.NewCloudinaryUploader(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret, cfg.MediaFolderPrefix)
		if err != nil {
			return nil, fmt.Errorf("Cloudinary の初期化に失敗しました: %w", err)
		}
		return u, nil
	case config.MediaGCS:
		u, err := mediahost.NewGCSUploader(ctx, cfg.GCSBucket, cfg.MediaFolderPrefix, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("GCS の初期化に失敗しました: %w", err)
		}
		app.onClose(u.Close)
		return u, nil
	case config.MediaS3:
		u, err := mediahost.NewS3Uploader(ctx, cfg.S3Bucket, cfg.AWSRegion, cfg.MediaFolderPrefix)
		if err != nil {
			return nil, fmt.Errorf("S3 の初期化に失敗しました: %w", err)
		}
		return u, nil
	case config.MediaLocal:
		app.MediaDir = cfg.ImagesDir()
		return mediahost.NewLocalUploader(cfg.ImagesDir(), cfg.LocalMediaBaseURL()), nil
	default:
		return nil, fmt.Errorf("未知の MEDIA_BACKEND です: %s", cfg.MediaBackend)
	}
}

// BuildStore は CACHE_BACKEND に応じたストアを返します。
func BuildStore(ctx context.Context, app *AppContext) (store.Store, error) {
	cfg := app.Config
	switch cfg.CacheBackend {
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		app.onClose(client.Close)
		rs := store.NewRedisStore(client, cfg.CacheTTL)
		if err := rs.Ping(ctx); err != nil {
			return nil, fmt.Errorf("Redis に接続できません: %w", err)
		}
		slog.InfoContext(ctx, "Redis に接続したのだ", "addr", cfg.RedisAddr)
		return rs, nil
	case config.CacheMemory:
		return store.NewMemoryStore(cfg.CacheTTL), nil
	default:
		return nil, fmt.Errorf("未知の CACHE_BACKEND です: %s", cfg.CacheBackend)
	}
}

// archiveTo は生成結果を dir へ JSON と Markdown で書き出す Archiver を返します。
func archiveTo(pub *publisher.StoryPublisher, dir string) pipeline.Archiver {
	return func(ctx context.Context, rec store.Record) error {
		_, err := pub.Publish(ctx, dir, rec.Story, rec.Quiz, rec.Summary, rec.ID)
		return err
	}
}

// BuildOutputWriter はローカルパスと gs:// の両方に書き出せる OutputWriter を返します。
func BuildOutputWriter(ctx context.Context) (remoteio.OutputWriter, error) {
	gcsFactory, err := gcsfactory.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	writer, err := gcsFactory.OutputWriter()
	if err != nil {
		return nil, fmt.Errorf("failed to create output writer: %w", err)
	}
	return writer, nil
}
