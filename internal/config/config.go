package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultStoryModel       = "gemini-2.0-flash-001"
	DefaultQuizModel        = "gemini-2.0-flash-lite"
	DefaultSummaryModel     = "gemini-2.0-flash-lite"
	DefaultTutorModel       = "gemini-2.0-flash-lite"
	DefaultImageModel       = "gemini-2.0-flash-exp-image-generation"
	DefaultPort             = "8000"
	DefaultOutputDir        = "output"
	DefaultUserDataFile     = "interests.json"
	DefaultCloudinaryPrefix = "financial_novel"
	DefaultAWSRegion        = "us-east-1"

	MediaLocal      = "local"
	MediaCloudinary = "cloudinary"
	MediaGCS        = "gcs"
	MediaS3         = "s3"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config はアプリケーション全体の環境設定を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey string
	StoryModel   string
	QuizModel    string
	SummaryModel string
	TutorModel   string
	ImageModel   string

	Port           string
	AllowedOrigins []string

	OutputDir    string
	UserDataFile string

	// --- メディアホスト ---
	MediaBackend       string
	MediaPublicBaseURL string
	CloudinaryCloud    string
	CloudinaryKey      string
	CloudinarySecret   string
	MediaFolderPrefix  string
	GCSBucket          string
	GCSCredentialsFile string
	S3Bucket           string
	AWSRegion          string

	// --- キャッシュ ---
	CacheBackend  string
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	ImageRateInterval time.Duration
	SkipImages        bool
	LogLevel          slog.Level

	Options GenerateOptions
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	Difficulty string // --difficulty
	OutputFile string // --output-file（空なら標準出力）
	Format     string // --format: json | markdown
	PublishDir string // --publish-dir
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ。
// カレントディレクトリに .env があれば先に読み込みます（既存の環境変数は上書きしません）。
// 期間や真偽値として読めない値はエラーにします。
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn(".env の読み込みに失敗しました", "error", err)
	}

	cfg := &Config{
		GeminiAPIKey: envutil.GetEnv("GEMINI_API_KEY", ""),
		StoryModel:   envutil.GetEnv("STORY_MODEL", DefaultStoryModel),
		QuizModel:    envutil.GetEnv("QUIZ_MODEL", DefaultQuizModel),
		SummaryModel: envutil.GetEnv("SUMMARY_MODEL", DefaultSummaryModel),
		TutorModel:   envutil.GetEnv("TUTOR_MODEL", DefaultTutorModel),
		ImageModel:   envutil.GetEnv("IMAGE_MODEL", DefaultImageModel),

		Port:           envutil.GetEnv("PORT", DefaultPort),
		AllowedOrigins: splitList(envutil.GetEnv("ALLOWED_ORIGINS", "*")),

		OutputDir:    envutil.GetEnv("OUTPUT_DIR", DefaultOutputDir),
		UserDataFile: envutil.GetEnv("USER_DATA_FILE", DefaultUserDataFile),

		MediaBackend:       strings.ToLower(envutil.GetEnv("MEDIA_BACKEND", MediaLocal)),
		MediaPublicBaseURL: envutil.GetEnv("MEDIA_PUBLIC_BASE_URL", ""),
		CloudinaryCloud:    envutil.GetEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryKey:      envutil.GetEnv("CLOUDINARY_API_KEY", ""),
		CloudinarySecret:   envutil.GetEnv("CLOUDINARY_API_SECRET", ""),
		MediaFolderPrefix:  envutil.GetEnv("CLOUDINARY_FOLDER_PREFIX", DefaultCloudinaryPrefix),
		GCSBucket:          envutil.GetEnv("GCS_BUCKET", ""),
		GCSCredentialsFile: envutil.GetEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		S3Bucket:           envutil.GetEnv("S3_BUCKET", ""),
		AWSRegion:          envutil.GetEnv("AWS_REGION", DefaultAWSRegion),

		CacheBackend:  strings.ToLower(envutil.GetEnv("CACHE_BACKEND", CacheMemory)),
		RedisAddr:     envutil.GetEnv("REDIS_ADDR", ""),
		RedisPassword: envutil.GetEnv("REDIS_PASSWORD", ""),
	}

	var errs []error
	var err error
	if cfg.CacheTTL, err = parseDuration("CACHE_TTL"); err != nil {
		errs = append(errs, err)
	}
	if cfg.ImageRateInterval, err = parseDuration("IMAGE_RATE_INTERVAL"); err != nil {
		errs = append(errs, err)
	}
	if cfg.SkipImages, err = parseBool("SKIP_IMAGES"); err != nil {
		errs = append(errs, err)
	}
	level := envutil.GetEnv("LOG_LEVEL", "")
	if level == "" {
		level = "INFO"
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL が不正です: %w", err))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate は選択されたバックエンドに必要な値が揃っているかを確認します。
func (c *Config) Validate() error {
	var errs []error
	if c.GeminiAPIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY が設定されていません"))
	}

	switch c.MediaBackend {
	case MediaLocal:
	case MediaCloudinary:
		if c.CloudinaryCloud == "" || c.CloudinaryKey == "" || c.CloudinarySecret == "" {
			errs = append(errs, errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET が必要です"))
		}
	case MediaGCS:
		if c.GCSBucket == "" {
			errs = append(errs, errors.New("GCS_BUCKET が必要です"))
		}
	case MediaS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET が必要です"))
		}
	default:
		errs = append(errs, fmt.Errorf("未知の MEDIA_BACKEND です: %s", c.MediaBackend))
	}

	switch c.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR が必要です"))
		}
	default:
		errs = append(errs, fmt.Errorf("未知の CACHE_BACKEND です: %s", c.CacheBackend))
	}
	return errors.Join(errs...)
}

// StoriesDir は成果物を書き出すディレクトリです。
func (c *Config) StoriesDir() string { return filepath.Join(c.OutputDir, "stories") }

// ImagesDir はローカル配信用の画像ディレクトリです。
func (c *Config) ImagesDir() string { return filepath.Join(c.OutputDir, "images") }

// TempDir は画像の一時ファイル置き場なのだ。
func (c *Config) TempDir() string { return filepath.Join(c.OutputDir, "temp") }

// LocalMediaBaseURL はローカル配信時の公開URLを返します。
func (c *Config) LocalMediaBaseURL() string {
	if c.MediaPublicBaseURL != "" {
		return c.MediaPublicBaseURL
	}
	return "http://localhost:" + c.Port + "/media"
}

// EnsureDirectories は出力先のディレクトリ一式を作成します。
// 1つでも作れなければ起動を続けられないのでエラーを返すのだ。
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.StoriesDir(),
		filepath.Join(c.ImagesDir(), "characters"),
		filepath.Join(c.ImagesDir(), "backgrounds"),
		c.TempDir(),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("ディレクトリ %s の作成に失敗しました: %w", d, err)
		}
	}
	return nil
}

func parseDuration(key string) (time.Duration, error) {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s が不正です: %w", key, err)
	}
	return d, nil
}

func parseBool(key string) (bool, error) {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s が不正です: %w", key, err)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
