package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Run("未設定ならデフォルト値なのだ", func(t *testing.T) {
		for _, k := range []string{"STORY_MODEL", "PORT", "MEDIA_BACKEND", "CACHE_BACKEND", "CACHE_TTL", "IMAGE_RATE_INTERVAL", "SKIP_IMAGES", "LOG_LEVEL", "ALLOWED_ORIGINS", "OUTPUT_DIR"} {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("エラーは期待していないのだ: %v", err)
		}
		if cfg.StoryModel != DefaultStoryModel || cfg.Port != DefaultPort {
			t.Errorf("デフォルト値になっていないのだ: %+v", cfg)
		}
		if cfg.MediaBackend != MediaLocal || cfg.CacheBackend != CacheMemory {
			t.Errorf("期待値 local/memory, 実際の値 %s/%s", cfg.MediaBackend, cfg.CacheBackend)
		}
		if cfg.CacheTTL != 0 || cfg.ImageRateInterval != 0 || cfg.SkipImages {
			t.Errorf("ゼロ値のはずなのだ: %+v", cfg)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Errorf("期待値 INFO, 実際の値 %s", cfg.LogLevel)
		}
		if !slices.Equal(cfg.AllowedOrigins, []string{"*"}) {
			t.Errorf("期待値 [*], 実際の値 %v", cfg.AllowedOrigins)
		}
	})

	t.Run("環境変数を読み込むのだ", func(t *testing.T) {
		t.Setenv("MEDIA_BACKEND", "Cloudinary")
		t.Setenv("CACHE_TTL", "2h")
		t.Setenv("IMAGE_RATE_INTERVAL", "1500ms")
		t.Setenv("SKIP_IMAGES", "true")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example ,")
		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("エラーは期待していないのだ: %v", err)
		}
		if cfg.MediaBackend != MediaCloudinary {
			t.Errorf("期待値 cloudinary, 実際の値 %s", cfg.MediaBackend)
		}
		if cfg.CacheTTL != 2*time.Hour || cfg.ImageRateInterval != 1500*time.Millisecond || !cfg.SkipImages {
			t.Errorf("想定外の値なのだ: %+v", cfg)
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Errorf("期待値 DEBUG, 実際の値 %s", cfg.LogLevel)
		}
		if !slices.Equal(cfg.AllowedOrigins, []string{"http://a.example", "http://b.example"}) {
			t.Errorf("想定外のオリジンなのだ: %v", cfg.AllowedOrigins)
		}
	})

	t.Run("不正な値はまとめてエラーなのだ", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "forever")
		t.Setenv("SKIP_IMAGES", "maybe")
		_, err := LoadConfig()
		if err == nil {
			t.Fatal("エラーを期待したのに nil だったのだ")
		}
		if !strings.Contains(err.Error(), "CACHE_TTL") || !strings.Contains(err.Error(), "SKIP_IMAGES") {
			t.Errorf("両方のキーが含まれていないのだ: %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{GeminiAPIKey: "k", MediaBackend: MediaLocal, CacheBackend: CacheMemory}
	}

	t.Run("最小構成は通るのだ", func(t *testing.T) {
		if err := base().Validate(); err != nil {
			t.Errorf("エラーは期待していないのだ: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"APIキーなし", func(c *Config) { c.GeminiAPIKey = "" }},
		{"Cloudinaryの資格情報なし", func(c *Config) { c.MediaBackend = MediaCloudinary }},
		{"GCSバケットなし", func(c *Config) { c.MediaBackend = MediaGCS }},
		{"S3バケットなし", func(c *Config) { c.MediaBackend = MediaS3 }},
		{"未知のメディア", func(c *Config) { c.MediaBackend = "ftp" }},
		{"Redisアドレスなし", func(c *Config) { c.CacheBackend = CacheRedis }},
		{"未知のキャッシュ", func(c *Config) { c.CacheBackend = "memcached" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("エラーを期待したのに nil だったのだ")
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := &Config{OutputDir: filepath.Join(t.TempDir(), "output")}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("エラーは期待していないのだ: %v", err)
	}
	for _, d := range []string{"stories", "images/characters", "images/backgrounds", "temp"} {
		if info, err := os.Stat(filepath.Join(cfg.OutputDir, d)); err != nil || !info.IsDir() {
			t.Errorf("%s が作成されていないのだ: %v", d, err)
		}
	}

	t.Run("作れなければエラーなのだ", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		if err := (&Config{OutputDir: file}).EnsureDirectories(); err == nil {
			t.Error("エラーを期待したのに nil だったのだ")
		}
	})
}

func TestLocalMediaBaseURL(t *testing.T) {
	c := &Config{Port: "9000"}
	if got := c.LocalMediaBaseURL(); got != "http://localhost:9000/media" {
		t.Errorf("期待値 http://localhost:9000/media, 実際の値 %s", got)
	}
	c.MediaPublicBaseURL = "https://cdn.example.com"
	if got := c.LocalMediaBaseURL(); got != "https://cdn.example.com" {
		t.Errorf("期待値 https://cdn.example.com, 実際の値 %s", got)
	}
}
