package builder

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shouni/go-fin-novel-kit/internal/config"
	"github.com/shouni/go-fin-novel-kit/pkg/domain"
	"github.com/shouni/go-fin-novel-kit/pkg/mediahost"
	"github.com/shouni/go-fin-novel-kit/pkg/publisher"
	"github.com/shouni/go-fin-novel-kit/pkg/store"
)

func newTestApp(t *testing.T) *AppContext {
	t.Helper()
	return &AppContext{Config: &config.Config{
		OutputDir:    filepath.Join(t.TempDir(), "output"),
		Port:         "8000",
		MediaBackend: config.MediaLocal,
		CacheBackend: config.CacheMemory,
	}}
}

func TestBuildUploader(t *testing.T) {
	ctx := context.Background()

	t.Run("local ならメディア配信ディレクトリを設定するのだ", func(t *testing.T) {
		app := newTestApp(t)
		u, err := BuildUploader(ctx, app)
		if err != nil {
			t.Fatalf("エラーは期待していないのだ: %v", err)
		}
		if _, ok := u.(*mediahost.LocalUploader); !ok {
			t.Errorf("期待値 *mediahost.LocalUploader, 実際の値 %T", u)
		}
		if app.MediaDir != app.Config.ImagesDir() {
			t.Errorf("期待値 %s, 実際の値 %s", app.Config.ImagesDir(), app.MediaDir)
		}
	})

	t.Run("未知のバックエンドはエラーなのだ", func(t *testing.T) {
		app := newTestApp(t)
		app.Config.MediaBackend = "ftp"
		if _, err := BuildUploader(ctx, app); err == nil {
			t.Error("エラーを期待したのに nil だったのだ")
		}
	})
}

func TestBuildEnricher(t *testing.T) {
	app := newTestApp(t)
	app.Config.SkipImages = true
	e, err := BuildEnricher(context.Background(), app, nil, nil)
	if err != nil {
		t.Fatalf("エラーは期待していないのだ: %v", err)
	}
	if e != nil {
		t.Errorf("SKIP_IMAGES なら nil のはずなのだ: %T", e)
	}
	if app.MediaDir != "" {
		t.Errorf("アップローダーを作ってはいけないのだ: %s", app.MediaDir)
	}
}

func TestBuildStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory なのだ", func(t *testing.T) {
		st, err := BuildStore(ctx, newTestApp(t))
		if err != nil {
			t.Fatalf("エラーは期待していないのだ: %v", err)
		}
		if _, ok := st.(*store.MemoryStore); !ok {
			t.Errorf("期待値 *store.MemoryStore, 実際の値 %T", st)
		}
	})

	t.Run("未知のバックエンドはエラーなのだ", func(t *testing.T) {
		app := newTestApp(t)
		app.Config.CacheBackend = "memcached"
		if _, err := BuildStore(ctx, app); err == nil {
			t.Error("エラーを期待したのに nil だったのだ")
		}
	})
}

func TestArchiveTo(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	w := &memWriter{files: map[string]string{}}
	archive := archiveTo(publisher.NewStoryPublisher(w), app.Config.StoriesDir())
	if err := archive(ctx, store.Record{ID: "abc", Story: domain.GenerationErrorStory()}); err != nil {
		t.Fatalf("エラーは期待していないのだ: %v", err)
	}
	for _, name := range []string{"abc.json", "abc.md"} {
		path := filepath.Join(app.Config.StoriesDir(), name)
		if w.files[path] == "" {
			t.Errorf("%s が書き出されていないのだ", path)
		}
	}
	if ct := w.types[filepath.Join(app.Config.StoriesDir(), "abc.md")]; !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("期待値 text/markdown, 実際の値 %s", ct)
	}
}

// memWriter は書き込まれた内容をパスごとに覚えておく OutputWriter なのだ。
type memWriter struct {
	files map[string]string
	types map[string]string
}

func (w *memWriter) Write(_ context.Context, path string, r io.Reader, contentType string) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if w.types == nil {
		w.types = map[string]string{}
	}
	w.files[path] = string(body)
	w.types[path] = contentType
	return nil
}
