package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shouni/go-fin-novel-kit/internal/pipeline"
	"github.com/shouni/go-fin-novel-kit/internal/session"
	"github.com/shouni/go-fin-novel-kit/pkg/domain"
	"github.com/shouni/go-fin-novel-kit/pkg/generator"
	"github.com/shouni/go-fin-novel-kit/pkg/store"
)

// fakeService はハンドラーのテスト用に振る舞いを差し替えられる Service なのだ。
type fakeService struct {
	summaryErr error
	quizIn     pipeline.QuizInput
	state      session.State
	records    map[string]store.Record
}

func newFakeService() *fakeService {
	return &fakeService{
		state:   session.State{Difficulty: domain.DifficultyBeginner, Interest: domain.DefaultInterest()},
		records: map[string]store.Record{},
	}
}

func (f *fakeService) GenerateStory(_ context.Context, d domain.Difficulty) (store.Record, error) {
	quiz := domain.DefaultQuiz()
	summary := domain.FallbackSummary("T")
	rec := store.Record{
		ID:      "story-1",
		Story:   &domain.Story{Plot: domain.Plot{Title: "T"}, Dialogue: []domain.Dialogue{{Character: "A", Text: "hi"}}},
		Quiz:    &quiz,
		Summary: &summary,
	}
	f.records[rec.ID] = rec
	if d != "" {
		f.state.Difficulty = d
	}
	return rec, nil
}

func (f *fakeService) GenerateQuiz(_ context.Context, in pipeline.QuizInput) (domain.Quiz, error) {
	f.quizIn = in
	if in.StoryData == nil && in.StoryID == "" && len(f.records) == 0 {
		return domain.Quiz{}, pipeline.ErrNoStoryAvailable
	}
	if in.StoryID != "" {
		if _, ok := f.records[in.StoryID]; !ok {
			return domain.Quiz{}, fmt.Errorf("%w: %s", pipeline.ErrStoryNotFound, in.StoryID)
		}
	}
	return domain.DefaultQuiz(), nil
}

func (f *fakeService) GenerateSummary(context.Context, pipeline.SummaryInput) (domain.Summary, error) {
	if f.summaryErr != nil {
		return domain.FallbackSummary(""), f.summaryErr
	}
	return domain.FallbackSummary("T"), nil
}

func (f *fakeService) Fetch(_ context.Context, id string) (pipeline.StoryView, error) {
	rec, ok := f.records[id]
	if !ok {
		return pipeline.StoryView{}, pipeline.ErrStoryNotFound
	}
	return pipeline.ViewOf(rec), nil
}

func (f *fakeService) Latest(ctx context.Context) (pipeline.StoryView, error) {
	if len(f.records) == 0 {
		return pipeline.StoryView{}, pipeline.ErrNoStoryAvailable
	}
	return f.Fetch(ctx, "story-1")
}

func (f *fakeService) List(context.Context) ([]store.Meta, error) {
	var out []store.Meta
	for _, r := range f.records {
		out = append(out, store.MetaOf(r))
	}
	return out, nil
}

func (f *fakeService) LoadUserData(context.Context) session.State { return f.state }
func (f *fakeService) GameState() session.State                  { return f.state }

func (f *fakeService) UpdateGameState(p session.Patch) session.State {
	if p.Difficulty != nil {
		f.state.Difficulty = *p.Difficulty
	}
	if p.Concept != nil {
		f.state.Concept = *p.Concept
	}
	return f.state
}

func (f *fakeService) Tutor(_ context.Context, q string, _ []domain.Message) (string, error) {
	if strings.TrimSpace(q) == "" {
		return "", fmt.Errorf("%w: question が空です", generator.ErrInvalidInput)
	}
	return "answer to " + q, nil
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var got map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("レスポンスのデコードに失敗したのだ: %v", err)
		}
	}
	return w, got
}

func TestRouter(t *testing.T) {
	svc := newFakeService()
	h := NewRouter(NewHandler(svc), Options{})

	t.Run("ルートとヘルスチェック", func(t *testing.T) {
		w, body := do(t, h, http.MethodGet, "/", "")
		if w.Code != http.StatusOK || body["message"] == nil {
			t.Errorf("期待値 200, 実際の値 %d", w.Code)
		}
		w, _ = do(t, h, http.MethodGet, "/health", "")
		if w.Code != http.StatusOK {
			t.Errorf("期待値 200, 実際の値 %d", w.Code)
		}
	})

	t.Run("物語が無いときの最新取得は 400 なのだ", func(t *testing.T) {
		w, body := do(t, h, http.MethodGet, "/api/latest-story", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("期待値 400, 実際の値 %d", w.Code)
		}
		if body["success"] != false {
			t.Errorf("success は false のはずなのだ: %v", body)
		}
	})

	t.Run("物語を生成できるのだ", func(t *testing.T) {
		w, body := do(t, h, http.MethodPost, "/api/generate", `{"difficulty":"advanced"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("期待値 200, 実際の値 %d", w.Code)
		}
		if body["storyId"] != "story-1" || body["quiz"] == nil || body["summary"] == nil {
			t.Errorf("想定外のレスポンスなのだ: %v", body)
		}
		if svc.state.Difficulty != domain.DifficultyAdvanced {
			t.Errorf("期待値 advanced, 実際の値 %s", svc.state.Difficulty)
		}
	})

	t.Run("空のボディでも生成できるのだ", func(t *testing.T) {
		w, _ := do(t, h, http.MethodPost, "/api/generate", "")
		if w.Code != http.StatusOK {
			t.Errorf("期待値 200, 実際の値 %d", w.Code)
		}
	})

	t.Run("IDで取得するとフロントエンド形式が付くのだ", func(t *testing.T) {
		w, body := do(t, h, http.MethodGet, "/api/story/story-1", "")
		if w.Code != http.StatusOK {
			t.Fatalf("期待値 200, 実際の値 %d", w.Code)
		}
		if body["frontend_format"] == nil {
			t.Errorf("frontend_format がないのだ: %v", body)
		}
	})

	t.Run("存在しないIDは 404 なのだ", func(t *testing.T) {
		w, body := do(t, h, http.MethodGet, "/api/story/nope", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("期待値 404, 実際の値 %d", w.Code)
		}
		if body["success"] != false || body["error"] == nil {
			t.Errorf("エラー形式が違うのだ: %v", body)
		}
	})

	t.Run("クイズ生成は入力をそのまま渡すのだ", func(t *testing.T) {
		w, _ := do(t, h, http.MethodPost, "/api/generate-quiz", `{"story_id":"story-1","difficulty":"intermediate"}`)
		if w.Code != http.StatusOK {
			t.Errorf("期待値 200, 実際の値 %d", w.Code)
		}
		if svc.quizIn.StoryID != "story-1" || svc.quizIn.Difficulty != domain.DifficultyIntermediate {
			t.Errorf("入力が伝わっていないのだ: %+v", svc.quizIn)
		}
		w, _ = do(t, h, http.MethodPost, "/api/generate-quiz", `{"story_id":"missing"}`)
		if w.Code != http.StatusNotFound {
			t.Errorf("期待値 404, 実際の値 %d", w.Code)
		}
	})

	t.Run("壊れたJSONは 400 なのだ", func(t *testing.T) {
		w, _ := do(t, h, http.MethodPost, "/api/generate-quiz", `{"story_id":`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("期待値 400, 実際の値 %d", w.Code)
		}
	})

	t.Run("要約の失敗は 502 なのだ", func(t *testing.T) {
		svc.summaryErr = fmt.Errorf("%w: boom", pipeline.ErrSummaryFailed)
		defer func() { svc.summaryErr = nil }()
		w, _ := do(t, h, http.MethodPost, "/api/generate-summary", `{}`)
		if w.Code != http.StatusBadGateway {
			t.Errorf("期待値 502, 実際の値 %d", w.Code)
		}
	})

	t.Run("要約の成功", func(t *testing.T) {
		w, body := do(t, h, http.MethodPost, "/api/generate-summary", `{"selected_interest":{"category":"Music Artists","interest":"BTS"}}`)
		if w.Code != http.StatusOK || body["summary"] == nil {
			t.Errorf("期待値 200, 実際の値 %d", w.Code)
		}
	})

	t.Run("一覧", func(t *testing.T) {
		w, body := do(t, h, http.MethodGet, "/api/stories", "")
		if w.Code != http.StatusOK {
			t.Fatalf("期待値 200, 実際の値 %d", w.Code)
		}
		stories, _ := body["stories"].([]any)
		if len(stories) != 1 {
			t.Errorf("期待値 1, 実際の値 %d", len(stories))
		}
	})

	t.Run("ゲーム状態の取得と部分更新", func(t *testing.T) {
		w, body := do(t, h, http.MethodPatch, "/api/game-state", `{"difficulty":"beginner","selected_concept":{"topic":"Saving","subtopic":"Goals"}}`)
		if w.Code != http.StatusOK {
			t.Fatalf("期待値 200, 実際の値 %d", w.Code)
		}
		gs, _ := body["game_state"].(map[string]any)
		if gs["difficulty"] != "beginner" {
			t.Errorf("期待値 beginner, 実際の値 %v", gs["difficulty"])
		}
		_, body = do(t, h, http.MethodGet, "/api/game-state", "")
		gs, _ = body["game_state"].(map[string]any)
		concept, _ := gs["selected_concept"].(map[string]any)
		if concept["topic"] != "Saving" {
			t.Errorf("期待値 Saving, 実際の値 %v", concept["topic"])
		}
	})

	t.Run("ユーザーデータの読み込み", func(t *testing.T) {
		w, body := do(t, h, http.MethodPost, "/api/load-user-data", "")
		if w.Code != http.StatusOK || body["selected_interest"] == nil {
			t.Errorf("想定外のレスポンスなのだ: %d %v", w.Code, body)
		}
	})

	t.Run("チューター", func(t *testing.T) {
		w, body := do(t, h, http.MethodPost, "/api/tutor", `{"question":"What is APR?","history":[{"role":"user","content":"hi"}]}`)
		if w.Code != http.StatusOK || body["response"] != "answer to What is APR?" {
			t.Errorf("想定外のレスポンスなのだ: %d %v", w.Code, body)
		}
		w, _ = do(t, h, http.MethodPost, "/api/tutor", `{"question":""}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("期待値 400, 実際の値 %d", w.Code)
		}
	})
}

func TestCORS(t *testing.T) {
	h := NewRouter(NewHandler(newFakeService()), Options{AllowedOrigins: []string{"http://localhost:3000"}})

	t.Run("許可されたオリジンには資格情報も許可するのだ", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("期待値 200, 実際の値 %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("期待値 http://localhost:3000, 実際の値 %s", got)
		}
		if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("資格情報が許可されていないのだ")
		}
	})

	t.Run("許可されていないオリジンにはヘッダーを付けないのだ", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("ヘッダーは空のはずなのだ: %s", got)
		}
	})
}

func TestMediaServing(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "covers"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "covers", "cover_1.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := NewRouter(NewHandler(newFakeService()), Options{MediaDir: dir})

	req := httptest.NewRequest(http.MethodGet, "/media/covers/cover_1.png", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "png" {
		t.Errorf("期待値 200 png, 実際の値 %d %q", w.Code, w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{pipeline.ErrStoryNotFound, http.StatusNotFound},
		{pipeline.ErrNoStoryAvailable, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", generator.ErrInvalidInput), http.StatusBadRequest},
		{pipeline.ErrSummaryFailed, http.StatusBadGateway},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("%v: 期待値 %d, 実際の値 %d", tt.err, tt.want, got)
		}
	}
}
