package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shouni/go-fin-novel-kit/pkg/ai"
	"github.com/shouni/go-fin-novel-kit/pkg/domain"
)

func TestStoryGenerator_Generate(t *testing.T) {
	pb := newPromptBuilder(t)
	ctx := context.Background()

	t.Run("フェンス付きのJSONから物語を取り出すのだ", func(t *testing.T) {
		client := &fakeClient{text: "```json\n" + validStoryJSON + "\n```"}
		enricher := &fakeEnricher{}
		g := NewStoryGenerator(client, pb, "gemini-2.0-flash-001", enricher)

		res := g.Generate(ctx, StoryRequest{Difficulty: domain.DifficultyBeginner})
		if !res.OK() {
			t.Fatalf("成功を期待したのだ: outcome=%s err=%v", res.Outcome, res.Err)
		}
		if res.Value.Plot.Title != "Spider-Man's Budget Journey" {
			t.Errorf("期待値 Spider-Man's Budget Journey, 実際の値 %s", res.Value.Plot.Title)
		}
		if !enricher.called {
			t.Error("画像エンリッチが呼ばれていないのだ")
		}
		if res.Value.GeneratedImages == nil || res.Value.GeneratedImages.Cover == "" {
			t.Error("generated_images が付与されていないのだ")
		}
		if client.requests[0].Model != "gemini-2.0-flash-001" {
			t.Errorf("モデル名が違うのだ: %s", client.requests[0].Model)
		}
	})

	t.Run("プロンプトにデフォルトの学習テーマと興味が入るのだ", func(t *testing.T) {
		client := &fakeClient{text: validStoryJSON}
		g := NewStoryGenerator(client, pb, "m", nil)
		g.Generate(ctx, StoryRequest{Difficulty: domain.DifficultyAdvanced})

		prompt := client.requests[0].Prompt
		for _, want := range []string{"What is a Budget and Why It Matters", "Spider-Man", "Difficulty: advanced"} {
			if !strings.Contains(prompt, want) {
				t.Errorf("プロンプトに %q が含まれていないのだ", want)
			}
		}
	})

	t.Run("画像エンリッチの失敗は物語生成を止めないのだ", func(t *testing.T) {
		g := NewStoryGenerator(&fakeClient{text: validStoryJSON}, pb, "m", &fakeEnricher{err: errors.New("upload failed")})
		res := g.Generate(ctx, StoryRequest{})
		if !res.OK() {
			t.Errorf("成功を期待したのだ: %v", res.Err)
		}
	})

	serviceErrors := []struct {
		name string
		kind ai.ErrorKind
	}{
		{"レート制限", ai.KindRateLimit},
		{"認証エラー", ai.KindAuth},
		{"不正リクエスト", ai.KindMalformed},
		{"その他", ai.KindGeneric},
	}
	for _, tt := range serviceErrors {
		t.Run(tt.name+"ならエラー用プレースホルダーを返すのだ", func(t *testing.T) {
			client := &fakeClient{err: &ai.ServiceError{Kind: tt.kind, Err: errors.New("boom")}}
			enricher := &fakeEnricher{}
			g := NewStoryGenerator(client, pb, "m", enricher)

			res := g.Generate(ctx, StoryRequest{})
			if res.Outcome != OutcomeServiceError || res.Kind != tt.kind {
				t.Errorf("期待値 service_error/%s, 実際の値 %s/%s", tt.kind, res.Outcome, res.Kind)
			}
			if res.Value == nil || res.Value.Plot.Title != domain.ErrorStoryTitle {
				t.Errorf("プレースホルダーのタイトルが違うのだ: %+v", res.Value)
			}
			if enricher.called {
				t.Error("失敗時に画像生成を呼んではいけないのだ")
			}
		})
	}

	t.Run("解釈できない応答は Parsing Error になるのだ", func(t *testing.T) {
		g := NewStoryGenerator(&fakeClient{text: "Sorry, I can't do that."}, pb, "m", nil)
		res := g.Generate(ctx, StoryRequest{})
		if res.Outcome != OutcomeParseError {
			t.Errorf("期待値 parse_error, 実際の値 %s", res.Outcome)
		}
		if res.Value.Plot.Title != domain.ParsingErrorStoryTitle {
			t.Errorf("期待値 %s, 実際の値 %s", domain.ParsingErrorStoryTitle, res.Value.Plot.Title)
		}
	})

	t.Run("スキーマ違反は ValidationError として扱うのだ", func(t *testing.T) {
		g := NewStoryGenerator(&fakeClient{text: `{"plot": {"title": ""}, "dialogue": []}`}, pb, "m", nil)
		res := g.Generate(ctx, StoryRequest{})
		if res.Outcome != OutcomeValidationError {
			t.Errorf("期待値 validation_error, 実際の値 %s", res.Outcome)
		}
		if !res.Value.IsPlaceholder() {
			t.Error("プレースホルダーを返すべきなのだ")
		}
	})

	t.Run("空の応答は生成エラーのプレースホルダーなのだ", func(t *testing.T) {
		for _, text := range []string{"", "  \n\t "} {
			g := NewStoryGenerator(&fakeClient{text: text}, pb, "m", nil)
			res := g.Generate(ctx, StoryRequest{})
			if res.Outcome != OutcomeInternalError {
				t.Errorf("期待値 %s, 実際の値 %s", OutcomeInternalError, res.Outcome)
			}
			if res.Value == nil || res.Value.Plot.Title != domain.ErrorStoryTitle {
				t.Errorf("期待値 %s, 実際の値 %+v", domain.ErrorStoryTitle, res.Value)
			}
		}
	})
}
