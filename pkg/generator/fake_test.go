package generator

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/shouni/go-fin-novel-kit/pkg/ai"
	"github.com/shouni/go-fin-novel-kit/pkg/domain"
	"github.com/shouni/go-fin-novel-kit/pkg/prompts"
)

// fakeClient は決められた応答を返すテスト用の ai.Client なのだ。
type fakeClient struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []ai.Request
}

func (f *fakeClient) Generate(_ context.Context, req ai.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.text, f.err
}

func (f *fakeClient) Stream(context.Context, ai.Request) iter.Seq2[ai.Chunk, error] {
	return func(func(ai.Chunk, error) bool) {}
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeEnricher struct {
	called bool
	err    error
}

func (e *fakeEnricher) Enrich(_ context.Context, story *domain.Story, _ domain.SelectedInterest, _ time.Time) (*domain.GeneratedImages, error) {
	e.called = true
	images := domain.NewGeneratedImages()
	images.Cover = "https://cdn.example.com/cover.png"
	story.GeneratedImages = images
	return images, e.err
}

func newPromptBuilder(t *testing.T) *prompts.TextPromptBuilder {
	t.Helper()
	b, err := prompts.NewTextPromptBuilder()
	if err != nil {
		t.Fatalf("プロンプトビルダーの初期化に失敗したのだ: %v", err)
	}
	return b
}

const validStoryJSON = `{
  "plot": {
    "title": "Spider-Man's Budget Journey",
    "setup": "Peter wants a new camera.",
    "locations": {"primary": "Daily Bugle", "secondary": "Mall", "tertiary": "Rooftop"}
  },
  "dialogue": [
    {"character": "Peter Parker", "text": "I need a plan.", "hint": "Start with income"},
    {"character": "Aunt May", "text": "List what you earn."},
    {"character": "Peter Parker", "text": "Then what I spend."},
    {"character": "Aunt May", "text": "Exactly."},
    {"character": "Peter Parker", "text": "Now I can save!"}
  ],
  "visuals": {
    "characters": [
      {"name": "Peter Parker", "description": "Young photographer"},
      {"name": "Aunt May", "description": "Kind aunt"}
    ],
    "backgrounds": [
      {"name": "Bugle Office", "description": "desks", "type": "primary"},
      {"name": "Mall", "description": "shops", "type": "secondary"},
      {"name": "Rooftop", "description": "city", "type": "tertiary"}
    ],
    "financial_elements": "budget sheet"
  },
  "hooks": {"pop_culture": "Marvel", "music": "Upbeat"}
}`

const validQuizJSON = `{
  "topic": "Budgeting",
  "difficulty": "advanced",
  "age_group": "99",
  "questions": [
    {
      "question": "Peter earns $50. What first?",
      "options": [
        {"text": "Plan spending", "is_correct": true},
        {"text": "Buy snacks", "is_correct": false},
        {"text": "Borrow", "is_correct": false},
        {"text": "Ignore", "is_correct": false}
      ],
      "explanation": "Planning comes first."
    }
  ]
}`

func sampleStory(t *testing.T) *domain.Story {
	t.Helper()
	g := NewStoryGenerator(&fakeClient{text: validStoryJSON}, newPromptBuilder(t), "m", nil)
	res := g.Generate(context.Background(), StoryRequest{})
	if !res.OK() {
		t.Fatalf("サンプルストーリーの生成に失敗したのだ: %v", res.Err)
	}
	return res.Value
}
