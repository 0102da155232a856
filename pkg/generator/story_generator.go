package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-fin-novel-kit/pkg/ai"
	"github.com/shouni/go-fin-novel-kit/pkg/domain"
	"github.com/shouni/go-fin-novel-kit/pkg/parser"
	"github.com/shouni/go-fin-novel-kit/pkg/prompts"
)

// StoryRequest は物語生成の入力なのだ。
type StoryRequest struct {
	Concept    domain.Concept
	Difficulty domain.Difficulty
	Interest   domain.SelectedInterest
}

// StoryGenerator はプロンプト構築、モデル呼び出し、検証、画像エンリッチを順に行います。
type StoryGenerator struct {
	client   ai.Client
	prompts  prompts.PromptBuilder
	enricher Enricher
	model    string
	now      func() time.Time
}

// NewStoryGenerator は StoryGenerator を生成します。enricher が nil なら画像生成を行いません。
func NewStoryGenerator(client ai.Client, pb prompts.PromptBuilder, model string, enricher Enricher) *StoryGenerator {
	return &StoryGenerator{
		client:   client,
		prompts:  pb,
		enricher: enricher,
		model:    model,
		now:      time.Now,
	}
}

// Generate は物語を1つ生成します。
// どんな失敗でも Value には整形済みのストーリー（失敗時はプレースホルダー）が入るのだ。
// モデル呼び出しは1回だけで、自動リトライはしません。
func (g *StoryGenerator) Generate(ctx context.Context, req StoryRequest) Result[*domain.Story] {
	interest := req.Interest.OrDefault()
	concept := req.Concept
	if concept == (domain.Concept{}) {
		concept = domain.DefaultConcept()
	}

	prompt, err := g.prompts.Build(prompts.ModeStory, prompts.TemplateData{
		Topic:       concept.Topic,
		Subtopic:    concept.Subtopic,
		Difficulty:  string(req.Difficulty),
		MinDialogue: domain.MinDialogueTurns,
		Interest:    interest,
	})
	if err != nil {
		slog.ErrorContext(ctx, "物語プロンプトの構築に失敗しました", "error", err)
		return failure(domain.GenerationErrorStory(), OutcomeInternalError, fmt.Errorf("物語プロンプトの構築に失敗しました: %w", err))
	}

	slog.InfoContext(ctx, "物語を生成するのだ",
		"model", g.model,
		"topic", concept.Topic,
		"subtopic", concept.Subtopic,
		"difficulty", req.Difficulty,
		"interest", interest.Interest)

	text, err := g.client.Generate(ctx, ai.Request{Model: g.model, Prompt: prompt})
	if err != nil {
		logServiceError(ctx, "story", err)
		return serviceFailure(domain.GenerationErrorStory(), err)
	}
	if strings.TrimSpace(text) == "" {
		slog.ErrorContext(ctx, "モデルから空の応答が返されました", "model", g.model)
		return failure(domain.GenerationErrorStory(), OutcomeInternalError, errors.New("モデルの応答が空です"))
	}

	story, report, err := parser.Parse[*domain.Story](text)
	if err != nil {
		slog.ErrorContext(ctx, "物語レスポンスを解釈できませんでした",
			"error", err,
			"raw", parser.Truncate(text, 200))
		return parseFailure(domain.ParsingErrorStory(), err)
	}
	slog.DebugContext(ctx, "物語レスポンスをパースしました", "strategy", report.Strategy.String())

	if n := len(story.Dialogue); n < domain.MinDialogueTurns {
		slog.WarnContext(ctx, "セリフ数が要求より少ないですが、そのまま続行します", "dialogue", n, "expected_min", domain.MinDialogueTurns)
	}

	if g.enricher != nil {
		images, err := g.enricher.Enrich(ctx, story, interest, g.now())
		if err != nil {
			slog.WarnContext(ctx, "一部の画像生成に失敗しましたが、物語はそのまま返します", "error", err)
		}
		if images != nil {
			slog.InfoContext(ctx, "画像エンリッチが完了したのだ",
				"cover", images.Cover != "",
				"characters", len(images.Characters),
				"backgrounds", len(images.Backgrounds))
		}
	}

	return succeeded(story)
}
