package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-fin-novel-kit/pkg/ai"
	"github.com/shouni/go-fin-novel-kit/pkg/domain"
	"github.com/shouni/go-fin-novel-kit/pkg/parser"
	"github.com/shouni/go-fin-novel-kit/pkg/prompts"
)

// SummaryGenerator は物語から学びの要約を作ります。
//
// 入力が不正な場合はモデルを呼ばずにフォールバック要約を返します（OutcomeInputInvalid）。
// モデル呼び出しやパースの失敗は Outcome と Err で呼び出し元に伝えるのだ。
// このときも Value にはフォールバック要約が入っているので、使うかどうかは呼び出し側が決めます。
type SummaryGenerator struct {
	client  ai.Client
	prompts prompts.PromptBuilder
	model   string
}

func NewSummaryGenerator(client ai.Client, pb prompts.PromptBuilder, model string) *SummaryGenerator {
	return &SummaryGenerator{client: client, prompts: pb, model: model}
}

// Generate は要約を生成します。interest は nil でも構いません。
func (g *SummaryGenerator) Generate(ctx context.Context, story *domain.Story, interest *domain.SelectedInterest) Result[domain.Summary] {
	if err := ValidateSummaryInput(story); err != nil {
		slog.WarnContext(ctx, "要約生成の入力が不正なため、フォールバック要約を返します", "error", err)
		return failure(domain.FallbackSummary(titleOf(story)), OutcomeInputInvalid, err)
	}
	fallback := domain.FallbackSummary(story.Plot.Title)

	data := prompts.TemplateData{Story: story}
	if interest != nil && !interest.IsZero() {
		data.Interest = *interest
		data.HasInterest = true
	}

	prompt, err := g.prompts.Build(prompts.ModeSummary, data)
	if err != nil {
		return failure(fallback, OutcomeInternalError, fmt.Errorf("要約プロンプトの構築に失敗しました: %w", err))
	}

	text, err := g.client.Generate(ctx, ai.Request{Model: g.model, Prompt: prompt})
	if err != nil {
		logServiceError(ctx, "summary", err)
		return serviceFailure(fallback, fmt.Errorf("要約の生成に失敗しました: %w", err))
	}

	summary, _, err := parser.Parse[domain.Summary](text)
	if err != nil {
		slog.ErrorContext(ctx, "要約レスポンスを解釈できませんでした",
			"error", err,
			"raw", parser.Truncate(text, 200))
		return parseFailure(fallback, fmt.Errorf("要約レスポンスの解析に失敗しました: %w", err))
	}
	return succeeded(summary)
}

func titleOf(story *domain.Story) string {
	if story == nil {
		return ""
	}
	return story.Plot.Title
}
