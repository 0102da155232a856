package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shouni/go-fin-novel-kit/pkg/ai"
	"github.com/shouni/go-fin-novel-kit/pkg/domain"
	"github.com/shouni/go-fin-novel-kit/pkg/parser"
	"github.com/shouni/go-fin-novel-kit/pkg/prompts"
)

// QuizGenerator は完成した物語からクイズを作ります。
// 失敗しても決してリクエストを失敗させず、固定のデフォルトクイズを返すのだ。
type QuizGenerator struct {
	client  ai.Client
	prompts prompts.PromptBuilder
	model   string
}

func NewQuizGenerator(client ai.Client, pb prompts.PromptBuilder, model string) *QuizGenerator {
	return &QuizGenerator{client: client, prompts: pb, model: model}
}

// Generate はクイズを生成します。Value は常にスキーマ妥当なクイズです。
func (g *QuizGenerator) Generate(ctx context.Context, story *domain.Story, difficulty domain.Difficulty) Result[domain.Quiz] {
	if err := ValidateQuizInput(story); err != nil {
		slog.WarnContext(ctx, "クイズ生成の入力が不正なため、デフォルトクイズを返します", "error", err)
		return failure(domain.DefaultQuiz(), OutcomeInputInvalid, err)
	}
	if !difficulty.Known() {
		slog.WarnContext(ctx, "未知の難易度です。年齢層はデフォルトになります", "difficulty", difficulty)
	}
	ageGroup := domain.AgeGroupFor(difficulty)

	// 画像URLはプロンプトに不要なので外しておくのだ
	trimmed := *story
	trimmed.GeneratedImages = nil
	storyJSON, err := json.Marshal(&trimmed)
	if err != nil {
		return failure(domain.DefaultQuiz(), OutcomeInternalError, fmt.Errorf("ストーリーのJSON化に失敗しました: %w", err))
	}

	prompt, err := g.prompts.Build(prompts.ModeQuiz, prompts.TemplateData{
		Story:         story,
		StoryJSON:     string(storyJSON),
		Difficulty:    string(difficulty),
		AgeGroup:      ageGroup,
		QuestionCount: domain.QuizQuestionCount,
		OptionCount:   domain.QuizOptionCount,
	})
	if err != nil {
		slog.ErrorContext(ctx, "クイズプロンプトの構築に失敗しました", "error", err)
		return failure(domain.DefaultQuiz(), OutcomeInternalError, fmt.Errorf("クイズプロンプトの構築に失敗しました: %w", err))
	}

	text, err := g.client.Generate(ctx, ai.Request{Model: g.model, Prompt: prompt})
	if err != nil {
		logServiceError(ctx, "quiz", err)
		return serviceFailure(domain.DefaultQuiz(), err)
	}

	quiz, _, err := parser.Parse[domain.Quiz](text)
	if err != nil {
		slog.ErrorContext(ctx, "クイズレスポンスを解釈できませんでした。デフォルトクイズを返します",
			"error", err,
			"raw", parser.Truncate(text, 200))
		return parseFailure(domain.DefaultQuiz(), err)
	}

	if difficulty != "" {
		quiz.Difficulty = difficulty
	}
	quiz.AgeGroup = domain.AgeGroupFor(quiz.Difficulty)

	if n := len(quiz.Questions); n != domain.QuizQuestionCount {
		slog.InfoContext(ctx, "問題数が要求と異なります", "questions", n, "expected", domain.QuizQuestionCount)
	}
	return succeeded(quiz)
}
