package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shouni/go-fin-novel-kit/pkg/ai"
	"github.com/shouni/go-fin-novel-kit/pkg/domain"
	"github.com/shouni/go-fin-novel-kit/pkg/prompts"
)

// TutorHistoryWindow はプロンプトに含める直近の会話件数です。
const TutorHistoryWindow = 5

// Tutor は金融リテラシーの質問に答えるチャットなのだ。
type Tutor struct {
	client  ai.Client
	prompts prompts.PromptBuilder
	model   string
}

func NewTutor(client ai.Client, pb prompts.PromptBuilder, model string) *Tutor {
	return &Tutor{client: client, prompts: pb, model: model}
}

// Respond は直近の履歴を文脈にして質問へ回答します。
func (t *Tutor) Respond(ctx context.Context, question string, history []domain.Message) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question が空です", ErrInvalidInput)
	}

	prompt, err := t.prompts.Build(prompts.ModeTutor, prompts.TemplateData{
		History:  formatHistory(history),
		Question: question,
	})
	if err != nil {
		return "", fmt.Errorf("チュータープロンプトの構築に失敗しました: %w", err)
	}

	text, err := t.client.Generate(ctx, ai.Request{
		Model:       t.model,
		Prompt:      prompt,
		Temperature: ptr(float32(0.7)),
		TopP:        ptr(float32(0.8)),
		TopK:        ptr(float32(40)),
	})
	if err != nil {
		logServiceError(ctx, "tutor", err)
		return "", fmt.Errorf("チューターの応答生成に失敗しました: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("チューターの応答が空です")
	}
	return text, nil
}

func formatHistory(history []domain.Message) string {
	if len(history) > TutorHistoryWindow {
		history = history[len(history)-TutorHistoryWindow:]
	}
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, m.Role+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

func ptr[T any](v T) *T { return &v }
