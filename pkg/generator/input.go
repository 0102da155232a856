package generator

import (
	"fmt"

	"github.com/shouni/go-fin-novel-kit/pkg/domain"
)

// ValidateQuizInput はクイズ生成の前提条件を確認します。
// plot と visuals を持つ空でないストーリーが必要なのだ。
func ValidateQuizInput(story *domain.Story) error {
	if story.IsZero() {
		return fmt.Errorf("%w: story が空です", ErrInvalidInput)
	}
	if story.Plot.Title == "" {
		return fmt.Errorf("%w: story に plot がありません", ErrInvalidInput)
	}
	if story.Visuals.IsZero() {
		return fmt.Errorf("%w: story に visuals がありません", ErrInvalidInput)
	}
	return nil
}

// ValidateSummaryInput は要約生成の前提条件を確認します。
// plot.title、dialogue（スライス）、visuals が揃っている必要があるのだ。
func ValidateSummaryInput(story *domain.Story) error {
	if story == nil {
		return fmt.Errorf("%w: story がありません", ErrInvalidInput)
	}
	if story.Plot.Title == "" {
		return fmt.Errorf("%w: plot.title がありません", ErrInvalidInput)
	}
	if story.Dialogue == nil {
		return fmt.Errorf("%w: dialogue がありません", ErrInvalidInput)
	}
	if story.Visuals.IsZero() {
		return fmt.Errorf("%w: visuals がありません", ErrInvalidInput)
	}
	return nil
}
