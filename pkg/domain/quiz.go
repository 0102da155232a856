package domain

import (
	"errors"
	"fmt"
)

// Difficulty は学習者レベルです。
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// QuizOptionCount はクイズ1問あたりの選択肢数です。
const QuizOptionCount = 4

// QuizQuestionCount はプロンプトで要求する問題数です。
const QuizQuestionCount = 5

var ageGroups = map[Difficulty]string{
	DifficultyBeginner:     "10-12",
	DifficultyIntermediate: "12-14",
	DifficultyAdvanced:     "14-16",
}

// Known は定義済みの難易度かどうかを返すのだ。
func (d Difficulty) Known() bool {
	_, ok := ageGroups[d]
	return ok
}

// AgeGroupFor は難易度から対象年齢を引きます。未知の値は "10-12" になるのだ。
func AgeGroupFor(d Difficulty) string {
	if g, ok := ageGroups[d]; ok {
		return g
	}
	return ageGroups[DifficultyBeginner]
}

type Quiz struct {
	Topic      string         `json:"topic"`
	Difficulty Difficulty     `json:"difficulty"`
	AgeGroup   string         `json:"age_group"`
	Questions  []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	Question    string       `json:"question"`
	Options     []QuizOption `json:"options"`
	Explanation string       `json:"explanation"`
}

type QuizOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Validate はクイズの構造を検証します。
// 各問題は選択肢がちょうど4つで、正解がちょうど1つでなければならないのだ。
func (q Quiz) Validate() error {
	var errs []error
	if q.Topic == "" {
		errs = append(errs, errors.New("topic は必須です"))
	}
	if len(q.Questions) == 0 {
		errs = append(errs, errors.New("questions が空です"))
	}
	for i, qq := range q.Questions {
		if err := qq.validate(); err != nil {
			errs = append(errs, fmt.Errorf("questions[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (qq QuizQuestion) validate() error {
	if qq.Question == "" {
		return errors.New("question は必須です")
	}
	if len(qq.Options) != QuizOptionCount {
		return fmt.Errorf("選択肢は%d個必要です（実際: %d）", QuizOptionCount, len(qq.Options))
	}
	correct := 0
	for _, o := range qq.Options {
		if o.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("正解はちょうど1つ必要です（実際: %d）", correct)
	}
	return nil
}

// CorrectOption は正解の選択肢のインデックスを返す。見つからなければ -1。
func (qq QuizQuestion) CorrectOption() int {
	for i, o := range qq.Options {
		if o.IsCorrect {
			return i
		}
	}
	return -1
}
