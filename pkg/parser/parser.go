package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyResponse はモデルの応答が空だったことを示します。
	ErrEmptyResponse = errors.New("モデルの応答が空です")
	// ErrUnparseable はどの戦略でも JSON として解釈できなかったことを示します。
	ErrUnparseable = errors.New("応答を JSON として解釈できません")
)

// Validatable はパース後にスキーマ検証できる型の契約です。
type Validatable interface {
	Validate() error
}

// Strategy はどの段階で値を取り出せたかを表します。
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyDirect
	StrategyFenceStripped
	StrategyBraceExtract
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyFenceStripped:
		return "fence_stripped"
	case StrategyBraceExtract:
		return "brace_extract"
	default:
		return "none"
	}
}

// Report はパースの経過を記録するのだ。
// Decoded が true なら、JSON としては読めたがスキーマ検証に落ちた段階があったことを意味します。
type Report struct {
	Strategy Strategy
	Decoded  bool
}

// ValidationError は JSON は読めたがスキーマに合わなかった場合のエラーです。
type ValidationError struct {
	Strategy Strategy
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("スキーマ検証に失敗しました (%s): %v", e.Strategy, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Parse は生のテキストを順番に試して T に変換します。
//  1. そのまま JSON として解釈
//  2. コードフェンスと言語タグを取り除いて再試行
//  3. 最初の '{' から最後の '}' までを切り出して再試行
//
// 各段階は、前の段階がスキーマ妥当な値を返せなかったときだけ実行されるのだ。
func Parse[T Validatable](raw string) (T, Report, error) {
	var zero T
	var report Report

	if strings.TrimSpace(raw) == "" {
		return zero, report, ErrEmptyResponse
	}

	cleaned := StripFences(raw)
	candidates := []struct {
		strategy Strategy
		text     string
	}{
		{StrategyDirect, raw},
		{StrategyFenceStripped, cleaned},
		{StrategyBraceExtract, ExtractBraces(cleaned)},
	}

	var lastDecodeErr error
	var lastValidationErr *ValidationError
	for _, c := range candidates {
		if c.text == "" {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(c.text), &v); err != nil {
			lastDecodeErr = err
			continue
		}
		report.Decoded = true
		if err := v.Validate(); err != nil {
			lastValidationErr = &ValidationError{Strategy: c.strategy, Err: err}
			continue
		}
		report.Strategy = c.strategy
		return v, report, nil
	}

	if lastValidationErr != nil {
		return zero, report, lastValidationErr
	}
	return zero, report, fmt.Errorf("%w: %v", ErrUnparseable, lastDecodeErr)
}

// ParseOr は Parse の全域版です。失敗した場合は fallback をそのまま返すのだ。
func ParseOr[T Validatable](raw string, fallback T) T {
	v, _, err := Parse[T](raw)
	if err != nil {
		return fallback
	}
	return v
}
