package generator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shouni/go-fin-novel-kit/pkg/ai"
	"github.com/shouni/go-fin-novel-kit/pkg/parser"
)

// ErrInvalidInput は呼び出し側から渡された入力が前提条件を満たさないことを示します。
var ErrInvalidInput = errors.New("入力が不正です")

// Outcome は生成処理の結果区分です。呼び出し側は例外の型ではなくこれで分岐するのだ。
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeServiceError
	OutcomeParseError
	OutcomeValidationError
	OutcomeInputInvalid
	OutcomeInternalError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeServiceError:
		return "service_error"
	case OutcomeParseError:
		return "parse_error"
	case OutcomeValidationError:
		return "validation_error"
	case OutcomeInputInvalid:
		return "input_invalid"
	default:
		return "internal_error"
	}
}

// Result は生成結果とその区分を運びます。
// Value は常に利用可能な値で、失敗時は各生成器のフォールバックが入っているのだ。
// Kind は Outcome が OutcomeServiceError のときだけ意味を持ちます。
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Kind    ai.ErrorKind
	Err     error
}

// OK は成功したかどうかを返します。
func (r Result[T]) OK() bool {
	return r.Outcome == OutcomeSuccess
}

func succeeded[T any](v T) Result[T] {
	return Result[T]{Value: v, Outcome: OutcomeSuccess}
}

func serviceFailure[T any](fallback T, err error) Result[T] {
	return Result[T]{Value: fallback, Outcome: OutcomeServiceError, Kind: ai.KindOf(err), Err: err}
}

func parseFailure[T any](fallback T, err error) Result[T] {
	outcome := OutcomeParseError
	var vErr *parser.ValidationError
	if errors.As(err, &vErr) {
		outcome = OutcomeValidationError
	}
	return Result[T]{Value: fallback, Outcome: outcome, Err: err}
}

func failure[T any](fallback T, outcome Outcome, err error) Result[T] {
	return Result[T]{Value: fallback, Outcome: outcome, Err: err}
}

// logServiceError はエラー分類に応じたレベルでログを出すのだ。
func logServiceError(ctx context.Context, component string, err error) {
	kind := ai.KindOf(err)
	switch kind {
	case ai.KindRateLimit:
		slog.WarnContext(ctx, "モデルのレート制限に達しました", "component", component, "kind", kind.String(), "error", err)
	case ai.KindAuth:
		slog.ErrorContext(ctx, "モデルの認証に失敗しました。APIキーを確認してください", "component", component, "kind", kind.String(), "error", err)
	case ai.KindMalformed:
		slog.ErrorContext(ctx, "モデルへのリクエストが不正です", "component", component, "kind", kind.String(), "error", err)
	default:
		slog.ErrorContext(ctx, "モデル呼び出しに失敗しました", "component", component, "kind", kind.String(), "error", err)
	}
}
