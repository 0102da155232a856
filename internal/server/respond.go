package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/shouni/go-fin-novel-kit/internal/pipeline"
	"github.com/shouni/go-fin-novel-kit/pkg/generator"
)

// maxBodyBytes はリクエストボディの上限です。
const maxBodyBytes = 1 << 20

// JSON はステータスコード付きでJSONレスポンスを書き出します。
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("レスポンスのエンコードに失敗しました", "error", err)
	}
}

// Error は {"success": false, "error": ...} の形でエラーを返すのだ。
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{"success": false, "error": message})
}

// statusFor はドメインのエラーをHTTPステータスへ対応させます。
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrStoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrNoStoryAvailable), errors.Is(err, generator.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrSummaryFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Fail はエラーを記録し、対応するステータスで返します。
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "リクエストの処理に失敗しました", "path", r.URL.Path, "status", status, "error", err)
	} else {
		slog.WarnContext(r.Context(), "リクエストを処理できませんでした", "path", r.URL.Path, "status", status, "error", err)
	}
	Error(w, status, err.Error())
}

// decode はボディをJSONとして読み込みます。空のボディはゼロ値のまま受け付けるのだ。
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
