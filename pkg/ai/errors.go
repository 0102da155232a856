package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind はモデルサービスのエラー分類です。呼び出し側はこれで分岐するのだ。
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindRateLimit
	KindAuth
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimit:
		return "rate_limit"
	case KindAuth:
		return "auth"
	case KindMalformed:
		return "malformed_request"
	default:
		return "generic"
	}
}

// KindFromStatus は HTTP ステータスコードから分類を決めます。
func KindFromStatus(code int) ErrorKind {
	switch code {
	case http.StatusTooManyRequests:
		return KindRateLimit
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusBadRequest:
		return KindMalformed
	default:
		return KindGeneric
	}
}

// ServiceError はモデルサービス由来の失敗なのだ。
type ServiceError struct {
	Kind ErrorKind
	Code int
	Err  error
}

func (e *ServiceError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("モデルサービスエラー (%s, code=%d): %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("モデルサービスエラー (%s): %v", e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// KindOf は err に含まれる ServiceError の分類を返します。
// ServiceError を含まないエラーは KindGeneric 扱いなのだ。
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindGeneric
}

// IsServiceError は err が ServiceError を含むかどうかを返します。
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
