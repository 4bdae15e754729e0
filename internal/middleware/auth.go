// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/authcore/internal/metrics"
	"github.com/hitoshi/authcore/internal/model"
	"github.com/hitoshi/authcore/internal/token"
)

const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// subjectContextKey はリクエストコンテキストに認証済みサブジェクトを格納するためのキー。
var subjectContextKey = contextKey("subject")

// TokenVerifier はトークン検証に必要なインターフェース。
// token.Issuerの部分集合として定義する。
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのベアラートークンを検証する
// ミドルウェアを返す。検証はトークンと現在時刻のみで完結し、リクエスト
// ごとの永続状態参照は行わない。
// 検証済みサブジェクトをリクエストコンテキストに注入する。
// ヘッダー欠落・形式不正・検証失敗はすべて401 Unauthorizedを返す。
func NewAuthMiddleware(verifier TokenVerifier, collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Authorizationヘッダーからトークンを抽出
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				collector.RecordTokenRejected("missing")
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			tokenString := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			if tokenString == "" {
				collector.RecordTokenRejected("missing")
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. トークンの検証
			subject, err := verifier.Verify(tokenString)
			if err != nil {
				reason := rejectionReason(err)
				collector.RecordTokenRejected(reason)
				slog.Warn("token rejected",
					slog.String("reason", reason),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 3. 検証済みサブジェクトをコンテキストに注入
			ctx := context.WithValue(r.Context(), subjectContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejectionReason はトークン検証エラーをメトリクスラベル用の理由に変換する。
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrBadSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}

// SubjectFromContext はリクエストコンテキストから認証済みサブジェクトを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func SubjectFromContext(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(subjectContextKey).(string)
	if !ok || subject == "" {
		return "", fmt.Errorf("subject not found in context")
	}
	return subject, nil
}

// ContextWithSubject はコンテキストにサブジェクトを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}
