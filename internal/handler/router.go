package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/authcore/internal/metrics"
	"github.com/hitoshi/authcore/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Collector         metrics.MetricsCollector

	// アカウント
	AccountService AccountServiceInterface

	// ヘルスチェック
	DBPinger     Pinger
	BrokerPinger Pinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging
//
// 保護ルートはさらに Auth → RateLimit(General) を通る。
// 登録・ログインは未認証で到達できるため、IP単位のRateLimit(Credential)のみを通る。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))

	accountHandler := NewAccountHandler(deps.AccountService)
	healthHandler := NewHealthHandler(deps.DBPinger, deps.BrokerPinger)

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/", healthHandler.Check)
	r.Get("/health", healthHandler.Check)

	// アカウント作成・ログイン（IP単位のレート制限つき）
	// /api/auth 配下はゲートウェイ経由のパスに合わせた別名。
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.CredentialMiddleware())

		r.Post("/user", accountHandler.CreateAccount)
		r.Post("/login", accountHandler.Login)
		r.Post("/api/auth/user", accountHandler.CreateAccount)
		r.Post("/api/auth/login", accountHandler.Login)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, deps.Collector))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Delete("/user/{id}", accountHandler.DeleteAccount)
		r.Delete("/api/auth/user/{id}", accountHandler.DeleteAccount)
	})

	return r
}
