package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// serviceName はヘルスチェックレスポンスに含めるサービス識別子。
const serviceName = "authcore"

// healthCheckTimeout は依存先の疎通確認にかけられる最大時間。
const healthCheckTimeout = 3 * time.Second

// Pinger は依存先の疎通確認インターフェース。
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc は関数をPingerとして使うためのアダプター。
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler はヘルスチェックのHTTPハンドラー。
// DBの疎通失敗はサービス停止（503）とみなすが、イベントブローカーの疎通失敗は
// ステータスの報告にとどめる。ブローカー停止中もアカウント操作自体は成立するため。
type HealthHandler struct {
	db     Pinger
	broker Pinger
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(db, broker Pinger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		broker: broker,
	}
}

// healthResponse はヘルスチェックのAPIレスポンス。
type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Broker  string `json:"broker,omitempty"`
}

// Check はサービスの稼働状態を返す。
// GET / および GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := healthResponse{
		Status:  "UP",
		Service: serviceName,
	}
	statusCode := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		slog.Error("database health check failed",
			slog.String("error", err.Error()),
		)
		resp.Status = "DOWN"
		statusCode = http.StatusServiceUnavailable
	}

	if h.broker != nil {
		resp.Broker = "UP"
		if err := h.broker.Ping(ctx); err != nil {
			slog.Warn("broker health check failed",
				slog.String("error", err.Error()),
			)
			resp.Broker = "DOWN"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}
