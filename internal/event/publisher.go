package event

import (
	"context"
	"log/slog"
)

// Publisher はアカウント作成イベントの発行インターフェース。
// Publishはブローカーが受理したメッセージIDを返す。受理後の配信結果を
// 呼び出し側の制御フローに反映してはならない。
type Publisher interface {
	// Publish はイベントをキー付きで発行し、メッセージIDを返す。
	Publish(ctx context.Context, key string, e *AccountCreated) (string, error)

	// Ping はブローカーの疎通を確認する。
	Ping(ctx context.Context) error

	// Close はブローカーとの接続を閉じる。
	Close() error
}

// NopPublisher はブローカー未設定時に使用する発行実装。
// イベントを破棄し、警告ログのみを残す。
type NopPublisher struct{}

// Publish はイベントを発行せずに警告ログを残す。
func (NopPublisher) Publish(ctx context.Context, key string, e *AccountCreated) (string, error) {
	slog.WarnContext(ctx, "event publisher not configured, dropping event",
		slog.String("key", key),
	)
	return "", nil
}

// Ping は常に成功する。
func (NopPublisher) Ping(ctx context.Context) error { return nil }

// Close は常に成功する。
func (NopPublisher) Close() error { return nil }
