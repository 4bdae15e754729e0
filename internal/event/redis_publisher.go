package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher はRedis Streamsを使用したイベント発行実装。
// XADDでストリームに追記する。Redisに受理された時点でat-least-once
// 配信の起点となり、以降の消費はコンシューマグループ側の責務とする。
type RedisPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisPublisher はRedis接続URLからRedisPublisherを生成する。
// streamは発行先のストリーム名を指定する（例: "user-created"）。
func NewRedisPublisher(url, stream string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisPublisher{
		client: redis.NewClient(opts),
		stream: stream,
	}, nil
}

// Publish はイベントをストリームに発行し、メッセージIDを返す。
// keyはルーティングキー（作成されたユーザー名）としてエントリに含める。
func (p *RedisPublisher) Publish(ctx context.Context, key string, e *AccountCreated) (string, error) {
	if e == nil {
		return "", errors.New("event is nil")
	}
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("invalid event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_id":    e.EventID,
			"key":         key,
			"username":    e.Username,
			"occurred_at": e.OccurredAt.Format("2006-01-02T15:04:05.000Z07:00"),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to publish event: %w", err)
	}

	return messageID, nil
}

// Ping はRedisの疎通を確認する。
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close はRedisとの接続を閉じる。
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// compile-time interface check
var _ Publisher = (*RedisPublisher)(nil)
var _ Publisher = NopPublisher{}
