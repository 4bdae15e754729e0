// Package event はアカウント作成イベントの発行を提供する。
// 配信保証はブローカー受理後のat-least-onceであり、順序や重複排除は
// 保証しない。消費側は重複と順序入れ替わりを許容すること。
package event

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AccountCreated はアカウント作成時に1回発行されるドメインイベント。
// ルーティングキーは作成されたユーザー名とする。
type AccountCreated struct {
	EventID    string
	Username   string
	OccurredAt time.Time
}

// NewAccountCreated はUUIDと現在時刻を付与したAccountCreatedを生成する。
func NewAccountCreated(username string) *AccountCreated {
	return &AccountCreated{
		EventID:    uuid.New().String(),
		Username:   username,
		OccurredAt: time.Now().UTC(),
	}
}

// Validate はイベントの必須フィールドを検証する。
func (e *AccountCreated) Validate() error {
	if e.EventID == "" {
		return errors.New("event_id is required")
	}
	if e.Username == "" {
		return errors.New("username is required")
	}
	if e.OccurredAt.IsZero() {
		return errors.New("occurred_at is required")
	}
	return nil
}
