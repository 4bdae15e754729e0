// Package model はドメインモデルを定義する。
package model

import "time"

// Account はサービス利用者の認証アカウントを表す。
// PasswordHashにはbcryptダイジェストのみを保持し、平文は一切保持しない。
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	Email        string // 任意項目。未設定は空文字列で表現する。
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
