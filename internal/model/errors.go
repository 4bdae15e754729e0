// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, conflict, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUsernameTaken   = "USERNAME_TAKEN"
	ErrCodeEmailTaken      = "EMAIL_TAKEN"
	ErrCodeInvalidUsername = "INVALID_USERNAME"
	ErrCodeWeakPassword    = "WEAK_PASSWORD"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("このユーザー名は既に使用されています: %s", username),
		Category: "conflict",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  fmt.Sprintf("このメールアドレスは既に使用されています: %s", email),
		Category: "conflict",
		Action:   "別のメールアドレスを指定してください。",
	}
}

// NewInvalidUsernameError はユーザー名形式エラーを生成する。
func NewInvalidUsernameError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUsername,
		Message:  "ユーザー名は英数字3〜20文字で指定してください。",
		Category: "validation",
		Action:   "英数字のみを使用し、3文字以上20文字以下にしてください。",
	}
}

// NewWeakPasswordError はパスワード強度エラーを生成する。
func NewWeakPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  "パスワードは6文字以上で指定してください。",
		Category: "validation",
		Action:   "6文字以上のパスワードを設定してください。",
	}
}

// NewUnauthorizedError は認証失敗エラーを生成する。
// ユーザー不存在とパスワード不一致を区別しない共通メッセージを返す。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewAccountNotFoundError はアカウント未検出エラーを生成する。
func NewAccountNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeAccountNotFound,
		Message:  fmt.Sprintf("指定されたアカウントが見つかりません: %s", id),
		Category: "validation",
		Action:   "アカウントIDを確認してください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 原因の詳細はログにのみ記録し、レスポンスには含めない。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
