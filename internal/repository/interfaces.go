// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/authcore/internal/model"
)

// ストア層の一意性制約違反を表すエラー。
// 事前チェックとINSERTの間のレースはDBの一意性制約が最終的に防ぐため、
// 呼び出し側はこれらを事前チェックのConflictと同等に扱う。
var (
	// ErrDuplicateUsername はユーザー名の一意性制約違反を示す。
	ErrDuplicateUsername = errors.New("duplicate username")
	// ErrDuplicateEmail はメールアドレスの一意性制約違反を示す。
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrNotFound は対象レコードが存在しないことを示す。
	ErrNotFound = errors.New("record not found")
)

// AccountRepository はアカウントデータの永続化インターフェース。
type AccountRepository interface {
	// ExistsByUsername は指定ユーザー名のアカウントが存在するかを返す。
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail は指定メールアドレスのアカウントが存在するかを返す。
	// 空文字列は「未設定」を意味するため常にfalseを返す。
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByID は指定IDのアカウントが存在するかを返す。
	ExistsByID(ctx context.Context, id string) (bool, error)

	// FindByUsername は指定ユーザー名のアカウントを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.Account, error)

	// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Account, error)

	// Create はアカウントを作成し、created_at/updated_atを設定する。
	// 一意性制約違反の場合はErrDuplicateUsername / ErrDuplicateEmailを返す。
	Create(ctx context.Context, account *model.Account) error

	// DeleteByID は指定IDのアカウントを削除する。
	// 対象が存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error
}
