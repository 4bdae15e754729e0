package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/authcore/internal/model"
)

// PostgreSQLの一意性制約違反のエラーコード。
const pqUniqueViolation = "23505"

// 一意性制約違反をフィールドに対応付けるための制約名。
// マイグレーションの定義と一致させること。
const (
	usernameConstraint = "accounts_username_key"
	emailConstraint    = "accounts_email_key"
)

// PostgresAccountRepo はPostgreSQLを使用したアカウントリポジトリ。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

// ExistsByUsername は指定ユーザー名のアカウントが存在するかを返す。
func (r *PostgresAccountRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`,
		username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

// ExistsByEmail は指定メールアドレスのアカウントが存在するかを返す。
// 空文字列は「未設定」を意味するため常にfalseを返す。
func (r *PostgresAccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// ExistsByID は指定IDのアカウントが存在するかを返す。
func (r *PostgresAccountRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return exists, nil
}

// FindByUsername は指定ユーザー名のアカウントを取得する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, created_at, updated_at
		 FROM accounts WHERE username = $1`,
		username,
	).Scan(&account.ID, &account.Username, &account.PasswordHash, &account.Email, &account.CreatedAt, &account.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by username: %w", err)
	}

	return account, nil
}

// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, created_at, updated_at
		 FROM accounts WHERE id = $1`,
		id,
	).Scan(&account.ID, &account.Username, &account.PasswordHash, &account.Email, &account.CreatedAt, &account.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by id: %w", err)
	}

	return account, nil
}

// Create はアカウントを作成する。
// created_at/updated_atは保存経路で明示的に設定する（ORMのライフサイクル
// フックのような暗黙の更新は行わない）。
// 一意性制約違反はErrDuplicateUsername / ErrDuplicateEmailに変換して返す。
func (r *PostgresAccountRepo) Create(ctx context.Context, account *model.Account) error {
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, password_hash, email, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		account.ID, account.Username, account.PasswordHash, account.Email, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		if dup := mapUniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// DeleteByID は指定IDのアカウントを削除する。
// 対象が存在しない場合はErrNotFoundを返す。
func (r *PostgresAccountRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// mapUniqueViolation は一意性制約違反を対応するリポジトリエラーに変換する。
// 一意性制約違反でない場合はnilを返す。
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pqUniqueViolation {
		return nil
	}

	switch pqErr.Constraint {
	case usernameConstraint:
		return ErrDuplicateUsername
	case emailConstraint:
		return ErrDuplicateEmail
	default:
		// 制約名が特定できない場合もユーザー名の重複として扱う
		return ErrDuplicateUsername
	}
}

// compile-time interface check
var _ AccountRepository = (*PostgresAccountRepo)(nil)
