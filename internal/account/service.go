// Package account はアカウント管理のドメインロジックを提供する。
// 入力検証、一意性の担保、パスワードハッシュ化、トークン発行、
// 作成イベント発行の調整を行う。
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/authcore/internal/event"
	"github.com/hitoshi/authcore/internal/metrics"
	"github.com/hitoshi/authcore/internal/model"
	"github.com/hitoshi/authcore/internal/repository"
)

// ユーザー名は英数字3〜20文字。
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]{3,20}$`)

// パスワードの最小文字数。
const minPasswordLength = 6

// イベント発行はリクエストの生存期間に依存しないため、専用のタイムアウトを持つ。
const publishTimeout = 5 * time.Second

// PasswordHasher はパスワードのハッシュ化と検証のインターフェース。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer はベアラートークン発行のインターフェース。
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// Service はアカウント管理のサービス層。
// 呼び出しごとに独立したトランザクションとして動作し、プロセス内に
// 共有可変状態を持たない。同時登録の競合はストアの一意性制約が最終的に
// 解決する（事前チェックは最適化にすぎない）。
type Service struct {
	repo      repository.AccountRepository
	hasher    PasswordHasher
	issuer    TokenIssuer
	publisher event.Publisher
	collector metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.AccountRepository,
	hasher PasswordHasher,
	issuer TokenIssuer,
	publisher event.Publisher,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		issuer:    issuer,
		publisher: publisher,
		collector: collector,
	}
}

// Register は新規アカウントを作成する。
// チェックの順序は固定とする: ユーザー名重複 → メール重複 → ユーザー名形式
// → パスワード強度。複数の違反が同時に存在する場合でも決定的なエラーを返す。
// 作成イベントの発行はfire-and-forgetであり、失敗しても登録は成功扱いとする。
func (s *Service) Register(ctx context.Context, username, plainPassword, email string) (*model.Account, error) {
	// 1. ユーザー名の重複チェック
	taken, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, s.registerFailed(fmt.Errorf("failed to check username: %w", err))
	}
	if taken {
		return nil, s.registerRejected(model.NewUsernameTakenError(username))
	}

	// 2. メールアドレスの重複チェック（設定されている場合のみ）
	if email != "" {
		taken, err := s.repo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, s.registerFailed(fmt.Errorf("failed to check email: %w", err))
		}
		if taken {
			return nil, s.registerRejected(model.NewEmailTakenError(email))
		}
	}

	// 3. ユーザー名の形式チェック
	if !usernamePattern.MatchString(username) {
		return nil, s.registerRejected(model.NewInvalidUsernameError())
	}

	// 4. パスワード強度チェック
	if len(plainPassword) < minPasswordLength {
		return nil, s.registerRejected(model.NewWeakPasswordError())
	}

	// 5. パスワードのハッシュ化
	digest, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return nil, s.registerFailed(fmt.Errorf("failed to hash password: %w", err))
	}

	// 6. 永続化。事前チェックとINSERTの間のレースはDBの一意性制約で検出し、
	// 事前チェックと同じConflictエラーに変換する。
	account := &model.Account{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: digest,
		Email:        email,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, s.registerRejected(model.NewUsernameTakenError(username))
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, s.registerRejected(model.NewEmailTakenError(email))
		default:
			return nil, s.registerFailed(fmt.Errorf("failed to create account: %w", err))
		}
	}

	slog.InfoContext(ctx, "account created",
		slog.String("account_id", account.ID),
		slog.String("username", account.Username),
	)
	s.collector.RecordRegistrationSuccess()

	// 7. 作成イベントの発行。登録の成否には影響させない。
	s.publishCreated(ctx, account.Username)

	return account, nil
}

// Authenticate はユーザー名とパスワードを検証し、トークンとアカウントを返す。
// ユーザー不存在とパスワード不一致はどちらも同一のUnauthorizedエラーを返し、
// 呼び出し側からは区別できない。
func (s *Service) Authenticate(ctx context.Context, username, plainPassword string) (string, *model.Account, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		s.collector.RecordLoginFailure()
		return "", nil, model.NewUnauthorizedError()
	}

	if !s.hasher.Verify(plainPassword, account.PasswordHash) {
		s.collector.RecordLoginFailure()
		return "", nil, model.NewUnauthorizedError()
	}

	tokenString, err := s.issuer.Issue(account.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.collector.RecordLoginSuccess()
	return tokenString, account, nil
}

// Remove は指定IDのアカウントを削除する。
// 存在確認後の削除は無条件であり、外部システム側の後始末は行わない。
func (s *Service) Remove(ctx context.Context, id string) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check account: %w", err)
	}
	if !exists {
		return model.NewAccountNotFoundError(id)
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		// 存在確認と削除の間に消えた場合も未検出として扱う
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewAccountNotFoundError(id)
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	slog.InfoContext(ctx, "account deleted",
		slog.String("account_id", id),
	)
	s.collector.RecordDeletion()

	return nil
}

// publishCreated は作成イベントを非同期に発行する。
// 結果はログとメトリクスにのみ反映し、呼び出し元の制御フローには返さない。
// リクエストのキャンセルに巻き込まれないよう、切り離したコンテキストを使う。
func (s *Service) publishCreated(ctx context.Context, username string) {
	e := event.NewAccountCreated(username)

	go func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		messageID, err := s.publisher.Publish(ctx, username, e)
		if err != nil {
			slog.ErrorContext(ctx, "failed to publish account created event",
				slog.String("username", username),
				slog.String("event_id", e.EventID),
				slog.String("error", err.Error()),
			)
			s.collector.RecordEventPublishFailure()
			return
		}

		slog.InfoContext(ctx, "account created event published",
			slog.String("username", username),
			slog.String("event_id", e.EventID),
			slog.String("message_id", messageID),
		)
		s.collector.RecordEventPublished()
	}(context.WithoutCancel(ctx))
}

// registerRejected は登録の検証・重複エラーを記録して返す。
func (s *Service) registerRejected(apiErr *model.APIError) error {
	s.collector.RecordRegistrationFailure(apiErr.Code)
	return apiErr
}

// registerFailed は登録のインフラ障害を記録して返す。
func (s *Service) registerFailed(err error) error {
	s.collector.RecordRegistrationFailure(model.ErrCodeInternal)
	return err
}
