// Package password はパスワードの一方向ハッシュ化と検証を提供する。
// アルゴリズムにはソルト付き適応型ハッシュのbcryptを使用する。
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher はbcryptによるパスワードハッシュ化を行う。
// コストパラメータでブルートフォース耐性を調整できる。
type Hasher struct {
	cost int
}

// NewHasher は指定コストのHasherを生成する。
// costがbcryptの許容範囲外の場合はbcrypt.DefaultCostを使用する。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash は平文パスワードのbcryptダイジェストを返す。
// ソルトは内部で生成されるため、同じ入力でも毎回異なるダイジェストになる。
// 入力内容が原因で失敗することはなく、エラーは内部異常時のみ返す。
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文パスワードがダイジェストと一致するかを検証する。
// 不一致・不正なダイジェスト形式はすべてfalseとして扱い、エラーは返さない。
// bcryptの比較は定数時間で行われる。
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
