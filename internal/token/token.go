// Package token は署名付きベアラートークンの発行と検証を提供する。
// トークンはHS256署名のJWTで、サブジェクト（ユーザー名）と発行時刻・
// 有効期限のみを含む自己完結型とする。検証にDB参照は不要。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 検証失敗の分類。呼び出し側はerrors.Isで判別できる。
var (
	// ErrMalformed はトークンの構造を解析できないことを示す。
	ErrMalformed = errors.New("token is malformed")
	// ErrBadSignature は署名が一致しないことを示す。
	ErrBadSignature = errors.New("token signature is invalid")
	// ErrExpired はトークンの有効期限が切れていることを示す。
	ErrExpired = errors.New("token is expired")
)

// Issuer はベアラートークンの発行と検証を行う。
// 署名鍵はサービス内でのみ保持する。鍵の漏洩が唯一の失効リスクとなる
// （失効リストは持たず、無効化は有効期限切れのみ）。
type Issuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time // テストで時刻を差し替えるためのフック
}

// NewIssuer は指定の署名鍵とトークン有効期間でIssuerを生成する。
func NewIssuer(secret []byte, lifetime time.Duration) *Issuer {
	return &Issuer{
		secret:   secret,
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Issue はサブジェクトを紐付けたトークン文字列を発行する。
// 発行時刻と有効期限をクレームに埋め込むため、異なる時刻に発行された
// トークンは同一サブジェクトでも異なる文字列になる。
func (i *Issuer) Issue(subject string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークン文字列を検証し、サブジェクトを返す。
// 失敗はErrMalformed、ErrBadSignature、ErrExpiredのいずれかに分類する。
// 検証はトークンと現在時刻のみの純粋関数であり、永続状態を参照しない。
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	t, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpired
		default:
			return "", ErrMalformed
		}
	}
	if !t.Valid {
		return "", ErrBadSignature
	}
	if claims.Subject == "" {
		return "", ErrMalformed
	}

	return claims.Subject, nil
}
