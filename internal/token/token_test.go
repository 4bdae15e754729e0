package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("test-secret-key")

// 発行したトークンが検証を通過し、サブジェクトが復元されることを検証
func TestIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewIssuer(testSecret, 24*time.Hour)

	tokenString, err := issuer.Issue("johndoe")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if tokenString == "" {
		t.Fatal("expected non-empty token")
	}

	subject, err := issuer.Verify(tokenString)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if subject != "johndoe" {
		t.Errorf("expected subject johndoe, got %s", subject)
	}
}

// 異なる時刻に発行されたトークンは同一サブジェクトでも異なることを検証
func TestIssuer_Issue_DifferentInstants(t *testing.T) {
	issuer := NewIssuer(testSecret, 24*time.Hour)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return base }
	t1, err := issuer.Issue("johndoe")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	issuer.now = func() time.Time { return base.Add(1 * time.Second) }
	t2, err := issuer.Issue("johndoe")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if t1 == t2 {
		t.Error("expected different tokens for different issue instants")
	}
}

// 有効期限の境界動作を検証: T+L未満では有効、T+L以降ではErrExpired
func TestIssuer_Verify_Expiry(t *testing.T) {
	issuer := NewIssuer(testSecret, 1*time.Hour)

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issuedAt }

	tokenString, err := issuer.Issue("johndoe")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	// 有効期限直前は検証を通過する
	issuer.now = func() time.Time { return issuedAt.Add(1*time.Hour - time.Second) }
	if _, err := issuer.Verify(tokenString); err != nil {
		t.Errorf("expected token to verify before expiry, got: %v", err)
	}

	// ちょうど有効期限の時刻で失効する（有効なのは期限未満のみ）
	issuer.now = func() time.Time { return issuedAt.Add(1 * time.Hour) }
	if _, err := issuer.Verify(tokenString); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired at exact expiry instant, got: %v", err)
	}

	// 有効期限以降はErrExpired
	issuer.now = func() time.Time { return issuedAt.Add(1*time.Hour + time.Second) }
	_, err = issuer.Verify(tokenString)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired after expiry, got: %v", err)
	}
}

// 署名部分の改ざんがErrBadSignatureに分類されることを検証
func TestIssuer_Verify_TamperedSignature(t *testing.T) {
	issuer := NewIssuer(testSecret, 24*time.Hour)

	tokenString, err := issuer.Issue("johndoe")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	// 署名セグメントの1文字を別のbase64文字に置き換える
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = issuer.Verify(tampered)
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature, got: %v", err)
	}
}

// 別の鍵で署名されたトークンがErrBadSignatureに分類されることを検証
func TestIssuer_Verify_WrongKey(t *testing.T) {
	issuer := NewIssuer(testSecret, 24*time.Hour)
	other := NewIssuer([]byte("another-secret"), 24*time.Hour)

	tokenString, err := other.Issue("johndoe")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	_, err = issuer.Verify(tokenString)
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature, got: %v", err)
	}
}

// 構造を解析できない文字列がErrMalformedに分類されることを検証
func TestIssuer_Verify_Malformed(t *testing.T) {
	issuer := NewIssuer(testSecret, 24*time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := issuer.Verify(input)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("Verify(%q): expected ErrMalformed, got: %v", input, err)
		}
	}
}
