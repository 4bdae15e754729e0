package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/authcore/internal/metrics"
	"github.com/hitoshi/authcore/internal/middleware"
	"github.com/hitoshi/authcore/internal/model"
	"github.com/hitoshi/authcore/internal/token"
)

// newTestRouter はモックサービスと実トークン検証器でルーターを構成する。
func newTestRouter(t *testing.T, svc AccountServiceInterface) (http.Handler, *token.Issuer) {
	t.Helper()

	issuer := token.NewIssuer([]byte("test-secret"), time.Hour)
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	router := NewRouter(&RouterDeps{
		TokenVerifier:     issuer,
		CORSAllowedOrigin: "https://app.example.com",
		RateLimiter:       rl,
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Collector:         metrics.Nop{},
		AccountService:    svc,
		DBPinger:          PingerFunc(func(ctx context.Context) error { return nil }),
		BrokerPinger:      PingerFunc(func(ctx context.Context) error { return nil }),
	})

	return router, issuer
}

func TestRouter_HealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, &mockAccountService{})

	for _, path := range []string{"/", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("GET %s: status = %d, want %d", path, w.Result().StatusCode, http.StatusOK)
		}
	}
}

func TestRouter_RegistrationAliases(t *testing.T) {
	svc := &mockAccountService{
		registerFn: func(ctx context.Context, username, plainPassword, email string) (*model.Account, error) {
			return &model.Account{ID: "id-1", Username: username}, nil
		},
	}
	router, _ := newTestRouter(t, svc)

	for _, path := range []string{"/user", "/api/auth/user"} {
		body := `{"username":"johndoe","password":"secret123"}`
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusCreated {
			t.Errorf("POST %s: status = %d, want %d", path, w.Result().StatusCode, http.StatusCreated)
		}
	}
}

func TestRouter_LoginAliases(t *testing.T) {
	svc := &mockAccountService{
		authenticateFn: func(ctx context.Context, username, plainPassword string) (string, *model.Account, error) {
			return "signed-token", &model.Account{ID: "id-1", Username: username}, nil
		},
	}
	router, _ := newTestRouter(t, svc)

	for _, path := range []string{"/login", "/api/auth/login"} {
		body := `{"username":"johndoe","password":"secret123"}`
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("POST %s: status = %d, want %d", path, w.Result().StatusCode, http.StatusOK)
		}
	}
}

func TestRouter_DeleteRequiresToken(t *testing.T) {
	svc := &mockAccountService{
		removeFn: func(ctx context.Context, id string) error { return nil },
	}
	router, issuer := newTestRouter(t, svc)

	// トークンなしは401
	req := httptest.NewRequest(http.MethodDelete, "/user/id-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("without token: status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}

	// 有効なトークンつきは204
	tokenString, err := issuer.Issue("johndoe")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/user/id-1", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("with token: status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
}

func TestRouter_DeleteRejectsForgedToken(t *testing.T) {
	router, _ := newTestRouter(t, &mockAccountService{
		removeFn: func(ctx context.Context, id string) error {
			t.Fatal("service should not be reached with a forged token")
			return nil
		},
	})

	// 別の鍵で署名されたトークンは拒否される
	otherIssuer := token.NewIssuer([]byte("other-secret"), time.Hour)
	forged, err := otherIssuer.Issue("johndoe")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/user/id-1", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// エラーレスポンスが全ルートで統一フォーマットであることを検証
func TestRouter_UnifiedErrorFormat(t *testing.T) {
	svc := &mockAccountService{
		registerFn: func(ctx context.Context, username, plainPassword, email string) (*model.Account, error) {
			return nil, model.NewUsernameTakenError(username)
		},
	}
	router, _ := newTestRouter(t, svc)

	body := `{"username":"johndoe","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/user", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	var got apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Code == "" || got.Message == "" || got.Category == "" || got.Action == "" {
		t.Errorf("expected all error fields populated, got %+v", got)
	}
}

func TestRouter_SecurityHeadersApplied(t *testing.T) {
	router, _ := newTestRouter(t, &mockAccountService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if v := resp.Header.Get("X-Content-Type-Options"); v != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", v)
	}
	if v := resp.Header.Get("Cache-Control"); v != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", v)
	}
}
