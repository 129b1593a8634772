package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/buy2brands/wholesale-api/internal/products"
	pkgAuth "github.com/buy2brands/wholesale-api/pkg/auth"
	"github.com/buy2brands/wholesale-api/pkg/auth/session"
	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/google/uuid"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubProducts struct {
	lastList *products.ListProductsInput
}

func (s *stubProducts) List(_ context.Context, input products.ListProductsInput) (*products.ProductListResult, error) {
	s.lastList = &input
	return &products.ProductListResult{Products: []products.ProductDTO{}}, nil
}

func (s *stubProducts) Get(context.Context, uuid.UUID, bool) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}

func (s *stubProducts) Create(context.Context, products.CreateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}

func (s *stubProducts) Update(context.Context, uuid.UUID, products.UpdateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}

func (s *stubProducts) Delete(context.Context, uuid.UUID) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", FrontendURL: "http://localhost:5173"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "buy2brands", ExpirationMinutes: 15},
	}
}

func newTestRouter(deps Dependencies) http.Handler {
	if deps.Sessions == nil {
		deps.Sessions = stubSessions{}
	}
	return NewRouter(testConfig(), nil, deps)
}

func bearer(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "buyer@example.com",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func serve(h http.Handler, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(Dependencies{DB: stubPinger{}})

	if resp := serve(router, http.MethodGet, "/health/live", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected live 200 got %d", resp.Code)
	}
	if resp := serve(router, http.MethodGet, "/health/ready", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected ready 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAuthenticatedRoutesRejectAnonymousCallers(t *testing.T) {
	router := newTestRouter(Dependencies{})

	for _, path := range []string{"/api/v1/me", "/api/v1/cart", "/api/v1/orders", "/api/v1/returns", "/api/v1/checkout/quote"} {
		if resp := serve(router, http.MethodGet, path, ""); resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, resp.Code)
		}
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	router := newTestRouter(Dependencies{})

	resp := serve(router, http.MethodGet, "/api/v1/admin/users", bearer(t, enums.UserRoleUser))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestCatalogVisibilityFollowsRoute(t *testing.T) {
	catalog := &stubProducts{}
	router := newTestRouter(Dependencies{Products: catalog})

	resp := serve(router, http.MethodGet, "/api/v1/products", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected public list 200 got %d", resp.Code)
	}
	if catalog.lastList == nil || catalog.lastList.IsAdmin {
		t.Fatalf("public listing must not include inactive products")
	}

	resp = serve(router, http.MethodGet, "/api/v1/admin/products", bearer(t, enums.UserRoleAdmin))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected admin list 200 got %d", resp.Code)
	}
	if !catalog.lastList.IsAdmin {
		t.Fatalf("admin listing should include inactive products")
	}
}

func TestStripeWebhookIsPublic(t *testing.T) {
	router := newTestRouter(Dependencies{})

	// No auth is required; without a wired service the handler answers 500.
	resp := serve(router, http.MethodPost, "/api/v1/webhooks/stripe", "")
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestCORSPreflightAllowsFrontend(t *testing.T) {
	router := newTestRouter(Dependencies{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allow origin header got %q", got)
	}
}
