package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/buy2brands/wholesale-api/internal/users"
	pkgAuth "github.com/buy2brands/wholesale-api/pkg/auth"
	"github.com/buy2brands/wholesale-api/pkg/auth/session"
	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/buy2brands/wholesale-api/pkg/db/dbtest"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/types"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testJWT = config.JWTConfig{
	Secret:                 "secret",
	Issuer:                 "buy2brands",
	ExpirationMinutes:      15,
	RefreshTokenTTLMinutes: 60,
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryStore) AccessSessionKey(accessID string) string {
	return "b2b:session:access:" + accessID
}

type fixture struct {
	svc      Service
	repo     *users.Repository
	sessions *session.Manager
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := users.NewRepository(dbtest.Open(t))
	mgr, err := session.NewManager(&memoryStore{data: map[string]string{}}, testJWT)
	require.NoError(t, err)

	f := &fixture{repo: repo, sessions: mgr, now: time.Now().UTC().Truncate(time.Second)}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: mgr,
		JWTConfig:      testJWT,
		Now:            func() time.Time { return f.now },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func registration(email string) RegisterRequest {
	return RegisterRequest{
		FirstName:     "Dana",
		LastName:      "Price",
		Email:         email,
		Password:      "Correct horse 9",
		ContactNumber: "555-0100",
		CompanyName:   "Price Retail",
		BusinessType:  enums.BusinessTypeShop,
		BillingAddress: types.PostalAddress{
			Street: "1 Main St",
			City:   "Austin",
		},
	}
}

func TestRegisterCreatesActiveBuyerAndSignsIn(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Register(context.Background(), registration(" Dana@Example.com "))
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "dana@example.com", resp.User.Email)
	assert.Equal(t, enums.UserRoleUser, resp.User.Role)
	assert.True(t, resp.User.IsActive)
	assert.Equal(t, 1, resp.User.NumberOfStores)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	ok, err := f.sessions.HasSession(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := f.repo.FindByEmail(context.Background(), "dana@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "Correct horse 9", stored.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), registration("dana@example.com"))
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), registration("DANA@example.com"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestRegisterRejectsUnknownBusinessType(t *testing.T) {
	f := newFixture(t)
	req := registration("dana@example.com")
	req.BusinessType = "kiosk"
	_, err := f.svc.Register(context.Background(), req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newFixture(t)
	req := registration("dana@example.com")
	req.Password = "alllowercase"
	_, err := f.svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestLoginUpgradesLegacyBcryptHash(t *testing.T) {
	f := newFixture(t)
	reg, err := f.svc.Register(context.Background(), registration("dana@example.com"))
	require.NoError(t, err)

	// accounts imported from the old storefront carry bcrypt hashes and
	// may not meet today's strength rules
	legacy, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.repo.UpdatePasswordHash(context.Background(), reg.User.ID, string(legacy)))

	_, err = f.svc.Login(context.Background(), LoginRequest{Email: "dana@example.com", Password: "secret"})
	require.NoError(t, err)

	stored, err := f.repo.FindByID(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"), stored.PasswordHash)

	_, err = f.svc.Login(context.Background(), LoginRequest{Email: "dana@example.com", Password: "secret"})
	require.NoError(t, err, "upgraded hash should still verify")
}

func TestLoginIssuesTokensAndRecordsLastLogin(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), registration("dana@example.com"))
	require.NoError(t, err)

	resp, err := f.svc.Login(context.Background(), LoginRequest{Email: "Dana@example.com", Password: "Correct horse 9"})
	require.NoError(t, err)
	require.NotNil(t, resp.User.LastLoginAt)
	assert.True(t, f.now.Equal(*resp.User.LastLoginAt))

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleUser, claims.Role)
	assert.Equal(t, "dana@example.com", claims.Email)

	stored, err := f.repo.FindByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
}

func TestLoginRejectsBadCredentialsAndInactiveUsers(t *testing.T) {
	f := newFixture(t)
	reg, err := f.svc.Register(context.Background(), registration("dana@example.com"))
	require.NoError(t, err)

	cases := []LoginRequest{
		{Email: "dana@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "Correct horse 9"},
		{Email: "", Password: "Correct horse 9"},
	}
	for _, req := range cases {
		_, err := f.svc.Login(context.Background(), req)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), req.Email)
	}

	require.NoError(t, f.repo.Update(context.Background(), reg.User.ID, map[string]any{"is_active": false}))
	_, err = f.svc.Login(context.Background(), LoginRequest{Email: "dana@example.com", Password: "Correct horse 9"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestRefreshRotatesSession(t *testing.T) {
	f := newFixture(t)
	reg, err := f.svc.Register(context.Background(), registration("dana@example.com"))
	require.NoError(t, err)

	// the access token has expired by the time the client refreshes
	f.now = f.now.Add(time.Hour)
	refreshed, err := f.svc.Refresh(context.Background(), RefreshRequest{AccessToken: reg.AccessToken, RefreshToken: reg.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, refreshed.RefreshToken)

	oldClaims, err := pkgAuth.ParseAccessTokenAllowExpired(testJWT, reg.AccessToken)
	require.NoError(t, err)
	ok, err := f.sessions.HasSession(context.Background(), oldClaims.ID)
	require.NoError(t, err)
	assert.False(t, ok, "old session is gone after rotation")

	_, err = f.svc.Refresh(context.Background(), RefreshRequest{AccessToken: reg.AccessToken, RefreshToken: reg.RefreshToken})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "refresh tokens are single use")

	_, err = f.svc.Refresh(context.Background(), RefreshRequest{AccessToken: "not-a-jwt", RefreshToken: refreshed.RefreshToken})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t)
	reg, err := f.svc.Register(context.Background(), registration("dana@example.com"))
	require.NoError(t, err)
	claims, err := pkgAuth.ParseAccessToken(testJWT, reg.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), claims.ID))
	ok, err := f.sessions.HasSession(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.Refresh(context.Background(), RefreshRequest{AccessToken: reg.AccessToken, RefreshToken: reg.RefreshToken})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	assert.True(t, pkgerrors.IsCode(f.svc.Logout(context.Background(), ""), pkgerrors.CodeUnauthorized))
}
