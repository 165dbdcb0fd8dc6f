package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleetbook/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "unit-test-secret"

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Format: logger.FormatText})
}

func signToken(t *testing.T, secret string, mutate func(c *accessClaims)) string {
	t.Helper()

	claims := &accessClaims{
		Name:  "Asha Rao",
		Email: "rider@example.com",
		Role:  "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	if mutate != nil {
		mutate(claims)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthenticationPopulatesIdentity(t *testing.T) {
	var gotID, gotName, gotEmail, gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserID(r.Context())
		gotName = UserName(r.Context())
		gotEmail = UserEmail(r.Context())
		gotRole = Role(r.Context())
	})

	handler := Authentication(testJWTSecret, testLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTSecret, nil))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", gotID)
	assert.Equal(t, "Asha Rao", gotName)
	assert.Equal(t, "rider@example.com", gotEmail)
	assert.Equal(t, "customer", gotRole)
}

func TestAuthenticationRejections(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for an unauthenticated request")
	})
	handler := Authentication(testJWTSecret, testLogger())(next)

	cases := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{
			name:  "missing header",
			setup: func(r *http.Request) {},
		},
		{
			name: "wrong scheme",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Basic abc123")
			},
		},
		{
			name: "wrong secret",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", nil))
			},
		},
		{
			name: "expired token",
			setup: func(r *http.Request) {
				token := signToken(t, testJWTSecret, func(c *accessClaims) {
					c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
				})
				r.Header.Set("Authorization", "Bearer "+token)
			},
		},
		{
			name: "missing subject",
			setup: func(r *http.Request) {
				token := signToken(t, testJWTSecret, func(c *accessClaims) {
					c.Subject = ""
				})
				r.Header.Set("Authorization", "Bearer "+token)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"success":false,"message":"Unauthorized","data":null}`, rec.Body.String())
		})
	}
}

func TestRequireRole(t *testing.T) {
	ran := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
	})

	chain := Authentication(testJWTSecret, testLogger())(RequireRole("admin", testLogger())(next))

	t.Run("customer blocked", func(t *testing.T) {
		ran = false
		req := httptest.NewRequest(http.MethodPost, "/api/v1/vehicles", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTSecret, nil))
		rec := httptest.NewRecorder()

		chain.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, ran)
	})

	t.Run("admin allowed", func(t *testing.T) {
		ran = false
		token := signToken(t, testJWTSecret, func(c *accessClaims) { c.Role = "admin" })
		req := httptest.NewRequest(http.MethodPost, "/api/v1/vehicles", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		chain.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, ran)
	})
}
