package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txn2/mcp-agent-gate/pkg/auth"
)

var mwTestKey = []byte("middleware-test-key")

func signToken(t *testing.T, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":         "user-1",
		"permissions": []any{"posts:*"},
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func echoUser() (http.Handler, *[]string) {
	var seen []string
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uc := auth.GetUserContext(r.Context()); uc != nil {
			seen = append(seen, uc.UserID)
		} else {
			seen = append(seen, "")
		}
		w.WriteHeader(http.StatusOK)
	}), &seen
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := auth.NewTokenVerifier(mwTestKey, nil)
	handler, seen := echoUser()
	wrapped := AuthMiddleware(verifier, true)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, mwTestKey))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"user-1"}, *seen)
}

func TestAuthMiddleware_MissingTokenRequired(t *testing.T) {
	verifier := auth.NewTokenVerifier(mwTestKey, nil)
	handler, _ := echoUser()
	wrapped := AuthMiddleware(verifier, true)(handler)

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MissingTokenOptional(t *testing.T) {
	verifier := auth.NewTokenVerifier(mwTestKey, nil)
	handler, seen := echoUser()
	wrapped := AuthMiddleware(verifier, false)(handler)

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{""}, *seen, "anonymous request carries no user context")
}

func TestAuthMiddleware_InvalidTokenAlwaysRejected(t *testing.T) {
	verifier := auth.NewTokenVerifier(mwTestKey, nil)
	handler, _ := echoUser()

	for _, required := range []bool{true, false} {
		wrapped := AuthMiddleware(verifier, required)(handler)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, []byte("wrong-key")))
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}
