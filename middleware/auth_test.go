package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, sub, role string, secret string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func authRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(ContextUserID)})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	testCases := []struct {
		name       string
		header     string
		expectCode int
	}{
		{
			name:       "Valid token",
			header:     "Bearer " + signToken(t, "user-1", "", testSecret),
			expectCode: http.StatusOK,
		},
		{
			name:       "Missing header",
			header:     "",
			expectCode: http.StatusUnauthorized,
		},
		{
			name:       "Not a bearer scheme",
			header:     "Basic abcdef",
			expectCode: http.StatusUnauthorized,
		},
		{
			name:       "Wrong signing key",
			header:     "Bearer " + signToken(t, "user-1", "", "other-secret"),
			expectCode: http.StatusUnauthorized,
		},
	}

	router := authRouter(AuthMiddleware(testSecret))
	for _, testCase := range testCases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if testCase.header != "" {
			req.Header.Set("Authorization", testCase.header)
		}
		router.ServeHTTP(w, req)

		if w.Code != testCase.expectCode {
			t.Errorf("%s: expected status %d, got %d", testCase.name, testCase.expectCode, w.Code)
		}
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	router := authRouter(OptionalAuthMiddleware(testSecret))

	// Anonymous requests pass through without an identity.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("anonymous request: expected 200, got %d", w.Code)
	}

	// A valid token resolves the identity.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", "", testSecret))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authenticated request: expected 200, got %d", w.Code)
	}

	// A bad token is rejected rather than treated as anonymous.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", w.Code)
	}
}

func TestOperatorMiddleware(t *testing.T) {
	testCases := []struct {
		name       string
		header     string
		expectCode int
	}{
		{
			name:       "Operator token",
			header:     "Bearer " + signToken(t, "op-1", RoleOperator, testSecret),
			expectCode: http.StatusOK,
		},
		{
			name:       "Regular user token",
			header:     "Bearer " + signToken(t, "user-1", "", testSecret),
			expectCode: http.StatusForbidden,
		},
		{
			name:       "Missing header",
			header:     "",
			expectCode: http.StatusUnauthorized,
		},
	}

	router := authRouter(OperatorMiddleware(testSecret))
	for _, testCase := range testCases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if testCase.header != "" {
			req.Header.Set("Authorization", testCase.header)
		}
		router.ServeHTTP(w, req)

		if w.Code != testCase.expectCode {
			t.Errorf("%s: expected status %d, got %d", testCase.name, testCase.expectCode, w.Code)
		}
	}
}
