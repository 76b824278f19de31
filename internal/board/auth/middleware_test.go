package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	validSecret   = "test-secret"
	invalidSecret = "wrong-secret"
	testUserID    = "test-user"
)

// generateTestToken mints a token with an arbitrary expiry for tests.
func generateTestToken(secret string, expiresAt time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": testUserID,
		"exp": expiresAt.Unix(),
	})
	tokenString, _ := token.SignedString([]byte(secret))
	return tokenString
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantUserID string
	}{
		{
			name:       "valid token",
			authHeader: "Bearer " + generateTestToken(validSecret, time.Now().Add(time.Hour)),
			wantStatus: http.StatusOK,
			wantUserID: testUserID,
		},
		{
			name:       "wrong signature",
			authHeader: "Bearer " + generateTestToken(invalidSecret, time.Now().Add(time.Hour)),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer " + generateTestToken(validSecret, time.Now().Add(-time.Hour)),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing bearer prefix",
			authHeader: generateTestToken(validSecret, time.Now().Add(time.Hour)),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty bearer token",
			authHeader: "Bearer ",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			router := gin.New()
			router.GET("/protected", Middleware(validSecret), func(c *gin.Context) {
				gotUserID = UserID(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantUserID != "" && gotUserID != tt.wantUserID {
				t.Errorf("expected user id %q, got %q", tt.wantUserID, gotUserID)
			}
		})
	}
}

func TestMiddlewareRejectsTokenWithoutSubject(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenString, _ := token.SignedString([]byte(validSecret))

	router := gin.New()
	router.GET("/protected", Middleware(validSecret), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	tokenString, err := GenerateToken(testUserID, validSecret)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := validateToken(tokenString, validSecret)
	if err != nil {
		t.Fatalf("generated token should validate: %v", err)
	}
	if claims["sub"] != testUserID {
		t.Errorf("expected subject %q, got %v", testUserID, claims["sub"])
	}

	if _, err := validateToken(tokenString, invalidSecret); err == nil {
		t.Error("token should not validate with the wrong secret")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantErr   bool
	}{
		{
			name:      "valid authorization header",
			header:    "Bearer valid-token",
			wantToken: "valid-token",
		},
		{
			name:    "missing authorization header",
			wantErr: true,
		},
		{
			name:    "malformed authorization header",
			header:  "InvalidPrefix valid-token",
			wantErr: true,
		},
		{
			name:    "empty bearer token",
			header:  "Bearer ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			token, err := extractTokenFromHeader(req)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if token != tt.wantToken {
				t.Errorf("expected token %q, got %q", tt.wantToken, token)
			}
		})
	}
}
