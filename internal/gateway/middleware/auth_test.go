package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"atelier-crm/internal/utils"
)

func authRouter(t *testing.T, tokens *utils.TokenManager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/secret", RequireAuth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"identity": c.GetString(identityKey)})
	})
	return r
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	r := authRouter(t, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d, want 401", w.Code)
	}
}

func TestRequireAuthAdmitsValidToken(t *testing.T) {
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	r := authRouter(t, tokens)

	token, _, err := tokens.Generate(7, "marie")
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status %d, want 200", w.Code)
	}
	// The username doubles as the rate-limit identity downstream.
	if body := w.Body.String(); body != `{"identity":"marie"}` {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestRequireAuthRejectsWrongSecret(t *testing.T) {
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	other := utils.NewTokenManager("other-secret", time.Hour)
	r := authRouter(t, tokens)

	token, _, err := other.Generate(7, "marie")
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("foreign-secret token: status %d, want 401", w.Code)
	}
}
