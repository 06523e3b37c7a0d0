package webserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

const testKey = "0123456789abcdef0123456789abcdef"

func testRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	authH := NewAuth([]string{testKey}, []byte(secret))
	g.POST("/v1/auth", authH.Exchange)
	secured := g.Group("/v1", JWTMiddleware([]byte(secret)))
	secured.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return g
}

func TestExchangeRejectsUnknownKey(t *testing.T) {
	g := testRouter("secret")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth",
		strings.NewReader(`{"key":"ffffffffffffffffffffffffffffffff"}`))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestExchangeIssuesUsableToken(t *testing.T) {
	g := testRouter("secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth",
		strings.NewReader(`{"key":"`+testKey+`"}`))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("exchange status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("empty token")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	g.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("secured status = %d, want 200", w.Code)
	}
}

func TestMiddlewareRejectsMissingAndForgedTokens(t *testing.T) {
	g := testRouter("secret")

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}

	// Token signed with a different secret must not pass.
	other := testRouter("other-secret")
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth",
		strings.NewReader(`{"key":"`+testKey+`"}`))
	req.Header.Set("Content-Type", "application/json")
	other.ServeHTTP(w, req)
	var resp struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	g.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("forged token: status = %d, want 401", w.Code)
	}
}
