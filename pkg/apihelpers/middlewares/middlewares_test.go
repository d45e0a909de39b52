package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwthandling "github.com/conductor-oer/conductor-backend/pkg/jwt-handling"
	"github.com/gin-gonic/gin"
)

const testSignKey = "middleware-test-key"

func init() {
	gin.SetMode(gin.TestMode)
}

func newToken(t *testing.T, orgID string, isAdmin bool) string {
	t.Helper()
	token, err := jwthandling.GenerateNewConductorUserToken(time.Minute, "user-1", orgID, "Ada", "Lovelace", "ada@example.org", isAdmin, testSignKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return token
}

func subjectlessToken(t *testing.T) string {
	t.Helper()
	token, err := jwthandling.GenerateNewConductorUserToken(time.Minute, "", "org1", "", "", "", false, testSignKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return token
}

func doRequest(r *gin.Engine, method string, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": GetValidatedToken(c) != nil})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := doRequest(r, http.MethodGet, "/", "", nil)
	generated := w.Header().Get(HeaderRequestID)
	if generated == "" || w.Body.String() != generated {
		t.Errorf("expected generated request id, got header %q body %q", generated, w.Body.String())
	}

	w = doRequest(r, http.MethodGet, "/", "", map[string]string{HeaderRequestID: "abc"})
	if w.Header().Get(HeaderRequestID) != "abc" {
		t.Errorf("expected request id to be reused, got %q", w.Header().Get(HeaderRequestID))
	}

	w = doRequest(r, http.MethodGet, "/", "", map[string]string{HeaderRequestID: strings.Repeat("x", MAX_REQUEST_ID_LEN+1)})
	if len(w.Header().Get(HeaderRequestID)) > MAX_REQUEST_ID_LEN {
		t.Error("overlong request id should be replaced")
	}
}

func TestRequirePayload(t *testing.T) {
	r := gin.New()
	r.POST("/", RequirePayload(), okHandler)

	tests := []struct {
		name        string
		body        string
		contentType string
		expected    int
	}{
		{"empty body", "", "application/json", http.StatusBadRequest},
		{"json body", "{}", "application/json", http.StatusOK},
		{"json with charset", "{}", "application/json; charset=utf-8", http.StatusOK},
		{"form body", "a=b", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"no content type", "{}", "", http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.contentType != "" {
				headers["Content-Type"] = tt.contentType
			}
			if w := doRequest(r, http.MethodPost, "/", tt.body, headers); w.Code != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, w.Code)
			}
		})
	}
}

func TestGetAndValidateConductorUserJWT(t *testing.T) {
	r := gin.New()
	r.GET("/", GetAndValidateConductorUserJWT(testSignKey), okHandler)

	tests := []struct {
		name     string
		header   string
		expected int
	}{
		{"missing header", "", http.StatusBadRequest},
		{"empty bearer", "Bearer ", http.StatusBadRequest},
		{"invalid token", "Bearer invalid", http.StatusUnauthorized},
		{"valid token", "Bearer " + newToken(t, "org1", false), http.StatusOK},
		{"token without user", "Bearer " + subjectlessToken(t), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers[HeaderAuthorization] = tt.header
			}
			if w := doRequest(r, http.MethodGet, "/", "", headers); w.Code != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, w.Code)
			}
		})
	}
}

func TestOptionalConductorUserJWT(t *testing.T) {
	r := gin.New()
	r.GET("/", OptionalConductorUserJWT(testSignKey), okHandler)

	w := doRequest(r, http.MethodGet, "/", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"authenticated":false`) {
		t.Errorf("anonymous request should pass: %d %s", w.Code, w.Body.String())
	}

	w = doRequest(r, http.MethodGet, "/", "", map[string]string{HeaderAuthorization: "Bearer " + newToken(t, "org1", false)})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"authenticated":true`) {
		t.Errorf("token should be accepted: %d %s", w.Code, w.Body.String())
	}

	w = doRequest(r, http.MethodGet, "/", "", map[string]string{HeaderAuthorization: "Bearer invalid"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("invalid token should be rejected, got %d", w.Code)
	}

	t.Run("org in path", func(t *testing.T) {
		r := gin.New()
		r.GET("/:orgID", OptionalConductorUserJWT(testSignKey), okHandler)

		w := doRequest(r, http.MethodGet, "/org1", "", map[string]string{HeaderAuthorization: "Bearer " + newToken(t, "org1", false)})
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"authenticated":true`) {
			t.Errorf("token of the same org should be accepted: %d %s", w.Code, w.Body.String())
		}

		w = doRequest(r, http.MethodGet, "/org1", "", map[string]string{HeaderAuthorization: "Bearer " + newToken(t, "org2", false)})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("token of another org should be rejected, got %d", w.Code)
		}

		w = doRequest(r, http.MethodGet, "/org1", "", nil)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"authenticated":false`) {
			t.Errorf("anonymous request should pass: %d %s", w.Code, w.Body.String())
		}
	})
}

func TestIsAdminUser(t *testing.T) {
	r := gin.New()
	r.GET("/", GetAndValidateConductorUserJWT(testSignKey), IsAdminUser(), okHandler)

	w := doRequest(r, http.MethodGet, "/", "", map[string]string{HeaderAuthorization: "Bearer " + newToken(t, "org1", false)})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	w = doRequest(r, http.MethodGet, "/", "", map[string]string{HeaderAuthorization: "Bearer " + newToken(t, "org1", true)})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestOrgIDAllowed(t *testing.T) {
	r := gin.New()
	r.GET("/public/:orgID", IsOrgIDInPathAllowed([]string{"org1"}), okHandler)
	r.GET("/private/:orgID", IsOrgIDInPathAllowed([]string{"org1", "org2"}), GetAndValidateConductorUserJWT(testSignKey), IsOrgIDInJWTAllowed(), okHandler)

	if w := doRequest(r, http.MethodGet, "/public/org1", "", nil); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/public/org2", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	auth := map[string]string{HeaderAuthorization: "Bearer " + newToken(t, "org1", true)}
	if w := doRequest(r, http.MethodGet, "/private/org1", "", auth); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/private/org2", "", auth); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
