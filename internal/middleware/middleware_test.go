package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leetcurve/backend/internal/domain"
	"github.com/leetcurve/backend/internal/infrastructure"
	"github.com/leetcurve/backend/internal/service"
)

func newRouter(tokens *service.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()))
	r.Use(LoggingMiddleware(zap.NewNop()))
	r.Use(AuthMiddleware(tokens))
	r.GET("/whoami", func(c *gin.Context) {
		client, _ := GetClient(c)
		c.JSON(http.StatusOK, domain.Result{Success: true, Message: client})
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

func TestRequestIDIsReusedOrGenerated(t *testing.T) {
	r := newRouter(service.NewTokenService(&infrastructure.AuthConfig{}))

	given := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Request-ID", given)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != given {
		t.Errorf("X-Request-ID = %q, want %q", got, given)
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if _, err := uuid.Parse(rec.Header().Get("X-Request-ID")); err != nil {
		t.Errorf("generated request id %q is not a uuid", rec.Header().Get("X-Request-ID"))
	}
}

func TestRecoveryReturnsResult(t *testing.T) {
	r := newRouter(service.NewTokenService(&infrastructure.AuthConfig{}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var res domain.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil || res.Success {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAuthSetsClient(t *testing.T) {
	tokens := service.NewTokenService(&infrastructure.AuthConfig{
		SecretKey:   "s3cret",
		TokenExpiry: time.Hour,
		Issuer:      "leetcurve",
	})
	r := newRouter(tokens)

	issued, err := tokens.Issue("popup")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + issued.AccessToken, http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"valid", "Bearer " + issued.AccessToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set(AuthorizationHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusOK {
				var res domain.Result
				_ = json.Unmarshal(rec.Body.Bytes(), &res)
				if res.Message != "popup" {
					t.Errorf("client = %q, want popup", res.Message)
				}
			}
		})
	}
}
