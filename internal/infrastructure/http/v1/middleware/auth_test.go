package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	appctx "posrail/internal/core/context"
)

type stubValidator struct {
	users map[string]*appctx.UserContext
}

func (v *stubValidator) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	if u, ok := v.users[tokenString]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator := &stubValidator{users: map[string]*appctx.UserContext{
		"admin-token":   {UserID: "u1", Email: "a@x", Name: "Admin", Role: appctx.RoleAdmin},
		"cashier-token": {UserID: "u2", Email: "c@x", Name: "Cashier", Role: appctx.RoleCashier},
	}}

	router := gin.New()
	router.Use(ErrorHandler())

	protected := router.Group("", Auth(validator))
	protected.GET("/me", func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"role": user.Role})
	})

	admin := router.Group("", Auth(validator), RequireRole(appctx.RoleAdmin))
	admin.GET("/admin", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router
}

func perform(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuth_MissingHeader(t *testing.T) {
	router := newTestRouter()
	w := perform(router, "/me", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "admin-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	router := newTestRouter()
	w := perform(router, "/me", "forged")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_ValidTokenPopulatesContext(t *testing.T) {
	router := newTestRouter()
	w := perform(router, "/me", "cashier-token")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body)
	}
}

func TestRequireRole_ForbidsCashierOnAdminRoute(t *testing.T) {
	router := newTestRouter()
	w := perform(router, "/admin", "cashier-token")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRequireRole_AdmitsAdmin(t *testing.T) {
	router := newTestRouter()
	w := perform(router, "/admin", "admin-token")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (body: %s)", w.Code, w.Body)
	}
}
