package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"souq_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func performWithRole(role string, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		c.Set("role", role)
	}

	handler(c)
	if !c.IsAborted() {
		w.WriteHeader(http.StatusOK)
	}
	return w
}

func TestRequireRoles(t *testing.T) {
	adminOnly := RequireRoles(models.RoleAdmin)

	t.Run("allowed role passes", func(t *testing.T) {
		w := performWithRole(models.RoleAdmin, adminOnly)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("known but unlisted role is forbidden", func(t *testing.T) {
		w := performWithRole(models.RoleUser, adminOnly)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown role is forbidden", func(t *testing.T) {
		w := performWithRole("superadmin", adminOnly)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing role is forbidden", func(t *testing.T) {
		w := performWithRole("", adminOnly)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("multiple allowed roles", func(t *testing.T) {
		staff := RequireRoles(models.RoleAdmin, models.RoleManager)
		assert.Equal(t, http.StatusOK, performWithRole(models.RoleManager, staff).Code)
	})
}
