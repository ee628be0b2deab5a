package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"fieldops-service/internal/domain"
	"fieldops-service/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withStaff stands in for the RBAC middleware
func withStaff(user *domain.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Set("staffUser", user)
		}
		c.Next()
	}
}

func newActivityHandlerForTest() *ActivityHandler {
	return NewActivityHandler(service.NewActivityService(nil, nil, nil, nil, zap.NewNop()))
}

func TestActivityHandler_RequiresStaffUser(t *testing.T) {
	h := newActivityHandlerForTest()
	r := gin.New()
	r.Use(withStaff(nil))
	r.GET("/activities/:id", h.Detail)
	r.GET("/activities/mine", h.Mine)
	r.PUT("/activities/:id/survey", h.UpdateSurvey)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/activities/" + uuid.NewString()},
		{http.MethodGet, "/activities/mine"},
		{http.MethodPut, "/activities/" + uuid.NewString() + "/survey"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestActivityHandler_BadInput(t *testing.T) {
	h := newActivityHandlerForTest()
	staff := &domain.User{Role: domain.RoleTechnician, IsActive: true}
	staff.ID = uuid.New()

	r := gin.New()
	r.Use(withStaff(staff))
	r.GET("/activities/:id", h.Detail)
	r.POST("/activities/:id/navigate", h.Navigate)
	r.PUT("/activities/:id/dispatch", h.UpdateDispatch)

	t.Run("invalid id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activities/abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid activity ID")
	})

	t.Run("navigate without requested tab", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/activities/"+uuid.NewString()+"/navigate", strings.NewReader(`{"current":"survey"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/activities/"+uuid.NewString()+"/dispatch", strings.NewReader(`{"itemCount":"many"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_GetByID_InvalidID(t *testing.T) {
	h := NewUserHandler(service.NewUserService(nil, nil, zap.NewNop()))
	r := gin.New()
	r.GET("/admin/users/:id", h.GetByID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users/123", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditHandler_GetByID_InvalidID(t *testing.T) {
	h := NewAuditHandler(service.NewAuditLogService(nil, nil, zap.NewNop()))
	r := gin.New()
	r.GET("/admin/audit-logs/:id", h.GetByID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/audit-logs/x", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid audit log ID")
}

func TestAuditHandler_List_RejectsUnknownFilters(t *testing.T) {
	h := NewAuditHandler(service.NewAuditLogService(nil, nil, zap.NewNop()))
	r := gin.New()
	r.GET("/admin/audit-logs", h.List)

	for _, query := range []string{"action=login", "resource_type=portal_user"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/audit-logs?"+query, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}
