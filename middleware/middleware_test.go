package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/models"
	"salonbook/utils"
)

type recorder struct{ seen []models.Caller }

func (r *recorder) Remember(_ context.Context, caller models.Caller) {
	r.seen = append(r.seen, caller)
}

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/", append(handlers, func(c *gin.Context) {
		caller, _ := GetCaller(c)
		c.JSON(http.StatusOK, gin.H{"userId": caller.UserID})
	})...)
	return r
}

func get(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, caller models.Caller) map[string]string {
	token, err := utils.GenerateToken(caller, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestJWTAuthMiddleware(t *testing.T) {
	rec := &recorder{}
	r := newRouter(JWTAuthMiddleware(rec))

	w := get(r, bearer(t, models.Caller{UserID: "A", Role: models.RoleClient, Name: "Alice"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"A"}`, w.Body.String())
	require.Len(t, rec.seen, 1)
	assert.Equal(t, "Alice", rec.seen[0].Name)

	assert.Equal(t, http.StatusUnauthorized, get(r, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, map[string]string{"Authorization": "Bearer junk"}).Code)
	// System identity cannot be claimed by a token.
	assert.Equal(t, http.StatusUnauthorized, get(r, bearer(t, models.Caller{UserID: "x", Role: models.RoleSystem})).Code)
}

func TestRequireRole(t *testing.T) {
	r := newRouter(JWTAuthMiddleware(nil), RequireRole(models.RoleMaster, models.RoleAdmin))

	assert.Equal(t, http.StatusForbidden, get(r, bearer(t, models.Caller{UserID: "A", Role: models.RoleClient})).Code)
	assert.Equal(t, http.StatusOK, get(r, bearer(t, models.Caller{UserID: "m", Role: models.RoleMaster, MasterID: "1"})).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimitMiddleware(2))
	hdr := map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}

	assert.Equal(t, http.StatusOK, get(r, hdr).Code)
	assert.Equal(t, http.StatusOK, get(r, hdr).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, hdr).Code)

	// Another client has its own budget.
	assert.Equal(t, http.StatusOK, get(r, map[string]string{"X-Forwarded-For": "10.0.0.9"}).Code)
}
