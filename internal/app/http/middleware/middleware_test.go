package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"signage-panel/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type loaderFunc func(ctx context.Context, id uint) (users.User, error)

func (f loaderFunc) GetUser(ctx context.Context, id uint) (users.User, error) {
	return f(ctx, id)
}

func staticUsers(list ...users.User) UserLoader {
	return loaderFunc(func(_ context.Context, id uint) (users.User, error) {
		for _, u := range list {
			if u.ID == id {
				return u, nil
			}
		}
		return users.User{}, users.ErrNotFound
	})
}

// whoami reports the attached user as "<id>:<role>" or "anonymous".
func whoami(c *gin.Context) {
	u := CurrentUser(c)
	if u == nil {
		c.String(http.StatusOK, "anonymous")
		return
	}
	c.String(http.StatusOK, "%d:%s", u.ID, u.Role)
}

func TestAttachUser(t *testing.T) {
	master := users.User{ID: 1, Role: users.RoleMaster, Active: true}
	disabled := users.User{ID: 2, Role: users.RoleGroupUser, Active: false}
	now := time.Now()

	r := gin.New()
	r.Use(AttachUser("secret", staticUsers(master, disabled)))
	r.GET("/", whoami)

	valid, err := IssueToken("secret", master, now)
	require.NoError(t, err)
	forged, err := IssueToken("other", master, now)
	require.NoError(t, err)
	expired, err := IssueToken("secret", master, now.Add(-2*TokenTTL))
	require.NoError(t, err)
	inactive, err := IssueToken("secret", disabled, now)
	require.NoError(t, err)

	cases := []struct {
		name  string
		setup func(*http.Request)
		want  string
	}{
		{name: "no token", setup: func(*http.Request) {}, want: "anonymous"},
		{name: "cookie", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AuthCookie, Value: valid}) }, want: "1:master"},
		{name: "bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) }, want: "1:master"},
		{name: "wrong secret", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+forged) }, want: "anonymous"},
		{name: "expired", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) }, want: "anonymous"},
		{name: "inactive user", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+inactive) }, want: "anonymous"},
		{name: "garbage", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, want: "anonymous"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.want, w.Body.String())
		})
	}
}

func TestIssueTokenClaims(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	raw, err := IssueToken("secret", users.User{ID: 7, Role: users.RoleGroupUser}, now)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	require.NoError(t, err)
	assert.Equal(t, float64(7), claims["user_id"])
	assert.Equal(t, users.RoleGroupUser, claims["role"])
	assert.Equal(t, float64(now.Add(TokenTTL).Unix()), claims["exp"])
}

func TestAuthAndRoleGuards(t *testing.T) {
	master := users.User{ID: 1, Role: users.RoleMaster, Active: true}
	member := users.User{ID: 2, Role: users.RoleGroupUser, Active: true}
	loader := staticUsers(master, member)

	r := gin.New()
	r.Use(AttachUser("secret", loader))
	r.GET("/auth", AuthMiddleware(), whoami)
	r.GET("/master", AuthMiddleware(), RequireRole(users.RoleMaster), whoami)

	request := func(path string, u *users.User) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if u != nil {
			tok, err := IssueToken("secret", *u, time.Now())
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, request("/auth", nil))
	assert.Equal(t, http.StatusOK, request("/auth", &member))
	assert.Equal(t, http.StatusUnauthorized, request("/master", nil))
	assert.Equal(t, http.StatusForbidden, request("/master", &member))
	assert.Equal(t, http.StatusOK, request("/master", &master))
}

func TestSanitizeStripsMarkupFromJSON(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/", func(c *gin.Context) {
		var body struct {
			Name  string            `json:"name"`
			Index int               `json:"index"`
			Order []int             `json:"order"`
			Tags  []string          `json:"tags"`
			Meta  map[string]string `json:"meta"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.JSON(http.StatusOK, body)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"<b>Promo</b>","index":2,"order":[3,1],"tags":["<i>a</i>"],"meta":{"k":"<u>v</u>"}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"name":"Promo","index":2,"order":[3,1],"tags":["a"],"meta":{"k":"v"}}`, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSanitizeIgnoresMultipart(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/", func(c *gin.Context) {
		raw, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(raw))
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("<b>raw</b>"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "<b>raw</b>", w.Body.String())
}

func TestLimitBody(t *testing.T) {
	r := gin.New()
	r.Use(LimitBody(8))
	r.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("much too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
