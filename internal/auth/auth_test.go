package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube/internal/auth"
	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/db/dbtest"
	"github.com/yatube/yatube/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	user := &models.User{ID: 42, Username: "alice"}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestIssuer_Rejects(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice"}
	good := auth.NewIssuer("secret", time.Hour)

	forged, err := auth.NewIssuer("other", time.Hour).Issue(user)
	require.NoError(t, err)
	expired, err := auth.NewIssuer("secret", -time.Minute).Issue(user)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", forged},
		{"expired", expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := good.Parse(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestLoginRedirect(t *testing.T) {
	tests := []struct {
		loginURL string
		next     string
		want     string
	}{
		{"/auth/login/", "/create/", "/auth/login/?next=/create/"},
		{"/auth/login/", "/follow/?page=2", "/auth/login/?next=/follow/%3Fpage%3D2"},
		{"/login?src=app", "/create/", "/login?src=app&next=/create/"},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.LoginRedirect(tt.loginURL, tt.next))
		})
	}
}

func newRouter(t *testing.T) (*gin.Engine, *auth.Issuer, *db.DB) {
	t.Helper()
	d := dbtest.New(t)
	issuer := auth.NewIssuer("secret", time.Hour)

	r := gin.New()
	r.Use(auth.Middleware(issuer, db.NewUserRepository(db.NewRepository(d.DB))))
	r.GET("/whoami", func(c *gin.Context) {
		if u := auth.CurrentUser(c); u != nil {
			c.String(http.StatusOK, u.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/private/", auth.LoginRequired("/auth/login/"), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r, issuer, d
}

func TestMiddleware(t *testing.T) {
	r, issuer, d := newRouter(t)
	alice := dbtest.User(t, d, "alice")

	token, err := issuer.Issue(alice)
	require.NoError(t, err)
	stale, err := issuer.Issue(&models.User{ID: alice.ID, Username: "renamed"})
	require.NoError(t, err)
	ghost, err := issuer.Issue(&models.User{ID: 999, Username: "ghost"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"no token", "", "", "anonymous"},
		{"bearer", "Bearer " + token, "", "alice"},
		{"cookie", "", token, "alice"},
		{"bad scheme", "Basic " + token, "", "anonymous"},
		{"invalid", "Bearer nope", "", "anonymous"},
		{"username mismatch", "Bearer " + stale, "", "anonymous"},
		{"unknown user", "Bearer " + ghost, "", "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestLoginRequired(t *testing.T) {
	r, issuer, d := newRouter(t)
	alice := dbtest.User(t, d, "alice")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/private/", w.Header().Get("Location"))

	token, err := issuer.Issue(alice)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/private/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
