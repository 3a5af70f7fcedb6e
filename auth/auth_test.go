package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"generalstuff/models"
)

type fakeAccounts map[uint]*models.Account

func (f fakeAccounts) AccountByID(_ context.Context, id uint) (*models.Account, error) {
	if a, ok := f[id]; ok {
		return a, nil
	}
	return nil, assert.AnError
}

func setupTestRouter(accounts fakeAccounts) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sessions.Sessions("test-session", cookie.NewStore([]byte("secret"))))
	router.Use(Load(accounts))

	router.GET("/login/:id", func(c *gin.Context) {
		account := accounts[1]
		if c.Param("id") == "2" {
			account = accounts[2]
		}
		if err := Login(c, account); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/logout", func(c *gin.Context) {
		_ = Logout(c)
		c.Status(http.StatusOK)
	})
	router.GET("/whoami", func(c *gin.Context) {
		id := Current(c)
		c.String(http.StatusOK, "%s|%t|%t", id.Username, id.Authenticated(), id.IsStaff())
	})
	return router
}

func request(router *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestLoad_Anonymous(t *testing.T) {
	router := setupTestRouter(fakeAccounts{})

	w := request(router, "/whoami", nil)

	assert.Equal(t, "|false|false", w.Body.String())
}

func TestLoginThenLoad(t *testing.T) {
	router := setupTestRouter(fakeAccounts{
		1: {ID: 1, Username: "admin", IsStaff: true},
		2: {ID: 2, Username: "ivan"},
	})

	login := request(router, "/login/1", nil)
	require.Equal(t, http.StatusOK, login.Code)

	w := request(router, "/whoami", login.Result().Cookies())
	assert.Equal(t, "admin|true|true", w.Body.String())

	member := request(router, "/login/2", nil)
	w = request(router, "/whoami", member.Result().Cookies())
	assert.Equal(t, "ivan|true|false", w.Body.String())
}

func TestLoad_StaleAccountIsDropped(t *testing.T) {
	accounts := fakeAccounts{1: {ID: 1, Username: "admin"}}
	router := setupTestRouter(accounts)
	login := request(router, "/login/1", nil)

	delete(accounts, 1)
	w := request(router, "/whoami", login.Result().Cookies())

	assert.Equal(t, "|false|false", w.Body.String())
}

func TestLogout(t *testing.T) {
	router := setupTestRouter(fakeAccounts{1: {ID: 1, Username: "admin"}})
	login := request(router, "/login/1", nil)

	logout := request(router, "/logout", login.Result().Cookies())
	w := request(router, "/whoami", logout.Result().Cookies())

	assert.Equal(t, "|false|false", w.Body.String())
}

func TestPredicates(t *testing.T) {
	anon := Identity{}
	member := Identity{AccountID: 2, Username: "ivan"}
	staff := Identity{AccountID: 1, Username: "admin", Staff: true}
	stale := Identity{Username: "ghost", Staff: true}

	assert.True(t, anon.Anonymous())
	assert.False(t, anon.Owns(""))
	assert.True(t, member.Authenticated())
	assert.False(t, member.IsStaff())
	assert.True(t, member.Owns("ivan"))
	assert.False(t, member.Owns("admin"))
	assert.True(t, staff.IsStaff())
	assert.False(t, stale.IsStaff())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", hash)
	assert.True(t, CheckPasswordHash("password123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
