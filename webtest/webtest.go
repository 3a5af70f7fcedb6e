// Package webtest wires an in-memory application for handler tests and
// drives it like a browser, carrying the session cookie between requests.
package webtest

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"generalstuff/auth"
	"generalstuff/database"
	"generalstuff/models"
	"generalstuff/store"
	"generalstuff/views"
)

const loginPath = "/test-login/"

// DB opens a private sqlite database in memory with every table migrated.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.All()...))
	return db
}

// Router builds an engine with sessions, identity loading and templates,
// then lets register mount the module under test.
func Router(t *testing.T, db *gorm.DB, register func(router *gin.Engine, st *store.Store)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.New(db)
	router := gin.New()
	router.Use(sessions.Sessions("test-session", cookie.NewStore([]byte("secret"))))
	router.Use(auth.Load(st))
	require.NoError(t, views.Install(router))

	router.GET(loginPath+":username", func(c *gin.Context) {
		account, err := st.AccountByUsername(c.Request.Context(), c.Param("username"))
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		if err := auth.Login(c, account); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})

	register(router, st)
	return router
}

// CreateAccount stores an account with an empty profile. The password is
// "password123".
func CreateAccount(t *testing.T, db *gorm.DB, username string, staff bool) *models.Account {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	account := &models.Account{Username: username, Email: username + "@example.com", PasswordHash: hash, IsStaff: staff}
	require.NoError(t, store.New(db).CreateAccountWithProfile(context.Background(), account))
	return account
}

// Client is safe for concurrent requests; they all share one session.
type Client struct {
	t       *testing.T
	router  *gin.Engine
	mu      sync.Mutex
	cookies map[string]*http.Cookie
}

func NewClient(t *testing.T, router *gin.Engine) *Client {
	return &Client{t: t, router: router, cookies: map[string]*http.Cookie{}}
}

func (c *Client) Do(req *http.Request) *httptest.ResponseRecorder {
	c.mu.Lock()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	c.mu.Unlock()

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *Client) Get(path string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(c.t, err)
	return c.Do(req)
}

func (c *Client) PostForm(path string, values url.Values) *httptest.ResponseRecorder {
	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

// File is an upload for PostMultipart.
type File struct {
	Field   string
	Name    string
	Content []byte
}

func (c *Client) PostMultipart(path string, values url.Values, files ...File) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, vals := range values {
		for _, v := range vals {
			require.NoError(c.t, mw.WriteField(key, v))
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.Field, f.Name)
		require.NoError(c.t, err)
		_, err = io.Copy(fw, bytes.NewReader(f.Content))
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, path, &body)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.Do(req)
}

// Follow requests the Location of a redirect response.
func (c *Client) Follow(w *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	c.t.Helper()
	location := w.Header().Get("Location")
	require.NotEmpty(c.t, location, "response is not a redirect")
	return c.Get(location)
}

// LoginAs binds the client session to username without a password.
func (c *Client) LoginAs(username string) {
	c.t.Helper()
	w := c.Get(loginPath + username)
	require.Equal(c.t, http.StatusNoContent, w.Code)
}
