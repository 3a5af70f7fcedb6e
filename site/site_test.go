package site

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"generalstuff/models"
	"generalstuff/page"
	"generalstuff/store"
	"generalstuff/webtest"
)

func setupTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	return webtest.Router(t, db, func(router *gin.Engine, st *store.Store) {
		NewSiteModule(st, zap.NewNop(), "http://example.com/").RegisterRoutes(router)
	})
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.Account, title, slug, text string, published bool) *models.Post {
	post := &models.Post{Title: title, Slug: slug, Text: text, IsPublished: published, AuthorID: author.ID}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestFoundMessage(t *testing.T) {
	cases := map[int]string{
		0:   "Найдено 0 постов!",
		1:   "Найден 1 пост!",
		2:   "Найдено 2 поста!",
		4:   "Найдено 4 поста!",
		5:   "Найдено 5 постов!",
		11:  "Найдено 11 постов!",
		12:  "Найдено 12 постов!",
		21:  "Найден 21 пост!",
		22:  "Найдено 22 поста!",
		111: "Найдено 111 постов!",
	}
	for n, want := range cases {
		assert.Equal(t, want, FoundMessage(n), "n=%d", n)
	}
}

func TestIndex_PublishedPostsOnly(t *testing.T) {
	db := webtest.DB(t)
	author := webtest.CreateAccount(t, db, "admin", true)
	createTestPost(t, db, author, "Видимый", "vidimyy", "текст", true)
	createTestPost(t, db, author, "Черновик", "chernovik", "текст", false)
	client := webtest.NewClient(t, setupTestRouter(t, db))

	w := client.Get("/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Видимый")
	assert.NotContains(t, w.Body.String(), "Черновик")
}

func TestIndex_ShowsTaglineAndDreamTeam(t *testing.T) {
	db := webtest.DB(t)
	ivan := webtest.CreateAccount(t, db, "ivan", false)
	require.NoError(t, db.Model(&models.Profile{}).Where("account_id = ?", ivan.ID).Update("dream_team", true).Error)
	require.NoError(t, db.Create(&models.Tagline{Title: "Девиз", Text: "Пиши каждый день"}).Error)
	client := webtest.NewClient(t, setupTestRouter(t, db))

	w := client.Get("/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Пиши каждый день")
	assert.Contains(t, w.Body.String(), "/users/ivan/")
}

func TestIndex_WithoutTagline(t *testing.T) {
	db := webtest.DB(t)
	client := webtest.NewClient(t, setupTestRouter(t, db))

	w := client.Get("/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `class="tagline"`)
}

func TestIndex_BrokenDatabaseRendersError(t *testing.T) {
	db := webtest.DB(t)
	client := webtest.NewClient(t, setupTestRouter(t, db))
	require.NoError(t, db.Migrator().DropTable(&models.Post{}))

	w := client.Get("/")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), page.InternalError)
}

func TestSearch_TitleOrTextCaseInsensitive(t *testing.T) {
	db := webtest.DB(t)
	author := webtest.CreateAccount(t, db, "admin", true)
	createTestPost(t, db, author, "Кошки", "koshki", "про котов", true)
	createTestPost(t, db, author, "Собаки", "sobaki", "и немного КОШЕК тоже", false)
	createTestPost(t, db, author, "Птицы", "ptitsy", "ничего общего", true)
	client := webtest.NewClient(t, setupTestRouter(t, db))

	w := client.Get("/?q=" + url.QueryEscape("кош"))

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "Найдено 2 поста!")
	assert.Contains(t, body, "Кошки")
	assert.Contains(t, body, "Собаки")
	assert.NotContains(t, body, "Птицы")
}

func TestSearch_SingleResult(t *testing.T) {
	db := webtest.DB(t)
	author := webtest.CreateAccount(t, db, "admin", true)
	createTestPost(t, db, author, "Единственный", "edinstvennyy", "текст", true)
	client := webtest.NewClient(t, setupTestRouter(t, db))

	w := client.Get("/?q=" + url.QueryEscape("единств"))

	assert.Contains(t, w.Body.String(), "Найден 1 пост!")
}

func TestSearch_NoResultsRendersEmptyList(t *testing.T) {
	db := webtest.DB(t)
	client := webtest.NewClient(t, setupTestRouter(t, db))

	w := client.Get("/?q=nothing")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Найдено 0 постов!")
	assert.Contains(t, w.Body.String(), "Постов пока нет.")
}

func TestAbout(t *testing.T) {
	db := webtest.DB(t)
	client := webtest.NewClient(t, setupTestRouter(t, db))

	w := client.Get("/about/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "О нас")
}

func TestTagline_ForbiddenForNonStaff(t *testing.T) {
	db := webtest.DB(t)
	webtest.CreateAccount(t, db, "ivan", false)
	client := webtest.NewClient(t, setupTestRouter(t, db))
	client.LoginAs("ivan")

	w := client.Get("/tagline/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, page.HomeURL, w.Header().Get("Location"))
	assert.Contains(t, client.Follow(w).Body.String(), page.Forbidden)

	w = client.PostForm("/tagline/", url.Values{"title": {"x"}, "text": {"y"}})
	assert.Equal(t, http.StatusFound, w.Code)

	var count int64
	db.Model(&models.Tagline{}).Count(&count)
	assert.Zero(t, count)
}

func TestTagline_FormDefaultsWhenAbsent(t *testing.T) {
	db := webtest.DB(t)
	webtest.CreateAccount(t, db, "admin", true)
	client := webtest.NewClient(t, setupTestRouter(t, db))
	client.LoginAs("admin")

	w := client.Get("/tagline/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Заголовок"`)
}

func TestTagline_CreateThenUpdate(t *testing.T) {
	db := webtest.DB(t)
	webtest.CreateAccount(t, db, "admin", true)
	client := webtest.NewClient(t, setupTestRouter(t, db))
	client.LoginAs("admin")

	w := client.PostForm("/tagline/", url.Values{"title": {"Первый"}, "text": {"Один"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, client.Follow(w).Body.String(), TaglineSaved)

	w = client.PostForm("/tagline/", url.Values{"title": {"Второй"}, "text": {"Два"}})
	require.Equal(t, http.StatusFound, w.Code)

	var taglines []models.Tagline
	require.NoError(t, db.Find(&taglines).Error)
	require.Len(t, taglines, 1)
	assert.Equal(t, "Второй", taglines[0].Title)
	assert.Equal(t, "Два", taglines[0].Text)
}

func TestTagline_InvalidFormKeepsInput(t *testing.T) {
	db := webtest.DB(t)
	webtest.CreateAccount(t, db, "admin", true)
	client := webtest.NewClient(t, setupTestRouter(t, db))
	client.LoginAs("admin")

	w := client.PostForm("/tagline/", url.Values{"title": {"Оставить"}, "text": {""}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), page.FormInvalid)
	assert.Contains(t, w.Body.String(), `value="Оставить"`)
}

func TestTagline_LookupFailureIsNotAbsence(t *testing.T) {
	db := webtest.DB(t)
	webtest.CreateAccount(t, db, "admin", true)
	client := webtest.NewClient(t, setupTestRouter(t, db))
	client.LoginAs("admin")
	require.NoError(t, db.Migrator().DropTable(&models.Tagline{}))

	w := client.PostForm("/tagline/", url.Values{"title": {"Новый"}, "text": {"Текст"}})

	require.Equal(t, http.StatusFound, w.Code)
	body := client.Follow(w).Body.String()
	assert.Contains(t, body, page.InternalError)
	assert.NotContains(t, body, TaglineSaved)

	_, found, err := store.New(db).Tagline(context.Background())
	assert.Error(t, err)
	assert.False(t, found)
}

func TestSitemap(t *testing.T) {
	db := webtest.DB(t)
	author := webtest.CreateAccount(t, db, "admin", true)
	createTestPost(t, db, author, "Открытый", "otkrytyy", "текст", true)
	createTestPost(t, db, author, "Скрытый", "skrytyy", "текст", false)
	client := webtest.NewClient(t, setupTestRouter(t, db))

	w := client.Get("/sitemap.xml")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, w.Body.String(), "<loc>http://example.com/posts/otkrytyy/</loc>")
	assert.NotContains(t, w.Body.String(), "skrytyy")
}
