package site

import (
	"context"
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"generalstuff/auth"
	"generalstuff/forms"
	"generalstuff/models"
	"generalstuff/page"
	"generalstuff/store"
)

const (
	defaultTaglineTitle = "Заголовок"
	defaultTaglineText  = "Текст"

	TaglineSaved = "Да здравствует новое слово!"
)

type SiteModule struct {
	store   *store.Store
	log     *zap.Logger
	baseURL string
}

func NewSiteModule(st *store.Store, log *zap.Logger, baseURL string) *SiteModule {
	return &SiteModule{store: st, log: log, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *SiteModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", page.Handle(s.index))
	router.GET("/about/", page.Handle(s.about))
	router.GET("/tagline/", page.Handle(s.taglineForm))
	router.POST("/tagline/", page.Handle(s.saveTagline))
	router.GET("/sitemap.xml", s.sitemap)
}

// Sidebar loads the tagline and the dream team shown next to post lists.
// A missing tagline is left out.
func Sidebar(ctx context.Context, st *store.Store) (gin.H, error) {
	tagline, _, err := st.Tagline(ctx)
	if err != nil {
		return nil, err
	}
	team, err := st.DreamTeam(ctx)
	if err != nil {
		return nil, err
	}
	return gin.H{"tagline": tagline, "dream_team": team}, nil
}

func (s *SiteModule) index(c *gin.Context) page.Outcome {
	if term := c.Query("q"); term != "" {
		return s.search(c, term)
	}

	ctx := c.Request.Context()
	posts, err := s.store.PublishedPosts(ctx)
	if err != nil {
		return page.Unavailable(s.log, err, "home.html")
	}
	data, err := Sidebar(ctx, s.store)
	if err != nil {
		return page.Unavailable(s.log, err, "home.html")
	}
	data["posts"] = posts
	return page.Render("home.html", data)
}

// search matches every post, published or not, and is open to anonymous
// visitors, so drafts are findable before they are published. It always
// renders the results, even when there are none.
func (s *SiteModule) search(c *gin.Context, term string) page.Outcome {
	posts, err := s.store.SearchPosts(c.Request.Context(), term)
	if err != nil {
		return page.Unavailable(s.log, err, "posts.html")
	}
	return page.Render("posts.html", gin.H{
		"title":       term,
		"posts":       posts,
		"search_term": term,
	}).Info(FoundMessage(len(posts)))
}

func (s *SiteModule) about(c *gin.Context) page.Outcome {
	return page.Render("about.html", gin.H{"title": "О нас"})
}

func (s *SiteModule) taglineForm(c *gin.Context) page.Outcome {
	if !auth.Current(c).IsStaff() {
		return page.Forbid()
	}

	tagline, found, err := s.store.Tagline(c.Request.Context())
	if err != nil {
		return page.Fail(s.log, err)
	}

	form := forms.Tagline{Title: defaultTaglineTitle, Text: defaultTaglineText}
	if found {
		form = forms.Tagline{Title: tagline.Title, Text: tagline.Text}
	}
	return page.Render("tagline.html", gin.H{"title": "Слоган", "form": form, "errors": forms.Errors(nil)})
}

// saveTagline overwrites the canonical tagline, creating it on first use. A
// failed lookup is reported, never mistaken for a missing row.
func (s *SiteModule) saveTagline(c *gin.Context) page.Outcome {
	if !auth.Current(c).IsStaff() {
		return page.Forbid()
	}

	var form forms.Tagline
	if errs := forms.Bind(c, &form); errs != nil {
		return page.Invalid("tagline.html", gin.H{"title": "Слоган", "form": form, "errors": errs})
	}

	ctx := c.Request.Context()
	tagline, found, err := s.store.Tagline(ctx)
	if err != nil {
		return page.Fail(s.log, err)
	}
	if !found {
		tagline = &models.Tagline{}
	}
	tagline.Title = form.Title
	tagline.Text = form.Text

	if err := s.store.SaveTagline(ctx, tagline); err != nil {
		return page.Fail(s.log, err)
	}
	return page.Redirect(page.HomeURL).Success(TaglineSaved)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (s *SiteModule) sitemap(c *gin.Context) {
	posts, err := s.store.PublishedPosts(c.Request.Context())
	if err != nil {
		s.log.Error("building sitemap", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}

	set := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: s.baseURL + "/", ChangeFreq: "daily", Priority: "1.0"},
			{Loc: s.baseURL + "/about/", ChangeFreq: "monthly", Priority: "0.5"},
		},
	}
	for _, post := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.baseURL + "/posts/" + post.Slug + "/",
			LastMod:    post.UpdatedAt.Format(time.RFC3339),
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		s.log.Error("encoding sitemap", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
