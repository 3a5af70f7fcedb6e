package blog

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"generalstuff/auth"
	"generalstuff/forms"
	"generalstuff/media"
	"generalstuff/models"
	"generalstuff/page"
	"generalstuff/site"
	"generalstuff/slug"
	"generalstuff/store"
)

const (
	PostCreated = "Пост успешно создан!"
	PostSaved   = "Статья успешно сохранена."
	PostDeleted = "Пост был успешно удален."

	// Stored titles stay one rune under the form limit.
	maxTitleRunes = 49

	postsURL = "/posts/"
)

type BlogModule struct {
	store     *store.Store
	media     *media.Storage
	log       *zap.Logger
	slugTaken slug.Taken
}

func NewBlogModule(st *store.Store, storage *media.Storage, log *zap.Logger) *BlogModule {
	return &BlogModule{store: st, media: storage, log: log, slugTaken: st.SlugTaken}
}

func (b *BlogModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/posts/", page.Handle(b.list))
	router.GET("/posts/:slug/", page.Handle(b.detail))

	router.GET("/post-create/", page.Handle(b.createForm))
	router.POST("/post-create/", page.Handle(b.create))

	router.GET("/post-update/:slug/", page.Handle(b.updateForm))
	router.POST("/post-update/:slug/", page.Handle(b.update))

	// /post-delete/:slug/confirm/ shows the confirmation page,
	// /post-delete/:slug/:confirm deletes.
	router.GET("/post-delete/:slug/*action", page.Handle(b.deleteAction))
}

func PostURL(slug string) string {
	return postsURL + slug + "/"
}

func (b *BlogModule) list(c *gin.Context) page.Outcome {
	if !auth.Current(c).IsStaff() {
		return page.Forbid()
	}

	ctx := c.Request.Context()
	posts, err := b.store.AllPosts(ctx)
	if err != nil {
		return page.Fail(b.log, err)
	}
	data, err := site.Sidebar(ctx, b.store)
	if err != nil {
		return page.Fail(b.log, err)
	}
	data["title"] = "Все посты"
	data["posts"] = posts
	return page.Render("posts.html", data)
}

func (b *BlogModule) detail(c *gin.Context) page.Outcome {
	if auth.Current(c).Anonymous() {
		return page.RequireLogin()
	}

	ctx := c.Request.Context()
	post, err := b.store.PostBySlug(ctx, c.Param("slug"))
	if err != nil {
		return page.Fail(b.log, err)
	}
	comments, err := b.store.CommentsFor(ctx, post.ID)
	if err != nil {
		return page.Fail(b.log, err)
	}
	data, err := site.Sidebar(ctx, b.store)
	if err != nil {
		return page.Fail(b.log, err)
	}

	data["title"] = post.Slug
	data["post"] = post
	data["comments"] = comments
	return page.Render("post_detail.html", data)
}

func formData(heading, action string, form forms.Post, errs forms.Errors, image string) gin.H {
	return gin.H{
		"title":   heading,
		"heading": heading,
		"action":  action,
		"form":    form,
		"errors":  errs,
		"image":   image,
	}
}

func (b *BlogModule) createForm(c *gin.Context) page.Outcome {
	if !auth.Current(c).IsStaff() {
		return page.Forbid()
	}
	return page.Render("post_form.html", formData("Новый пост", "/post-create/", forms.Post{}, nil, ""))
}

func (b *BlogModule) create(c *gin.Context) page.Outcome {
	identity := auth.Current(c)
	if !identity.IsStaff() {
		return page.Forbid()
	}

	var form forms.Post
	if errs := forms.Bind(c, &form); errs != nil {
		return page.Invalid("post_form.html", formData("Новый пост", "/post-create/", form, errs, ""))
	}

	image, err := b.media.FromRequest(c, "image", media.PostImagesDir)
	if err != nil {
		if msg, ok := media.UserMessage(err); ok {
			errs := forms.Errors{"image": msg}
			return page.Invalid("post_form.html", formData("Новый пост", "/post-create/", form, errs, ""))
		}
		return page.Fail(b.log, err)
	}

	ctx := c.Request.Context()
	title := truncate(strings.TrimSpace(form.Title), maxTitleRunes)
	postSlug, err := slug.Unique(ctx, title, b.slugTaken)
	if err != nil {
		return page.Fail(b.log, err)
	}

	post := &models.Post{
		Title:       title,
		Slug:        postSlug,
		Text:        form.Text,
		Image:       image,
		IsPublished: form.IsPublished,
		AuthorID:    identity.AccountID,
	}
	err = b.store.CreatePost(ctx, post)
	if errors.Is(err, store.ErrDuplicateSlug) {
		// Another request took the slug between the check and the insert.
		post.Slug = slug.WithSuffix(postSlug)
		err = b.store.CreatePost(ctx, post)
	}
	if err != nil {
		return page.Fail(b.log, err)
	}

	b.log.Info("post created", zap.String("slug", post.Slug), zap.String("author", identity.Username))
	return page.Redirect(page.HomeURL).Success(PostCreated)
}

func (b *BlogModule) updateForm(c *gin.Context) page.Outcome {
	if !auth.Current(c).IsStaff() {
		return page.Forbid()
	}

	post, err := b.store.PostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		return page.Fail(b.log, err)
	}
	form := forms.Post{Title: post.Title, Text: post.Text, IsPublished: post.IsPublished}
	return page.Render("post_form.html", formData("Редактирование", updateURL(post.Slug), form, nil, post.Image))
}

// update keeps the slug so existing links stay valid.
func (b *BlogModule) update(c *gin.Context) page.Outcome {
	if !auth.Current(c).IsStaff() {
		return page.Forbid()
	}

	ctx := c.Request.Context()
	post, err := b.store.PostBySlug(ctx, c.Param("slug"))
	if err != nil {
		return page.Fail(b.log, err)
	}

	var form forms.Post
	if errs := forms.Bind(c, &form); errs != nil {
		return page.Invalid("post_form.html", formData("Редактирование", updateURL(post.Slug), form, errs, post.Image))
	}

	image, err := b.media.FromRequest(c, "image", media.PostImagesDir)
	if err != nil {
		if msg, ok := media.UserMessage(err); ok {
			errs := forms.Errors{"image": msg}
			return page.Invalid("post_form.html", formData("Редактирование", updateURL(post.Slug), form, errs, post.Image))
		}
		return page.Fail(b.log, err)
	}
	if image != "" {
		post.Image = image
	}

	post.Title = form.Title
	post.Text = form.Text
	post.IsPublished = form.IsPublished
	if err := b.store.SavePost(ctx, post); err != nil {
		return page.Fail(b.log, err)
	}
	return page.Redirect(PostURL(post.Slug)).Success(PostSaved)
}

func (b *BlogModule) deleteAction(c *gin.Context) page.Outcome {
	action := strings.Trim(c.Param("action"), "/")
	if action == "confirm" {
		return b.confirmDelete(c)
	}
	return b.delete(c, action)
}

func (b *BlogModule) confirmDelete(c *gin.Context) page.Outcome {
	if !auth.Current(c).IsStaff() {
		return page.Forbid()
	}

	post, err := b.store.PostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		return page.Fail(b.log, err)
	}
	return page.Render("confirm_post_deletion.html", gin.H{"title": post.Title, "post": post})
}

// delete removes the post only for staff and a non-zero confirmation flag.
// Non-staff are refused before the post is looked up.
func (b *BlogModule) delete(c *gin.Context, confirm string) page.Outcome {
	if !auth.Current(c).IsStaff() {
		return page.Forbid()
	}
	if !confirmed(confirm) {
		return page.Redirect(page.HomeURL).Warning(page.FormInvalid)
	}

	ctx := c.Request.Context()
	post, err := b.store.PostBySlug(ctx, c.Param("slug"))
	if err != nil {
		return page.Fail(b.log, err)
	}
	if err := b.store.DeletePost(ctx, post); err != nil {
		return page.Fail(b.log, err)
	}

	b.log.Info("post deleted", zap.String("slug", post.Slug), zap.String("by", auth.Current(c).Username))
	return page.Redirect(postsURL).Success(PostDeleted)
}

func confirmed(flag string) bool {
	n, err := strconv.Atoi(flag)
	return err == nil && n != 0
}

func updateURL(slug string) string {
	return "/post-update/" + slug + "/"
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
