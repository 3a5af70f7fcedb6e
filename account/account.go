// Package account handles registration, login and the member profile pages.
package account

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"generalstuff/auth"
	"generalstuff/forms"
	"generalstuff/media"
	"generalstuff/middleware"
	"generalstuff/models"
	"generalstuff/page"
	"generalstuff/store"
)

const (
	AlreadyLoggedIn = "Вы уже в системе!"
	Goodbye         = "До скорой встречи :D"
	ProfileSaved    = "Профиль успешно изменен."
	BadCredentials  = "Неверное имя пользователя или пароль."
	UsernameTaken   = "Пользователь с таким именем уже существует."
)

func Welcome(username string) string {
	return fmt.Sprintf("Добро пожаловать, %s!", username)
}

func ProfileURL(username string) string {
	return "/users/" + username + "/"
}

type AccountModule struct {
	store   *store.Store
	media   *media.Storage
	log     *zap.Logger
	limiter *middleware.Limiter
}

func NewAccountModule(st *store.Store, storage *media.Storage, log *zap.Logger, limiter *middleware.Limiter) *AccountModule {
	return &AccountModule{store: st, media: storage, log: log, limiter: limiter}
}

func (a *AccountModule) RegisterRoutes(router *gin.Engine) {
	limited := a.limiter.Submissions()

	router.GET("/sign-up/", page.Handle(a.signUpPage))
	router.POST("/sign-up/", limited, page.Handle(a.signUp))
	router.GET("/login/", page.Handle(a.loginPage))
	router.POST("/login/", limited, page.Handle(a.login))
	router.GET("/logout/", page.Handle(a.logout))
	router.POST("/logout/", page.Handle(a.logout))

	router.GET("/users/:username/", page.Handle(a.profile))
	router.GET("/users/:username/update", page.Handle(a.profileUpdatePage))
	router.POST("/users/:username/update", page.Handle(a.profileUpdate))
}

func signUpData(form forms.Registration, errs forms.Errors) gin.H {
	// Passwords are never echoed back.
	form.Password1, form.Password2 = "", ""
	return gin.H{"title": "Регистрация", "form": form, "errors": errs}
}

func (a *AccountModule) signUpPage(c *gin.Context) page.Outcome {
	if auth.Current(c).Authenticated() {
		return page.Redirect(page.HomeURL).Warning(AlreadyLoggedIn)
	}
	return page.Render("sign_up.html", signUpData(forms.Registration{}, nil))
}

// signUp creates the account and its profile together, then logs the new
// member in.
func (a *AccountModule) signUp(c *gin.Context) page.Outcome {
	if auth.Current(c).Authenticated() {
		return page.Redirect(page.HomeURL).Warning(AlreadyLoggedIn)
	}

	var form forms.Registration
	if errs := forms.Bind(c, &form); errs != nil {
		return page.Invalid("sign_up.html", signUpData(form, errs))
	}

	ctx := c.Request.Context()
	taken, err := a.store.UsernameTaken(ctx, form.Username)
	if err != nil {
		return page.Fail(a.log, err)
	}
	if taken {
		return page.Invalid("sign_up.html", signUpData(form, forms.Errors{"username": UsernameTaken}))
	}

	hash, err := auth.HashPassword(form.Password1)
	if err != nil {
		return page.Fail(a.log, err)
	}

	account := &models.Account{Username: form.Username, Email: form.Email, PasswordHash: hash}
	if err := a.store.CreateAccountWithProfile(ctx, account); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return page.Invalid("sign_up.html", signUpData(form, forms.Errors{"username": UsernameTaken}))
		}
		return page.Fail(a.log, err)
	}

	if err := auth.Login(c, account); err != nil {
		return page.Fail(a.log, err)
	}

	a.log.Info("account created", zap.String("username", account.Username))
	return page.Redirect(page.HomeURL).Success(Welcome(account.Username))
}

func loginData(form forms.Login, errs forms.Errors) gin.H {
	form.Password = ""
	return gin.H{"title": "Вход", "form": form, "errors": errs}
}

func (a *AccountModule) loginPage(c *gin.Context) page.Outcome {
	if auth.Current(c).Authenticated() {
		return page.Redirect(page.HomeURL).Warning(AlreadyLoggedIn)
	}
	return page.Render("login.html", loginData(forms.Login{}, nil))
}

func (a *AccountModule) login(c *gin.Context) page.Outcome {
	if auth.Current(c).Authenticated() {
		return page.Redirect(page.HomeURL).Warning(AlreadyLoggedIn)
	}

	var form forms.Login
	if errs := forms.Bind(c, &form); errs != nil {
		return page.Invalid("login.html", loginData(form, errs))
	}

	account, err := a.store.AccountByUsername(c.Request.Context(), form.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return page.Fail(a.log, err)
	}
	if account == nil || !auth.CheckPasswordHash(form.Password, account.PasswordHash) {
		return page.Render("login.html", loginData(form, nil)).
			WithStatus(http.StatusUnauthorized).
			Warning(BadCredentials)
	}

	if err := auth.Login(c, account); err != nil {
		return page.Fail(a.log, err)
	}
	return page.Redirect(page.HomeURL).Success(Welcome(account.Username))
}

func (a *AccountModule) logout(c *gin.Context) page.Outcome {
	if err := auth.Logout(c); err != nil {
		return page.Fail(a.log, err)
	}
	return page.Redirect(page.LoginURL).Info(Goodbye)
}

func (a *AccountModule) profile(c *gin.Context) page.Outcome {
	if auth.Current(c).Anonymous() {
		return page.RequireLogin()
	}

	username := c.Param("username")
	account, err := a.store.AccountByUsername(c.Request.Context(), username)
	if err != nil {
		return page.Fail(a.log, err)
	}
	return page.Render("user_profile.html", gin.H{"title": username, "account": account})
}

// ownerGate admits only the member the profile belongs to.
func ownerGate(c *gin.Context, username string) (page.Outcome, bool) {
	identity := auth.Current(c)
	if identity.Anonymous() {
		return page.RequireLogin(), false
	}
	if !identity.Owns(username) {
		return page.Forbid(), false
	}
	return page.Outcome{}, true
}

func profileUpdateData(username string, accountForm forms.AccountUpdate, profileForm forms.ProfileUpdate, errs forms.Errors, avatar string) gin.H {
	return gin.H{
		"title":        username,
		"username":     username,
		"account_form": accountForm,
		"profile_form": profileForm,
		"errors":       errs,
		"avatar":       avatar,
	}
}

func (a *AccountModule) profileUpdatePage(c *gin.Context) page.Outcome {
	username := c.Param("username")
	if out, ok := ownerGate(c, username); !ok {
		return out
	}

	account, err := a.store.AccountByUsername(c.Request.Context(), username)
	if err != nil {
		return page.Fail(a.log, err)
	}
	accountForm := forms.AccountUpdate{Email: account.Email, FirstName: account.FirstName, LastName: account.LastName}
	profileForm := forms.ProfileUpdate{PhoneNumber: account.Profile.PhoneNumber, Bio: account.Profile.Bio, Status: account.Profile.Status}
	return page.Render("user_profile_update.html", profileUpdateData(username, accountForm, profileForm, nil, account.Profile.Avatar))
}

// profileUpdate validates both sub-forms before touching either row, then
// saves them in one transaction.
func (a *AccountModule) profileUpdate(c *gin.Context) page.Outcome {
	username := c.Param("username")
	if out, ok := ownerGate(c, username); !ok {
		return out
	}

	ctx := c.Request.Context()
	account, err := a.store.AccountByUsername(ctx, username)
	if err != nil {
		return page.Fail(a.log, err)
	}
	profile := account.Profile

	var accountForm forms.AccountUpdate
	var profileForm forms.ProfileUpdate
	errs := forms.Errors{}
	for field, msg := range forms.Bind(c, &accountForm) {
		errs.Add(field, msg)
	}
	for field, msg := range forms.Bind(c, &profileForm) {
		errs.Add(field, msg)
	}

	// The avatar is only stored once the text fields are valid.
	var avatar string
	if len(errs) == 0 {
		avatar, err = a.media.FromRequest(c, "avatar", media.AvatarsDir)
		if err != nil {
			msg, ok := media.UserMessage(err)
			if !ok {
				return page.Fail(a.log, err)
			}
			errs.Add("avatar", msg)
		}
	}

	if len(errs) > 0 {
		return page.Invalid("user_profile_update.html", profileUpdateData(username, accountForm, profileForm, errs, profile.Avatar))
	}

	account.Email = accountForm.Email
	account.FirstName = accountForm.FirstName
	account.LastName = accountForm.LastName
	profile.PhoneNumber = profileForm.PhoneNumber
	profile.Bio = profileForm.Bio
	profile.Status = profileForm.Status
	if avatar != "" {
		profile.Avatar = avatar
	}

	if err := a.store.UpdateAccountAndProfile(ctx, account, profile); err != nil {
		return page.Fail(a.log, err)
	}
	return page.Redirect(ProfileURL(username)).Success(ProfileSaved)
}
