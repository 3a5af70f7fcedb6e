// Package forms declares the request forms and turns validation failures
// into per-field messages for re-rendering.
package forms

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type Registration struct {
	Email     string `form:"email" binding:"required,email,max=254"`
	Username  string `form:"username" binding:"required,max=150,username"`
	Password1 string `form:"password1" binding:"required,min=8,max=128"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

type Login struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// Post backs both the create and the update form. The image arrives as a
// separate multipart file.
type Post struct {
	Title       string `form:"title" binding:"required,max=50"`
	Text        string `form:"text" binding:"required"`
	IsPublished bool   `form:"is_published"`
}

type Tagline struct {
	Title string `form:"title" binding:"required,max=255"`
	Text  string `form:"text" binding:"required,max=255"`
}

type AccountUpdate struct {
	Email     string `form:"email" binding:"omitempty,email,max=254"`
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
}

type ProfileUpdate struct {
	PhoneNumber string `form:"phone_number" binding:"omitempty,e164"`
	Bio         string `form:"bio"`
	Status      string `form:"status" binding:"max=60"`
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}

// Errors maps a form field name to its message. The empty key holds errors
// not tied to a field.
type Errors map[string]string

func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// Bind fills form from the request body and validates it. It returns nil when
// the form is valid.
func Bind(c *gin.Context, form any) Errors {
	err := c.ShouldBindWith(form, binding.Form)
	if err == nil {
		return nil
	}
	return FromError(err)
}

func FromError(err error) Errors {
	errs := Errors{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("", "Некорректные данные формы.")
		return errs
	}

	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Обязательное поле."
	case "max":
		return "Не более " + fe.Param() + " символов."
	case "min":
		return "Не менее " + fe.Param() + " символов."
	case "email":
		return "Введите правильный адрес электронной почты."
	case "e164":
		return "Введите корректный номер телефона, например +79991234567."
	case "eqfield":
		return "Пароли не совпадают."
	case "username":
		return "Допустимы только буквы, цифры и символы @/./+/-/_."
	default:
		return "Некорректное значение."
	}
}
