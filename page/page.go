// Package page turns workflow results into gin responses. A handler returns
// an Outcome (render or redirect, plus its feedback messages) instead of
// writing to the response itself.
package page

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"generalstuff/auth"
	"generalstuff/flash"
	"generalstuff/store"
)

// User-facing feedback shared by every workflow.
const (
	Forbidden             = "У вас недостаточно прав для открытия данного ресурса."
	AuthorizationRequired = "Этот контент требует авторизации."
	FormInvalid           = "Ошибка в передаваемых данных."
	NoURL                 = "Ресурс не существует!"
	InternalError         = "Что-то пошло не так, попробуйте позже."
)

const (
	HomeURL  = "/"
	LoginURL = "/login/"
)

type Outcome struct {
	Status   int
	Template string
	Data     gin.H
	Location string
	Messages flash.Messages
}

type Handler func(c *gin.Context) Outcome

func Render(template string, data gin.H) Outcome {
	return Outcome{Status: http.StatusOK, Template: template, Data: data}
}

func Redirect(location string) Outcome {
	return Outcome{Status: http.StatusFound, Location: location}
}

// Invalid re-renders a form with the entered data and the invalid-form
// warning.
func Invalid(template string, data gin.H) Outcome {
	return Render(template, data).WithStatus(http.StatusBadRequest).Warning(FormInvalid)
}

// Forbid is the response to a failed staff or ownership check.
func Forbid() Outcome {
	return Redirect(HomeURL).Warning(Forbidden)
}

// RequireLogin is the response to an anonymous request for members-only
// content.
func RequireLogin() Outcome {
	return Redirect(LoginURL).Warning(AuthorizationRequired)
}

// Fail maps a persistence error to feedback. Missing rows read as "no such
// resource"; anything else is logged and reported as an internal error.
func Fail(log *zap.Logger, err error) Outcome {
	if errors.Is(err, store.ErrNotFound) {
		return Redirect(HomeURL).Warning(NoURL)
	}
	log.Error("request failed", zap.Error(err))
	return Redirect(HomeURL).Warning(InternalError)
}

// Unavailable renders template in place with the internal-error warning. It
// serves pages that a failure redirect would lead straight back to.
func Unavailable(log *zap.Logger, err error, template string) Outcome {
	log.Error("page unavailable", zap.String("template", template), zap.Error(err))
	return Render(template, gin.H{}).WithStatus(http.StatusInternalServerError).Warning(InternalError)
}

func (o Outcome) WithStatus(status int) Outcome {
	o.Status = status
	return o
}

func (o Outcome) with(level flash.Level, text string) Outcome {
	msgs := make(flash.Messages, len(o.Messages), len(o.Messages)+1)
	copy(msgs, o.Messages)
	msgs.Add(level, text)
	o.Messages = msgs
	return o
}

func (o Outcome) Info(text string) Outcome    { return o.with(flash.Info, text) }
func (o Outcome) Success(text string) Outcome { return o.with(flash.Success, text) }
func (o Outcome) Warning(text string) Outcome { return o.with(flash.Warning, text) }

// Handle adapts h to gin. Redirect messages are kept in the session for the
// next page; rendered pages show pending messages followed by their own.
func Handle(h Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := h(c)

		if out.Location != "" {
			if err := flash.Keep(c, out.Messages); err != nil {
				_ = c.Error(err)
			}
			status := out.Status
			if status < 300 || status > 399 {
				status = http.StatusFound
			}
			c.Redirect(status, out.Location)
			return
		}

		data := gin.H{}
		for k, v := range out.Data {
			data[k] = v
		}
		data["messages"] = append(flash.Take(c), out.Messages...)
		data["identity"] = auth.Current(c)

		status := out.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.HTML(status, out.Template, data)
	}
}
