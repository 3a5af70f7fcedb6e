// Package views holds the HTML templates, embedded into the binary.
package views

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"

	"generalstuff/render"
)

//go:embed templates/*.html
var files embed.FS

// Parse builds the template set. Pages are addressed by file name, e.g.
// "home.html".
func Parse() (*template.Template, error) {
	funcs := render.Funcs()
	funcs["now"] = time.Now
	funcs["media"] = func(rel string) string {
		if rel == "" {
			return ""
		}
		return "/media/" + rel
	}
	funcs["fieldError"] = func(errs map[string]string, field string) string {
		return errs[field]
	}
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
}

// Install sets the template set as the router's HTML renderer.
func Install(router *gin.Engine) error {
	tmpl, err := Parse()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}
