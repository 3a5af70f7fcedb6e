// Package render turns post bodies written in markdown into safe HTML.
package render

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithUnsafe(),
	),
)

// Raw HTML is allowed through goldmark and cleaned up here instead.
var policy = bluemonday.UGCPolicy()

func Markdown(content string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}

// Excerpt returns at most n runes of content followed by an ellipsis when
// it was cut.
func Excerpt(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "…"
}

// Funcs are the template helpers every page can use.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": Markdown,
		"excerpt":  Excerpt,
	}
}
