package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/myrjola/jigsawroom/internal/contexthelpers"
	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/myrjola/jigsawroom/ui"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// newMarkdown renders challenge texts, persona texts and agent replies. Raw HTML in the source is omitted.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
}

// pageTemplate returns a template for the given page name.
//
// pageName corresponds to directory inside ui/templates/pages folder. It has to include a template named "page".
func (app *application) pageTemplate(pageName string) (*template.Template, error) {
	patterns := []string{
		"templates/base.gohtml",
		fmt.Sprintf("templates/pages/%s/*.gohtml", pageName),
	}

	// We need to initialize the FuncMap before parsing the files. These will be overridden in the render function.
	t, err := template.New(pageName).Funcs(template.FuncMap{
		"nonce": func() string {
			panic("not implemented")
		},
		"csrf": func() string {
			panic("not implemented")
		},
		"markdown": app.renderMarkdown,
	}).ParseFS(ui.Files, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "parse templates", slog.String("page", pageName))
	}
	return t, nil
}

func (app *application) renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := app.markdown.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source)) //nolint:gosec // escaped
	}
	return template.HTML(buf.String()) //nolint:gosec // goldmark omits raw HTML
}

// executeTemplate executes the template name of page pageName into w.
func (app *application) executeTemplate(w io.Writer, r *http.Request, pageName string, name string, data any) error {
	t, err := app.pageTemplate(pageName)
	if err != nil {
		return err
	}

	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>",
		template.HTMLEscapeString(contexthelpers.CSRFToken(ctx)))
	t.Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // we trust the nonce since it's not provided by user.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // escaped above.
		},
	})
	if err = t.ExecuteTemplate(w, name, data); err != nil {
		return errors.Wrap(err, "execute template", slog.String("page", pageName), slog.String("template", name))
	}
	return nil
}

// render writes the full page.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, pageName string, data any) {
	app.renderPartial(w, r, status, pageName, "base", data)
}

// renderPartial writes a single template of the page, typically as an htmx swap.
func (app *application) renderPartial(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	pageName string,
	name string,
	data any,
) {
	buf := new(bytes.Buffer)
	if err := app.executeTemplate(buf, r, pageName, name, data); err != nil {
		app.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	_, _ = buf.WriteTo(w)
}
