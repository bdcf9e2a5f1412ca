// Package handler contains the HTTP request handlers for the blog.
//
// Handlers are the glue between HTTP and the services: they parse form
// fields, call the service layer, and either redirect or render a template.
// Business rules live in internal/service; handlers never touch the
// database.
package handler

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/manelromero/blog/internal/apperror"
	"github.com/manelromero/blog/internal/auth"
)

// baseData seeds the template data every page needs: the session user (or
// nothing, for anonymous requests). Page handlers add their own fields on
// top.
func baseData(r *http.Request) map[string]any {
	data := map[string]any{}
	if user, ok := auth.UserFromContext(r.Context()); ok {
		data["User"] = user
	}
	return data
}

// pageFiles lists every page template. Each is parsed together with
// base.html so its {{define "content"}} block fills the layout's
// placeholder — Go's template composition model.
var pageFiles = []string{
	"home.html",
	"permalink.html",
	"signup.html",
	"login.html",
	"new-post.html",
	"edit-post.html",
	"delete-post.html",
	"not-found.html",
	"server-error.html",
}

// Renderer holds the parsed templates so we don't re-parse on every request.
//
// Each page gets its own *template.Template (a clone of base + that page)
// because every page defines a "content" block — parsing them all into one
// set would make each page clobber the previous one's block.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses all templates from templateDir.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"linebreaks": linebreaks,
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, page := range pageFiles {
		tmpl, err := template.New("base.html").Funcs(funcs).ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, page),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		pages[page] = tmpl
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Render executes a page template with the given status and data.
func (rn *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := rn.pages[page]
	if !ok {
		rn.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Headers before body — once the template starts writing, the status
	// line is gone.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		rn.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}

// NotFound renders the 404 page. Used both as the router's fallback and for
// unknown ids in paths.
func (rn *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rn.Render(w, http.StatusNotFound, "not-found.html", baseData(r))
}

// Error maps a domain error from the service layer to a browser response.
//
//	not found       → 404 page
//	forbidden       → silent redirect home, the action simply has no effect
//	conflict        → same — e.g. a second vote on the same post
//	unauthorized    → redirect to the login form
//	anything else   → 500 page, details only in the log
func (rn *Renderer) Error(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		rn.NotFound(w, r)
	case errors.Is(err, apperror.ErrForbidden), errors.Is(err, apperror.ErrConflict):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, apperror.ErrUnauthorized):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	default:
		rn.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		rn.Render(w, http.StatusInternalServerError, "server-error.html", baseData(r))
	}
}

// linebreaks converts stored raw text to HTML with newlines as <br>.
//
// The text is escaped FIRST, then the breaks are inserted, so user content
// can never smuggle markup — only the <br> tags we add survive as HTML.
// This is the presentation transform; the stored content keeps its \n.
func linebreaks(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
