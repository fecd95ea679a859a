package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fixlabtech/fixlab-technologies/internal/apperr"
	"github.com/fixlabtech/fixlab-technologies/internal/handlers"
	mw "github.com/fixlabtech/fixlab-technologies/internal/middleware"
	"github.com/fixlabtech/fixlab-technologies/internal/nav"
	"github.com/fixlabtech/fixlab-technologies/internal/observability"
	"github.com/fixlabtech/fixlab-technologies/internal/seo"
)

// templateSet holds the shared layout and partials plus one clone per page.
// Pages live in templates/pages and each defines "content".
type templateSet struct {
	dir      string
	reload   bool
	partials *template.Template
	pages    map[string]*template.Template
}

func newTemplateSet(dir string, reload bool) (*templateSet, error) {
	s := &templateSet{dir: dir, reload: reload}
	partials, pages, err := s.parse()
	if err != nil {
		return nil, err
	}
	s.partials, s.pages = partials, pages
	return s, nil
}

var funcMap = template.FuncMap{
	"now": time.Now,
}

func (s *templateSet) parse() (*template.Template, map[string]*template.Template, error) {
	// Everything outside pages/ is shared by every page.
	var shared, pages []string
	if err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmpl") {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) == "pages" {
			pages = append(pages, path)
		} else {
			shared = append(shared, path)
		}
		return nil
	}); err != nil {
		return nil, nil, err
	}
	if len(shared) == 0 || len(pages) == 0 {
		return nil, nil, fmt.Errorf("no templates found under %s", s.dir)
	}
	root, err := template.New("_root").Funcs(funcMap).ParseFiles(shared...)
	if err != nil {
		return nil, nil, err
	}
	out := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		clone, err := root.Clone()
		if err != nil {
			return nil, nil, err
		}
		if _, err := clone.ParseFiles(p); err != nil {
			return nil, nil, err
		}
		out[strings.TrimSuffix(filepath.Base(p), ".tmpl")] = clone
	}
	return root, out, nil
}

// lookup returns the template set for this request. With reload enabled,
// templates are reparsed on each call.
func (s *templateSet) lookup() (*template.Template, map[string]*template.Template, error) {
	if s.reload {
		return s.parse()
	}
	return s.partials, s.pages, nil
}

// renderPage executes the base layout around the named page.
func (a *app) renderPage(w http.ResponseWriter, r *http.Request, status int, page string, data handlers.PageData) {
	_, pages, err := a.templates.lookup()
	if err != nil {
		a.templateError(w, r, "template parse error", err)
		return
	}
	t, ok := pages[page]
	if !ok {
		a.templateError(w, r, "unknown page", fmt.Errorf("page %q", page))
		return
	}
	a.write(w, r, status, t, "base", data)
}

// renderTemplate executes a single shared template, typically an htmx fragment.
func (a *app) renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	partials, _, err := a.templates.lookup()
	if err != nil {
		a.templateError(w, r, "template parse error", err)
		return
	}
	a.write(w, r, status, partials, name, data)
}

func (a *app) write(w http.ResponseWriter, r *http.Request, status int, t *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		a.templateError(w, r, "template exec error", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (a *app) templateError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	observability.FromContext(r.Context()).Error(msg, zap.Error(err))
	http.Error(w, msg, http.StatusInternalServerError)
}

// page builds the layout fields shared by every page.
func (a *app) page(r *http.Request, title, description string) handlers.PageData {
	return handlers.PageData{
		Title:         title,
		SEO:           seo.Page(title, description, absoluteURL(r), ""),
		Analytics:     a.analytics,
		Path:          r.URL.Path,
		Nav:           nav.Build(r.URL.Path),
		Breadcrumbs:   nav.Breadcrumbs(r.URL.Path, ""),
		CSRFToken:     mw.CSRFToken(r),
		SearchTrigger: searchTrigger(a.cfg.UI.SearchDebounce),
	}
}

// searchTrigger fires on every input unless a debounce is configured. Enter
// submits the surrounding form instead.
func searchTrigger(debounce time.Duration) string {
	if debounce <= 0 {
		return "input changed"
	}
	return fmt.Sprintf("input changed delay:%dms", debounce.Milliseconds())
}

// absoluteURL rebuilds the request URL for canonical links.
func absoluteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// siteURL is the scheme and host of the request.
func siteURL(r *http.Request) string {
	return strings.TrimSuffix(absoluteURL(r), r.URL.RequestURI())
}

// statusFor maps an error kind to the response status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNone:
		return http.StatusOK
	case apperr.KindValidation, apperr.KindRejected:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
