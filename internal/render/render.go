// Package render turns view states into HTML pages inside the site shell.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/Bitlatte/folio/internal/model"
	"github.com/Bitlatte/folio/internal/view"
)

//go:embed layouts
var layoutsFS embed.FS

// Page names.
const (
	PageList        = "list.html"
	PageDetail      = "detail.html"
	PageEmpty       = "empty.html"
	PageUnavailable = "unavailable.html"
)

const (
	baseLayout     = "base.html"
	redirectLayout = "redirect.html"
	defaultLayout  = "02/01/2006"

	defaultListTitle = "Posts"
)

// Options configure the shell chrome.
type Options struct {
	SiteTitle  string
	BaseURL    string
	DateLayout string
	Now        func() time.Time
}

// Renderer holds one parsed template set per page, each built on the shared
// base layout and partials.
type Renderer struct {
	opts     Options
	pages    map[string]*template.Template
	redirect *template.Template
	md       goldmark.Markdown
}

type pageData struct {
	model.PageData
	Posts []model.PostView
	Post  model.PostView
	Slug  string
}

// New parses the embedded layouts.
func New(opts Options) (*Renderer, error) {
	if opts.DateLayout == "" {
		opts.DateLayout = defaultLayout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	base, err := template.ParseFS(layoutsFS, "layouts/"+baseLayout, "layouts/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base.html and partials: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{PageList, PageDetail, PageEmpty, PageUnavailable} {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone base layout for %s: %w", name, err)
		}
		t, err := clone.ParseFS(layoutsFS, "layouts/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page layout %s: %w", name, err)
		}
		pages[name] = t
	}

	redirect, err := template.ParseFS(layoutsFS, "layouts/"+redirectLayout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", redirectLayout, err)
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithUnsafe()),
	)

	return &Renderer{opts: opts, pages: pages, redirect: redirect, md: md}, nil
}

// List renders the post list page for a settled list state. title is the
// route's page title; empty means "Posts".
func (r *Renderer) List(w io.Writer, title string, state view.ListState) error {
	if state.Status == view.StatusUnavailable {
		return r.execute(w, PageUnavailable, pageData{PageData: r.page("Indisponível")})
	}
	if title == "" {
		title = defaultListTitle
	}
	data := pageData{PageData: r.page(title)}
	for _, p := range state.Posts {
		pv, err := r.PostView(p)
		if err != nil {
			return err
		}
		data.Posts = append(data.Posts, pv)
	}
	return r.execute(w, PageList, data)
}

// Detail renders the detail page, the empty state, or the unavailable page.
func (r *Renderer) Detail(w io.Writer, state view.DetailState) error {
	switch state.Status {
	case view.StatusReady:
		pv, err := r.PostView(state.Post)
		if err != nil {
			return err
		}
		return r.execute(w, PageDetail, pageData{PageData: r.page(pv.Title), Post: pv})
	case view.StatusUnavailable:
		return r.execute(w, PageUnavailable, pageData{PageData: r.page("Indisponível"), Slug: state.Slug})
	default:
		return r.execute(w, PageEmpty, pageData{PageData: r.page("Post não encontrado"), Slug: state.Slug})
	}
}

// Redirect renders a static stand-in for an HTTP redirect.
func (r *Renderer) Redirect(w io.Writer, target string) error {
	if err := r.redirect.ExecuteTemplate(w, redirectLayout, struct{ Target string }{r.opts.BaseURL + target}); err != nil {
		return fmt.Errorf("failed to execute template '%s': %w", redirectLayout, err)
	}
	return nil
}

// PostView converts the body and formats the date.
func (r *Renderer) PostView(p model.Post) (model.PostView, error) {
	pv := model.PostView{Post: p}
	if p.PublishDate != nil {
		pv.Date = p.PublishDate.Format(r.opts.DateLayout)
	}
	if p.Format == model.FormatMarkdown {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(p.Content), &buf); err != nil {
			return pv, fmt.Errorf("failed to convert markdown for post %s: %w", p.ID, err)
		}
		pv.Body = template.HTML(buf.String())
	} else {
		pv.Body = template.HTML(p.Content)
	}
	return pv, nil
}

func (r *Renderer) page(title string) model.PageData {
	return model.PageData{
		SiteTitle: r.opts.SiteTitle,
		PageTitle: title,
		BaseURL:   r.opts.BaseURL,
		Year:      r.opts.Now().Year(),
	}
}

func (r *Renderer) execute(w io.Writer, page string, data pageData) error {
	if err := r.pages[page].ExecuteTemplate(w, baseLayout, data); err != nil {
		return fmt.Errorf("failed to execute template '%s': %w", page, err)
	}
	return nil
}
