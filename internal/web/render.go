package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/caminemosjuntos/counseling/internal/auth"
	"github.com/caminemosjuntos/counseling/pkg"

	"github.com/gorilla/csrf"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutTemplate = "templates/layout.html"

// View is what every page template receives; page specific data lives in Data
type View struct {
	SiteName  string
	Title     string
	User      *auth.Identity
	Flashes   []string
	CSRFField template.HTML
	Year      int
	Data      any
}

type flashStore interface {
	AddFlash(w http.ResponseWriter, r *http.Request, message string)
	Flashes(w http.ResponseWriter, r *http.Request) []string
}

type Renderer struct {
	pages    map[string]*template.Template
	flashes  flashStore
	siteName string
}

func NewRenderer(flashes flashStore, siteName string) (*Renderer, error) {
	pageFiles, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, pageFile := range pageFiles {
		if pageFile == layoutTemplate {
			continue
		}

		name := strings.TrimSuffix(strings.TrimPrefix(pageFile, "templates/"), ".html")
		tmpl, err := template.New("layout.html").
			Funcs(funcMap()).
			ParseFS(templatesFS, layoutTemplate, pageFile)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	log.Debugf("renderer: %d page templates loaded", len(pages))

	return &Renderer{
		pages:    pages,
		flashes:  flashes,
		siteName: siteName,
	}, nil
}

func (rn *Renderer) HasPage(page string) bool {
	_, ok := rn.pages[page]
	return ok
}

// Render executes the page into a buffer first, so a template error never leaves a half written page
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	tmpl, ok := rn.pages[page]
	if !ok {
		log.Errorf("render: unknown page [%s]", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	view := View{
		SiteName:  rn.siteName,
		Title:     title,
		User:      auth.IdentityFromContext(r.Context()),
		Flashes:   rn.flashes.Flashes(w, r),
		CSRFField: csrf.TemplateField(r),
		Year:      time.Now().Year(),
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", view); err != nil {
		log.Errorf("render page [%s]: %s", page, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteHTMLResponse(w, buf.Bytes(), status)
}

// RenderInvalid flashes one message per failing form field and re-renders the form with a 422
func (rn *Renderer) RenderInvalid(w http.ResponseWriter, r *http.Request, page, title string, messages []string, data any) {
	for _, msg := range messages {
		rn.flashes.AddFlash(w, r, msg)
	}
	rn.Render(w, r, http.StatusUnprocessableEntity, page, title, data)
}

type errorPage struct {
	Status  int
	Message string
}

func (rn *Renderer) RenderError(w http.ResponseWriter, r *http.Request, status int) {
	message := "Ocurrió un error inesperado, por favor, intente nuevamente más tarde."
	switch status {
	case http.StatusForbidden:
		message = "No tenés permiso para acceder a esta página."
	case http.StatusNotFound:
		message = "La página que buscás no existe."
	case http.StatusTooManyRequests:
		message = "Demasiados intentos, por favor, espere un minuto."
	}
	rn.Render(w, r, status, "error", http.StatusText(status), errorPage{
		Status:  status,
		Message: message,
	})
}

// ErrorHandler renders the error page with the given status
func (rn *Renderer) ErrorHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rn.RenderError(w, r, status)
	})
}

func (rn *Renderer) NotFoundHandler() http.Handler {
	return rn.ErrorHandler(http.StatusNotFound)
}

func (rn *Renderer) ForbiddenHandler() http.Handler {
	return rn.ErrorHandler(http.StatusForbidden)
}

func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// only fails if the embed directive above is broken
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
