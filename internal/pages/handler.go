// Package pages serves the static pages of the site.
package pages

import (
	"net/http"

	"github.com/caminemosjuntos/counseling/internal/web"

	"github.com/gorilla/mux"
)

type page struct {
	path  string
	name  string
	title string
}

var staticPages = []page{
	{path: "/about", name: "about", title: "Sobre mí"},
	{path: "/why-counseling", name: "why-counseling", title: "¿Por qué counseling?"},
	{path: "/modalidad", name: "modalidad", title: "Modalidad"},
}

type Handler struct {
	renderer *web.Renderer
}

func NewHandler(renderer *web.Renderer) *Handler {
	return &Handler{
		renderer: renderer,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	for _, p := range staticPages {
		router.Handle(p.path, handler.serve(p)).Methods("GET").Name(p.name)
	}
}

func (handler *Handler) serve(p page) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.renderer.Render(w, r, http.StatusOK, p.name, p.title, nil)
	})
}
