package contact

import (
	"context"
	"net/http"

	"github.com/caminemosjuntos/counseling/internal/email"
	"github.com/caminemosjuntos/counseling/internal/middleware"
	"github.com/caminemosjuntos/counseling/internal/telemetry/metrics"
	"github.com/caminemosjuntos/counseling/internal/web"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const flashSendFailed = "No se pudo enviar el mensaje, por favor, intente nuevamente."

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=contact_test
type notifier interface {
	Send(ctx context.Context, m email.Message) error
}

type contactForm struct {
	Name    string `validate:"required,max=250" label:"Nombre"`
	Email   string `validate:"required,email,max=250" label:"Email"`
	Phone   string `validate:"required,max=100" label:"Teléfono"`
	Message string `validate:"required,max=5000" label:"Mensaje"`
}

type contactPage struct {
	Form    contactForm
	MsgSent bool
}

type Handler struct {
	notifier       notifier
	renderer       *web.Renderer
	metricsManager *metrics.Manager
	siteEmail      string
}

func NewHandler(notifier notifier, renderer *web.Renderer, metricsManager *metrics.Manager, siteEmail string) *Handler {
	return &Handler{
		notifier:       notifier,
		renderer:       renderer,
		metricsManager: metricsManager,
		siteEmail:      siteEmail,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router, rateLimiter middleware.RequestRateLimiter, allowedPerMin int) {
	var send http.Handler = http.HandlerFunc(handler.handleSend)
	if rateLimiter != nil {
		send = middleware.RateLimit(
			rateLimiter,
			"contact",
			allowedPerMin,
			handler.metricsManager,
			handler.renderer.ErrorHandler(http.StatusTooManyRequests),
		)(send)
	}

	router.HandleFunc("/contact", handler.handleForm).Methods("GET").Name("contact")
	router.Handle("/contact", send).Methods("POST").Name("contact-post")
}

func (handler *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, http.StatusOK, "contact", "Contacto", contactPage{})
}

func (handler *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	form := contactForm{
		Name:    web.FormValue(r, "name"),
		Email:   web.FormValue(r, "email"),
		Phone:   web.FormValue(r, "phone"),
		Message: web.FormValue(r, "message"),
	}
	if messages := web.ValidateForm(form); len(messages) > 0 {
		handler.renderer.RenderInvalid(w, r, "contact", "Contacto", messages, contactPage{Form: form})
		return
	}

	err := handler.notifier.Send(r.Context(), email.ContactMessage(handler.siteEmail, email.ContactRequest{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Message: form.Message,
	}))
	handler.metricsManager.EmailSent("contact", err)
	if err != nil {
		log.Errorf("send contact message from [%s]: %s", form.Email, err)
		// keep what was typed so the visitor can retry
		handler.renderer.RenderInvalid(w, r, "contact", "Contacto", []string{flashSendFailed}, contactPage{Form: form})
		return
	}

	handler.metricsManager.CounterContactMessages.Inc()
	handler.renderer.Render(w, r, http.StatusOK, "contact", "Contacto", contactPage{MsgSent: true})
}
