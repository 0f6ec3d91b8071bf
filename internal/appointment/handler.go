package appointment

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/caminemosjuntos/counseling/internal/auth"
	"github.com/caminemosjuntos/counseling/internal/email"
	"github.com/caminemosjuntos/counseling/internal/middleware"
	"github.com/caminemosjuntos/counseling/internal/telemetry/metrics"
	"github.com/caminemosjuntos/counseling/internal/web"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	flashLoginToBook = "Necesitas estar logueado para agendar una cita."
	flashSlotTaken   = "La fecha ya fue seleccionada"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=appointment_test
type appointmentRepo interface {
	SlotTaken(ctx context.Context, date, hour string) (bool, error)
	AddAppointment(ctx context.Context, a *Appointment) error
	All(ctx context.Context) ([]*Appointment, error)
	DeleteAppointment(ctx context.Context, id int) error
}

type notifier interface {
	Send(ctx context.Context, m email.Message) error
}

type bookingForm struct {
	Name  string `validate:"required,max=250" label:"Nombre Completo"`
	Email string `validate:"required,email,max=250" label:"Email"`
	Phone string `validate:"required,max=100" label:"Teléfono"`
	Date  string `validate:"required" label:"Fecha"`
	Hour  string `validate:"required" label:"Hora"`
}

type bookingPage struct {
	Form      bookingForm
	DaySent   bool
	FirstHour string
	LastHour  string
	MinDate   string
	Hours     []string
}

type appointmentsPage struct {
	Appointments []*Appointment
}

type Handler struct {
	repo           appointmentRepo
	notifier       notifier
	cookies        *auth.SessionStore
	renderer       *web.Renderer
	metricsManager *metrics.Manager
	rules          Rules
	siteEmail      string
	now            func() time.Time
}

func NewHandler(
	repo appointmentRepo,
	notifier notifier,
	cookies *auth.SessionStore,
	renderer *web.Renderer,
	metricsManager *metrics.Manager,
	rules Rules,
	siteEmail string,
) *Handler {
	return &Handler{
		repo:           repo,
		notifier:       notifier,
		cookies:        cookies,
		renderer:       renderer,
		metricsManager: metricsManager,
		rules:          rules,
		siteEmail:      siteEmail,
		now:            time.Now,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router, rateLimiter middleware.RequestRateLimiter, allowedPerMin int) {
	adminOnly := middleware.RequireAdmin(handler.renderer.ForbiddenHandler())

	var book http.Handler = http.HandlerFunc(handler.handleBook)
	if rateLimiter != nil {
		book = middleware.RateLimit(
			rateLimiter,
			"appointment",
			allowedPerMin,
			handler.metricsManager,
			handler.renderer.ErrorHandler(http.StatusTooManyRequests),
		)(book)
	}

	router.HandleFunc("/appointment", handler.handleBookingForm).Methods("GET").Name("appointment")
	router.Handle("/appointment", book).Methods("POST").Name("appointment-post")
	router.Handle("/get-all-appointments", adminOnly(http.HandlerFunc(handler.handleAll))).Methods("GET").Name("all-appointments")
	router.Handle("/delete_date/{id:[0-9]+}", adminOnly(http.HandlerFunc(handler.handleDelete))).Methods("GET").Name("delete-appointment")
}

func (handler *Handler) bookingPage(form bookingForm) bookingPage {
	return bookingPage{
		Form:      form,
		FirstHour: strconv.Itoa(handler.rules.FirstHour),
		LastHour:  strconv.Itoa(handler.rules.LastHour),
		MinDate:   handler.rules.MinDate(handler.now()),
		Hours:     handler.rules.Hours(),
	}
}

func (handler *Handler) handleBookingForm(w http.ResponseWriter, r *http.Request) {
	form := bookingForm{}
	if identity := auth.IdentityFromContext(r.Context()); identity != nil {
		form.Name = identity.Name
		form.Email = identity.Email
	}
	handler.renderer.Render(w, r, http.StatusOK, "appointment", "Agendar cita", handler.bookingPage(form))
}

func (handler *Handler) handleBook(w http.ResponseWriter, r *http.Request) {
	if auth.IdentityFromContext(r.Context()) == nil {
		handler.cookies.AddFlash(w, r, flashLoginToBook)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	form := bookingForm{
		Name:  web.FormValue(r, "name"),
		Email: web.FormValue(r, "email"),
		Phone: web.FormValue(r, "phone"),
		Date:  web.FormValue(r, "date"),
		Hour:  web.FormValue(r, "hour"),
	}
	if messages := web.ValidateForm(form); len(messages) > 0 {
		handler.metricsManager.CounterAppointments.WithLabelValues("invalid").Inc()
		handler.renderer.RenderInvalid(w, r, "appointment", "Agendar cita", messages, handler.bookingPage(form))
		return
	}

	slot, err := ParseSlot(form.Date, form.Hour, handler.now(), handler.rules)
	if err != nil {
		handler.metricsManager.CounterAppointments.WithLabelValues("invalid").Inc()
		handler.renderer.RenderInvalid(w, r, "appointment", "Agendar cita", []string{err.Error()}, handler.bookingPage(form))
		return
	}

	ctx := r.Context()
	taken, err := handler.repo.SlotTaken(ctx, slot.Date, slot.Hour)
	if err != nil {
		log.Errorf("book appointment, check slot: %s", err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}
	if taken {
		handler.rejectTakenSlot(w, r, slot)
		return
	}

	booking := &Appointment{
		Date:  slot.Date,
		Hour:  slot.Hour,
		Name:  form.Name,
		Email: form.Email,
		Phone: form.Phone,
	}
	if err := handler.repo.AddAppointment(ctx, booking); err != nil {
		// someone else booked the slot between the check and the insert
		if errors.Is(err, ErrSlotTaken) {
			handler.rejectTakenSlot(w, r, slot)
			return
		}
		log.Errorf("book appointment %s %s: %s", slot.Date, slot.Hour, err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterAppointments.WithLabelValues("booked").Inc()
	log.Debugf("appointment %d booked for %s %s", booking.ID, booking.Date, booking.Hour)

	err = handler.notifier.Send(ctx, email.AppointmentConfirmation(handler.siteEmail, email.Booking{
		Name:  booking.Name,
		Email: booking.Email,
		Phone: booking.Phone,
		Date:  booking.Date,
		Hour:  booking.Hour,
	}))
	handler.metricsManager.EmailSent("appointment_confirmation", err)
	if err != nil {
		// the booking stands, the admin still sees it in the appointments list
		log.Errorf("send appointment %d confirmation: %s", booking.ID, err)
	}

	page := handler.bookingPage(form)
	page.DaySent = true
	handler.renderer.Render(w, r, http.StatusOK, "appointment", "Turno confirmado", page)
}

func (handler *Handler) rejectTakenSlot(w http.ResponseWriter, r *http.Request, slot Slot) {
	log.Tracef("appointment slot %s %s already taken", slot.Date, slot.Hour)
	handler.metricsManager.CounterAppointments.WithLabelValues("slot_taken").Inc()
	handler.cookies.AddFlash(w, r, flashSlotTaken)
	http.Redirect(w, r, "/appointment", http.StatusSeeOther)
}

func (handler *Handler) handleAll(w http.ResponseWriter, r *http.Request) {
	appointments, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("get all appointments: %s", err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	handler.renderer.Render(w, r, http.StatusOK, "appointments", "Turnos", appointmentsPage{Appointments: appointments})
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		handler.renderer.RenderError(w, r, http.StatusNotFound)
		return
	}

	if err := handler.repo.DeleteAppointment(r.Context(), id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			handler.renderer.RenderError(w, r, http.StatusNotFound)
			return
		}
		log.Errorf("delete appointment %d: %s", id, err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/get-all-appointments", http.StatusSeeOther)
}
