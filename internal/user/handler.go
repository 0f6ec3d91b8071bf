package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/caminemosjuntos/counseling/internal/auth"
	"github.com/caminemosjuntos/counseling/internal/middleware"
	"github.com/caminemosjuntos/counseling/internal/telemetry/metrics"
	"github.com/caminemosjuntos/counseling/internal/web"
	"github.com/caminemosjuntos/counseling/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	flashEmailTaken    = "El email ya se encuentra registrado, en su lugar iniciar sesión!"
	flashUnknownEmail  = "El email no existe, por favor, intente nuevamente."
	flashWrongPassword = "Contraseña incorrecta, por favor, intente nuevamente."
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=user_test
type userRepo interface {
	AddUser(ctx context.Context, u *User) error
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id int) (*User, error)
}

type sessionIssuer interface {
	Login(ctx context.Context, userID int) (string, error)
	Logout(ctx context.Context, token string) error
}

type registerForm struct {
	Email    string `validate:"required,email,max=100" label:"Email"`
	Password string `validate:"required,maxbytes=72" label:"Contraseña"`
	Name     string `validate:"required,max=100" label:"Nombre"`
}

type loginForm struct {
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required" label:"Contraseña"`
}

type Handler struct {
	repo           userRepo
	sessions       sessionIssuer
	cookies        *auth.SessionStore
	renderer       *web.Renderer
	metricsManager *metrics.Manager
}

func NewHandler(
	repo userRepo,
	sessions sessionIssuer,
	cookies *auth.SessionStore,
	renderer *web.Renderer,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		sessions:       sessions,
		cookies:        cookies,
		renderer:       renderer,
		metricsManager: metricsManager,
	}
}

// SetupRoutes registers register, login and logout; form posts are rate limited when rateLimiter is set
func (handler *Handler) SetupRoutes(router *mux.Router, rateLimiter middleware.RequestRateLimiter, allowedPerMin int) {
	limit := func(routeName string, h http.HandlerFunc) http.Handler {
		if rateLimiter == nil {
			return h
		}
		return middleware.RateLimit(
			rateLimiter,
			routeName,
			allowedPerMin,
			handler.metricsManager,
			handler.renderer.ErrorHandler(http.StatusTooManyRequests),
		)(h)
	}

	router.HandleFunc("/register", handler.handleRegisterForm).Methods("GET").Name("register")
	router.Handle("/register", limit("register", handler.handleRegister)).Methods("POST").Name("register-post")
	router.HandleFunc("/login", handler.handleLoginForm).Methods("GET").Name("login")
	router.Handle("/login", limit("login", handler.handleLogin)).Methods("POST").Name("login-post")
	router.HandleFunc("/logout", handler.handleLogout).Methods("GET").Name("logout")
}

func (handler *Handler) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, http.StatusOK, "register", "Registrarme", registerForm{})
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	form := registerForm{
		Email:    web.FormValue(r, "email"),
		Password: r.FormValue("password"),
		Name:     web.FormValue(r, "name"),
	}
	if messages := web.ValidateForm(form); len(messages) > 0 {
		handler.renderer.RenderInvalid(w, r, "register", "Registrarme", messages, registerForm{Email: form.Email, Name: form.Name})
		return
	}

	ctx := r.Context()
	if _, err := handler.repo.UserByEmail(ctx, form.Email); err == nil {
		handler.cookies.AddFlash(w, r, flashEmailTaken)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	} else if !errors.Is(err, ErrUserNotFound) {
		log.Errorf("register, check email [%s]: %s", form.Email, err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	passwordHash, err := pkg.HashPassword(form.Password)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	newUser := &User{
		Email:        form.Email,
		PasswordHash: passwordHash,
		Name:         form.Name,
	}
	if err := handler.repo.AddUser(ctx, newUser); err != nil {
		// lost the race against a concurrent registration of the same email
		if errors.Is(err, ErrEmailTaken) {
			handler.cookies.AddFlash(w, r, flashEmailTaken)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		log.Errorf("register, add user [%s]: %s", form.Email, err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterRegistrations.Inc()
	log.Debugf("new user registered: %d", newUser.ID)

	handler.startSession(w, r, newUser.ID)
}

func (handler *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, http.StatusOK, "login", "Ingresar", loginForm{})
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	form := loginForm{
		Email:    web.FormValue(r, "email"),
		Password: r.FormValue("password"),
	}
	if messages := web.ValidateForm(form); len(messages) > 0 {
		handler.renderer.RenderInvalid(w, r, "login", "Ingresar", messages, loginForm{Email: form.Email})
		return
	}

	u, err := handler.repo.UserByEmail(r.Context(), form.Email)
	if errors.Is(err, ErrUserNotFound) {
		handler.metricsManager.CounterLogins.WithLabelValues("unknown_email").Inc()
		handler.cookies.AddFlash(w, r, flashUnknownEmail)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err != nil {
		log.Errorf("login, get user [%s]: %s", form.Email, err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	if !pkg.CheckPasswordHash(form.Password, u.PasswordHash) {
		log.Tracef("login, wrong password for user %d", u.ID)
		handler.metricsManager.CounterLogins.WithLabelValues("wrong_password").Inc()
		handler.cookies.AddFlash(w, r, flashWrongPassword)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	handler.metricsManager.CounterLogins.WithLabelValues("ok").Inc()
	handler.startSession(w, r, u.ID)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := handler.cookies.Token(r); token != "" {
		if err := handler.sessions.Logout(r.Context(), token); err != nil {
			log.Errorf("logout: %s", err)
		}
		if err := handler.cookies.ClearToken(w, r); err != nil {
			log.Errorf("logout, clear session cookie: %s", err)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (handler *Handler) startSession(w http.ResponseWriter, r *http.Request, userID int) {
	token, err := handler.sessions.Login(r.Context(), userID)
	if err != nil {
		log.Errorf("login user %d: %s", userID, err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	if err := handler.cookies.SetToken(w, r, token); err != nil {
		log.Errorf("login user %d, set session cookie: %s", userID, err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
