package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/caminemosjuntos/counseling/internal/auth"
	"github.com/caminemosjuntos/counseling/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type sessionCookies interface {
	Token(r *http.Request) string
	ClearToken(w http.ResponseWriter, r *http.Request) error
	Touch(w http.ResponseWriter, r *http.Request) error
}

//go:generate mockgen -source=$GOFILE -destination=current_user_mocks_test.go -package=middleware_test
type sessionResolver interface {
	UserID(ctx context.Context, token string) (int, error)
}

type identityLoader interface {
	IdentityByID(ctx context.Context, id int) (*auth.Identity, error)
}

// CurrentUser resolves the session cookie to the logged-in user and puts it on the request context.
// Stale tokens are dropped from the cookie; any lookup failure leaves the request anonymous.
func CurrentUser(
	cookies sessionCookies,
	sessions sessionResolver,
	users identityLoader,
	adminUserID int,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookies.Token(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.currentUser")
			defer span.End()

			userID, err := sessions.UserID(ctx, token)
			if err != nil {
				if errors.Is(err, auth.ErrSessionNotFound) {
					log.Tracef("[current user] session expired => %s", r.URL.Path)
					if err := cookies.ClearToken(w, r); err != nil {
						log.Errorf("[current user] clear stale token: %s", err)
					}
					span.SetStatus(codes.Ok, "session-expired")
				} else {
					log.Errorf("[current user] resolve session => %s: %s", r.URL.Path, err)
					span.RecordError(err)
					span.SetStatus(codes.Error, "resolve-session-err")
				}
				next.ServeHTTP(w, r)
				return
			}

			identity, err := users.IdentityByID(ctx, userID)
			if err != nil {
				log.Errorf("[current user] load user %d: %s", userID, err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "load-user-err")
				next.ServeHTTP(w, r)
				return
			}
			identity.Admin = identity.ID == adminUserID
			span.SetAttributes(attribute.Int("user.id", identity.ID))
			span.SetStatus(codes.Ok, "ok")

			// sliding expiration, same as the server side session
			if err := cookies.Touch(w, r); err != nil {
				log.Errorf("[current user] refresh cookie: %s", err)
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAdmin lets only the admin through, everyone else gets the forbidden handler (403)
func RequireAdmin(forbidden http.Handler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.IdentityFromContext(r.Context())
			if identity == nil || !identity.Admin {
				log.Warnf("[admin only] forbidden => %s", r.URL.Path)
				forbidden.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
