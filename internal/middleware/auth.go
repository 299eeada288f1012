package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/blogtracker/internal/auth"
	"github.com/2beens/blogtracker/internal/telemetry/metrics"
	"github.com/2beens/blogtracker/internal/telemetry/tracing"
	"github.com/2beens/blogtracker/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type credentialVerifier interface {
	Verify(ctx context.Context, authorization string) (*auth.Principal, error)
}

type AuthMiddlewareHandler struct {
	verifier       credentialVerifier
	metricsManager *metrics.Manager
	// route names served without a credential
	publicRoutes map[string]bool
	// route names where a credential is checked only when sent
	optionalRoutes map[string]bool
}

func NewAuthMiddlewareHandler(
	verifier credentialVerifier,
	metricsManager *metrics.Manager,
	publicRoutes []string,
	optionalRoutes []string,
) *AuthMiddlewareHandler {
	h := &AuthMiddlewareHandler{
		verifier:       verifier,
		metricsManager: metricsManager,
		publicRoutes:   make(map[string]bool, len(publicRoutes)),
		optionalRoutes: make(map[string]bool, len(optionalRoutes)),
	}
	for _, name := range publicRoutes {
		h.publicRoutes[name] = true
	}
	for _, name := range optionalRoutes {
		h.optionalRoutes[name] = true
	}
	return h
}

// AuthCheck must be installed with router.Use, so the matched route is known
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			routeName := ""
			if route := mux.CurrentRoute(r); route != nil {
				routeName = route.GetName()
			}
			span.SetAttributes(attribute.String("route", routeName))

			if h.publicRoutes[routeName] {
				span.SetStatus(codes.Ok, "public")
				next.ServeHTTP(w, r)
				return
			}

			authorization := r.Header.Get("Authorization")
			if authorization == "" && h.optionalRoutes[routeName] {
				span.SetStatus(codes.Ok, "anonymous")
				next.ServeHTTP(w, r)
				return
			}

			principal, err := h.verifier.Verify(ctx, authorization)
			if err != nil {
				reason := auth.RejectionReason(err)
				if h.metricsManager != nil {
					h.metricsManager.CounterAuthRejected.WithLabelValues(reason).Inc()
				}
				span.SetStatus(codes.Error, "rejected-"+reason)

				// every verify failure is a 401, the provider reason only goes to the log
				log.Debugf("[auth middleware] unauthorized [%s] => %s: %s", reason, r.URL.Path, err)
				pkg.WriteJSONError(w, auth.PublicDetail(err), http.StatusUnauthorized)
				return
			}

			span.SetAttributes(attribute.String("subject", principal.SubjectID))
			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}
