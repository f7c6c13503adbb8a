// Package http arma el router del servicio y el ciclo de vida del servidor.
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	emailctrl "github.com/dropDatabas3/courier/internal/http/controllers/email"
	healthctrl "github.com/dropDatabas3/courier/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/courier/internal/http/errors"
	mw "github.com/dropDatabas3/courier/internal/http/middlewares"
)

// RouterDeps contiene las dependencias para armar el router.
type RouterDeps struct {
	Email   *emailctrl.Controllers
	Health  *healthctrl.Controllers
	Metrics stdhttp.Handler // handler de /metrics; opcional

	// CORSAllowedOrigins habilita CORS si la lista no está vacía.
	CORSAllowedOrigins []string
}

// NewRouter arma el router con todas las rutas y el middleware base.
func NewRouter(deps RouterDeps) stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRecover())
	r.Use(mw.WithRequestID())
	r.Use(WithMetrics)
	if len(deps.CORSAllowedOrigins) > 0 {
		r.Use(mw.WithCORS(deps.CORSAllowedOrigins))
	}
	r.Use(mw.WithLogging())

	r.NotFound(func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	r.Get("/", deps.Health.Health.Index)
	r.Get("/healthz", deps.Health.Health.Healthz)
	if deps.Metrics != nil {
		r.Method(stdhttp.MethodGet, "/metrics", deps.Metrics)
	}

	// Endpoints de envío: las respuestas no deben cachearse.
	r.Group(func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.Post("/send-simple-email", deps.Email.Send.SendSimple)
		r.Post("/send-email", deps.Email.Send.Send)
		r.Post("/send-email-with-attachment", deps.Email.Send.SendWithAttachment)
	})

	return r
}
