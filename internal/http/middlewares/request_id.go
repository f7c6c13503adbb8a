package middlewares

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// maxClientRequestIDLen acota IDs que manda el cliente; más largo que esto
// se descarta y se genera uno propio.
const maxClientRequestIDLen = 64

// WithRequestID propaga el X-Request-ID del cliente o genera uno nuevo.
// El ID queda en el header de respuesta y en el contexto para los logs.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
			if rid == "" || len(rid) > maxClientRequestIDLen {
				rid = uuid.NewString()
			}

			w.Header().Set("X-Request-ID", rid)

			next.ServeHTTP(w, r.WithContext(setRequestID(r.Context(), rid)))
		})
	}
}
