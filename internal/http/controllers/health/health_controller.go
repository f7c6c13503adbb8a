// Package health contiene los controllers de health check e índice.
package health

import (
	"encoding/json"
	"net/http"
)

// Controllers agrupa los controllers del dominio health.
type Controllers struct {
	Health *HealthController
}

// NewControllers crea el agregador de controllers health.
func NewControllers(version string) *Controllers {
	return &Controllers{
		Health: NewHealthController(version),
	}
}

// HealthController maneja las rutas de health check y el índice raíz.
type HealthController struct {
	version string
}

// NewHealthController crea un nuevo controller de health check.
func NewHealthController(version string) *HealthController {
	return &HealthController{version: version}
}

// Healthz maneja GET /healthz.
// Liveness puro: si el proceso responde, está vivo. No toca SMTP.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if c.version != "" {
		w.Header().Set("X-Service-Version", c.version)
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Index maneja GET /.
// Devuelve el mapa de endpoints disponibles, útil para descubrir la API
// desde un browser o curl.
func (c *HealthController) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"service": "courier",
		"version": c.version,
		"endpoints": map[string]string{
			"POST /send-simple-email":          "email de texto plano a un destinatario",
			"POST /send-email":                 "email con cc/bcc opcionales, texto o HTML",
			"POST /send-email-with-attachment": "email multipart con un archivo adjunto",
			"GET /healthz":                     "liveness check",
			"GET /metrics":                     "métricas Prometheus",
		},
	})
}
