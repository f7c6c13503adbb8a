// Package metrics define las métricas Prometheus de despacho de correo.
// Viven en un paquete propio para evitar ciclos de import entre el mailer y
// las capas HTTP.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EmailsSent cuenta transacciones SMTP exitosas.
	EmailsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "emails_sent_total",
		Help: "Total de emails enviados exitosamente",
	})

	// EmailsFailed cuenta fallos de despacho por categoría.
	EmailsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emails_failed_total",
		Help: "Total de despachos fallidos por categoría",
	}, []string{"kind"}) // kind: build|connection|auth|recipient|unknown

	// SMTPSendDuration mide la duración de la transacción SMTP completa.
	SMTPSendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smtp_send_duration_seconds",
		Help:    "Duración de la transacción SMTP (connect, auth, send, close)",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	}, []string{"result"}) // result: ok|error
)

// RegisterMail registra las métricas de correo en el registry dado
// (o el default si es nil), ignorando duplicados.
func RegisterMail(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{EmailsSent, EmailsFailed, SMTPSendDuration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// SendTimer mide una transacción SMTP.
type SendTimer struct {
	start time.Time
}

// NewSendTimer arranca el timer.
func NewSendTimer() *SendTimer {
	return &SendTimer{start: time.Now()}
}

// Observe registra la duración con el resultado dado ("ok" | "error").
func (t *SendTimer) Observe(result string) {
	SMTPSendDuration.WithLabelValues(result).Observe(time.Since(t.start).Seconds())
}
