// Package mailer implementa el servicio de despacho de correo: toma un
// Message ya validado, arma el MIME y lo transmite en UNA transacción SMTP
// sincrónica. Sin reintentos, sin cola, sin éxito parcial.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/courier/internal/metrics"
	"github.com/dropDatabas3/courier/internal/observability/logger"
)

// ─── Errors ───

var (
	// ErrBuild indica que el mensaje no se pudo componer (adjunto vacío,
	// envelope sin destinatarios).
	ErrBuild = errors.New("mailer: message build failed")
	// ErrConnection indica fallo de red/TLS/timeout contra el servidor SMTP.
	ErrConnection = errors.New("mailer: smtp connection failed")
	// ErrAuth indica credenciales rechazadas.
	ErrAuth = errors.New("mailer: smtp authentication failed")
	// ErrRecipientRejected indica que el servidor rechazó algún destinatario.
	ErrRecipientRejected = errors.New("mailer: recipient rejected")
	// ErrSend cubre fallos de envío no clasificables.
	ErrSend = errors.New("mailer: send failed")
)

// Service define el contrato del despacho de correo.
// Send bloquea durante el intercambio SMTP completo (connect, STARTTLS, auth,
// DATA, quit); el timeout viene de SMTPConfig.DialTimeout. Una vez iniciada la
// transacción corre hasta completarse o fallar, no se propaga cancelación.
type Service interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// SMTPService implementa Service contra un servidor SMTP usando go-mail.
// Es stateless respecto de los requests: no comparte conexiones ni estado
// mutable, por lo que es seguro para uso concurrente sin locks.
type SMTPService struct {
	cfg SMTPConfig

	// send permite inyectar el transporte en tests; default: dialAndSend.
	send sendFunc
}

// NewSMTPService crea el servicio de despacho con la configuración dada.
func NewSMTPService(cfg SMTPConfig) *SMTPService {
	if cfg.TLSMode == "" {
		cfg.TLSMode = "starttls"
	}
	return &SMTPService{cfg: cfg, send: dialAndSend}
}

// Send compone y transmite el mensaje. El Result refleja el resultado de la
// transacción; el error (si hay) envuelve uno de los sentinels del paquete
// con el detalle reportado por el servidor. Las credenciales nunca aparecen
// en logs ni errores.
func (s *SMTPService) Send(ctx context.Context, msg Message) (Result, error) {
	log := logger.From(ctx).With(
		logger.Component("mailer"),
		logger.Host(s.cfg.Host),
		logger.Port(s.cfg.Port),
	)

	if err := ctx.Err(); err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrConnection, err)
		return failure(wrapped), wrapped
	}

	recipients := msg.Recipients()
	if len(recipients) == 0 {
		err := fmt.Errorf("%w: empty recipient set", ErrBuild)
		return failure(err), err
	}

	m, err := s.compose(msg)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrBuild, err)
		metrics.EmailsFailed.WithLabelValues(KindBuild.String()).Inc()
		return failure(err), err
	}

	log = log.With(logger.Recipients(len(recipients)))
	log.Debug("sending email",
		logger.Subject(msg.Subject),
		logger.Bool("html", msg.HTML),
		logger.Bool("attachment", msg.Attachment != nil),
	)

	timer := metrics.NewSendTimer()
	if err := s.send(s.dialer(), m); err != nil {
		diag := Diagnose(err)
		timer.Observe("error")
		metrics.EmailsFailed.WithLabelValues(diag.Kind.String()).Inc()

		log.Error("smtp send failed",
			logger.Err(err),
			logger.String("diag_code", diag.Code),
			logger.Bool("temporary", diag.Temporary),
		)

		wrapped := fmt.Errorf("%w: %v", sentinelFor(diag.Kind), err)
		return failure(wrapped), wrapped
	}
	timer.Observe("ok")
	metrics.EmailsSent.Inc()

	log.Info("email sent successfully")
	return Result{
		Success:    true,
		Message:    fmt.Sprintf("Email enviado exitosamente a %d destinatarios", len(recipients)),
		Recipients: len(recipients),
	}, nil
}

// sentinelFor mapea una categoría de diagnóstico al sentinel del paquete.
func sentinelFor(k Kind) error {
	switch k {
	case KindBuild:
		return ErrBuild
	case KindConnection:
		return ErrConnection
	case KindAuth:
		return ErrAuth
	case KindRecipient:
		return ErrRecipientRejected
	default:
		return ErrSend
	}
}

func failure(cause error) Result {
	return Result{
		Success: false,
		Message: "Error al enviar email",
		Detail:  cause.Error(),
	}
}
