package mailer

import (
	"errors"
	"net"
	"net/textproto"
	"strings"
	"time"
)

// Kind clasifica un fallo de despacho en las categorías que el handler HTTP
// puede traducir a una respuesta.
type Kind int

const (
	KindUnknown    Kind = iota
	KindBuild           // composición MIME inválida (adjunto ilegible, sin destinatarios)
	KindConnection      // dial/DNS/TLS/timeout/red
	KindAuth            // credenciales rechazadas
	KindRecipient       // destinatario rechazado por el servidor
)

func (k Kind) String() string {
	switch k {
	case KindBuild:
		return "build"
	case KindConnection:
		return "connection"
	case KindAuth:
		return "auth"
	case KindRecipient:
		return "recipient"
	default:
		return "unknown"
	}
}

// Diag contiene información de diagnóstico de un error SMTP.
type Diag struct {
	Kind       Kind
	Code       string        // auth|tls|dial|timeout|rate_limited|invalid_recipient|rejected|network|unknown
	Temporary  bool          // si conviene que el CALLER reintente (acá nunca se reintenta)
	RetryAfter time.Duration // 0 si no se pudo inferir
}

// Diagnose analiza un error SMTP y retorna información de diagnóstico.
// Las heurísticas sobre el texto cubren los casos donde la librería de correo
// envuelve el error original y rompe la cadena de errors.As.
func Diagnose(err error) Diag {
	if err == nil {
		return Diag{Kind: KindUnknown, Code: "unknown"}
	}

	// Respuesta SMTP cruda si la cadena la conserva.
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch {
		case tpErr.Code == 535 || tpErr.Code == 534 || tpErr.Code == 530:
			return Diag{Kind: KindAuth, Code: "auth"}
		case tpErr.Code == 550 || tpErr.Code == 551 || tpErr.Code == 553:
			return Diag{Kind: KindRecipient, Code: "invalid_recipient"}
		case tpErr.Code == 421 || tpErr.Code == 451:
			return Diag{Kind: KindConnection, Code: "rate_limited", Temporary: true}
		}
	}

	s := strings.ToLower(err.Error())

	// timeouts
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Diag{Kind: KindConnection, Code: "timeout", Temporary: true}
	}
	if strings.Contains(s, "timeout") || strings.Contains(s, "i/o timeout") {
		return Diag{Kind: KindConnection, Code: "timeout", Temporary: true}
	}

	// dial/conn/dns
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connectex:") || // windows
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "dial tcp") {
		return Diag{Kind: KindConnection, Code: "dial", Temporary: true}
	}

	// tls/handshake/cert
	if strings.Contains(s, "x509:") ||
		strings.Contains(s, "tls") && (strings.Contains(s, "handshake") || strings.Contains(s, "certificate")) {
		return Diag{Kind: KindConnection, Code: "tls"}
	}

	// auth (credenciales/permiso)
	if strings.Contains(s, "5.7.8") || strings.Contains(s, "535") ||
		strings.Contains(s, "username and password not accepted") ||
		strings.Contains(s, "authentication failed") ||
		strings.Contains(s, "auth") && strings.Contains(s, "failed") {
		return Diag{Kind: KindAuth, Code: "auth"}
	}

	// throttling temporal (4.x.x)
	if strings.Contains(s, "4.7.0") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "try again later") ||
		strings.Contains(s, "temporarily unavailable") ||
		strings.Contains(s, "451") || strings.Contains(s, "421") {
		return Diag{Kind: KindConnection, Code: "rate_limited", Temporary: true}
	}

	// destinatario inválido
	if strings.Contains(s, "5.1.1") || strings.Contains(s, "user unknown") ||
		strings.Contains(s, "mailbox not found") {
		return Diag{Kind: KindRecipient, Code: "invalid_recipient"}
	}

	// políticas/DMARC/SPF/rechazos 5.7.1
	if strings.Contains(s, "5.7.1") ||
		strings.Contains(s, "message rejected") ||
		strings.Contains(s, "policy") ||
		strings.Contains(s, "dmarc") || strings.Contains(s, "spf") {
		return Diag{Kind: KindRecipient, Code: "rejected"}
	}

	// resto de errores de red
	if errors.As(err, &ne) {
		return Diag{Kind: KindConnection, Code: "network", Temporary: true}
	}
	return Diag{Kind: KindUnknown, Code: "unknown"}
}
