package mailer

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"
	"github.com/google/uuid"
)

// sendFunc abstrae el transporte para poder testear compose sin red.
type sendFunc func(d *mail.Dialer, m *mail.Message) error

func dialAndSend(d *mail.Dialer, m *mail.Message) error {
	return d.DialAndSend(m)
}

// compose arma el mensaje MIME. go-mail genera multipart cuando hay adjunto y
// excluye el header Bcc del mensaje escrito: los Bcc viajan solo en el
// envelope de la transacción.
func (s *SMTPService) compose(msg Message) (*mail.Message, error) {
	if msg.Attachment != nil {
		if msg.Attachment.Filename == "" {
			return nil, fmt.Errorf("attachment without filename")
		}
		if len(msg.Attachment.Content) == 0 {
			return nil, fmt.Errorf("attachment %q is empty", msg.Attachment.Filename)
		}
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", s.cfg.FromEmail, s.cfg.FromName)
	m.SetHeader("To", msg.To...)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-Id", fmt.Sprintf("<%s@%s>", uuid.NewString(), s.cfg.Host))
	m.SetHeader("Date", m.FormatDate(time.Now()))

	if msg.HTML {
		m.SetBody("text/html", msg.Body)
	} else {
		m.SetBody("text/plain", msg.Body)
	}

	if att := msg.Attachment; att != nil {
		mimeType := att.MIMEType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		m.AttachReader(att.Filename, bytes.NewReader(att.Content),
			mail.SetHeader(map[string][]string{
				"Content-Type": {fmt.Sprintf("%s; name=%q", mimeType, att.Filename)},
			}),
		)
	}

	return m, nil
}

// dialer construye el dialer go-mail según el modo TLS configurado.
// Un dialer por envío: la conexión se abre, autentica, transmite y cierra en
// cada transacción, en cualquier camino de salida.
func (s *SMTPService) dialer() *mail.Dialer {
	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.Timeout = s.cfg.DialTimeout
	if d.Timeout <= 0 {
		d.Timeout = 30 * time.Second
	}
	d.TLSConfig = &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.InsecureSkipVerify, // solo dev
	}

	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		// "starttls": exigimos el upgrade, sin fallback a texto plano
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}
	return d
}
