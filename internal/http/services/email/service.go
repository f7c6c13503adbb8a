// Package email implementa el servicio de la capa HTTP: valida los DTOs y
// los traduce al mensaje unificado que despacha el mailer.
package email

import (
	"context"

	dto "github.com/dropDatabas3/courier/internal/http/dto/email"
	"github.com/dropDatabas3/courier/internal/mailer"
	"github.com/dropDatabas3/courier/internal/observability/logger"
	"github.com/dropDatabas3/courier/internal/validation"
)

// SendService define las operaciones de envío que exponen los controllers.
// Los errores posibles son validation.FieldErrors (request inválido, no se
// tocó SMTP) o los sentinels del paquete mailer (falló el despacho).
type SendService interface {
	SendSimple(ctx context.Context, req dto.SimpleEmailRequest) (*dto.SendResponse, error)
	Send(ctx context.Context, req dto.EmailRequest) (*dto.SendResponse, error)
	SendWithAttachment(ctx context.Context, req dto.AttachmentEmailRequest) (*dto.SendResponse, error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Mailer    mailer.Service
	Validator *validation.Validator
}

// NewSendService crea el servicio de envío.
func NewSendService(deps Deps) SendService {
	return &sendService{
		mailer:    deps.Mailer,
		validator: deps.Validator,
	}
}

type sendService struct {
	mailer    mailer.Service
	validator *validation.Validator
}

// SendSimple valida y despacha un email a un único destinatario,
// sin cc ni bcc.
func (s *sendService) SendSimple(ctx context.Context, req dto.SimpleEmailRequest) (*dto.SendResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	msg := mailer.Message{
		To:      []string{req.ToEmail},
		Subject: req.Subject,
		Body:    req.Body,
	}
	return s.dispatch(ctx, msg)
}

// Send valida y despacha un email con opciones completas (cc, bcc, HTML).
func (s *sendService) Send(ctx context.Context, req dto.EmailRequest) (*dto.SendResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	msg := mailer.Message{
		To:      req.ToEmails,
		Cc:      req.CcEmails,
		Bcc:     req.BccEmails,
		Subject: req.Subject,
		Body:    req.Body,
		HTML:    req.IsHTML,
	}
	return s.dispatch(ctx, msg)
}

// SendWithAttachment valida y despacha un email con un adjunto ya leído
// completo a memoria.
func (s *sendService) SendWithAttachment(ctx context.Context, req dto.AttachmentEmailRequest) (*dto.SendResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	msg := mailer.Message{
		To:      req.ToEmails,
		Cc:      req.CcEmails,
		Subject: req.Subject,
		Body:    req.Body,
		HTML:    req.IsHTML,
		Attachment: &mailer.Attachment{
			Filename: req.Filename,
			Content:  req.Content,
			MIMEType: req.MIMEType,
		},
	}
	return s.dispatch(ctx, msg)
}

// dispatch ejecuta la transacción SMTP y arma la respuesta de éxito.
// La validación ya pasó: cualquier error acá es de despacho.
func (s *sendService) dispatch(ctx context.Context, msg mailer.Message) (*dto.SendResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("dispatch"))

	res, err := s.mailer.Send(ctx, msg)
	if err != nil {
		log.Error("dispatch failed", logger.Err(err))
		return nil, err
	}

	log.Debug("dispatch ok", logger.Recipients(res.Recipients))
	return &dto.SendResponse{
		Success:    true,
		Message:    res.Message,
		Recipients: msg.Recipients(),
	}, nil
}
