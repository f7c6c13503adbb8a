package email

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	dto "github.com/dropDatabas3/courier/internal/http/dto/email"
	httperrors "github.com/dropDatabas3/courier/internal/http/errors"
	"github.com/dropDatabas3/courier/internal/http/helpers"
	svc "github.com/dropDatabas3/courier/internal/http/services/email"
	"github.com/dropDatabas3/courier/internal/mailer"
	"github.com/dropDatabas3/courier/internal/observability/logger"
	"github.com/dropDatabas3/courier/internal/validation"
	"go.uber.org/zap"
)

// defaultAttachmentMIME se usa cuando ni el form ni la extensión del
// archivo dicen nada sobre el content type.
const defaultAttachmentMIME = "application/octet-stream"

// SendController maneja los tres endpoints de envío.
type SendController struct {
	service            svc.SendService
	maxBodyBytes       int64
	maxAttachmentBytes int64
}

// NewSendController crea un nuevo controller de envío.
func NewSendController(service svc.SendService, cfg Config) *SendController {
	return &SendController{
		service:            service,
		maxBodyBytes:       cfg.MaxBodyBytes,
		maxAttachmentBytes: cfg.MaxAttachmentBytes,
	}
}

// SendSimple maneja POST /send-simple-email.
// Un destinatario, texto plano, sin cc/bcc ni adjuntos.
func (c *SendController) SendSimple(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SendController.SendSimple"))

	var req dto.SimpleEmailRequest
	if err := helpers.ReadJSON(w, r, c.maxBodyBytes, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	resp, err := c.service.SendSimple(ctx, req)
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	log.Info("email sent", logger.Recipients(len(resp.Recipients)))
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Send maneja POST /send-email.
// Varios destinatarios, cc/bcc opcionales, texto o HTML.
func (c *SendController) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SendController.Send"))

	var req dto.EmailRequest
	if err := helpers.ReadJSON(w, r, c.maxBodyBytes, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	resp, err := c.service.Send(ctx, req)
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	log.Info("email sent", logger.Recipients(len(resp.Recipients)))
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// SendWithAttachment maneja POST /send-email-with-attachment.
// Recibe multipart/form-data: campos de texto + un archivo en "file".
// Los destinatarios llegan como listas separadas por coma.
func (c *SendController) SendWithAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SendController.SendWithAttachment"))

	// Margen para los campos de texto además del archivo.
	r.Body = http.MaxBytesReader(w, r.Body, c.maxAttachmentBytes+c.maxBodyBytes)
	if err := r.ParseMultipartForm(c.maxAttachmentBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httperrors.WriteError(w, httperrors.ErrBodyTooLarge)
			return
		}
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("multipart/form-data inválido"))
		return
	}

	isHTML := false
	if raw := r.FormValue("is_html"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("is_html debe ser booleano"))
			return
		}
		isHTML = parsed
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("falta el archivo adjunto (campo 'file')"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, c.maxAttachmentBytes+1))
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("no se pudo leer el adjunto"))
		return
	}
	if int64(len(content)) > c.maxAttachmentBytes {
		httperrors.WriteError(w, httperrors.ErrBodyTooLarge)
		return
	}

	req := dto.AttachmentEmailRequest{
		ToEmails: splitEmails(r.FormValue("to_emails")),
		Subject:  r.FormValue("subject"),
		Body:     r.FormValue("body"),
		CcEmails: splitEmails(r.FormValue("cc_emails")),
		IsHTML:   isHTML,
		Filename: header.Filename,
		Content:  content,
		MIMEType: attachmentMIME(header),
	}

	resp, err := c.service.SendWithAttachment(ctx, req)
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	log.Info("email sent",
		logger.Recipients(len(resp.Recipients)),
		logger.Attachment(header.Filename),
	)
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// handleError mapea errores de service a respuestas HTTP.
func (c *SendController) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail(fieldErrs.Error()))
		return
	}

	switch {
	case errors.Is(err, mailer.ErrBuild):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail(err.Error()))
	case errors.Is(err, mailer.ErrAuth),
		errors.Is(err, mailer.ErrConnection),
		errors.Is(err, mailer.ErrRecipientRejected),
		errors.Is(err, mailer.ErrSend):
		httperrors.WriteError(w, httperrors.ErrDispatchFailed.WithDetail(err.Error()))
	default:
		log.Error("unexpected send error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}

// splitEmails parte una lista separada por comas y descarta entradas vacías.
// "a@x.com, b@y.com" → ["a@x.com", "b@y.com"]
func splitEmails(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// attachmentMIME resuelve el content type del adjunto: primero el que
// declaró el cliente, después la extensión del archivo, y si no hay
// nada, octet-stream.
func attachmentMIME(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != defaultAttachmentMIME {
		return ct
	}
	if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
		return byExt
	}
	return defaultAttachmentMIME
}
