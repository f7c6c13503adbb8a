// Package email contiene los DTOs de los endpoints de envío de correo.
//
// Los tags `validate` son el contrato de entrada: todo request se valida
// completo antes de construir el mensaje saliente; direcciones inválidas en
// cualquier lista (to/cc/bcc) rechazan el request entero.
package email

// SimpleEmailRequest es el payload de POST /send-simple-email.
type SimpleEmailRequest struct {
	ToEmail string `json:"to_email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// EmailRequest es el payload de POST /send-email.
type EmailRequest struct {
	ToEmails  []string `json:"to_emails" validate:"required,min=1,dive,required,email"`
	Subject   string   `json:"subject" validate:"required"`
	Body      string   `json:"body" validate:"required"`
	CcEmails  []string `json:"cc_emails" validate:"omitempty,dive,required,email"`
	BccEmails []string `json:"bcc_emails" validate:"omitempty,dive,required,email"`
	IsHTML    bool     `json:"is_html"`
}

// AttachmentEmailRequest se construye desde el form multipart de
// POST /send-email-with-attachment. El contenido del archivo ya está
// completo en memoria cuando se valida.
type AttachmentEmailRequest struct {
	ToEmails []string `json:"to_emails" validate:"required,min=1,dive,required,email"`
	Subject  string   `json:"subject" validate:"required"`
	Body     string   `json:"body" validate:"required"`
	CcEmails []string `json:"cc_emails" validate:"omitempty,dive,required,email"`
	IsHTML   bool     `json:"is_html"`

	Filename string `json:"filename" validate:"required"`
	Content  []byte `json:"-" validate:"required"`
	MIMEType string `json:"mime_type"`
}
