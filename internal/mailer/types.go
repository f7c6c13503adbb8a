package mailer

import "time"

// ─── DTOs ───

// Attachment es un archivo adjunto ya leído por completo a memoria.
// No hay contrato de streaming: el contenido entra entero antes de abrir la
// sesión SMTP.
type Attachment struct {
	Filename string // Nombre original del archivo
	Content  []byte // Contenido completo
	MIMEType string // Content-Type declarado (fallback: application/octet-stream)
}

// Message es el mensaje saliente unificado. El remitente sale de la
// configuración del servicio, nunca del request.
type Message struct {
	To         []string    // Destinatarios principales (header To)
	Cc         []string    // Copia (header Cc)
	Bcc        []string    // Copia oculta: solo envelope, jamás headers
	Subject    string      // Asunto
	Body       string      // Cuerpo (texto plano o HTML según HTML)
	HTML       bool        // true → text/html, false → text/plain
	Attachment *Attachment // Adjunto opcional (un solo archivo)
}

// Recipients retorna la unión to+cc+bcc, que es el envelope SMTP completo.
func (m Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	out = append(out, m.Bcc...)
	return out
}

// Result es el resultado de una transacción SMTP. No hay éxito parcial:
// la transacción completa funciona o falla.
type Result struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	Recipients int    `json:"recipients,omitempty"`
}

// ─── Configuración SMTP ───

// SMTPConfig contiene la configuración para conectarse a un servidor SMTP.
// Inmutable: se construye una vez en el wiring y se inyecta.
type SMTPConfig struct {
	Host        string        // Host del servidor SMTP
	Port        int           // Puerto (587 para STARTTLS)
	Username    string        // Usuario para autenticación
	Password    string        // Password (plain)
	FromEmail   string        // Email del remitente
	FromName    string        // Nombre visible del remitente
	TLSMode     string        // "starttls" (default) | "ssl" | "none"
	DialTimeout time.Duration // Timeout del intercambio completo (default 30s)

	InsecureSkipVerify bool // solo dev
}
