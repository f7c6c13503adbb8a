package email

// SendResponse es la respuesta de éxito de los tres endpoints de envío.
// Echo de los destinatarios para que el cliente confirme a quién se envió
// (incluye bcc: el caller es quien los pidió).
type SendResponse struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Recipients []string `json:"recipients,omitempty"`
}
