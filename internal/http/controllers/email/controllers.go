// Package email contiene los controllers de envío de correo.
package email

import svc "github.com/dropDatabas3/courier/internal/http/services/email"

// Controllers agrupa los controllers del dominio email.
type Controllers struct {
	Send *SendController
}

// Config son los límites que necesitan los controllers.
type Config struct {
	MaxBodyBytes       int64 // límite del body JSON
	MaxAttachmentBytes int64 // límite del archivo adjunto
}

// NewControllers crea el agregador de controllers email.
func NewControllers(s svc.SendService, cfg Config) *Controllers {
	return &Controllers{
		Send: NewSendController(s, cfg),
	}
}
