// Package config carga la configuración del servicio una sola vez al inicio.
//
// Los knobs no sensibles (addr, timeouts, límites, CORS) pueden venir de un
// archivo YAML opcional; las credenciales SMTP vienen SIEMPRE del entorno y
// son inmutables después de Load. Si falta una variable requerida el proceso
// no debe arrancar.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/courier/internal/validation"
)

// Variables de entorno SMTP requeridas.
const (
	EnvSMTPServer   = "SMTP_SERVER"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUsername = "SMTP_USERNAME"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvSenderEmail  = "SENDER_EMAIL"
	EnvSenderName   = "SENDER_NAME"
)

// DefaultSenderName se usa cuando SENDER_NAME no está definida.
const DefaultSenderName = "Courier Mailer"

// MissingEnvError indica variables de entorno requeridas ausentes.
// Es un error de configuración fatal: se detecta en el arranque, nunca por request.
type MissingEnvError struct {
	Vars []string
}

func (e *MissingEnvError) Error() string {
	return "config: missing required environment variables: " + strings.Join(e.Vars, ", ")
}

// SMTP agrupa los datos de conexión al servidor de correo.
// Solo lectura después de Load; no guarda estado mutable.
type SMTP struct {
	Server      string
	Port        int
	Username    string
	Password    string
	SenderEmail string
	SenderName  string

	// TLSMode: "starttls" (default) | "ssl" | "none".
	// Configurable por YAML, no por las variables requeridas.
	TLSMode string `yaml:"tls_mode"`

	// DialTimeout acota el intercambio SMTP completo (default 30s).
	DialTimeout time.Duration `yaml:"-"`
}

// Config es la configuración completa del servicio.
type Config struct {
	App struct {
		// dev | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Limits struct {
		// MaxBodyBytes limita el body JSON (default 1MB).
		MaxBodyBytes int64 `yaml:"max_body_bytes"`
		// MaxAttachmentBytes limita el adjunto en memoria (default 10MB).
		MaxAttachmentBytes int64 `yaml:"max_attachment_bytes"`
	} `yaml:"limits"`

	SMTP SMTP `yaml:"smtp"`
}

// Load lee el archivo YAML (si existe) y el entorno, y valida lo requerido.
// path vacío usa COURIER_CONFIG o "courier.yaml" como fallback.
// Retorna *MissingEnvError si falta configuración SMTP requerida.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	if path == "" {
		path = getenv("COURIER_CONFIG", "courier.yaml")
	}
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// Overrides por entorno (mismo criterio que el YAML: no secretos).
	if v := os.Getenv("COURIER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}

	if err := cfg.loadSMTPEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.App.Env = "dev"
	c.App.LogLevel = "info"
	c.Server.Addr = ":8000"
	c.Server.ReadTimeout = "10s"
	c.Server.WriteTimeout = "60s"
	c.Limits.MaxBodyBytes = 1 << 20
	c.Limits.MaxAttachmentBytes = 10 << 20
	c.SMTP.TLSMode = "starttls"
	c.SMTP.DialTimeout = 30 * time.Second
}

// loadSMTPEnv lee las seis variables SMTP. Las cinco primeras son requeridas.
func (c *Config) loadSMTPEnv() error {
	var missing []string

	read := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	c.SMTP.Server = read(EnvSMTPServer)
	portStr := read(EnvSMTPPort)
	c.SMTP.Username = read(EnvSMTPUsername)
	c.SMTP.Password = read(EnvSMTPPassword)
	c.SMTP.SenderEmail = read(EnvSenderEmail)

	if len(missing) > 0 {
		return &MissingEnvError{Vars: missing}
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("config: %s must be a positive integer, got %q", EnvSMTPPort, portStr)
	}
	c.SMTP.Port = port

	if !validation.ValidEmail(c.SMTP.SenderEmail) {
		return fmt.Errorf("config: %s is not a valid email address", EnvSenderEmail)
	}

	c.SMTP.SenderName = getenv(EnvSenderName, DefaultSenderName)

	switch c.SMTP.TLSMode {
	case "starttls", "ssl", "none":
	default:
		return fmt.Errorf("config: smtp.tls_mode must be starttls, ssl or none, got %q", c.SMTP.TLSMode)
	}
	return nil
}

// ReadTimeoutDuration parsea Server.ReadTimeout con fallback.
func (c *Config) ReadTimeoutDuration() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 10*time.Second)
}

// WriteTimeoutDuration parsea Server.WriteTimeout con fallback.
// El write timeout cubre el round-trip SMTP completo, por eso es más largo.
func (c *Config) WriteTimeoutDuration() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 60*time.Second)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
