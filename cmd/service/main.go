// Servicio HTTP de envío de correo.
//
// Carga configuración desde variables de entorno (y un courier.yaml
// opcional), arma el stack y sirve hasta recibir SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/courier/internal/config"
	emailctrl "github.com/dropDatabas3/courier/internal/http/controllers/email"
	healthctrl "github.com/dropDatabas3/courier/internal/http/controllers/health"
	emailsvc "github.com/dropDatabas3/courier/internal/http/services/email"
	"github.com/dropDatabas3/courier/internal/mailer"
	"github.com/dropDatabas3/courier/internal/observability/logger"
	"github.com/dropDatabas3/courier/internal/validation"

	srv "github.com/dropDatabas3/courier/internal/http"
)

// version se sobreescribe en build con -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env es opcional; en producción las variables vienen del entorno.
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "courier: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "courier",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()

	log := logger.Named("main")
	log.Info("starting courier",
		logger.String("env", cfg.App.Env),
		logger.Host(cfg.SMTP.Server),
		logger.Port(cfg.SMTP.Port),
	)

	metricsHandler, err := srv.RegisterMetrics(nil)
	if err != nil {
		log.Error("metrics registration failed", logger.Err(err))
		os.Exit(1)
	}

	validator, err := validation.New()
	if err != nil {
		log.Error("validator setup failed", logger.Err(err))
		os.Exit(1)
	}

	smtpService := mailer.NewSMTPService(mailer.SMTPConfig{
		Host:        cfg.SMTP.Server,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		FromEmail:   cfg.SMTP.SenderEmail,
		FromName:    cfg.SMTP.SenderName,
		TLSMode:     cfg.SMTP.TLSMode,
		DialTimeout: cfg.SMTP.DialTimeout,
	})

	sendService := emailsvc.NewSendService(emailsvc.Deps{
		Mailer:    smtpService,
		Validator: validator,
	})

	handler := srv.NewRouter(srv.RouterDeps{
		Email: emailctrl.NewControllers(sendService, emailctrl.Config{
			MaxBodyBytes:       cfg.Limits.MaxBodyBytes,
			MaxAttachmentBytes: cfg.Limits.MaxAttachmentBytes,
		}),
		Health:             healthctrl.NewControllers(version),
		Metrics:            metricsHandler,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx, srv.ServerConfig{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.ReadTimeoutDuration(),
		WriteTimeout: cfg.WriteTimeoutDuration(),
	}, handler); err != nil {
		log.Error("server exited with error", logger.Err(err))
		os.Exit(1)
	}

	log.Info("courier stopped")
}
