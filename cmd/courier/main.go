// CLI cliente para el servicio de correo.
//
// Habla con la API HTTP del servicio; no toca SMTP directamente.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path, contentType string, body io.Reader) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return 0, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) postJSON(path string, payload any) (int, []byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	return c.do(http.MethodPost, path, "application/json", bytes.NewReader(raw))
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parte listas separadas por coma y descarta vacíos.
func splitList(raw string) []string {
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

func main() {
	var (
		baseURL = envOr("COURIER_URL", "http://localhost:8000")
		out     = envOr("COURIER_OUT", "text")
		timeout = 60 * time.Second
	)

	root := &cobra.Command{
		Use:   "courier",
		Short: "Cliente CLI del servicio de envío de correo",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del servicio (env COURIER_URL)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{HTTP: &http.Client{Timeout: timeout}}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cl.BaseURL = baseURL
		cl.OutFormat = out
	}

	// health
	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Chequea que el servicio responda",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do(http.MethodGet, "/healthz", "", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("health falló: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}

	// send-simple
	var simpleTo, simpleSubject, simpleBody string
	sendSimpleCmd := &cobra.Command{
		Use:   "send-simple",
		Short: "Envía un email de texto plano a un destinatario",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.postJSON("/send-simple-email", map[string]any{
				"to_email": simpleTo,
				"subject":  simpleSubject,
				"body":     simpleBody,
			})
			if err != nil {
				return err
			}
			cl.print(status, body)
			if status/100 != 2 {
				return fmt.Errorf("envío falló: status=%d", status)
			}
			return nil
		},
	}
	sendSimpleCmd.Flags().StringVar(&simpleTo, "to", "", "destinatario (requerido)")
	sendSimpleCmd.Flags().StringVar(&simpleSubject, "subject", "", "asunto (requerido)")
	sendSimpleCmd.Flags().StringVar(&simpleBody, "body", "", "cuerpo (requerido)")
	_ = sendSimpleCmd.MarkFlagRequired("to")
	_ = sendSimpleCmd.MarkFlagRequired("subject")
	_ = sendSimpleCmd.MarkFlagRequired("body")

	// send
	var sendTo, sendCc, sendBcc, sendSubject, sendBody string
	var sendHTML bool
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Envía un email con cc/bcc opcionales, texto o HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.postJSON("/send-email", map[string]any{
				"to_emails":  splitList(sendTo),
				"subject":    sendSubject,
				"body":       sendBody,
				"cc_emails":  splitList(sendCc),
				"bcc_emails": splitList(sendBcc),
				"is_html":    sendHTML,
			})
			if err != nil {
				return err
			}
			cl.print(status, body)
			if status/100 != 2 {
				return fmt.Errorf("envío falló: status=%d", status)
			}
			return nil
		},
	}
	sendCmd.Flags().StringVar(&sendTo, "to", "", "destinatarios separados por coma (requerido)")
	sendCmd.Flags().StringVar(&sendCc, "cc", "", "cc separados por coma")
	sendCmd.Flags().StringVar(&sendBcc, "bcc", "", "bcc separados por coma")
	sendCmd.Flags().StringVar(&sendSubject, "subject", "", "asunto (requerido)")
	sendCmd.Flags().StringVar(&sendBody, "body", "", "cuerpo (requerido)")
	sendCmd.Flags().BoolVar(&sendHTML, "html", false, "interpretar el cuerpo como HTML")
	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("subject")
	_ = sendCmd.MarkFlagRequired("body")

	// send-file
	var fileTo, fileCc, fileSubject, fileBody, filePath string
	var fileHTML bool
	sendFileCmd := &cobra.Command{
		Use:   "send-file",
		Short: "Envía un email con un archivo adjunto",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(filePath)
			if err != nil {
				return fmt.Errorf("no se pudo abrir %s: %w", filePath, err)
			}
			defer f.Close()

			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			_ = mw.WriteField("to_emails", fileTo)
			_ = mw.WriteField("subject", fileSubject)
			_ = mw.WriteField("body", fileBody)
			if fileCc != "" {
				_ = mw.WriteField("cc_emails", fileCc)
			}
			_ = mw.WriteField("is_html", strconv.FormatBool(fileHTML))

			part, err := mw.CreateFormFile("file", filepath.Base(filePath))
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, f); err != nil {
				return err
			}
			if err := mw.Close(); err != nil {
				return err
			}

			status, body, err := cl.do(http.MethodPost, "/send-email-with-attachment", mw.FormDataContentType(), &buf)
			if err != nil {
				return err
			}
			cl.print(status, body)
			if status/100 != 2 {
				return fmt.Errorf("envío falló: status=%d", status)
			}
			return nil
		},
	}
	sendFileCmd.Flags().StringVar(&fileTo, "to", "", "destinatarios separados por coma (requerido)")
	sendFileCmd.Flags().StringVar(&fileCc, "cc", "", "cc separados por coma")
	sendFileCmd.Flags().StringVar(&fileSubject, "subject", "", "asunto (requerido)")
	sendFileCmd.Flags().StringVar(&fileBody, "body", "", "cuerpo (requerido)")
	sendFileCmd.Flags().StringVar(&filePath, "file", "", "ruta del archivo a adjuntar (requerido)")
	sendFileCmd.Flags().BoolVar(&fileHTML, "html", false, "interpretar el cuerpo como HTML")
	_ = sendFileCmd.MarkFlagRequired("to")
	_ = sendFileCmd.MarkFlagRequired("subject")
	_ = sendFileCmd.MarkFlagRequired("body")
	_ = sendFileCmd.MarkFlagRequired("file")

	root.AddCommand(healthCmd, sendSimpleCmd, sendCmd, sendFileCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
