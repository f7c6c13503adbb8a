package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	emailctrl "github.com/dropDatabas3/courier/internal/http/controllers/email"
	healthctrl "github.com/dropDatabas3/courier/internal/http/controllers/health"
	emailsvc "github.com/dropDatabas3/courier/internal/http/services/email"
	"github.com/dropDatabas3/courier/internal/mailer"
	"github.com/dropDatabas3/courier/internal/validation"
)

// mockMailer captura los mensajes que llegan a la capa de despacho.
type mockMailer struct {
	calls []mailer.Message
	err   error
}

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) (mailer.Result, error) {
	m.calls = append(m.calls, msg)
	if m.err != nil {
		return mailer.Result{Message: "Error al enviar el email", Detail: m.err.Error()}, m.err
	}
	n := len(msg.Recipients())
	return mailer.Result{
		Success:    true,
		Message:    fmt.Sprintf("Email enviado exitosamente a %d destinatarios", n),
		Recipients: n,
	}, nil
}

func newTestRouter(t *testing.T, m mailer.Service) stdhttp.Handler {
	t.Helper()

	sendSvc := emailsvc.NewSendService(emailsvc.Deps{
		Mailer:    m,
		Validator: validation.MustNew(),
	})
	ctrls := emailctrl.NewControllers(sendSvc, emailctrl.Config{
		MaxBodyBytes:       1 << 20,
		MaxAttachmentBytes: 10 << 20,
	})
	return NewRouter(RouterDeps{
		Email:  ctrls,
		Health: healthctrl.NewControllers("test"),
	})
}

func postJSON(t *testing.T, h stdhttp.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(stdhttp.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

type successBody struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Recipients []string `json:"recipients"`
}

func TestSendSimpleEmail_OK(t *testing.T) {
	mock := &mockMailer{}
	h := newTestRouter(t, mock)

	rec := postJSON(t, h, "/send-simple-email", map[string]any{
		"to_email": "a@b.com",
		"subject":  "Hola",
		"body":     "contenido",
	})

	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var resp successBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "Email enviado exitosamente a 1 destinatarios", resp.Message)
	require.Equal(t, []string{"a@b.com"}, resp.Recipients)

	require.Len(t, mock.calls, 1)
	msg := mock.calls[0]
	require.Equal(t, []string{"a@b.com"}, msg.To)
	require.Empty(t, msg.Cc)
	require.Empty(t, msg.Bcc)
	require.False(t, msg.HTML)
	require.Nil(t, msg.Attachment)
}

func TestSendSimpleEmail_InvalidEmail(t *testing.T) {
	mock := &mockMailer{}
	h := newTestRouter(t, mock)

	rec := postJSON(t, h, "/send-simple-email", map[string]any{
		"to_email": "no-es-un-email",
		"subject":  "Hola",
		"body":     "contenido",
	})

	require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)

	var resp errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "VALIDATION_FAILED", resp.Code)
	require.Contains(t, resp.Detail, "to_email")

	require.Empty(t, mock.calls, "el despacho no debe invocarse con request inválido")
}

func TestSendSimpleEmail_MissingFields(t *testing.T) {
	mock := &mockMailer{}
	h := newTestRouter(t, mock)

	rec := postJSON(t, h, "/send-simple-email", map[string]any{
		"to_email": "a@b.com",
	})

	require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)

	var resp errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Detail, "subject")
	require.Contains(t, resp.Detail, "body")
	require.Empty(t, mock.calls)
}

func TestSendSimpleEmail_InvalidJSON(t *testing.T) {
	mock := &mockMailer{}
	h := newTestRouter(t, mock)

	req := httptest.NewRequest(stdhttp.MethodPost, "/send-simple-email", strings.NewReader("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusBadRequest, rec.Code)

	var resp errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "INVALID_JSON", resp.Code)
	require.Empty(t, mock.calls)
}

func TestSendEmail_FullOptions(t *testing.T) {
	mock := &mockMailer{}
	h := newTestRouter(t, mock)

	rec := postJSON(t, h, "/send-email", map[string]any{
		"to_emails":  []string{"a@b.com", "c@d.com"},
		"subject":    "Reporte",
		"body":       "<h1>Hola</h1>",
		"cc_emails":  []string{"cc@b.com"},
		"bcc_emails": []string{"bcc@b.com"},
		"is_html":    true,
	})

	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var resp successBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "Email enviado exitosamente a 4 destinatarios", resp.Message)
	require.ElementsMatch(t, []string{"a@b.com", "c@d.com", "cc@b.com", "bcc@b.com"}, resp.Recipients)

	require.Len(t, mock.calls, 1)
	msg := mock.calls[0]
	require.Equal(t, []string{"a@b.com", "c@d.com"}, msg.To)
	require.Equal(t, []string{"cc@b.com"}, msg.Cc)
	require.Equal(t, []string{"bcc@b.com"}, msg.Bcc)
	require.True(t, msg.HTML)
}

func TestSendEmail_EmptyRecipients(t *testing.T) {
	mock := &mockMailer{}
	h := newTestRouter(t, mock)

	rec := postJSON(t, h, "/send-email", map[string]any{
		"to_emails": []string{},
		"subject":   "Hola",
		"body":      "contenido",
	})

	require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	require.Empty(t, mock.calls)
}

func TestSendEmail_InvalidRecipientInList(t *testing.T) {
	mock := &mockMailer{}
	h := newTestRouter(t, mock)

	rec := postJSON(t, h, "/send-email", map[string]any{
		"to_emails": []string{"ok@b.com", "malo"},
		"subject":   "Hola",
		"body":      "contenido",
	})

	require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)

	var resp errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Detail, "to_emails[1]")
	require.Empty(t, mock.calls)
}

func TestSendEmail_InvalidCcRejectsWholeRequest(t *testing.T) {
	mock := &mockMailer{}
	h := newTestRouter(t, mock)

	rec := postJSON(t, h, "/send-email", map[string]any{
		"to_emails": []string{"ok@b.com"},
		"subject":   "Hola",
		"body":      "contenido",
		"cc_emails": []string{"tampoco-es-email"},
	})

	require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	require.Empty(t, mock.calls, "cc inválido rechaza el request completo, no se envía nada")
}

func TestSendEmail_DispatchFailure(t *testing.T) {
	mock := &mockMailer{err: fmt.Errorf("%w: 535 authentication failed", mailer.ErrAuth)}
	h := newTestRouter(t, mock)

	rec := postJSON(t, h, "/send-email", map[string]any{
		"to_emails": []string{"a@b.com"},
		"subject":   "Hola",
		"body":      "contenido",
	})

	require.Equal(t, stdhttp.StatusInternalServerError, rec.Code)

	var resp errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "DISPATCH_FAILED", resp.Code)
	require.Contains(t, resp.Detail, "authentication failed")
	require.Len(t, mock.calls, 1, "el despacho sí se intentó")
}

func TestSendEmailWithAttachment_OK(t *testing.T) {
	mock := &mockMailer{}
	h := newTestRouter(t, mock)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("to_emails", "a@b.com, c@d.com"))
	require.NoError(t, mw.WriteField("subject", "Factura"))
	require.NoError(t, mw.WriteField("body", "adjunto la factura"))
	require.NoError(t, mw.WriteField("cc_emails", "cc@b.com"))

	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", `form-data; name="file"; filename="factura.pdf"`)
	partHeader.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 contenido"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(stdhttp.MethodPost, "/send-email-with-attachment", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var resp successBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.ElementsMatch(t, []string{"a@b.com", "c@d.com", "cc@b.com"}, resp.Recipients)

	require.Len(t, mock.calls, 1)
	msg := mock.calls[0]
	require.Equal(t, []string{"a@b.com", "c@d.com"}, msg.To)
	require.Equal(t, []string{"cc@b.com"}, msg.Cc)
	require.NotNil(t, msg.Attachment)
	require.Equal(t, "factura.pdf", msg.Attachment.Filename)
	require.Equal(t, "application/pdf", msg.Attachment.MIMEType)
	require.Equal(t, []byte("%PDF-1.4 contenido"), msg.Attachment.Content)
}

func TestSendEmailWithAttachment_MissingFile(t *testing.T) {
	mock := &mockMailer{}
	h := newTestRouter(t, mock)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("to_emails", "a@b.com"))
	require.NoError(t, mw.WriteField("subject", "Hola"))
	require.NoError(t, mw.WriteField("body", "contenido"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(stdhttp.MethodPost, "/send-email-with-attachment", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusBadRequest, rec.Code)

	var resp errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "BAD_REQUEST", resp.Code)
	require.Empty(t, mock.calls)
}

func TestSendEmailWithAttachment_InvalidIsHTML(t *testing.T) {
	mock := &mockMailer{}
	h := newTestRouter(t, mock)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("to_emails", "a@b.com"))
	require.NoError(t, mw.WriteField("subject", "Hola"))
	require.NoError(t, mw.WriteField("body", "contenido"))
	require.NoError(t, mw.WriteField("is_html", "quizás"))
	fw, err := mw.CreateFormFile("file", "nota.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("hola"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(stdhttp.MethodPost, "/send-email-with-attachment", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	require.Empty(t, mock.calls)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestRouter(t, &mockMailer{})

	req := httptest.NewRequest(stdhttp.MethodGet, "/send-email", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusMethodNotAllowed, rec.Code)

	var resp errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "METHOD_NOT_ALLOWED", resp.Code)
}

func TestNotFound(t *testing.T) {
	h := newTestRouter(t, &mockMailer{})

	req := httptest.NewRequest(stdhttp.MethodGet, "/no-existe", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestRouter(t, &mockMailer{})

	req := httptest.NewRequest(stdhttp.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status"`)
}

func TestIndex(t *testing.T) {
	h := newTestRouter(t, &mockMailer{})

	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/send-simple-email")
}

func TestSendEndpointsSetNoStore(t *testing.T) {
	mock := &mockMailer{}
	h := newTestRouter(t, mock)

	rec := postJSON(t, h, "/send-simple-email", map[string]any{
		"to_email": "a@b.com",
		"subject":  "Hola",
		"body":     "contenido",
	})

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestDispatchErrorDoesNotLeakCredentials(t *testing.T) {
	mock := &mockMailer{err: errors.New("535 auth failed for user secretuser")}
	h := newTestRouter(t, mock)

	rec := postJSON(t, h, "/send-email", map[string]any{
		"to_emails": []string{"a@b.com"},
		"subject":   "Hola",
		"body":      "contenido",
	})

	require.Equal(t, stdhttp.StatusInternalServerError, rec.Code)

	var resp errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "INTERNAL_SERVER_ERROR", resp.Code, "errores no clasificados no exponen detalle")
	require.Empty(t, resp.Detail)
}
