package mailer

import (
	"bytes"
	"strings"
	"testing"
)

func testService() *SMTPService {
	return NewSMTPService(SMTPConfig{
		Host:      "smtp.example.com",
		Port:      587,
		Username:  "mailer@example.com",
		Password:  "secret",
		FromEmail: "noreply@example.com",
		FromName:  "Courier Mailer",
	})
}

// render compone el mensaje y lo escribe como lo vería el servidor SMTP.
func render(t *testing.T, msg Message) string {
	t.Helper()
	s := testService()
	m, err := s.compose(msg)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("write message: %v", err)
	}
	return buf.String()
}

func TestCompose_PlainText(t *testing.T) {
	raw := render(t, Message{
		To:      []string{"a@b.com"},
		Subject: "Hi",
		Body:    "hello",
	})

	if !strings.Contains(raw, "Content-Type: text/plain") {
		t.Fatalf("expected text/plain body, got:\n%s", raw)
	}
	if strings.Contains(raw, "text/html") {
		t.Fatalf("did not expect html part:\n%s", raw)
	}
	if !strings.Contains(raw, "To: a@b.com") {
		t.Fatalf("missing To header:\n%s", raw)
	}
	if !strings.Contains(raw, "Subject: Hi") {
		t.Fatalf("missing Subject header:\n%s", raw)
	}
	if !strings.Contains(raw, "noreply@example.com") {
		t.Fatalf("missing From address:\n%s", raw)
	}
}

func TestCompose_HTML(t *testing.T) {
	raw := render(t, Message{
		To:      []string{"a@b.com"},
		Subject: "Hi",
		Body:    "<h1>hello</h1>",
		HTML:    true,
	})

	if !strings.Contains(raw, "Content-Type: text/html") {
		t.Fatalf("expected text/html body, got:\n%s", raw)
	}
}

func TestCompose_BccNotInHeaders(t *testing.T) {
	msg := Message{
		To:      []string{"to@example.com"},
		Cc:      []string{"cc@example.com"},
		Bcc:     []string{"hidden@example.com"},
		Subject: "secreto",
		Body:    "body",
	}
	raw := render(t, msg)

	if strings.Contains(raw, "hidden@example.com") {
		t.Fatalf("bcc address leaked into message:\n%s", raw)
	}
	if !strings.Contains(raw, "Cc: cc@example.com") {
		t.Fatalf("missing Cc header:\n%s", raw)
	}

	// El envelope sí incluye al Bcc.
	got := msg.Recipients()
	want := []string{"to@example.com", "cc@example.com", "hidden@example.com"}
	if len(got) != len(want) {
		t.Fatalf("recipients = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("recipients = %v, want %v", got, want)
		}
	}
}

func TestCompose_Attachment(t *testing.T) {
	raw := render(t, Message{
		To:      []string{"a@b.com"},
		Subject: "informe",
		Body:    "adjunto el informe",
		Attachment: &Attachment{
			Filename: "report.pdf",
			Content:  []byte("%PDF-1.4 fake"),
			MIMEType: "application/pdf",
		},
	})

	if !strings.Contains(raw, "multipart/mixed") {
		t.Fatalf("expected multipart message:\n%s", raw)
	}
	if !strings.Contains(raw, "application/pdf") {
		t.Fatalf("expected declared mime type:\n%s", raw)
	}
	if !strings.Contains(raw, "report.pdf") {
		t.Fatalf("expected original filename:\n%s", raw)
	}
	if strings.Count(raw, "Content-Disposition: attachment") != 1 {
		t.Fatalf("expected exactly one attachment part:\n%s", raw)
	}
}

func TestCompose_EmptyAttachmentRejected(t *testing.T) {
	s := testService()

	_, err := s.compose(Message{
		To:         []string{"a@b.com"},
		Subject:    "x",
		Body:       "y",
		Attachment: &Attachment{Filename: "empty.bin"},
	})
	if err == nil {
		t.Fatal("expected error for empty attachment")
	}

	_, err = s.compose(Message{
		To:         []string{"a@b.com"},
		Subject:    "x",
		Body:       "y",
		Attachment: &Attachment{Content: []byte("data")},
	})
	if err == nil {
		t.Fatal("expected error for attachment without filename")
	}
}

func TestDialer_TLSModes(t *testing.T) {
	s := testService()

	d := s.dialer()
	if d.SSL {
		t.Fatal("starttls mode should not use direct SSL")
	}
	if d.TLSConfig == nil || d.TLSConfig.ServerName != "smtp.example.com" {
		t.Fatalf("unexpected tls config: %+v", d.TLSConfig)
	}
	if d.Timeout <= 0 {
		t.Fatal("expected a dial timeout")
	}

	s.cfg.TLSMode = "ssl"
	if !s.dialer().SSL {
		t.Fatal("ssl mode should set SSL")
	}
}
