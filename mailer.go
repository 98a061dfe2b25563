package accounts

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/smtp"

	"github.com/gofiber/template/django/v3"
)

// Email template names shipped with the binary.
const (
	TemplateWelcomeMail    = "welcome_mail"
	TemplateForgotPassword = "forgot_password"
)

// MailMessage is a rendered-template email.
type MailMessage struct {
	Subject  string
	Template string
	Context  map[string]any
}

// Mailer delivers a single message to a recipient.
type Mailer interface {
	Send(ctx context.Context, to string, msg MailMessage) error
}

// NewMailEngine loads the django email templates from the embedded FS.
func NewMailEngine() (*django.Engine, error) {
	engine := django.NewFileSystem(http.FS(GetTemplatesFS()), ".html")
	if err := engine.Load(); err != nil {
		return nil, err
	}
	return engine, nil
}

// SMTPMailer renders django templates and delivers them over SMTP.
type SMTPMailer struct {
	addr   string
	from   string
	auth   smtp.Auth
	engine *django.Engine
}

func NewSMTPMailer(addr, from string, auth smtp.Auth, engine *django.Engine) *SMTPMailer {
	return &SMTPMailer{
		addr:   addr,
		from:   from,
		auth:   auth,
		engine: engine,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to string, msg MailMessage) error {
	body := &bytes.Buffer{}
	if err := m.engine.Render(body, "email/"+msg.Template, msg.Context); err != nil {
		return err
	}

	payload := &bytes.Buffer{}
	fmt.Fprintf(payload, "From: %s\r\n", m.from)
	fmt.Fprintf(payload, "To: %s\r\n", to)
	fmt.Fprintf(payload, "Subject: %s\r\n", msg.Subject)
	payload.WriteString("MIME-Version: 1.0\r\n")
	payload.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	payload.WriteString("\r\n")
	payload.Write(body.Bytes())

	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, payload.Bytes())
}

// LogMailer writes messages to the logger instead of delivering them.
// Useful for development and tests.
type LogMailer struct {
	logger Logger
}

func NewLogMailer(l Logger) *LogMailer {
	if l == nil {
		l = defLogger{}
	}
	return &LogMailer{logger: l}
}

func (m *LogMailer) Send(ctx context.Context, to string, msg MailMessage) error {
	m.logger.Info("email notification to=%s subject=%q template=%s", to, msg.Subject, msg.Template)
	return nil
}

// Dispatcher fires emails without blocking the request path. Delivery
// runs in a detached goroutine; failures are logged and invisible to
// the caller.
type Dispatcher struct {
	mailer Mailer
	logger Logger
}

func NewDispatcher(mailer Mailer) *Dispatcher {
	return &Dispatcher{
		mailer: mailer,
		logger: defLogger{},
	}
}

func (d *Dispatcher) WithLogger(l Logger) *Dispatcher {
	if l != nil {
		d.logger = l
	}
	return d
}

// Dispatch queues the message and returns immediately. The request
// does not wait on delivery and never observes its outcome.
func (d *Dispatcher) Dispatch(to string, msg MailMessage) {
	go func() {
		if err := d.mailer.Send(context.Background(), to, msg); err != nil {
			d.logger.Error("email dispatch failed to=%s template=%s: %v", to, msg.Template, err)
		}
	}()
}
