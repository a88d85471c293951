package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/gobarber/booking-api/internal/booking"
)

var templates = map[string]*template.Template{
	"cancellation": template.Must(template.New("cancellation").Parse(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px; background-color: #f5f5f5;">
			<h2 style="color: #333; text-align: center;">Agendamento cancelado</h2>
			<p>Olá, {{.provider}},</p>
			<p>Houve um cancelamento de horário:</p>
			<p><strong>Cliente:</strong> {{.user}}</p>
			<p><strong>Data/hora:</strong> {{.date}}</p>
			<p>O horário está novamente disponível para novos agendamentos.</p>
			<p>Equipe GoBarber.</p>
		</div>
	`)),
}

// SMTPMailer delivers templated mail through a single SMTP account.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (s *SMTPMailer) Send(ctx context.Context, m booking.Mail) error {
	tpl, ok := templates[m.Template]
	if !ok {
		return fmt.Errorf("unknown mail template %q", m.Template)
	}

	var body bytes.Buffer
	if err := tpl.Execute(&body, m.Context); err != nil {
		return fmt.Errorf("render mail template %q: %w", m.Template, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", m.To, err)
	}

	return nil
}
