package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/config"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
)

// Mailer sends transactional email over SMTP. With no SMTP credentials
// configured it logs the message instead, so local development never
// needs a mail account.
type Mailer struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

var otpTemplate = template.Must(template.New("otp").Parse(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px; background-color: #f5f5f5;">
	<div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 40px; border-radius: 10px;">
		<h1 style="color: #333;">Divine Grace Ventures</h1>
		<p style="color: #666; line-height: 1.6;">
			Hello {{.Name}},<br>
			Use the code below to verify your email address. It expires in {{.ExpiryMinutes}} minutes.
		</p>
		<div style="background-color: #f8f9fa; padding: 30px; border-radius: 8px; text-align: center;">
			<h2 style="color: #333; margin: 0; font-size: 36px; letter-spacing: 4px;">{{.Code}}</h2>
		</div>
		<p style="color: #999; font-size: 12px; margin-top: 30px;">
			If you did not request this code, you can safely ignore this email.
		</p>
	</div>
</body>
</html>
`))

var notificationTemplate = template.Must(template.New("notification").Parse(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px; background-color: #f5f5f5;">
	<div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 40px; border-radius: 10px;">
		<h1 style="color: #333;">Divine Grace Ventures</h1>
		<p style="color: #666; line-height: 1.6;">{{.Message}}</p>
		{{if .Detail}}<p style="color: #666; line-height: 1.6;">{{.Detail}}</p>{{end}}
	</div>
</body>
</html>
`))

type otpData struct {
	Name          string
	Code          string
	ExpiryMinutes int
}

type notificationData struct {
	Message string
	Detail  string
}

// SendOTP emails a one-time verification code
func (m *Mailer) SendOTP(to, name, code string, expiryMinutes int) error {
	var body bytes.Buffer
	if err := otpTemplate.Execute(&body, otpData{Name: name, Code: code, ExpiryMinutes: expiryMinutes}); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	return m.send(to, "Your Divine Grace verification code", body.String())
}

// SendNotification emails a storefront event message
func (m *Mailer) SendNotification(to, subject, message, detail string) error {
	var body bytes.Buffer
	if err := notificationTemplate.Execute(&body, notificationData{Message: message, Detail: detail}); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	return m.send(to, subject, body.String())
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	if m.cfg.From == "" || m.cfg.Password == "" {
		logger.Info("[DEV MODE] Email not sent", map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return nil
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.cfg.From, to, subject, htmlBody,
	)

	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
