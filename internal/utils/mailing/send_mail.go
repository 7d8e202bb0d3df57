package mailing

import (
	"fmt"
	"strconv"

	"lifecycle/internal/utils"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

type (
	Mailer interface {
		SendMail(toEmail string, subject string, body string) error
	}

	MailConfig struct {
		AppURL       string
		SMTPHost     string
		SMTPPort     string
		SMTPSender   string
		SMTPEmail    string
		SMTPPassword string
	}

	smtpMailer struct {
		config MailConfig
	}
)

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

func NewMailer(config MailConfig) Mailer {
	return &smtpMailer{config: config}
}

func (m *smtpMailer) SendMail(toEmail string, subject string, body string) error {
	port, err := strconv.Atoi(m.config.SMTPPort)
	if err != nil {
		return errors.Wrap(err, "invalid SMTP_PORT")
	}

	mailer := gomail.NewMessage()
	if m.config.SMTPSender != "" {
		mailer.SetHeader("From", fmt.Sprintf("%s <%s>", m.config.SMTPSender, m.config.SMTPEmail))
	} else {
		mailer.SetHeader("From", m.config.SMTPEmail)
	}
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)

	dialer := gomail.NewDialer(
		m.config.SMTPHost,
		port,
		m.config.SMTPEmail,
		m.config.SMTPPassword,
	)

	if err := dialer.DialAndSend(mailer); err != nil {
		return errors.Wrapf(err, "send mail to %s", toEmail)
	}
	return nil
}
