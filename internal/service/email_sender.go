package service

import (
	"fmt"
	"fordrax_backend/internal/config"
	"fordrax_backend/pkg/logger"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// EmailSender 投递协作方。工人只负责编排：取任务、尝试投递、落终态
type EmailSender interface {
	Send(toName, toEmail, subject, textBody, htmlBody string) error
}

// NewEmailSender 按配置选择实现，默认 console
func NewEmailSender(cfg *config.MailConfig) EmailSender {
	if cfg.Provider == "sendgrid" && cfg.SendGridKey != "" {
		return &sendGridSender{
			key:  cfg.SendGridKey,
			from: sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
		}
	}
	return &consoleSender{}
}

type sendGridSender struct {
	key  string
	from *sgmail.Email
}

func (s *sendGridSender) Send(toName, toEmail, subject, textBody, htmlBody string) error {
	to := sgmail.NewEmail(toName, toEmail)
	message := sgmail.NewSingleEmail(s.from, subject, to, textBody, htmlBody)

	res, err := sendgrid.NewSendClient(s.key).Send(message)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// consoleSender 本地开发用，只打印日志
type consoleSender struct{}

func (s *consoleSender) Send(toName, toEmail, subject, textBody, htmlBody string) error {
	logger.Log.Info("console mail",
		zap.String("to", toEmail),
		zap.String("subject", subject),
		zap.String("body", textBody))
	return nil
}
