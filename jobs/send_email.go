package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"gopkg.in/gomail.v2"

	jobmetrics "github.com/skyfalke/backoffice/internal/jobs"
)

// SMTPConfig holds delivery settings for outbound mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SendEmailJob delivers quotation emails over SMTP.
type SendEmailJob struct {
	SMTP    SMTPConfig
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	send    func(*gomail.Message) error
}

// NewSendEmailJob wires dependencies for the email handler.
func NewSendEmailJob(smtp SMTPConfig, logger *slog.Logger, metrics *jobmetrics.Metrics) *SendEmailJob {
	job := &SendEmailJob{SMTP: smtp, Logger: logger, Metrics: metrics}
	job.send = func(m *gomail.Message) error {
		dialer := gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)
		return dialer.DialAndSend(m)
	}
	return job
}

// Handle processes mail:send tasks.
func (j *SendEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("send email: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTypeSendEmail)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	msg := gomail.NewMessage()
	msg.SetHeader("From", j.SMTP.From)
	msg.SetHeader("To", payload.To)
	msg.SetHeader("Subject", fmt.Sprintf("Quotation %s from Skyfalke", payload.QuotationNumber))
	msg.SetBody("text/html", emailBody(payload))

	if err := j.send(msg); err != nil {
		resultErr = fmt.Errorf("send quotation email: %w", err)
		j.logger().Error("deliver email", slog.String("to", payload.To), slog.Any("error", err))
		return resultErr
	}

	j.Metrics.AddEmailsSent(1)
	j.logger().Info("quotation email delivered",
		slog.String("to", payload.To),
		slog.String("quotation", payload.QuotationNumber))
	return resultErr
}

func emailBody(p SendEmailPayload) string {
	return fmt.Sprintf(`<p>Dear %s,</p>
<p>Please find attached quotation <strong>%s</strong> for a total of <strong>%s</strong>.</p>
<p>This offer is valid until %s.</p>
<p>Kind regards,<br>The Skyfalke team</p>`,
		p.ClientName, p.QuotationNumber, p.TotalDisplay, p.ExpiryDate.Format("02 Jan 2006"))
}

func (j *SendEmailJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeSendEmail))
	}
	return slog.Default().With(slog.String("job", TaskTypeSendEmail))
}

func (j *SendEmailJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}
