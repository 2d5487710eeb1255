package jobs

import (
	"context"

	"github.com/skyfalke/backoffice/internal/quotations"
)

// QuotationMailer adapts the queue client to the mailer port the quotation
// service expects.
type QuotationMailer struct {
	client *Client
}

// NewQuotationMailer wraps the Asynq client.
func NewQuotationMailer(client *Client) *QuotationMailer {
	return &QuotationMailer{client: client}
}

// EnqueueQuotationEmail queues the quotation email for background delivery.
func (m *QuotationMailer) EnqueueQuotationEmail(ctx context.Context, email quotations.QuotationEmail) error {
	_, err := m.client.EnqueueSendEmail(ctx, SendEmailPayload{
		To:              email.To,
		ClientName:      email.ClientName,
		QuotationNumber: email.QuotationNumber,
		TotalDisplay:    email.TotalDisplay,
		ExpiryDate:      email.ExpiryDate,
	})
	return err
}
