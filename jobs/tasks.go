package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending quotation emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeExpireQuotations is the task type for the nightly expiry sweep.
	TaskTypeExpireQuotations = "quotations:expire"
)

// SendEmailPayload describes the information required to send a quotation
// email.
type SendEmailPayload struct {
	To              string    `json:"to"`
	ClientName      string    `json:"client_name"`
	QuotationNumber string    `json:"quotation_number"`
	TotalDisplay    string    `json:"total_display"`
	ExpiryDate      time.Time `json:"expiry_date"`
}

// NewSendEmailTask constructs a send-email task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewExpireQuotationsTask constructs the expiry sweep task. The payload is
// empty; the sweep always works from the current date.
func NewExpireQuotationsTask() *asynq.Task {
	return asynq.NewTask(TaskTypeExpireQuotations, nil)
}
