package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func testPayload() SendEmailPayload {
	return SendEmailPayload{
		To:              "billing@acme.test",
		ClientName:      "Acme Ltd",
		QuotationNumber: "QT-2608-0001",
		TotalDisplay:    "$ 220.00",
		ExpiryDate:      time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestSendEmailJobDelivers(t *testing.T) {
	job := NewSendEmailJob(SMTPConfig{From: "no-reply@skyfalke.com"}, nil, nil)

	var captured *gomail.Message
	job.send = func(m *gomail.Message) error {
		captured = m
		return nil
	}

	task, err := NewSendEmailTask(testPayload())
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.NotNil(t, captured)
	require.Equal(t, []string{"billing@acme.test"}, captured.GetHeader("To"))
	require.Equal(t, []string{"Quotation QT-2608-0001 from Skyfalke"}, captured.GetHeader("Subject"))
}

func TestSendEmailJobPropagatesFailure(t *testing.T) {
	job := NewSendEmailJob(SMTPConfig{From: "no-reply@skyfalke.com"}, nil, nil)

	wantErr := errors.New("smtp down")
	job.send = func(m *gomail.Message) error { return wantErr }

	task, err := NewSendEmailTask(testPayload())
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	require.ErrorIs(t, err, wantErr)
}

func TestSendEmailJobSkipsMalformedPayload(t *testing.T) {
	job := NewSendEmailJob(SMTPConfig{}, nil, nil)
	job.send = func(m *gomail.Message) error {
		t.Fatal("send must not be called for malformed payloads")
		return nil
	}

	err := job.Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{broken")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte(`{"to":""}`)))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestEmailBodyMentionsKeyFacts(t *testing.T) {
	body := emailBody(testPayload())
	require.Contains(t, body, "Acme Ltd")
	require.Contains(t, body, "QT-2608-0001")
	require.Contains(t, body, "$ 220.00")
	require.Contains(t, body, "30 Sep 2026")
}
