package worker

// email_worker.go
// Processes email jobs from QueueEmail: password reset links and the daily
// due-date digest.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"floreria/internal/infra"

	"github.com/rs/zerolog/log"
)

const JobEmail = "email"

// EmailJob is the payload pushed to QueueEmail.
type EmailJob struct {
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	Body        string             `json:"body"`
	Attachments []infra.Attachment `json:"attachments,omitempty"`
}

// Sender is satisfied by *infra.Mailer.
type Sender interface {
	Send(msg infra.Message) error
}

type EmailWorker struct {
	mailer Sender
}

func NewEmailWorker(mailer Sender) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends one message. Malformed payloads, empty recipients, a disabled
// mailer and messages the relay rejects fail permanently.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var job EmailJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %v: %w", err, ErrPermanent)
	}
	if len(job.To) == 0 {
		return fmt.Errorf("email_worker: no recipients: %w", ErrPermanent)
	}

	err := w.mailer.Send(infra.Message{
		To:          job.To,
		Subject:     job.Subject,
		Text:        job.Body,
		Attachments: job.Attachments,
	})
	switch {
	case errors.Is(err, infra.ErrMailDisabled):
		log.Warn().Str("subject", job.Subject).Msg("email_worker: smtp disabled, message dropped")
		return fmt.Errorf("email_worker: %v: %w", err, ErrPermanent)
	case errors.Is(err, infra.ErrMessageRejected):
		log.Error().Err(err).Strs("to", job.To).Msg("email_worker: message rejected by relay")
		return fmt.Errorf("email_worker: %v: %w", err, ErrPermanent)
	case err != nil:
		log.Error().Err(err).Strs("to", job.To).Msg("email_worker: failed to send email")
		return err
	}
	log.Info().Strs("to", job.To).Str("subject", job.Subject).Msg("email_worker: sent")
	return nil
}
