package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/passdesk/passdesk/internal/notify"
	"github.com/passdesk/passdesk/internal/queue"
)

type EmailWorker struct {
	mailer notify.Mailer
}

func NewEmailWorker(mailer notify.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal send_email payload: %w", err)
	}
	if payload.VisitorEmail == "" {
		return nil
	}

	body := notify.PassIssuedBody(payload.VisitorName, payload.Code, payload.ValidFrom, payload.ValidTo)
	if err := w.mailer.Send(ctx, payload.VisitorEmail, "Your Visitor Pass", body); err != nil {
		// Returned for asynq's retry policy; the issuing caller never
		// sees this.
		return err
	}

	slog.Info("sent pass email", "pass_id", payload.PassID, "to", payload.VisitorEmail)
	return nil
}
