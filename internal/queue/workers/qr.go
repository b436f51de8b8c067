package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/passdesk/passdesk/internal/artifact"
	"github.com/passdesk/passdesk/internal/queue"
)

// QRWorker renders a pass's QR PNG into artifact storage. The public URL
// was already recorded at issuance; this just materializes the bytes behind
// it.
type QRWorker struct {
	storage artifact.Storage
}

func NewQRWorker(storage artifact.Storage) *QRWorker {
	return &QRWorker{storage: storage}
}

func (w *QRWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.RenderQRPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal render_qr payload: %w", err)
	}

	png, err := artifact.EncodeQR(payload.Code)
	if err != nil {
		return err
	}
	if err := w.storage.Save(ctx, artifact.QRRelPath(payload.Code), png); err != nil {
		return err
	}

	slog.Info("rendered qr image", "pass_id", payload.PassID, "code", payload.Code)
	return nil
}
