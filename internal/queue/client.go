package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/passdesk/passdesk/internal/config"
)

// Client enqueues the best-effort side effects of pass issuance. Callers
// treat enqueue failures as log-only events; the pass itself is already
// durable by the time anything lands here.
type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) EnqueueRenderQR(payload RenderQRPayload) error {
	return c.enqueue(TypeRenderQR, payload, asynq.MaxRetry(3), asynq.Timeout(time.Minute))
}

func (c *Client) EnqueueSendEmail(payload SendEmailPayload) error {
	return c.enqueue(TypeSendEmail, payload, asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	if _, err := c.client.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
