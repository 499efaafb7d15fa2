package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/talentpool/resume-indexer/internal/config"
)

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

func (c *Client) EnqueueResumeIndex(payload ResumeIndexPayload) error {
	return c.enqueue(TypeResumeIndex, payload, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute))
}

// EnqueueResumeReindex schedules a bulk run. No asynq retries: the run lock
// plus item-level idempotency make a fresh enqueue the right retry unit.
func (c *Client) EnqueueResumeReindex(payload ResumeReindexPayload) error {
	return c.enqueue(TypeResumeReindex, payload, asynq.MaxRetry(0), asynq.Timeout(2*time.Hour))
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
