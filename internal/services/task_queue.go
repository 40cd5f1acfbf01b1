package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/huangang/feedbacklens/internal/config"
	"github.com/huangang/feedbacklens/pkg/logger"
)

const (
	TaskTypeAlert = "review:alert"
)

// AlertTask describes a stored review that needs a human to look at it.
type AlertTask struct {
	ReviewID           string    `json:"review_id"`
	Rating             int       `json:"rating"`
	ReviewText         string    `json:"review_text"`
	AISummary          string    `json:"ai_summary"`
	RecommendedActions []string  `json:"recommended_actions"`
	CreatedAt          time.Time `json:"created_at"`
}

// TaskProcessor handles one alert task.
type TaskProcessor func(context.Context, *AlertTask) error

// TaskQueue defines the interface for alert task processing
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *AlertTask) error
	// IsAsync returns true if tasks are handed to Redis
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// NewTaskQueue picks the Redis-backed queue when Redis is enabled and
// reachable, and the in-process queue otherwise.
func NewTaskQueue(cfg *config.RedisConfig) TaskQueue {
	if cfg.Enabled {
		queue, err := NewAsyncQueue(cfg)
		if err == nil {
			logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Addr)
			return queue
		}
		logger.Warnf("[TaskQueue] Redis unavailable, falling back to in-process queue: %v", err)
	} else {
		logger.Infof("[TaskQueue] In-process queue initialized (Redis disabled)")
	}
	return NewLocalQueue()
}

func redisClientOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := redisClientOpt(cfg)
	client := asynq.NewClient(redisOpt)

	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue adds an alert task to the async queue
func (q *AsyncQueue) Enqueue(task *AlertTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	info, err := q.client.Enqueue(asynq.NewTask(TaskTypeAlert, payload),
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return err
	}

	logger.Debug().Str("task_id", info.ID).Str("queue", info.Queue).Str("review_id", task.ReviewID).Msg("[AsyncQueue] Task enqueued")
	return nil
}

func (q *AsyncQueue) IsAsync() bool {
	return true
}

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// LocalQueue runs each task on its own goroutine inside the server process.
type LocalQueue struct {
	processor TaskProcessor
}

func NewLocalQueue() *LocalQueue {
	return &LocalQueue{}
}

// SetProcessor sets the function run for every enqueued task
func (q *LocalQueue) SetProcessor(processor TaskProcessor) {
	q.processor = processor
}

// Enqueue starts processing and returns immediately.
func (q *LocalQueue) Enqueue(task *AlertTask) error {
	if q.processor == nil {
		logger.Warnf("[LocalQueue] no processor set, alert for review %s dropped", task.ReviewID)
		return nil
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := q.processor(ctx, task); err != nil {
			logger.Warnf("[LocalQueue] Task processing failed: %v", err)
		}
	}()

	return nil
}

func (q *LocalQueue) IsAsync() bool {
	return false
}

func (q *LocalQueue) Close() error {
	return nil
}
