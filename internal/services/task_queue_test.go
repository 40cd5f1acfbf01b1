package services

import (
	"context"
	"testing"
	"time"

	"github.com/huangang/feedbacklens/internal/config"
)

func TestTaskTypeAlert_Constant(t *testing.T) {
	if TaskTypeAlert != "review:alert" {
		t.Errorf("TaskTypeAlert = %q, expected %q", TaskTypeAlert, "review:alert")
	}
}

func TestNewTaskQueue_RedisDisabled(t *testing.T) {
	queue := NewTaskQueue(&config.RedisConfig{Enabled: false})
	if _, ok := queue.(*LocalQueue); !ok {
		t.Fatalf("expected *LocalQueue, got %T", queue)
	}
	if queue.IsAsync() {
		t.Error("LocalQueue.IsAsync() should return false")
	}
}

func TestNewTaskQueue_RedisUnreachable(t *testing.T) {
	queue := NewTaskQueue(&config.RedisConfig{Enabled: true, Addr: "127.0.0.1:1"})
	defer queue.Close()
	if _, ok := queue.(*LocalQueue); !ok {
		t.Fatalf("expected fallback to *LocalQueue, got %T", queue)
	}
}

func TestLocalQueue_Close(t *testing.T) {
	queue := NewLocalQueue()
	if err := queue.Close(); err != nil {
		t.Errorf("LocalQueue.Close() should return nil, got %v", err)
	}
}

func TestLocalQueue_EnqueueWithoutProcessor(t *testing.T) {
	queue := NewLocalQueue()
	if err := queue.Enqueue(&AlertTask{ReviewID: "r-1", Rating: 1}); err != nil {
		t.Errorf("Enqueue without processor should not error, got %v", err)
	}
}

func TestLocalQueue_ProcessesInBackground(t *testing.T) {
	queue := NewLocalQueue()
	done := make(chan *AlertTask, 1)
	queue.SetProcessor(func(ctx context.Context, task *AlertTask) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("processor context should carry a deadline")
		}
		done <- task
		return nil
	})

	if err := queue.Enqueue(&AlertTask{ReviewID: "r-2", Rating: 2}); err != nil {
		t.Fatalf("Enqueue returned %v", err)
	}

	select {
	case task := <-done:
		if task.ReviewID != "r-2" {
			t.Errorf("ReviewID = %q, expected %q", task.ReviewID, "r-2")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task was not processed")
	}
}

func TestAsyncQueue_IsAsync(t *testing.T) {
	queue := &AsyncQueue{}
	if !queue.IsAsync() {
		t.Error("AsyncQueue.IsAsync() should return true")
	}
}

func TestNewWorker_RedisDisabled(t *testing.T) {
	if w := NewWorker(&config.RedisConfig{Enabled: false}); w != nil {
		t.Error("NewWorker should return nil when Redis is disabled")
	}
}
