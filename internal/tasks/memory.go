package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// MemoryQueue records enqueued tasks in memory. It backs development setups
// without a Cloud Tasks queue and the test suite.
type MemoryQueue struct {
	mu    sync.Mutex
	tasks []summary.Task
}

// NewMemoryQueue constructs an empty MemoryQueue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

// EnqueueSummaryTask appends the task and returns a synthetic task name.
func (q *MemoryQueue) EnqueueSummaryTask(_ context.Context, task summary.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return fmt.Sprintf("memory/tasks/%d", len(q.tasks)), nil
}

// Tasks returns a copy of the enqueued tasks.
func (q *MemoryQueue) Tasks() []summary.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]summary.Task, len(q.tasks))
	copy(out, q.tasks)
	return out
}
