package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"github.com/starrycyq/travle/pkg/utils/keygen"
)

// DefaultKeywords seed a task when neither the caller nor the owner's
// preferences name any.
var DefaultKeywords = []string{"旅游", "旅行", "景点推荐"}

const (
	defaultPollInterval  = time.Second
	preferenceKeywordCap = 5
	// cancelGrace bounds the wait for a cancelled task to record its failure.
	cancelGrace = 2 * time.Second
)

// TaskService accepts scraping tasks and runs them one at a time on a single
// background worker.
type TaskService struct {
	tasks        ports.TaskRepository
	events       ports.TaskEventRepository
	preferences  ports.PreferenceRepository
	executor     ports.ScrapeExecutor
	processor    ports.ContentProcessor
	logger       *logger.Logger
	pollInterval time.Duration
	taskTimeout  time.Duration

	queue  *taskQueue
	mu     sync.Mutex
	worker *worker
}

type TaskServiceConfig struct {
	Tasks       ports.TaskRepository
	Events      ports.TaskEventRepository
	Preferences ports.PreferenceRepository
	Executor    ports.ScrapeExecutor
	Processor   ports.ContentProcessor
	Logger      *logger.Logger
	// PollInterval bounds how long the worker waits on an empty queue.
	PollInterval time.Duration
	// TaskTimeout is the deadline of a single task. Zero means none.
	TaskTimeout time.Duration
}

type worker struct {
	stop     chan struct{}
	done     chan struct{}
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func NewTaskService(cfg TaskServiceConfig) *TaskService {
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &TaskService{
		tasks:        cfg.Tasks,
		events:       cfg.Events,
		preferences:  cfg.Preferences,
		executor:     cfg.Executor,
		processor:    cfg.Processor,
		logger:       log,
		pollInterval: poll,
		taskTimeout:  cfg.TaskTimeout,
		queue:        newTaskQueue(),
	}
}

// ==================== Submission & Queries ====================

func (s *TaskService) Submit(ctx context.Context, input ports.SubmitTaskInput) (string, error) {
	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return "", fmt.Errorf("%w: owner_id is required", ErrTaskInvalidInput)
	}
	if input.MaxItems < 0 {
		return "", fmt.Errorf("%w: max_items must not be negative", ErrTaskInvalidInput)
	}

	task := &domain.ScrapeTask{
		TaskID:    keygen.NewTaskID(),
		OwnerID:   ownerID,
		Keywords:  s.resolveKeywords(ctx, ownerID, input.Keywords),
		MaxItems:  input.MaxItems,
		Status:    domain.TaskStatusPending,
		CreatedAt: now(),
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return "", fmt.Errorf("persist task: %w", err)
	}
	s.recordEvent(ctx, task.TaskID, domain.EventTypeTaskCreated, "", domain.TaskStatusPending, strings.Join(task.Keywords, ","))

	s.queue.Push(task.TaskID)
	s.logger.Infow("task_submitted", "task_id", task.TaskID, "owner_id", ownerID, "keywords", []string(task.Keywords), "max_items", task.MaxItems)
	return task.TaskID, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID string) (*domain.ScrapeTask, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// ListTasks returns the owner's tasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string) ([]domain.ScrapeTask, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner_id is required", ErrTaskInvalidInput)
	}
	tasks, err := s.tasks.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.ScrapeTask{}
	}
	return tasks, nil
}

func (s *TaskService) TaskEvents(ctx context.Context, taskID string) ([]domain.TaskEvent, error) {
	if _, err := s.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	events, err := s.events.GetByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.TaskEvent{}
	}
	return events, nil
}

// QueueLength reports how many tasks wait for the worker.
func (s *TaskService) QueueLength() int {
	return s.queue.Len()
}

func (s *TaskService) resolveKeywords(ctx context.Context, ownerID string, requested []string) domain.StringList {
	keywords := make(domain.StringList, 0, len(requested))
	for _, kw := range requested {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) > 0 {
		return keywords
	}

	if s.preferences != nil {
		prefs, err := s.preferences.GetRecentByOwner(ctx, ownerID, preferenceKeywordCap)
		if err != nil {
			s.logger.Warnw("task_preference_lookup_failed", "owner_id", ownerID, "error", err)
		}
		seen := make(map[string]bool, len(prefs))
		for _, p := range prefs {
			dest := strings.TrimSpace(p.Destination)
			if dest == "" || seen[dest] {
				continue
			}
			seen[dest] = true
			keywords = append(keywords, dest)
		}
		if len(keywords) > 0 {
			return keywords
		}
	}

	return append(keywords, DefaultKeywords...)
}

// ==================== Worker Lifecycle ====================

// Start launches the worker. Only one worker may run at a time.
func (s *TaskService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.worker != nil {
		return ErrWorkerAlreadyRunning
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w := &worker{
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	s.worker = w

	go s.run(workerCtx, w)
	s.logger.Infow("task_worker_started", "poll_interval", s.pollInterval.String(), "task_timeout", s.taskTimeout.String())
	return nil
}

// Stop asks the worker to exit after its current task and waits up to
// timeout. On timeout the in-flight task is cancelled, given a short grace
// period to persist its failure, and ErrShutdownTimeout is returned.
func (s *TaskService) Stop(timeout time.Duration) error {
	s.mu.Lock()
	w := s.worker
	s.mu.Unlock()
	if w == nil {
		return nil
	}

	w.stopOnce.Do(func() { close(w.stop) })

	select {
	case <-w.done:
		w.cancel()
		s.logger.Infow("task_worker_stopped")
		return nil
	case <-time.After(timeout):
		w.cancel()
		select {
		case <-w.done:
		case <-time.After(cancelGrace):
			s.logger.Errorw("task_worker_cancel_unacknowledged", "grace", cancelGrace.String())
		}
		s.logger.Warnw("task_worker_stop_timeout", "timeout", timeout.String())
		return ErrShutdownTimeout
	}
}

// Running reports whether a worker goroutine is alive.
func (s *TaskService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.worker != nil
}

// RequeuePending reconciles persisted state with the empty in-memory queue
// after a restart. Pending tasks are queued again, oldest first; tasks left
// running by a previous process are failed.
func (s *TaskService) RequeuePending(ctx context.Context) (int, error) {
	running, err := s.tasks.GetByStatus(ctx, domain.TaskStatusRunning)
	if err != nil {
		return 0, err
	}
	for i := range running {
		s.fail(ctx, &running[i], FailureInterrupted)
	}

	pending, err := s.tasks.GetByStatus(ctx, domain.TaskStatusPending)
	if err != nil {
		return 0, err
	}
	for _, t := range pending {
		s.queue.Push(t.TaskID)
	}

	s.logger.Infow("task_requeue_done", "requeued", len(pending), "interrupted", len(running))
	return len(pending), nil
}

func (s *TaskService) run(ctx context.Context, w *worker) {
	defer func() {
		s.mu.Lock()
		if s.worker == w {
			s.worker = nil
		}
		s.mu.Unlock()
		close(w.done)
	}()

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		taskID, ok := s.queue.Pop(ctx, s.pollInterval)
		if !ok {
			continue
		}
		s.processTask(ctx, taskID)
	}
}

// ==================== Task Execution ====================

func (s *TaskService) processTask(ctx context.Context, taskID string) {
	// Store writes must land even after the worker context is cancelled.
	storeCtx := context.WithoutCancel(ctx)

	task, err := s.tasks.GetByID(storeCtx, taskID)
	if err != nil {
		s.logger.Errorw("task_load_failed", "task_id", taskID, "error", err)
		return
	}
	if task == nil {
		s.logger.Warnw("task_vanished", "task_id", taskID)
		return
	}
	if task.Status != domain.TaskStatusPending {
		s.logger.Warnw("task_skipped_not_pending", "task_id", taskID, "status", task.Status)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("task_panic", "task_id", taskID, "panic", r)
			s.fail(storeCtx, task, fmt.Sprintf("panic: %v", r))
		}
	}()

	task.MarkRunning(now())
	claimed, err := s.tasks.Transition(storeCtx, task, domain.TaskStatusPending)
	if err != nil {
		s.logger.Errorw("task_claim_failed", "task_id", taskID, "error", err)
		return
	}
	if !claimed {
		s.logger.Warnw("task_claim_lost", "task_id", taskID)
		return
	}
	s.recordEvent(storeCtx, taskID, domain.EventTypeTaskRunning, domain.TaskStatusPending, domain.TaskStatusRunning, "")
	s.logger.Infow("task_started", "task_id", taskID, "keywords", []string(task.Keywords))

	taskCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.taskTimeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, s.taskTimeout)
	}
	defer cancel()

	raw, err := s.executor.Execute(taskCtx, task)
	if err != nil {
		s.fail(storeCtx, task, err.Error())
		return
	}
	if len(raw) == 0 {
		s.fail(storeCtx, task, FailureEmptyResult)
		return
	}

	processed := s.processor.Process(taskCtx, raw, task.OwnerID)
	task.MarkCompleted(now(), processed)
	if _, err := s.tasks.Transition(storeCtx, task, domain.TaskStatusRunning); err != nil {
		s.logger.Errorw("task_complete_persist_failed", "task_id", taskID, "error", err)
		return
	}
	s.recordEvent(storeCtx, taskID, domain.EventTypeTaskCompleted, domain.TaskStatusRunning, domain.TaskStatusCompleted, fmt.Sprintf("%d items", len(processed)))
	s.logger.Infow("task_completed", "task_id", taskID, "raw_items", len(raw), "processed_items", len(processed))
}

// fail moves a running task to failed. Errors are logged, not returned.
func (s *TaskService) fail(ctx context.Context, task *domain.ScrapeTask, reason string) {
	if task.Status != domain.TaskStatusRunning {
		s.logger.Warnw("task_fail_ignored", "task_id", task.TaskID, "status", task.Status, "reason", reason)
		return
	}
	task.MarkFailed(now(), reason)
	ok, err := s.tasks.Transition(ctx, task, domain.TaskStatusRunning)
	if err != nil {
		s.logger.Errorw("task_fail_persist_failed", "task_id", task.TaskID, "error", err)
		return
	}
	if !ok {
		return
	}
	s.recordEvent(ctx, task.TaskID, domain.EventTypeTaskFailed, domain.TaskStatusRunning, domain.TaskStatusFailed, reason)
	s.logger.Warnw("task_failed", "task_id", task.TaskID, "reason", reason)
}

func (s *TaskService) recordEvent(ctx context.Context, taskID, eventType string, from, to domain.TaskStatus, message string) {
	if s.events == nil {
		return
	}
	event := &domain.TaskEvent{
		TaskID:     taskID,
		Type:       eventType,
		FromStatus: from,
		ToStatus:   to,
		Message:    message,
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Warnw("task_event_record_failed", "task_id", taskID, "type", eventType, "error", err)
	}
}

func now() time.Time {
	return time.Now().UTC()
}
