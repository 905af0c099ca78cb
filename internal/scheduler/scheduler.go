// Package scheduler runs Prody's background tasks in-process.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prody/prody/internal/logging"
)

// TaskHandler is the function executed for a task
type TaskHandler func(ctx context.Context) error

// ScheduleType represents the type of schedule
type ScheduleType string

const (
	ScheduleInterval ScheduleType = "interval" // Run every X duration
	ScheduleDaily    ScheduleType = "daily"    // Run at a specific time each day
	ScheduleOnce     ScheduleType = "once"     // Run once at a specific time
)

// Schedule defines when a task runs
type Schedule struct {
	Type     ScheduleType  `json:"type"`
	Interval time.Duration `json:"interval,omitempty"` // For interval schedules
	At       string        `json:"at,omitempty"`       // "HH:MM" for daily, RFC3339 for once
}

// Every builds an interval schedule
func Every(d time.Duration) Schedule {
	return Schedule{Type: ScheduleInterval, Interval: d}
}

// DailyAt builds a daily schedule, at is "HH:MM" in the scheduler's timezone
func DailyAt(at string) Schedule {
	return Schedule{Type: ScheduleDaily, At: at}
}

// Task represents a scheduled task
type Task struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Schedule Schedule    `json:"schedule"`
	Handler  TaskHandler `json:"-"`

	Enabled    bool          `json:"enabled"`
	Timeout    time.Duration `json:"timeout"`
	LastRun    *time.Time    `json:"last_run,omitempty"`
	NextRun    *time.Time    `json:"next_run,omitempty"`
	RunCount   int64         `json:"run_count"`
	ErrorCount int64         `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	mu       sync.RWMutex
	tasks    map[string]*Task
	running  map[string]context.CancelFunc
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	timezone *time.Location
	log      *logging.Logger
}

// New creates a scheduler in the given timezone, defaulting to local time.
func New(timezone string) *Scheduler {
	tz, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		tz = time.Local
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tasks:    make(map[string]*Task),
		running:  make(map[string]context.CancelFunc),
		ctx:      ctx,
		cancel:   cancel,
		timezone: tz,
		log:      logging.Named("scheduler"),
	}
}

// Register adds a task. Registering while started launches the task loop
// immediately.
func (s *Scheduler) Register(task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == "" {
		return fmt.Errorf("task ID is required")
	}
	if task.Handler == nil {
		return fmt.Errorf("task handler is required")
	}
	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("task %s already registered", task.ID)
	}
	if task.Timeout == 0 {
		task.Timeout = 5 * time.Minute
	}

	task.Enabled = true
	next := s.nextRun(task.Schedule)
	task.NextRun = &next

	s.tasks[task.ID] = task
	if s.started {
		s.startTask(task)
	}

	return nil
}

// Unregister removes a task, stopping its loop if running
func (s *Scheduler) Unregister(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, ok := s.running[taskID]; ok {
		cancel()
		delete(s.running, taskID)
	}
	delete(s.tasks, taskID)
}

// Start launches loops for every enabled task
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	s.started = true

	for _, task := range s.tasks {
		if task.Enabled {
			s.startTask(task)
		}
	}

	s.log.Info("started with %d tasks", len(s.tasks))
	return nil
}

// Stop cancels all task loops and waits for in-flight handlers
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}

	s.cancel()
	for _, cancel := range s.running {
		cancel()
	}
	s.running = make(map[string]context.CancelFunc)
	s.started = false
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("stopped")
}

// Tasks returns a snapshot of all registered tasks
func (s *Scheduler) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, *task)
	}
	return tasks
}

// RunNow executes a task's handler immediately, outside its schedule
func (s *Scheduler) RunNow(taskID string) error {
	s.mu.RLock()
	task, ok := s.tasks[taskID]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("task not found: %s", taskID)
	}

	s.execute(s.ctx, task)
	return nil
}

func (s *Scheduler) startTask(task *Task) {
	taskCtx, cancel := context.WithCancel(s.ctx)
	s.running[task.ID] = cancel

	s.wg.Add(1)
	go s.loop(taskCtx, task)
}

func (s *Scheduler) loop(ctx context.Context, task *Task) {
	defer s.wg.Done()

	for {
		s.mu.RLock()
		var wait time.Duration
		if task.NextRun != nil {
			wait = time.Until(*task.NextRun)
		}
		s.mu.RUnlock()
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.execute(ctx, task)
		}

		if task.Schedule.Type == ScheduleOnce {
			return
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, task *Task) {
	execCtx, cancel := context.WithTimeout(ctx, task.Timeout)
	defer cancel()

	now := time.Now()
	s.mu.Lock()
	task.LastRun = &now
	task.RunCount++
	s.mu.Unlock()

	err := task.Handler(execCtx)

	s.mu.Lock()
	if err != nil {
		task.ErrorCount++
		task.LastError = err.Error()
	} else {
		task.LastError = ""
	}
	next := s.nextRun(task.Schedule)
	task.NextRun = &next
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("task %s failed: %v", task.ID, err)
	}
}

// nextRun computes when a schedule fires next
func (s *Scheduler) nextRun(schedule Schedule) time.Time {
	now := time.Now().In(s.timezone)

	switch schedule.Type {
	case ScheduleInterval:
		return now.Add(schedule.Interval)

	case ScheduleDaily:
		hour, minute := 8, 0
		fmt.Sscanf(schedule.At, "%d:%d", &hour, &minute)

		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, s.timezone)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next

	case ScheduleOnce:
		t, err := time.Parse(time.RFC3339, schedule.At)
		if err != nil {
			return now.Add(time.Minute)
		}
		return t

	default:
		return now.Add(time.Hour)
	}
}
