// Package dispatch is the outer worker collaborator spec.md §5 names but
// leaves out of scope ("the outer worker collaborator... may impose a
// wall-clock timeout; the core itself does not enforce one"). It runs
// parse jobs on a pooled goroutine with a per-job timeout, and supports
// Pause/Resume/Stop, grounded on internal/analysis.Worker.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Status reports dispatcher progress, mirroring the daemon's
// AnalysisStatus shape.
type Status struct {
	State      string `json:"state"` // "idle", "running", "paused", "complete"
	TotalJobs  int    `json:"totalJobs"`
	Completed  int    `json:"completed"`
	InProgress int    `json:"inProgress"`
	Failed     int    `json:"failed"`
	Message    string `json:"message"`
	StartedAt  int64  `json:"startedAt,omitempty"`
}

// Job is one unit of work the dispatcher runs: typically a parseBuffer
// call over one file.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Result carries a job's outcome back to the caller's callback.
type Result struct {
	Name  string
	Error error
}

// Config controls the dispatcher.
type Config struct {
	MaxWorkers int           // 0 = NumCPU-1, minimum 1
	JobTimeout time.Duration // 0 = no per-job timeout
	OnResult   func(Result)
}

// Dispatcher runs jobs across a bounded worker pool with pause/resume/stop
// control, grounded on internal/analysis.Worker's run/worker/Pause/Resume.
type Dispatcher struct {
	mu sync.Mutex

	maxWorkers int
	jobTimeout time.Duration
	onResult   func(Result)

	status     Status
	ctx        context.Context
	cancel     context.CancelFunc
	isRunning  bool
	isPaused   bool
	pauseChan  chan struct{}
	resumeChan chan struct{}

	completedCount  int64
	failedCount     int64
	inProgressCount int64
}

// New builds a Dispatcher with the given configuration.
func New(cfg Config) *Dispatcher {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() - 1
		if maxWorkers < 1 {
			maxWorkers = 1
		}
	}
	return &Dispatcher{
		maxWorkers: maxWorkers,
		jobTimeout: cfg.JobTimeout,
		onResult:   cfg.OnResult,
		status:     Status{State: "idle"},
		pauseChan:  make(chan struct{}),
		resumeChan: make(chan struct{}),
	}
}

// Start launches the job pool in the background; it returns immediately.
func (d *Dispatcher) Start(ctx context.Context, jobs []Job) error {
	d.mu.Lock()
	if d.isRunning {
		d.mu.Unlock()
		return fmt.Errorf("dispatcher already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.isRunning = true
	d.isPaused = false
	atomic.StoreInt64(&d.completedCount, 0)
	atomic.StoreInt64(&d.failedCount, 0)
	atomic.StoreInt64(&d.inProgressCount, 0)
	d.status = Status{State: "running", TotalJobs: len(jobs), StartedAt: time.Now().Unix()}
	d.mu.Unlock()

	go d.run(jobs)
	return nil
}

// Stop cancels the running job pool.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.isRunning = false
	d.status.State = "idle"
	d.status.Message = "dispatcher stopped"
}

// Pause suspends workers between jobs; in-flight jobs still run to
// completion.
func (d *Dispatcher) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.isRunning || d.isPaused {
		return
	}
	d.isPaused = true
	d.status.State = "paused"
	close(d.pauseChan)
	d.pauseChan = make(chan struct{})
}

// Resume un-pauses the worker pool.
func (d *Dispatcher) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.isRunning || !d.isPaused {
		return
	}
	d.isPaused = false
	d.status.State = "running"
	close(d.resumeChan)
	d.resumeChan = make(chan struct{})
}

// GetStatus returns a snapshot of dispatcher progress.
func (d *Dispatcher) GetStatus() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	status := d.status
	status.Completed = int(atomic.LoadInt64(&d.completedCount))
	status.Failed = int(atomic.LoadInt64(&d.failedCount))
	status.InProgress = int(atomic.LoadInt64(&d.inProgressCount))
	return status
}

func (d *Dispatcher) run(jobs []Job) {
	defer func() {
		d.mu.Lock()
		d.isRunning = false
		if d.status.State == "running" {
			d.status.State = "complete"
			d.status.Message = fmt.Sprintf("%d completed, %d failed",
				atomic.LoadInt64(&d.completedCount), atomic.LoadInt64(&d.failedCount))
			log.Printf("[DISPATCH] finished: %s", d.status.Message)
		}
		d.mu.Unlock()
	}()

	queue := make(chan Job, len(jobs))
	for _, j := range jobs {
		queue <- j
	}
	close(queue)

	var wg sync.WaitGroup
	for i := 0; i < d.maxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.worker(queue)
		}()
	}
	wg.Wait()
}

func (d *Dispatcher) worker(jobs <-chan Job) {
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
		}

		d.mu.Lock()
		isPaused := d.isPaused
		resumeChan := d.resumeChan
		d.mu.Unlock()
		if isPaused {
			select {
			case <-d.ctx.Done():
				return
			case <-resumeChan:
			}
		}

		job, ok := <-jobs
		if !ok {
			return
		}

		atomic.AddInt64(&d.inProgressCount, 1)
		err := d.runJob(job)
		atomic.AddInt64(&d.inProgressCount, -1)

		if err != nil {
			log.Printf("[DISPATCH] job %q failed: %v", job.Name, err)
			atomic.AddInt64(&d.failedCount, 1)
		} else {
			atomic.AddInt64(&d.completedCount, 1)
		}
		if d.onResult != nil {
			d.onResult(Result{Name: job.Name, Error: err})
		}
	}
}

func (d *Dispatcher) runJob(job Job) error {
	ctx := d.ctx
	if d.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.jobTimeout)
		defer cancel()
	}
	return job.Run(ctx)
}
