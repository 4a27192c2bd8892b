package backtest

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/ducminhle1904/rsi-tier-bot/internal/strategy"
)

// rsiKey identifies one RSI series; every combination sharing it reuses the
// same precomputed bars.
type rsiKey struct {
	period int
	useEMA bool
}

// WorkerPool runs optimization jobs in parallel. Workers only read the
// shared bar series; each job owns its strategy and portfolio.
type WorkerPool struct {
	workerCount int
	initialBank float64
	series      map[rsiKey][]EnrichedBar
	jobQueue    chan OptimizationJob
	resultQueue chan OptimizationResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// OptimizationJob is one parameter combination.
type OptimizationJob struct {
	Index  int
	Config strategy.Config
}

// OptimizationResult is the outcome of one combination.
type OptimizationResult struct {
	Index    int
	Config   strategy.Config
	Summary  Summary
	Trades   int
	Duration time.Duration
	Error    error
}

// NewWorkerPool creates a pool over precomputed series. A non-positive
// workerCount uses every CPU.
func NewWorkerPool(ctx context.Context, workerCount, jobBufferSize int, initialBank float64, series map[rsiKey][]EnrichedBar) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workerCount: workerCount,
		initialBank: initialBank,
		series:      series,
		jobQueue:    make(chan OptimizationJob, jobBufferSize),
		resultQueue: make(chan OptimizationResult, jobBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the worker pool
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop closes the job queue, waits for the workers and then closes the
// result channel. Only the submitting goroutine may call it.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// SubmitJob submits a job to the pool
func (wp *WorkerPool) SubmitJob(job OptimizationJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// GetResults returns the result channel for collecting completed jobs
func (wp *WorkerPool) GetResults() <-chan OptimizationResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}

			result := wp.processJob(job)

			select {
			case wp.resultQueue <- result:
			case <-wp.ctx.Done():
				return
			}

		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) processJob(job OptimizationJob) OptimizationResult {
	startTime := time.Now()

	result := OptimizationResult{
		Index:  job.Index,
		Config: job.Config,
	}

	bars := wp.series[rsiKey{period: job.Config.RSIPeriods, useEMA: job.Config.RSIEMA}]
	engine := NewBacktestEngine(wp.initialBank, strategy.NewTieredRSIStrategy(job.Config))
	res, err := engine.RunEnriched(bars)
	if err != nil {
		result.Error = err
	} else {
		result.Summary = res.Summary
		result.Trades = len(res.Trades)
	}

	result.Duration = time.Since(startTime)
	return result
}

// ProgressTracker tracks the progress of batch processing
type ProgressTracker struct {
	total     int
	completed int
	startTime time.Time
	mutex     sync.RWMutex
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		total:     total,
		startTime: time.Now(),
	}
}

// Increment increments the completion count and returns the new value
func (pt *ProgressTracker) Increment() int {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()
	pt.completed++
	return pt.completed
}

// GetProgress returns the current progress
func (pt *ProgressTracker) GetProgress() (int, int, float64, time.Duration) {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	elapsed := time.Since(pt.startTime)
	progress := 0.0
	if pt.total > 0 {
		progress = float64(pt.completed) / float64(pt.total) * 100
	}

	return pt.completed, pt.total, progress, elapsed
}

// EstimateTimeRemaining estimates the remaining time based on current progress
func (pt *ProgressTracker) EstimateTimeRemaining() time.Duration {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	if pt.completed == 0 {
		return 0
	}

	elapsed := time.Since(pt.startTime)
	avgTimePerItem := elapsed / time.Duration(pt.completed)
	remaining := pt.total - pt.completed

	return avgTimePerItem * time.Duration(remaining)
}
