package heyreach

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ignite/outreach-monitor/internal/config"
	"github.com/ignite/outreach-monitor/internal/pkg/logger"
)

// StatsFetcher fetches aggregated stats for a set of accounts over a
// date window.
type StatsFetcher interface {
	GetOverallStats(ctx context.Context, accountIDs, campaignIDs []int64, startDate, endDate string) (map[string]any, error)
}

// Aggregator fans out per-(sender, week) stats queries over a bounded
// worker pool with rate-limit retry and adaptive batch pacing.
type Aggregator struct {
	api StatsFetcher
	cfg config.HeyReachConfig

	maxAttempts   int
	retryDelay    time.Duration
	batchDelay    time.Duration
	maxBatchDelay time.Duration
}

// NewAggregator creates an aggregator with production pacing defaults.
func NewAggregator(api StatsFetcher, cfg config.HeyReachConfig) *Aggregator {
	return &Aggregator{
		api:           api,
		cfg:           cfg,
		maxAttempts:   3,
		retryDelay:    2 * time.Second,
		batchDelay:    500 * time.Millisecond,
		maxBatchDelay: 5 * time.Second,
	}
}

type fetchTask struct {
	sender Sender
	week   Week
}

type fetchResult struct {
	name        string
	weekKey     string
	counters    Counters
	failed      bool
	rateLimited bool
}

// Aggregate fetches stats for every (sender, week) combination and
// returns the assembled result. It always returns a full-shaped
// result: cells whose fetch failed hold zero counters, and no fetch
// error escapes to the caller.
func (a *Aggregator) Aggregate(ctx context.Context, senders []Sender, weeks []Week, start, end time.Time) *AggregationResult {
	// Zero-fill every cell up front so partial failures still yield a
	// complete grid.
	counters := make(map[string]map[string]Counters, len(senders))
	names := make([]string, 0, len(senders))
	for _, sender := range senders {
		name := a.taskSenderName(sender)
		if _, ok := counters[name]; !ok {
			names = append(names, name)
		}
		cells, ok := counters[name]
		if !ok {
			cells = make(map[string]Counters, len(weeks))
			counters[name] = cells
		}
		for _, week := range weeks {
			if _, ok := cells[week.Key]; !ok {
				cells[week.Key] = Counters{}
			}
		}
	}

	tasks := make([]fetchTask, 0, len(senders)*len(weeks))
	for _, sender := range senders {
		for _, week := range weeks {
			tasks = append(tasks, fetchTask{sender: sender, week: week})
		}
	}

	if len(tasks) > 0 {
		a.runTasks(ctx, tasks, counters)
	}

	return BuildResult(senders, weeks, counters, names, a.cfg.ClientGroups, start, end)
}

func (a *Aggregator) runTasks(ctx context.Context, tasks []fetchTask, counters map[string]map[string]Counters) {
	poolSize := 10
	if len(tasks) < poolSize {
		poolSize = len(tasks)
	}

	logger.Info("heyreach: aggregating sender-week stats", "tasks", len(tasks), "workers", poolSize)

	jobs := make(chan fetchTask)
	results := make(chan fetchResult)

	var wg sync.WaitGroup
	for i := 0; i < poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				results <- a.fetchCell(ctx, task)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, task := range tasks {
			select {
			case jobs <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// The drain loop owns all pacing state: after each batch of
	// 3 x poolSize completions it enforces a minimum delay, and a run
	// of rate-limited results doubles that delay.
	batchSize := poolSize * 3
	batchDelay := a.batchDelay
	completed := 0
	rateLimitErrors := 0
	lastCheckpoint := time.Now()

	for result := range results {
		completed++

		if completed%batchSize == 0 {
			if elapsed := time.Since(lastCheckpoint); elapsed < batchDelay {
				sleepCtx(ctx, batchDelay-elapsed)
			}
			lastCheckpoint = time.Now()
		}

		if result.rateLimited {
			rateLimitErrors++
			if rateLimitErrors >= 5 {
				batchDelay *= 2
				if batchDelay > a.maxBatchDelay {
					batchDelay = a.maxBatchDelay
				}
				logger.Warn("heyreach: repeated rate limits, increasing batch delay", "delay", batchDelay.String())
				rateLimitErrors = 0
			}
		} else if !result.failed && rateLimitErrors > 0 {
			rateLimitErrors--
		}

		if cells, ok := counters[result.name]; ok {
			cells[result.weekKey] = result.counters
		}

		if completed%10 == 0 || completed == len(tasks) {
			logger.Debug("heyreach: aggregation progress", "completed", completed, "total", len(tasks))
		}
	}
}

// fetchCell fetches one (sender, week) cell, retrying rate-limited
// calls with exponential backoff. Any terminal failure resolves to a
// zero-valued cell.
func (a *Aggregator) fetchCell(ctx context.Context, task fetchTask) fetchResult {
	name := a.taskSenderName(task.sender)
	result := fetchResult{name: name, weekKey: task.week.Key}

	startISO := task.week.Start.Format("2006-01-02") + "T00:00:00.000Z"
	endISO := task.week.End.Format("2006-01-02") + "T23:59:59.999Z"

	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		stats, err := a.api.GetOverallStats(ctx, []int64{task.sender.ID}, nil, startISO, endISO)
		if err == nil {
			result.counters = ExtractCounters(stats)
			return result
		}

		if !IsRateLimited(err) {
			logger.Warn("heyreach: stats fetch failed, recording zeros",
				"sender", name, "week", task.week.Key, "error", err.Error())
			result.failed = true
			return result
		}

		result.rateLimited = true
		if attempt < a.maxAttempts-1 {
			wait := a.retryDelay << attempt
			logger.Debug("heyreach: rate limited, backing off",
				"sender", name, "week", task.week.Key, "wait", wait.String())
			if !sleepCtx(ctx, wait) {
				break
			}
		}
	}

	logger.Warn("heyreach: stats fetch exhausted retries, recording zeros",
		"sender", name, "week", task.week.Key, "attempts", a.maxAttempts)
	result.failed = true
	return result
}

// taskSenderName re-verifies the display name against the configured
// mapping; the directory may have resolved a synthetic name before the
// mapping was loaded.
func (a *Aggregator) taskSenderName(sender Sender) string {
	if name := a.cfg.SenderName(sender.ID); name != "" {
		return name
	}
	if sender.Name != "" {
		return sender.Name
	}
	return fmt.Sprintf("Sender %d", sender.ID)
}

// sleepCtx waits for d or until ctx is done. Returns false if the
// context expired first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
