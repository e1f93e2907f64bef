package background

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// QuoteExpirer moves overdue sent/viewed quotes to expired
type QuoteExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// TokenPurger removes expired magic links and sessions
type TokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

const (
	QuoteExpiryInterval = 15 * time.Minute
	TokenPurgeInterval  = time.Hour
)

// JobScheduler runs periodic maintenance for the portal
type JobScheduler struct {
	scheduler gocron.Scheduler
	quotes    QuoteExpirer
	tokens    TokenPurger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(quotes QuoteExpirer, tokens TokenPurger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		quotes:    quotes,
		tokens:    tokens,
		jobs:      make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// JobNames lists the registered jobs
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

func (js *JobScheduler) registerJobs() {
	js.register("quote-expiry-sweep", QuoteExpiryInterval, js.ExpireQuotes)
	js.register("auth-token-purge", TokenPurgeInterval, js.PurgeTokens)
	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) register(name string, every time.Duration, fn func(context.Context) error) {
	job, err := js.scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(fn, context.Background()),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create %s job: %v", name, err)
		return
	}
	js.mu.Lock()
	js.jobs[name] = job
	js.mu.Unlock()
}

// ExpireQuotes marks quotes past their expiry as expired
func (js *JobScheduler) ExpireQuotes(ctx context.Context) error {
	n, err := js.quotes.ExpireOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("Quote expiry sweep failed: %v", err)
		return err
	}
	if n > 0 {
		log.Printf("Expired %d overdue quotes", n)
	}
	return nil
}

// PurgeTokens deletes expired login links and sessions
func (js *JobScheduler) PurgeTokens(ctx context.Context) error {
	n, err := js.tokens.PurgeExpired(ctx)
	if err != nil {
		log.Printf("Auth token purge failed: %v", err)
		return err
	}
	if n > 0 {
		log.Printf("Purged %d expired auth tokens", n)
	}
	return nil
}

// RunOnce runs every job immediately, in order
func (js *JobScheduler) RunOnce(ctx context.Context) error {
	if err := js.ExpireQuotes(ctx); err != nil {
		return err
	}
	return js.PurgeTokens(ctx)
}
