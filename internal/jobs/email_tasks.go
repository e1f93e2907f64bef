package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"billingportal/internal/models"
	"billingportal/internal/services"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Task type definitions
const (
	TypeEmailSend = "email:send"

	EmailQueue = "email"
)

// EmailPayload defines the payload for email delivery tasks
type EmailPayload struct {
	ReferenceID string       `json:"reference_id"`
	Email       models.Email `json:"email"`
}

// NewEmailTask creates a new email delivery task
func NewEmailTask(referenceID string, email models.Email) (*asynq.Task, error) {
	data, err := json.Marshal(EmailPayload{ReferenceID: referenceID, Email: email})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailSend, data), nil
}

// TaskEnqueuer is the subset of *asynq.Client used to queue work
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type queueDispatcher struct {
	client   TaskEnqueuer
	maxRetry int
}

// NewQueueDispatcher hands emails to the asynq worker. The returned id is a
// local reference; the provider's message id is only known to the worker.
func NewQueueDispatcher(client TaskEnqueuer, maxRetry int) services.EmailDispatcher {
	return &queueDispatcher{client: client, maxRetry: maxRetry}
}

func (d *queueDispatcher) Dispatch(ctx context.Context, email models.Email) (string, error) {
	ref := "queued-" + uuid.NewString()
	task, err := NewEmailTask(ref, email)
	if err != nil {
		return "", fmt.Errorf("failed to build email task: %w", err)
	}
	info, err := d.client.EnqueueContext(ctx, task,
		asynq.Queue(EmailQueue),
		asynq.MaxRetry(d.maxRetry),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue email: %w", err)
	}
	log.Printf("Queued email %q as task %s", email.Subject, info.ID)
	return ref, nil
}

// EmailWorker delivers queued emails through a Mailer
type EmailWorker struct {
	mailer services.Mailer
}

func NewEmailWorker(mailer services.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// HandleEmailTask handles email delivery tasks
func (w *EmailWorker) HandleEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email payload: %w: %w", err, asynq.SkipRetry)
	}

	id, err := w.mailer.Send(ctx, payload.Email)
	if err != nil {
		log.Printf("Email %s to %v failed: %v", payload.ReferenceID, payload.Email.To, err)
		return err
	}
	log.Printf("Email %s delivered as %s", payload.ReferenceID, id)
	return nil
}

// NewEmailClient builds an asynq client on an existing Redis connection
func NewEmailClient(rdb redis.UniversalClient) *asynq.Client {
	return asynq.NewClientFromRedisClient(rdb)
}

// NewWorkerServer builds the asynq server that processes email tasks
func NewWorkerServer(rdb redis.UniversalClient, concurrency int, worker *EmailWorker) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServerFromRedisClient(rdb, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{EmailQueue: 1},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailSend, worker.HandleEmailTask)
	return srv, mux
}
