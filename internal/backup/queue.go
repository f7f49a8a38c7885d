package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// QueueClient is the subset of *redis.Client used by the job queue.
type QueueClient interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

type queueMessage struct {
	JobID      string    `json:"job_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// QueueDispatcher pushes jobs onto a Redis list consumed by QueueWorker.
type QueueDispatcher struct {
	client QueueClient
	key    string
}

// NewQueueDispatcher creates a dispatcher writing to the list at key.
func NewQueueDispatcher(client QueueClient, key string) *QueueDispatcher {
	return &QueueDispatcher{client: client, key: key}
}

// Dispatch enqueues jobID.
func (d *QueueDispatcher) Dispatch(ctx context.Context, jobID string) error {
	payload, err := json.Marshal(queueMessage{JobID: jobID, EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := d.client.RPush(ctx, d.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue backup %s: %w", jobID, err)
	}
	return nil
}

// QueueWorker pops jobs from the Redis list and executes them.
type QueueWorker struct {
	client      QueueClient
	key         string
	exec        JobExecutor
	concurrency int
	timeout     time.Duration
	pollTimeout time.Duration
	retryDelay  time.Duration
	log         zerolog.Logger
}

// NewQueueWorker creates a worker running up to concurrency jobs at once.
func NewQueueWorker(client QueueClient, key string, exec JobExecutor, concurrency int, timeout time.Duration, log zerolog.Logger) *QueueWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &QueueWorker{
		client:      client,
		key:         key,
		exec:        exec,
		concurrency: concurrency,
		timeout:     timeout,
		pollTimeout: 5 * time.Second,
		retryDelay:  time.Second,
		log:         log,
	}
}

// Run consumes the queue until ctx is cancelled. A job that already started
// is allowed to finish.
func (w *QueueWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		g.Go(func() error {
			w.loop(ctx)
			return nil
		})
	}
	return g.Wait()
}

func (w *QueueWorker) loop(ctx context.Context) {
	for ctx.Err() == nil {
		res, err := w.client.BLPop(ctx, w.pollTimeout, w.key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Str("event", "queue_pop_failed").Msg("")
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.retryDelay):
			}
			continue
		}
		// BLPOP returns [key, value]
		if len(res) != 2 {
			continue
		}
		w.handle(ctx, res[1])
	}
}

func (w *QueueWorker) handle(ctx context.Context, raw string) {
	var msg queueMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil || msg.JobID == "" {
		w.log.Error().Err(err).Str("event", "queue_message_invalid").Str("payload", raw).Msg("")
		return
	}

	runCtx, cancel := withTimeout(context.WithoutCancel(ctx), w.timeout)
	defer cancel()

	w.log.Info().Str("event", "queue_job_received").Str("backup_id", msg.JobID).Msg("")
	out := w.exec.Execute(runCtx, msg.JobID)
	w.log.Debug().Str("event", "queue_job_done").Str("backup_id", msg.JobID).Bool("ok", out.OK).Msg("")
}
