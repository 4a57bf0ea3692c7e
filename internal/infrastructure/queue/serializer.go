package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

type job struct {
	ctx  context.Context
	key  string
	run  func(context.Context) error
	done chan error
}

// Serializer routes jobs to a fixed set of workers using consistent hashing
// on the job key, guaranteeing per-key ordering. Different keys may run in
// parallel on different workers.
type Serializer struct {
	workers []chan job
	log     zerolog.Logger
	depth   func(worker, depth int)
}

// NewSerializer creates a Serializer with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewSerializer(numWorkers int, log zerolog.Logger) *Serializer {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	s := &Serializer{
		workers: make([]chan job, numWorkers),
		log:     log,
		depth:   func(int, int) {},
	}
	for i := range s.workers {
		s.workers[i] = make(chan job, channelBuffer)
	}
	return s
}

// OnDepth installs a hook reporting each worker's queue depth after a job is
// enqueued or finished.
func (s *Serializer) OnDepth(fn func(worker, depth int)) {
	s.depth = fn
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (s *Serializer) Start(ctx context.Context) {
	for i, ch := range s.workers {
		go s.runWorker(ctx, i, ch)
	}
}

// Do enqueues fn on the worker owning key and waits for it to finish. Jobs
// sharing a key run in the order Do was called.
func (s *Serializer) Do(ctx context.Context, key string, fn func(context.Context) error) error {
	j := job{ctx: ctx, key: key, run: fn, done: make(chan error, 1)}
	idx := s.shardIndex(key)

	select {
	case s.workers[idx] <- j:
		s.depth(idx, len(s.workers[idx]))
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		// The job still runs; only the caller stops waiting.
		return ctx.Err()
	}
}

// shardIndex maps a key deterministically to a worker index.
func (s *Serializer) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(s.workers)))
}

func (s *Serializer) runWorker(ctx context.Context, id int, ch <-chan job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			err := j.run(j.ctx)
			if err != nil {
				s.log.Debug().Err(err).
					Str("key", j.key).
					Int("worker_id", id).
					Msg("serialized job failed")
			}
			j.done <- err
			s.depth(id, len(ch))
		}
	}
}
