package storage

import (
	"sync"

	"go.uber.org/zap"

	"github.com/snapp-incubator/telemock/internal/logging"
	"github.com/snapp-incubator/telemock/internal/metrics"
)

type Job interface {
	Do()
}

type storeJob struct {
	strg Storage
	log  Log
}

func (j *storeJob) Do() {
	if err := j.strg.Store(j.log); err != nil {
		logging.L.Error("Error in storing the capture log",
			zap.String("id", j.log.ID),
			zap.String("route", j.log.Route),
			zap.Error(err),
		)
	}
}

// Queue hands capture logs to a pool of workers so the request path never
// waits on the storage backend. A full queue drops the log.
type Queue struct {
	strg         Storage
	storeHeaders bool

	mu     sync.RWMutex
	closed bool
	jobs   chan Job
	wg     sync.WaitGroup
}

// NewQueue starts count workers draining a queue of queueSize jobs.
func NewQueue(strg Storage, count, queueSize uint, storeHeaders bool) *Queue {
	if count == 0 {
		count = 1
	}

	q := &Queue{
		strg:         strg,
		storeHeaders: storeHeaders,
		jobs:         make(chan Job, queueSize),
	}

	for i := uint(0); i < count; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for job := range q.jobs {
				job.Do()
			}
		}()
	}

	return q
}

// Record enqueues l. It never blocks.
func (q *Queue) Record(l Log) {
	if !q.storeHeaders {
		l.Headers = nil
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return
	}

	select {
	case q.jobs <- &storeJob{strg: q.strg, log: l}:
	default:
		metrics.StorageDropped.Inc()
		logging.L.Warn("Storage queue is full, dropping capture log", zap.String("id", l.ID))
	}
}

// Close stops accepting logs and waits for the queued ones to be stored.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}
