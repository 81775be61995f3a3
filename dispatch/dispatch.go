// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/caiwan/audioarchive/job"
	"github.com/caiwan/audioarchive/task"
	"github.com/rs/zerolog"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

const (
	metricDispatched   = metricz.Key("dispatch.dispatched.total")
	metricNoHandler    = metricz.Key("dispatch.no_handler.total")
	metricFetchErrors  = metricz.Key("dispatch.fetch_errors.total")
	spanDispatchTask   = tracez.Key("dispatch.task")
	tagDispatchType    = tracez.Tag("dispatch.type")
	tagDispatchHandler = tracez.Tag("dispatch.handlers")
)

// Handler is the type-erased form a registered handler is stored as. See
// Register for the type-safe entry point callers actually use. id is the
// originating envelope's id (§3), so a handler can stamp it onto any
// task.Result it posts back.
type Handler func(ctx context.Context, id string, payload any, jctx *job.Context) error

// Dispatcher bridges a task.Queue and a job.Manager (§4.4): one pump
// goroutine (Run) pulls envelopes and schedules each matching handler as a
// root Job on the pool.
type Dispatcher struct {
	queue task.Queue
	jobs  *job.Manager
	log   zerolog.Logger

	metrics *metricz.Registry
	tracer  *tracez.Tracer

	mu       sync.RWMutex
	handlers map[reflect.Type][]Handler
}

// New creates a Dispatcher over queue and jobs.
func New(queue task.Queue, jobs *job.Manager, log zerolog.Logger) *Dispatcher {
	metrics := metricz.New()
	metrics.Counter(metricDispatched)
	metrics.Counter(metricNoHandler)
	metrics.Counter(metricFetchErrors)

	return &Dispatcher{
		queue:    queue,
		jobs:     jobs,
		log:      log,
		metrics:  metrics,
		tracer:   tracez.New(),
		handlers: make(map[reflect.Type][]Handler),
	}
}

// Register attaches a type-safe handler for task type T. Each registered
// task type may have any number of handlers; they are scheduled in
// registration order, each wrapped as its own root Job, and then run
// concurrently on the pool (§3, §4.4). fn receives the
// originating envelope's id alongside the decoded payload so it can be
// threaded into any result the handler posts back.
func Register[T any](d *Dispatcher, fn func(ctx context.Context, id string, t T, jctx *job.Context) error) {
	var zero T
	rt := reflect.TypeOf(zero)

	h := func(ctx context.Context, id string, payload any, jctx *job.Context) error {
		v, ok := payload.(T)
		if !ok {
			return errHandlerTypeMismatch(rt, payload)
		}
		return fn(ctx, id, v, jctx)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[rt] = append(d.handlers[rt], h)
}

// Post assigns a fresh id to payload (via a new Envelope) and enqueues it,
// returning the id.
func (d *Dispatcher) Post(ctx context.Context, payload any) (string, error) {
	env, err := task.New(payload)
	if err != nil {
		return "", err
	}
	if err := d.queue.Put(ctx, env); err != nil {
		return "", err
	}
	return env.ID, nil
}

// Run is the dispatcher's pump: fetch, look up handlers, schedule. It
// blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		env, err := d.queue.Fetch(ctx)
		if err != nil {
			if task.IsEmpty(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			d.metrics.Counter(metricFetchErrors).Inc()
			d.log.Error().Err(err).Msg("dispatch: fetch task error")
			continue
		}
		d.dispatch(ctx, env)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, env task.Envelope) {
	rt := reflect.TypeOf(env.Payload)

	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers[rt]...)
	d.mu.RUnlock()

	_, span := d.tracer.StartSpan(ctx, spanDispatchTask)
	span.SetTag(tagDispatchType, env.Type)
	defer span.Finish()

	if len(handlers) == 0 {
		d.metrics.Counter(metricNoHandler).Inc()
		d.log.Warn().Str("type", env.Type).Str("task_id", env.ID).Msg("dispatch: no handler registered")
		return
	}
	span.SetTag(tagDispatchHandler, itoa(len(handlers)))

	for _, h := range handlers {
		h := h
		root := d.jobs.CreateJob(func(jctx *job.Context) error {
			return h(ctx, env.ID, env.Payload, jctx)
		})
		if err := d.jobs.Schedule(root); err != nil {
			d.log.Error().Err(err).Str("task_id", env.ID).Msg("dispatch: schedule failed")
			continue
		}
		d.metrics.Counter(metricDispatched).Inc()
	}
}
