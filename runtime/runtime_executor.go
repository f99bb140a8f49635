// Copyright (c) 2026 Oleh Synelnykov
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package runtime

import (
	stdruntime "runtime"
	"sync"

	"github.com/rs/zerolog"
)

// Executor runs queued callables. Schedule must not execute fn
// synchronously in the calling goroutine; InlineExecutor is the explicit
// exception.
type Executor interface {
	Schedule(fn func())
}

// InlineExecutor runs tasks immediately on the caller. Useful for tests and
// single-threaded embeddings.
type InlineExecutor struct{}

func (InlineExecutor) Schedule(fn func()) {
	fn()
}

// PoolExecutor is a fixed-size worker pool over a bounded task queue.
// Panics inside tasks are recovered and logged; they never take the process
// down.
type PoolExecutor struct {
	tasks chan func()
	quit  chan struct{}
	wg    sync.WaitGroup
	stop  sync.Once
	log   zerolog.Logger
}

// NewPoolExecutor starts workers goroutines over a queue of queueDepth
// pending tasks. Zero values pick defaults.
func NewPoolExecutor(workers, queueDepth int, log zerolog.Logger) *PoolExecutor {
	if workers <= 0 {
		workers = stdruntime.NumCPU()
	}
	if queueDepth <= 0 {
		queueDepth = 1024
	}
	e := &PoolExecutor{
		tasks: make(chan func(), queueDepth),
		quit:  make(chan struct{}),
		log:   log,
	}
	e.wg.Add(workers)
	for ii := 0; ii < workers; ii++ {
		go e.worker()
	}
	return e
}

func (e *PoolExecutor) worker() {
	defer e.wg.Done()
	for {
		select {
		case <-e.quit:
			return
		case fn := <-e.tasks:
			e.runTask(fn)
		}
	}
}

func (e *PoolExecutor) runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("executor task panicked")
		}
	}()
	fn()
}

// Schedule enqueues fn, blocking while the queue is full. After Stop the
// task is silently dropped.
func (e *PoolExecutor) Schedule(fn func()) {
	select {
	case <-e.quit:
	case e.tasks <- fn:
	}
}

// Stop joins the workers. Tasks still queued are not drained.
func (e *PoolExecutor) Stop() {
	e.stop.Do(func() {
		close(e.quit)
		e.wg.Wait()
	})
}
