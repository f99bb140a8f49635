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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestInlineExecutorRunsSynchronously(t *testing.T) {
	ran := false
	InlineExecutor{}.Schedule(func() { ran = true })
	require.True(t, ran)
}

func TestPoolExecutorRunsTasks(t *testing.T) {
	e := NewPoolExecutor(4, 64, zerolog.Nop())
	defer e.Stop()

	const tasks = 200
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(tasks)
	for ii := 0; ii < tasks; ii++ {
		e.Schedule(func() {
			count.Add(1)
			wg.Done()
		})
	}
	wg.Wait()
	require.Equal(t, int64(tasks), count.Load())
}

func TestPoolExecutorDoesNotRunInline(t *testing.T) {
	e := NewPoolExecutor(1, 4, zerolog.Nop())
	defer e.Stop()

	// A synchronous Schedule would block forever on release and never
	// return.
	release := make(chan struct{})
	done := make(chan struct{})
	e.Schedule(func() {
		<-release
		close(done)
	})
	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestPoolExecutorRecoversPanics(t *testing.T) {
	e := NewPoolExecutor(1, 4, zerolog.Nop())
	defer e.Stop()

	done := make(chan struct{})
	e.Schedule(func() { panic("boom") })
	e.Schedule(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("executor died after a panicking task")
	}
}

func TestPoolExecutorStopDropsLaterTasks(t *testing.T) {
	e := NewPoolExecutor(1, 4, zerolog.Nop())
	e.Stop()

	ran := make(chan struct{}, 1)
	e.Schedule(func() { ran <- struct{}{} })
	select {
	case <-ran:
		t.Fatal("task ran after Stop")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPoolExecutorStopIsIdempotent(t *testing.T) {
	e := NewPoolExecutor(2, 4, zerolog.Nop())
	e.Stop()
	e.Stop()
}
