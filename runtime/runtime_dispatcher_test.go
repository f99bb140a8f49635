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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenStreamIsMonotonicallyUnique(t *testing.T) {
	d := NewDispatcher()
	const goroutines = 8
	const perGoroutine = 1000

	var mu sync.Mutex
	seen := make(map[uint64]struct{}, goroutines*perGoroutine)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for ii := 0; ii < goroutines; ii++ {
		go func() {
			defer wg.Done()
			for jj := 0; jj < perGoroutine; jj++ {
				id := d.OpenStream()
				mu.Lock()
				_, dup := seen[id]
				seen[id] = struct{}{}
				mu.Unlock()
				require.False(t, dup, "stream id %d issued twice", id)
			}
		}()
	}
	wg.Wait()
	require.Len(t, seen, goroutines*perGoroutine)
}

func TestStreamIdsStartAtOne(t *testing.T) {
	d := NewDispatcher()
	require.Equal(t, uint64(1), d.OpenStream())
	require.Equal(t, uint64(2), d.OpenStream())
}

func TestSetTakeResponseHandler(t *testing.T) {
	d := NewDispatcher()
	id := d.OpenStream()

	invoked := 0
	d.SetResponseHandler(id, func(Response) { invoked++ })

	handler, ok := d.TakeResponseHandler(id)
	require.True(t, ok)
	handler(Response{})
	require.Equal(t, 1, invoked)

	// Take is destructive: the second take finds nothing.
	_, ok = d.TakeResponseHandler(id)
	require.False(t, ok)
}

func TestCloseStreamDropsHandlerWithoutInvoking(t *testing.T) {
	d := NewDispatcher()
	id := d.OpenStream()

	invoked := false
	d.SetResponseHandler(id, func(Response) { invoked = true })
	d.CloseStream(id)
	require.False(t, invoked)

	_, ok := d.TakeResponseHandler(id)
	require.False(t, ok)
}
