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
)

// ResponseHandler is the continuation registered for one open client
// stream. It may be invoked on any executor goroutine; ownership transfers
// to the scheduling layer when taken.
type ResponseHandler func(Response)

// Dispatcher assigns client stream ids and maps each open stream to its
// response continuation. Server-side streams never touch the dispatcher;
// they are handled synchronously on the reactor's dispatch path.
type Dispatcher struct {
	mu           sync.Mutex
	nextStreamID uint64
	handlers     map[uint64]ResponseHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		nextStreamID: 1,
		handlers:     make(map[uint64]ResponseHandler),
	}
}

// OpenStream returns the next stream id. No continuation is registered.
func (d *Dispatcher) OpenStream() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextStreamID
	d.nextStreamID++
	return id
}

// SetResponseHandler stores the continuation for streamID.
func (d *Dispatcher) SetResponseHandler(streamID uint64, handler ResponseHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[streamID] = handler
}

// TakeResponseHandler atomically removes and returns the continuation.
func (d *Dispatcher) TakeResponseHandler(streamID uint64) (ResponseHandler, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	handler, ok := d.handlers[streamID]
	if ok {
		delete(d.handlers, streamID)
	}
	return handler, ok
}

// CloseStream drops any registered continuation without invoking it.
func (d *Dispatcher) CloseStream(streamID uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, streamID)
}
