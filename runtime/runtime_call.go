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

// Future is a one-shot response slot fulfilled by the executor when the
// matching Data frame arrives.
type Future struct {
	ch chan Response
}

func newFuture() *Future {
	return &Future{ch: make(chan Response, 1)}
}

// Get blocks until the response arrives.
func (f *Future) Get() Response {
	return <-f.ch
}

// Done exposes the underlying channel for select-based waiting.
func (f *Future) Done() <-chan Response {
	return f.ch
}

func (f *Future) fulfill(response Response) {
	f.ch <- response
}

// Call sends req over channel and arranges for callback to be invoked
// exactly once with the response. This is the primitive the generated
// client stubs' three call shapes reduce to.
func (c *Context) Call(channel Channel, req *Request, callback func(Response)) error {
	streamID := c.dispatcher.OpenStream()
	c.dispatcher.SetResponseHandler(streamID, ResponseHandler(callback))

	frame := Frame{
		Header: FrameHeader{
			Type:     FrameData,
			Flags:    FlagEndStream,
			StreamID: streamID,
		},
		Payload: BuildRequestPayload(req, streamID),
	}
	if err := channel.Send(frame); err != nil {
		c.dispatcher.CloseStream(streamID)
		return err
	}
	return nil
}

// CallFuture is the async call shape: the returned future is fulfilled
// exactly once.
func (c *Context) CallFuture(channel Channel, req *Request) (*Future, error) {
	future := newFuture()
	if err := c.Call(channel, req, future.fulfill); err != nil {
		return nil, err
	}
	return future, nil
}

// CallSync is the blocking call shape.
func (c *Context) CallSync(channel Channel, req *Request) (Response, error) {
	future, err := c.CallFuture(channel, req)
	if err != nil {
		return Response{}, err
	}
	return future.Get(), nil
}

// Notify sends a request without registering any continuation; no response
// is expected. Generated oneway and notify stubs use it.
func (c *Context) Notify(channel Channel, req *Request) error {
	streamID := c.dispatcher.OpenStream()
	frame := Frame{
		Header: FrameHeader{
			Type:     FrameData,
			Flags:    FlagEndStream,
			StreamID: streamID,
		},
		Payload: BuildRequestPayload(req, streamID),
	}
	return channel.Send(frame)
}
