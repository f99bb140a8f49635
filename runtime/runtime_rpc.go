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

	"github.com/oleh-synelnykov/hasten"
)

// Request is one decoded server-bound RPC envelope. Payload is the
// HB1-encoded request body; the reactor treats it as opaque.
type Request struct {
	ModuleID    uint64
	InterfaceID uint64
	MethodID    uint64
	Encoding    hasten.Encoding
	Payload     []byte
}

// Response is one client-bound RPC result.
type Response struct {
	Status hasten.Status
	Body   []byte
}

// Responder finalizes one RPC by sending the response frame. It is one-shot
// and safe to call from any goroutine.
type Responder func(Response)

// Handler is the server-side dispatch target registered per interface id.
// It must be callable concurrently.
type Handler func(*Request, Responder)

// StatusError is the client-visible form of a non-OK RPC status.
type StatusError struct {
	Status hasten.Status
}

func (e *StatusError) Error() string {
	return "rpc failed with status " + e.Status.String()
}

// ---------- process-wide handler registry ----------

var handlerRegistry = struct {
	mu       sync.Mutex
	handlers map[uint64]Handler
}{handlers: make(map[uint64]Handler)}

// RegisterHandler installs handler for interfaceID, replacing any prior
// registration.
func RegisterHandler(interfaceID uint64, handler Handler) {
	handlerRegistry.mu.Lock()
	defer handlerRegistry.mu.Unlock()
	handlerRegistry.handlers[interfaceID] = handler
}

// FindHandler returns the handler for interfaceID, suitable for
// asynchronous invocation.
func FindHandler(interfaceID uint64) (Handler, bool) {
	handlerRegistry.mu.Lock()
	defer handlerRegistry.mu.Unlock()
	handler, ok := handlerRegistry.handlers[interfaceID]
	return handler, ok
}

// ---------- payload codecs ----------

func appendVarint(dst []byte, value uint64) []byte {
	for value >= 0x80 {
		dst = append(dst, byte(value)|0x80)
		value >>= 7
	}
	return append(dst, byte(value))
}

func readVarint(buf []byte, offset *int) (uint64, error) {
	var result uint64
	shift := 0
	for *offset < len(buf) {
		b := buf[*offset]
		*offset++
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, hasten.NewError(hasten.TransportError, "varint too long")
		}
	}
	return 0, hasten.NewError(hasten.TransportError, "truncated varint")
}

// BuildRequestPayload lays out a server-bound Data payload:
// module | interface | method | encoding | stream id, each a varint, then
// the HB1-encoded body.
func BuildRequestPayload(req *Request, streamID uint64) []byte {
	payload := make([]byte, 0, 5*maxVarintLen+len(req.Payload))
	payload = appendVarint(payload, req.ModuleID)
	payload = appendVarint(payload, req.InterfaceID)
	payload = appendVarint(payload, req.MethodID)
	payload = appendVarint(payload, uint64(req.Encoding))
	payload = appendVarint(payload, streamID)
	return append(payload, req.Payload...)
}

const maxVarintLen = 10

// ParseRequestPayload is the inverse of BuildRequestPayload. The embedded
// stream id is returned alongside the request.
func ParseRequestPayload(payload []byte) (*Request, uint64, error) {
	offset := 0
	moduleID, err := readVarint(payload, &offset)
	if err != nil {
		return nil, 0, err
	}
	interfaceID, err := readVarint(payload, &offset)
	if err != nil {
		return nil, 0, err
	}
	methodID, err := readVarint(payload, &offset)
	if err != nil {
		return nil, 0, err
	}
	encodingID, err := readVarint(payload, &offset)
	if err != nil {
		return nil, 0, err
	}
	if encodingID != uint64(hasten.EncodingHb1) {
		return nil, 0, hasten.NewError(hasten.TransportError, "unsupported encoding")
	}
	streamID, err := readVarint(payload, &offset)
	if err != nil {
		return nil, 0, err
	}

	req := &Request{
		ModuleID:    moduleID,
		InterfaceID: interfaceID,
		MethodID:    methodID,
		Encoding:    hasten.EncodingHb1,
		Payload:     payload[offset:],
	}
	return req, streamID, nil
}

// BuildResponsePayload lays out a client-bound Data payload:
// varint(encoding) | u8(status) | body.
func BuildResponsePayload(resp Response) []byte {
	payload := make([]byte, 0, maxVarintLen+1+len(resp.Body))
	payload = appendVarint(payload, uint64(hasten.EncodingHb1))
	payload = append(payload, byte(resp.Status))
	return append(payload, resp.Body...)
}

// ParseResponsePayload is the inverse of BuildResponsePayload.
func ParseResponsePayload(payload []byte) (Response, error) {
	offset := 0
	encodingID, err := readVarint(payload, &offset)
	if err != nil {
		return Response{}, err
	}
	if encodingID != uint64(hasten.EncodingHb1) {
		return Response{}, hasten.NewError(hasten.TransportError, "unsupported encoding")
	}
	if offset >= len(payload) {
		return Response{}, hasten.NewError(hasten.TransportError, "missing response status")
	}
	status := hasten.Status(payload[offset])
	offset++
	return Response{Status: status, Body: payload[offset:]}, nil
}
