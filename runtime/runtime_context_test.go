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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oleh-synelnykov/hasten"
	"github.com/oleh-synelnykov/hasten/encoding/hb1"
)

var echoRequestDescriptor = hb1.MessageDescriptor{
	Name: "test.Echo.Ping.request",
	Fields: []hb1.FieldDescriptor{
		{ID: 1, WireType: hb1.WireLengthDelimited, Kind: hb1.KindString},
	},
}

var echoResponseDescriptor = hb1.MessageDescriptor{
	Name: "test.Echo.Ping.response",
	Fields: []hb1.FieldDescriptor{
		{ID: 1, WireType: hb1.WireLengthDelimited, Kind: hb1.KindString},
	},
}

func encodeEchoString(t *testing.T, desc *hb1.MessageDescriptor, value string) []byte {
	t.Helper()
	body, err := hb1.EncodeToBytes(desc, []hb1.FieldValue{
		{ID: 1, WireType: hb1.WireLengthDelimited, Value: hb1.StringValue(value)},
	})
	require.NoError(t, err)
	return body
}

func decodeEchoString(t *testing.T, desc *hb1.MessageDescriptor, data []byte) string {
	t.Helper()
	values, err := hb1.DecodeMessage(desc, data)
	require.NoError(t, err)
	require.Len(t, values, 1)
	return values[0].Value.Text
}

// registerEchoHandler binds a handler that replies "Echo: <msg>".
func registerEchoHandler(t *testing.T, interfaceID uint64) {
	t.Helper()
	RegisterHandler(interfaceID, func(req *Request, respond Responder) {
		values, err := hb1.DecodeMessage(&echoRequestDescriptor, req.Payload)
		if err != nil {
			respond(Response{Status: hasten.StatusInvalidRequest})
			return
		}
		reply := "Echo: " + values[0].Value.Text
		body, err := hb1.EncodeToBytes(&echoResponseDescriptor, []hb1.FieldValue{
			{ID: 1, WireType: hb1.WireLengthDelimited, Value: hb1.StringValue(reply)},
		})
		if err != nil {
			respond(Response{Status: hasten.StatusInternalError})
			return
		}
		respond(Response{Status: hasten.StatusOk, Body: body})
	})
}

func startServer(t *testing.T) (*Context, string) {
	t.Helper()
	path := socketPath(t)
	ctx := NewContext(ContextConfig{})
	require.NoError(t, ctx.Listen(path))
	ctx.Start()
	t.Cleanup(func() {
		ctx.Stop()
		ctx.Join()
	})
	return ctx, path
}

func startClient(t *testing.T, path string) (*Context, Channel) {
	t.Helper()
	ctx := NewContext(ContextConfig{})
	channel, err := ctx.Connect(path)
	require.NoError(t, err)
	ctx.Start()
	t.Cleanup(func() {
		ctx.Stop()
		ctx.Join()
	})
	return ctx, channel
}

func echoRequest(interfaceID uint64, body []byte) *Request {
	return &Request{
		ModuleID:    hasten.ModuleID("test"),
		InterfaceID: interfaceID,
		MethodID:    hasten.MethodID("test", "Echo", "Ping"),
		Encoding:    hasten.EncodingHb1,
		Payload:     body,
	}
}

func TestEchoRpcSync(t *testing.T) {
	interfaceID := hasten.InterfaceID("test", "EchoSync")
	registerEchoHandler(t, interfaceID)

	_, path := startServer(t)
	client, channel := startClient(t, path)

	body := encodeEchoString(t, &echoRequestDescriptor, "hi")
	resp, err := client.CallSync(channel, echoRequest(interfaceID, body))
	require.NoError(t, err)
	require.Equal(t, hasten.StatusOk, resp.Status)
	require.Equal(t, "Echo: hi", decodeEchoString(t, &echoResponseDescriptor, resp.Body))
}

func TestEchoRpcFuture(t *testing.T) {
	interfaceID := hasten.InterfaceID("test", "EchoFuture")
	registerEchoHandler(t, interfaceID)

	_, path := startServer(t)
	client, channel := startClient(t, path)

	body := encodeEchoString(t, &echoRequestDescriptor, "async")
	future, err := client.CallFuture(channel, echoRequest(interfaceID, body))
	require.NoError(t, err)
	resp := future.Get()
	require.Equal(t, hasten.StatusOk, resp.Status)
	require.Equal(t, "Echo: async", decodeEchoString(t, &echoResponseDescriptor, resp.Body))
}

func TestCallbackInvokedExactlyOnce(t *testing.T) {
	interfaceID := hasten.InterfaceID("test", "EchoCallback")
	registerEchoHandler(t, interfaceID)

	_, path := startServer(t)
	client, channel := startClient(t, path)

	var invocations atomic.Int32
	done := make(chan struct{})
	body := encodeEchoString(t, &echoRequestDescriptor, "once")
	err := client.Call(channel, echoRequest(interfaceID, body), func(resp Response) {
		if invocations.Add(1) == 1 {
			close(done)
		}
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never invoked")
	}
	time.Sleep(100 * time.Millisecond) // catch double invocation
	require.Equal(t, int32(1), invocations.Load())
}

func TestUnregisteredInterfaceIsNotFound(t *testing.T) {
	interfaceID := hasten.InterfaceID("test", "Nobody")

	_, path := startServer(t)
	client, channel := startClient(t, path)

	body := encodeEchoString(t, &echoRequestDescriptor, "hi")
	resp, err := client.CallSync(channel, echoRequest(interfaceID, body))
	require.NoError(t, err)
	require.Equal(t, hasten.StatusNotFound, resp.Status)
}

func TestMalformedRequestIsInvalidRequest(t *testing.T) {
	_, path := startServer(t)
	client, channel := startClient(t, path)

	// A raw Data frame whose payload is not a valid request envelope.
	streamID := client.Dispatcher().OpenStream()
	done := make(chan Response, 1)
	client.Dispatcher().SetResponseHandler(streamID, func(resp Response) { done <- resp })
	frame := Frame{
		Header:  FrameHeader{Type: FrameData, Flags: FlagEndStream, StreamID: streamID},
		Payload: []byte{0xFF}, // truncated varint
	}
	require.NoError(t, channel.Send(frame))

	select {
	case resp := <-done:
		require.Equal(t, hasten.StatusInvalidRequest, resp.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("no response to malformed request")
	}
}

func TestPingIsEchoed(t *testing.T) {
	_, path := startServer(t)

	channel, err := Dial(path)
	require.NoError(t, err)
	defer channel.Close()

	ping := Frame{
		Header:  FrameHeader{Type: FramePing, Flags: FlagEndStream, StreamID: 77},
		Payload: []byte("are you there"),
	}
	require.NoError(t, channel.Send(ping))

	// The server sends its Settings advertisement first; the ping echo
	// follows on the same session.
	deadline := time.After(2 * time.Second)
	for {
		type result struct {
			frame Frame
			err   error
		}
		got := make(chan result, 1)
		go func() {
			frame, err := channel.Receive()
			got <- result{frame, err}
		}()
		select {
		case res := <-got:
			require.NoError(t, res.err)
			if res.frame.Header.Type == FrameSettings {
				require.Equal(t, []byte{byte(hasten.EncodingHb1)}, res.frame.Payload)
				continue
			}
			require.Equal(t, FramePing, res.frame.Header.Type)
			require.Equal(t, uint64(77), res.frame.Header.StreamID)
			require.Equal(t, []byte("are you there"), res.frame.Payload)
			return
		case <-deadline:
			t.Fatal("ping echo never arrived")
		}
	}
}

func TestStopIsPrompt(t *testing.T) {
	server, path := startServer(t)
	client, _ := startClient(t, path)

	start := time.Now()
	client.Stop()
	client.Join()
	server.Stop()
	server.Join()
	require.Less(t, time.Since(start), time.Second,
		"stop must wake blocked receive/accept/run promptly")
}

func TestRunOneAndPoll(t *testing.T) {
	ctx := NewContext(ContextConfig{})
	defer func() {
		ctx.Stop()
		ctx.Join()
	}()

	require.Equal(t, 0, ctx.Poll())

	session := &Session{id: 1, channel: nil, kind: SessionClient}
	session.log = ctx.log
	ctx.enqueueFrame(session, Frame{Header: FrameHeader{Type: FrameError}})
	ctx.enqueueFrame(session, Frame{Header: FrameHeader{Type: FrameError}})
	require.Equal(t, 1, ctx.RunOne())
	require.Equal(t, 1, ctx.Poll())
	require.Equal(t, 0, ctx.Poll())
}

func TestSettingsUpdatesPeerEncoding(t *testing.T) {
	ctx := NewContext(ContextConfig{})
	defer func() {
		ctx.Stop()
		ctx.Join()
	}()

	session := &Session{id: 1, kind: SessionServer}
	session.log = ctx.log
	ctx.handleSettings(session, Frame{
		Header:  FrameHeader{Type: FrameSettings},
		Payload: []byte{byte(hasten.EncodingHb1)},
	})
	require.Equal(t, hasten.EncodingHb1, session.PeerEncoding())
}
