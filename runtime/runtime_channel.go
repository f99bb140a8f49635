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

// Package runtime is the Hasten RPC runtime: frame codec, channel
// transport, stream dispatch, executors, and the reactor Context that ties
// a process's sessions together.
package runtime

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/oleh-synelnykov/hasten"
)

// Channel is a bidirectional, reliable, ordered, framed byte-stream
// endpoint. Receive blocks until a full frame arrives, the peer closes
// (TransportError), or Close is called concurrently (Cancelled).
type Channel interface {
	Encoding() hasten.Encoding
	Send(frame Frame) error
	Receive() (Frame, error)
	Close() error
}

// Server accepts inbound channels. Close wakes a blocked Accept and removes
// any on-disk endpoint the server created.
type Server interface {
	Accept() (Channel, error)
	Close() error
}

// connChannel frames an arbitrary net.Conn. Closing the conn is what wakes
// a blocked Receive; the closed flag decides whether that surfaces as a
// local cancellation or a peer failure.
type connChannel struct {
	conn   net.Conn
	sendMu sync.Mutex
	closed atomic.Bool
}

// NewConnChannel wraps an established connection in the frame protocol.
func NewConnChannel(conn net.Conn) Channel {
	return &connChannel{conn: conn}
}

func (c *connChannel) Encoding() hasten.Encoding {
	return hasten.EncodingHb1
}

func (c *connChannel) Send(frame Frame) error {
	if c.closed.Load() {
		return hasten.NewError(hasten.Cancelled, "Channel closed")
	}
	frame.Header.Length = uint32(len(frame.Payload))
	header := EncodeHeader(&frame.Header)
	buf := make([]byte, 0, FrameHeaderSize+len(frame.Payload))
	buf = append(buf, header[:]...)
	buf = append(buf, frame.Payload...)

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if _, err := c.conn.Write(buf); err != nil {
		return c.mapError(err, "send failed")
	}
	return nil
}

func (c *connChannel) Receive() (Frame, error) {
	var headerBuf [FrameHeaderSize]byte
	if _, err := io.ReadFull(c.conn, headerBuf[:]); err != nil {
		return Frame{}, c.mapError(err, "receive failed")
	}
	header, err := DecodeHeader(headerBuf[:])
	if err != nil {
		return Frame{}, err
	}

	var payload []byte
	if header.Length > 0 {
		payload = make([]byte, header.Length)
		if _, err := io.ReadFull(c.conn, payload); err != nil {
			return Frame{}, c.mapError(err, "receive failed")
		}
	}
	return Frame{Header: header, Payload: payload}, nil
}

func (c *connChannel) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

func (c *connChannel) mapError(err error, what string) error {
	if c.closed.Load() {
		return hasten.NewError(hasten.Cancelled, "Channel closed")
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return hasten.NewError(hasten.TransportError, "peer closed connection")
	}
	return hasten.Errorf(hasten.TransportError, "%s: %v", what, err)
}

// udsServer listens on a UNIX domain stream socket.
type udsServer struct {
	listener *net.UnixListener
	path     string
	closed   atomic.Bool
}

// Listen binds a UNIX domain socket at path. The socket file is unlinked
// when the server closes.
func Listen(path string) (Server, error) {
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, hasten.Errorf(hasten.TransportError, "invalid socket path %q: %v", path, err)
	}
	listener, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, hasten.Errorf(hasten.TransportError, "listen on %q failed: %v", path, err)
	}
	listener.SetUnlinkOnClose(true)
	return &udsServer{listener: listener, path: path}, nil
}

func (s *udsServer) Accept() (Channel, error) {
	conn, err := s.listener.AcceptUnix()
	if err != nil {
		if s.closed.Load() {
			return nil, hasten.NewError(hasten.Cancelled, "Server closed")
		}
		return nil, hasten.Errorf(hasten.TransportError, "accept failed: %v", err)
	}
	return NewConnChannel(conn), nil
}

func (s *udsServer) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.listener.Close()
}

// Dial connects to a UNIX domain socket at path.
func Dial(path string) (Channel, error) {
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, hasten.Errorf(hasten.TransportError, "invalid socket path %q: %v", path, err)
	}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		return nil, hasten.Errorf(hasten.TransportError, "connect to %q failed: %v", path, err)
	}
	return NewConnChannel(conn), nil
}
