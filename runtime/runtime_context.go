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
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oleh-synelnykov/hasten"
)

type SessionKind uint8

const (
	SessionClient SessionKind = iota
	SessionServer
)

func (k SessionKind) String() string {
	switch k {
	case SessionClient:
		return "client"
	case SessionServer:
		return "server"
	}
	return "unknown"
}

// Session is the reactor's per-channel state: the receive goroutine, the
// peer's advertised encoding, and a correlation id for logs.
type Session struct {
	id           uint64
	uid          uuid.UUID
	channel      Channel
	kind         SessionKind
	peerEncoding atomic.Uint32
	running      atomic.Bool
	wg           sync.WaitGroup
	log          zerolog.Logger
}

func (s *Session) ID() uint64 {
	return s.id
}

func (s *Session) Kind() SessionKind {
	return s.kind
}

func (s *Session) Channel() Channel {
	return s.channel
}

func (s *Session) PeerEncoding() hasten.Encoding {
	return hasten.Encoding(s.peerEncoding.Load())
}

func (s *Session) setPeerEncoding(encoding hasten.Encoding) {
	s.peerEncoding.Store(uint32(encoding))
}

func (s *Session) Send(frame Frame) error {
	return s.channel.Send(frame)
}

// start spawns the receive goroutine. One frame at a time flows into
// onFrame; the first receive failure flows into onError and ends the loop.
func (s *Session) start(onFrame func(*Session, Frame), onError func(*Session, error)) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for s.running.Load() {
			frame, err := s.channel.Receive()
			if err != nil {
				if s.running.Load() {
					onError(s, err)
				}
				return
			}
			onFrame(s, frame)
		}
	}()
}

// stop closes the channel, waking a blocked receive. It never joins the
// receive goroutine so it is safe to call from any goroutine, the receive
// loop's included.
func (s *Session) stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	s.channel.Close()
}

func (s *Session) join() {
	s.wg.Wait()
}

type queuedFrame struct {
	session *Session
	frame   Frame
}

type listenerState struct {
	server  Server
	path    string
	running atomic.Bool
	wg      sync.WaitGroup
}

// ContextConfig tunes a Context. Zero values pick defaults.
type ContextConfig struct {
	// WorkerThreads sizes the default executor pool.
	WorkerThreads int
	// ExecutorQueueDepth bounds the default executor's task queue.
	ExecutorQueueDepth int
	// Logger receives runtime events. Defaults to stderr at warn level.
	Logger *zerolog.Logger
}

// Context is the operational heart of the runtime. It owns the sessions,
// the listeners, the shared client dispatcher, the executor, and the frame
// queue between session receive goroutines and the run loop.
type Context struct {
	log        zerolog.Logger
	dispatcher *Dispatcher
	executor   Executor
	ownedPool  *PoolExecutor

	queueMu   sync.Mutex
	queueCond *sync.Cond
	queue     []queuedFrame

	sessionsMu sync.Mutex
	sessions   []*Session

	listenersMu sync.Mutex
	listeners   []*listenerState

	stopRequested  atomic.Bool
	reactorRunning atomic.Bool
	reactorWG      sync.WaitGroup
	nextSessionID  atomic.Uint64
}

func NewContext(cfg ContextConfig) *Context {
	log := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	pool := NewPoolExecutor(cfg.WorkerThreads, cfg.ExecutorQueueDepth, log)
	c := &Context{
		log:        log,
		dispatcher: NewDispatcher(),
		executor:   pool,
		ownedPool:  pool,
	}
	c.queueCond = sync.NewCond(&c.queueMu)
	c.nextSessionID.Store(1)
	return c
}

// Dispatcher exposes the shared client-side stream dispatcher. Generated
// client stubs use it through the call helpers.
func (c *Context) Dispatcher() *Dispatcher {
	return c.dispatcher
}

func (c *Context) Executor() Executor {
	return c.executor
}

// SetExecutor replaces the executor used to run continuations and bound
// handlers. A nil executor restores the context-owned pool.
func (c *Context) SetExecutor(executor Executor) {
	if executor == nil {
		executor = c.ownedPool
	}
	c.executor = executor
}

// Listen binds path and accepts connections until Stop. Each accepted
// channel becomes a server-kind session.
func (c *Context) Listen(path string) error {
	server, err := Listen(path)
	if err != nil {
		return err
	}

	state := &listenerState{server: server, path: path}
	state.running.Store(true)
	state.wg.Add(1)
	go c.acceptLoop(state)

	c.listenersMu.Lock()
	c.listeners = append(c.listeners, state)
	c.listenersMu.Unlock()
	return nil
}

// Connect dials path and registers the channel as a client-kind session.
// The returned channel is shared with generated client stubs.
func (c *Context) Connect(path string) (Channel, error) {
	channel, err := Dial(path)
	if err != nil {
		return nil, err
	}
	if err := c.addSession(channel, SessionClient); err != nil {
		return nil, err
	}
	return channel, nil
}

// AttachChannel wraps an externally provided channel in a session.
func (c *Context) AttachChannel(channel Channel, serverSide bool) error {
	kind := SessionClient
	if serverSide {
		kind = SessionServer
	}
	return c.addSession(channel, kind)
}

// Start spawns a managed reactor goroutine running Run.
func (c *Context) Start() {
	if !c.reactorRunning.CompareAndSwap(false, true) {
		return
	}
	c.reactorWG.Add(1)
	go func() {
		defer c.reactorWG.Done()
		c.Run()
	}()
}

// Stop flips the stop flag, wakes the run loop, closes every listener and
// session channel, and stops the context-owned executor. It is idempotent.
func (c *Context) Stop() {
	if c.stopRequested.Swap(true) {
		return
	}
	c.queueCond.Broadcast()

	c.listenersMu.Lock()
	for _, state := range c.listeners {
		state.running.Store(false)
		state.server.Close()
	}
	c.listenersMu.Unlock()

	c.sessionsMu.Lock()
	snapshot := c.sessions
	c.sessions = nil
	c.sessionsMu.Unlock()
	for _, session := range snapshot {
		session.stop()
	}
	for _, session := range snapshot {
		session.join()
	}

	if c.ownedPool != nil {
		c.ownedPool.Stop()
	}
}

// Join waits for the managed reactor goroutine and the accept loops.
func (c *Context) Join() {
	c.reactorWG.Wait()

	c.listenersMu.Lock()
	listeners := c.listeners
	c.listeners = nil
	c.listenersMu.Unlock()
	for _, state := range listeners {
		state.wg.Wait()
	}
	c.reactorRunning.Store(false)
}

// Run processes frames until Stop, blocking while the queue is empty.
func (c *Context) Run() int {
	return c.runLoop(true, false)
}

// RunOne blocks for at most one frame.
func (c *Context) RunOne() int {
	return c.runLoop(true, true)
}

// Poll drains whatever is queued without blocking.
func (c *Context) Poll() int {
	return c.runLoop(false, false)
}

// ---------- internals ----------

func (c *Context) addSession(channel Channel, kind SessionKind) error {
	session := &Session{
		id:      c.nextSessionID.Add(1) - 1,
		uid:     uuid.New(),
		channel: channel,
		kind:    kind,
	}
	session.log = c.log.With().
		Uint64("session", session.id).
		Str("sid", session.uid.String()).
		Str("kind", kind.String()).
		Logger()
	session.setPeerEncoding(hasten.EncodingHb1)

	c.sessionsMu.Lock()
	c.sessions = append(c.sessions, session)
	c.sessionsMu.Unlock()

	session.start(c.enqueueFrame, c.handleSessionError)
	c.sendInitialSettings(session)
	return nil
}

func (c *Context) acceptLoop(state *listenerState) {
	defer state.wg.Done()
	for state.running.Load() && !c.stopRequested.Load() {
		channel, err := state.server.Accept()
		if err != nil {
			if !state.running.Load() || c.stopRequested.Load() {
				return
			}
			c.log.Warn().Str("path", state.path).Err(err).Msg("accept failed")
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if err := c.addSession(channel, SessionServer); err != nil {
			c.log.Warn().Str("path", state.path).Err(err).Msg("session creation failed")
		}
	}
}

func (c *Context) enqueueFrame(session *Session, frame Frame) {
	c.queueMu.Lock()
	c.queue = append(c.queue, queuedFrame{session: session, frame: frame})
	c.queueMu.Unlock()
	c.queueCond.Signal()
}

func (c *Context) popFrame(block bool) (queuedFrame, bool) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if block {
		for !c.stopRequested.Load() && len(c.queue) == 0 {
			c.queueCond.Wait()
		}
	}
	if len(c.queue) == 0 {
		return queuedFrame{}, false
	}
	item := c.queue[0]
	c.queue = c.queue[1:]
	return item, true
}

func (c *Context) runLoop(block, single bool) int {
	processed := 0
	for {
		item, ok := c.popFrame(block)
		if !ok {
			if block && !c.stopRequested.Load() {
				continue
			}
			break
		}
		c.handleFrame(item.session, item.frame)
		processed++
		if single {
			break
		}
	}
	return processed
}

func (c *Context) handleSessionError(session *Session, err error) {
	event := session.log.Warn()
	if hasten.CodeOf(err) == hasten.Cancelled {
		event = session.log.Debug()
	}
	event.Err(err).Msg("session error")
	session.stop()
	c.removeSession(session)
}

func (c *Context) removeSession(session *Session) {
	c.sessionsMu.Lock()
	defer c.sessionsMu.Unlock()
	for ii, s := range c.sessions {
		if s == session {
			c.sessions = append(c.sessions[:ii], c.sessions[ii+1:]...)
			return
		}
	}
}

func (c *Context) sendInitialSettings(session *Session) {
	frame := Frame{
		Header:  FrameHeader{Type: FrameSettings},
		Payload: []byte{byte(hasten.EncodingHb1)},
	}
	if err := session.Send(frame); err != nil {
		c.handleSessionError(session, err)
	}
}

func (c *Context) handleFrame(session *Session, frame Frame) {
	switch frame.Header.Type {
	case FramePing:
		c.handlePing(session, frame)
	case FrameSettings:
		c.handleSettings(session, frame)
	case FrameGoodbye:
		c.handleGoodbye(session, frame)
	case FrameCancel:
		c.handleCancel(session, frame)
	case FrameError:
		c.handleError(session, frame)
	case FrameData:
		if session.Kind() == SessionServer {
			c.handleServerData(session, frame)
		} else {
			c.handleClientData(session, frame)
		}
	}
}

func (c *Context) handlePing(session *Session, frame Frame) {
	response := Frame{
		Header: FrameHeader{
			Type:     FramePing,
			Flags:    frame.Header.Flags,
			StreamID: frame.Header.StreamID,
		},
		Payload: frame.Payload,
	}
	if err := session.Send(response); err != nil {
		c.handleSessionError(session, err)
	}
}

func (c *Context) handleSettings(session *Session, frame Frame) {
	if len(frame.Payload) > 0 {
		session.setPeerEncoding(hasten.Encoding(frame.Payload[0]))
	}
}

func (c *Context) handleGoodbye(session *Session, frame Frame) {
	session.log.Info().Msg("peer requested GOODBYE")
	session.stop()
	c.removeSession(session)
}

func (c *Context) handleCancel(session *Session, frame Frame) {
	session.log.Debug().
		Uint64("stream", frame.Header.StreamID).
		Msg("cancel frame ignored (not implemented)")
}

func (c *Context) handleError(session *Session, frame Frame) {
	session.log.Warn().
		Int("payload_bytes", len(frame.Payload)).
		Msg("error frame from peer")
}

func (c *Context) handleServerData(session *Session, frame Frame) {
	req, _, err := ParseRequestPayload(frame.Payload)
	if err != nil {
		c.sendRpcResponse(session, frame.Header.StreamID, Response{Status: hasten.StatusInvalidRequest})
		return
	}

	handler, ok := FindHandler(req.InterfaceID)
	if !ok {
		c.sendRpcResponse(session, frame.Header.StreamID, Response{Status: hasten.StatusNotFound})
		return
	}

	streamID := frame.Header.StreamID
	responder := func(response Response) {
		c.sendRpcResponse(session, streamID, response)
	}
	handler(req, responder)
}

func (c *Context) handleClientData(session *Session, frame Frame) {
	response, err := ParseResponsePayload(frame.Payload)
	if err != nil {
		c.dispatcher.CloseStream(frame.Header.StreamID)
		session.log.Warn().
			Uint64("stream", frame.Header.StreamID).
			Err(err).
			Msg("failed to decode response")
		return
	}

	handler, ok := c.dispatcher.TakeResponseHandler(frame.Header.StreamID)
	if !ok {
		session.log.Warn().
			Uint64("stream", frame.Header.StreamID).
			Msg("no response handler for stream")
		return
	}
	c.executor.Schedule(func() {
		handler(response)
	})
}

func (c *Context) sendRpcResponse(session *Session, streamID uint64, response Response) {
	reply := Frame{
		Header: FrameHeader{
			Type:     FrameData,
			Flags:    FlagEndStream,
			StreamID: streamID,
		},
		Payload: BuildResponsePayload(response),
	}
	if err := session.Send(reply); err != nil {
		c.handleSessionError(session, err)
	}
}
