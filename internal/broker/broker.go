// Package broker implements the public-facing relay.
//
// The broker binds the TCP endpoint clients speak to, tags every
// incoming request with a fresh correlation token, forwards it to the
// dispatch channel and routes each reply back to the connection that
// sent the matching request. Connection readers perform only socket I/O
// and channel sends, so a slow render can never stall delivery for
// other clients. A reply whose token no longer maps to a live
// connection is dropped silently; the client already disconnected.
package broker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"pigd/internal/dispatch"
	"pigd/internal/metrics"
	"pigd/internal/wire"
)

// Broker relays framed requests from client connections to the worker
// pool and replies back. It performs no business logic.
type Broker struct {
	requests chan<- dispatch.Envelope
	replies  <-chan dispatch.ReplyEnvelope
	logger   *slog.Logger

	listener net.Listener

	mu       sync.Mutex
	conns    map[string]*clientConn // correlation token -> originating connection
	live     map[*clientConn]struct{}
	shutdown bool
}

// clientConn wraps one accepted connection. Reply writes are serialized
// so sequential requests on one connection cannot interleave frames.
type clientConn struct {
	conn   net.Conn
	mu     sync.Mutex
	closed bool
}

func (c *clientConn) writeReply(payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return net.ErrClosed
	}
	return wire.WriteReply(c.conn, payload)
}

func (c *clientConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.conn.Close()
	}
}

// New creates a broker wired to the pool's dispatch and reply channels.
func New(requests chan<- dispatch.Envelope, replies <-chan dispatch.ReplyEnvelope, logger *slog.Logger) *Broker {
	return &Broker{
		requests: requests,
		replies:  replies,
		logger:   logger.With("component", "broker"),
		conns:    make(map[string]*clientConn),
		live:     make(map[*clientConn]struct{}),
	}
}

// Listen binds the public endpoint. It is separate from Serve so
// callers can learn the bound address before serving; tests listen on
// port 0.
func (b *Broker) Listen(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	b.listener = l
	b.logger.Info("listening", "addr", l.Addr().String())
	return nil
}

// Addr reports the bound address. Only valid after Listen.
func (b *Broker) Addr() net.Addr { return b.listener.Addr() }

// Serve accepts connections and routes replies until ctx is cancelled.
// Cancellation closes the listener and every accepted connection, so no
// reader goroutine outlives the broker.
func (b *Broker) Serve(ctx context.Context) error {
	if b.listener == nil {
		return errors.New("broker: Serve called before Listen")
	}

	go b.routeReplies(ctx)

	go func() {
		<-ctx.Done()
		b.listener.Close()
		b.closeAll()
	}()

	for {
		conn, err := b.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go b.handleConn(ctx, conn)
	}
}

// handleConn reads framed requests off one connection and forwards them
// to the dispatch channel until the peer disconnects or misbehaves.
func (b *Broker) handleConn(ctx context.Context, conn net.Conn) {
	metrics.OpenConnections.Inc()
	defer metrics.OpenConnections.Dec()

	cc := &clientConn{conn: conn}
	if !b.addConn(cc) {
		cc.close()
		return
	}
	defer b.removeConn(cc)
	defer cc.close()

	logger := b.logger.With("remote_addr", conn.RemoteAddr().String())
	r := bufio.NewReader(conn)

	for {
		language, source, err := wire.ReadRequest(r)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				logger.Warn("dropping connection", "error", err)
			}
			return
		}

		token := uuid.NewString()
		b.register(token, cc)

		env := dispatch.Envelope{
			Token:   token,
			Request: dispatch.Request{Language: language, Source: source},
		}
		select {
		case b.requests <- env:
		case <-ctx.Done():
			b.deregister(token)
			return
		}
	}
}

// routeReplies delivers worker replies to the connection recorded for
// their correlation token, dropping replies whose client is gone.
func (b *Broker) routeReplies(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-b.replies:
			cc := b.take(env.Token)
			if cc == nil {
				metrics.OrphanedRepliesTotal.Inc()
				continue
			}
			if err := cc.writeReply(env.Reply.Payload); err != nil {
				metrics.OrphanedRepliesTotal.Inc()
				b.logger.Debug("reply dropped", "token", env.Token, "error", err)
			}
		}
	}
}

// addConn records an accepted connection in the live set so teardown
// can reach idle connections with no request in flight. It refuses
// connections accepted after shutdown began.
func (b *Broker) addConn(cc *clientConn) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shutdown {
		return false
	}
	b.live[cc] = struct{}{}
	return true
}

func (b *Broker) removeConn(cc *clientConn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.live, cc)
}

// closeAll closes every live connection, unparking their reader
// goroutines. Called once when the serve context is cancelled.
func (b *Broker) closeAll() {
	b.mu.Lock()
	b.shutdown = true
	live := make([]*clientConn, 0, len(b.live))
	for cc := range b.live {
		live = append(live, cc)
	}
	b.mu.Unlock()

	for _, cc := range live {
		cc.close()
	}
}

func (b *Broker) register(token string, cc *clientConn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conns[token] = cc
}

func (b *Broker) deregister(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conns, token)
}

// take removes and returns the connection for a token, or nil if the
// token is unknown.
func (b *Broker) take(token string) *clientConn {
	b.mu.Lock()
	defer b.mu.Unlock()
	cc := b.conns[token]
	delete(b.conns, token)
	return cc
}
