package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pigd/internal/dispatch"
	"pigd/internal/render"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func recvReply(t *testing.T, replies <-chan dispatch.ReplyEnvelope) dispatch.ReplyEnvelope {
	t.Helper()
	select {
	case r := <-replies:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reply")
		return dispatch.ReplyEnvelope{}
	}
}

func sendRequest(t *testing.T, requests chan<- dispatch.Envelope, env dispatch.Envelope) {
	t.Helper()
	select {
	case requests <- env:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out sending request")
	}
}

// failOnce fails the first render and delegates afterwards, simulating
// a value-level engine failure.
type failOnce struct {
	failed bool
	real   engine
}

func (f *failOnce) Render(lexer chroma.Lexer, source string) (string, error) {
	if !f.failed {
		f.failed = true
		return "", errors.New("malformed input")
	}
	return f.real.Render(lexer, source)
}

func TestWorkerServesRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	requests := make(chan dispatch.Envelope)
	replies := make(chan dispatch.ReplyEnvelope)
	go New(discardLogger()).Run(ctx, requests, replies)

	sendRequest(t, requests, dispatch.Envelope{
		Token:   "tok-1",
		Request: dispatch.Request{Language: "toml", Source: `key = "value"`},
	})

	reply := recvReply(t, replies)
	assert.Equal(t, "tok-1", reply.Token)
	assert.Contains(t, reply.Reply.Payload, `<span class="n">key</span>`)
	assert.Contains(t, reply.Reply.Payload, `<span class="o">=</span>`)
}

func TestWorkerEncodesEngineFailureAndKeepsServing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(discardLogger())
	w.renderer = &failOnce{real: render.New()}

	requests := make(chan dispatch.Envelope)
	replies := make(chan dispatch.ReplyEnvelope)
	go w.Run(ctx, requests, replies)

	sendRequest(t, requests, dispatch.Envelope{
		Token:   "bad",
		Request: dispatch.Request{Language: "toml", Source: "\x80\x81"},
	})
	reply := recvReply(t, replies)
	assert.Equal(t, "bad", reply.Token)
	assert.True(t, strings.HasPrefix(reply.Reply.Payload, render.EngineErrorPrefix),
		"payload %q should carry the engine error marker", reply.Reply.Payload)
	assert.Contains(t, reply.Reply.Payload, "malformed input")

	// The loop must survive the failure and serve the next request.
	sendRequest(t, requests, dispatch.Envelope{
		Token:   "good",
		Request: dispatch.Request{Language: "toml", Source: `key = "value"`},
	})
	reply = recvReply(t, replies)
	assert.Equal(t, "good", reply.Token)
	assert.Contains(t, reply.Reply.Payload, `<span class="n">key</span>`)
}

func TestPoolSpawnsExactlyConfiguredSize(t *testing.T) {
	pool := NewPool(3, discardLogger())
	assert.Equal(t, 3, pool.Size())
}

func TestPoolDrainsBacklogLargerThanPool(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewPool(2, discardLogger())
	go pool.Run(ctx)

	const requestCount = 8
	var wg sync.WaitGroup
	for i := 0; i < requestCount; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pool.Requests() <- dispatch.Envelope{
				Token:   fmt.Sprintf("tok-%d", i),
				Request: dispatch.Request{Language: "text", Source: fmt.Sprintf("marker-%d", i)},
			}
		}(i)
	}
	defer wg.Wait()

	seen := make(map[string]string, requestCount)
	for i := 0; i < requestCount; i++ {
		reply := recvReply(t, pool.Replies())
		seen[reply.Token] = reply.Reply.Payload
	}

	require.Len(t, seen, requestCount, "no reply may be lost or duplicated")
	for i := 0; i < requestCount; i++ {
		token := fmt.Sprintf("tok-%d", i)
		assert.Contains(t, seen[token], fmt.Sprintf("marker-%d", i),
			"reply for %s must match its own request", token)
	}
}
