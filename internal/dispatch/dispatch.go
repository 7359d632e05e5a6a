// Package dispatch defines the messages that move between the broker and
// the worker pool.
//
// The dispatch channel itself is a plain Go channel of Envelope: an
// unbuffered handoff delivers each request to exactly one idle worker,
// and blocked senders form the implicit queue when the whole pool is
// busy. There is no depth limit, no worker affinity and no priority.
package dispatch

// Request is one unit of highlighting work as received from a client.
// It is immutable once constructed.
type Request struct {
	Language string
	Source   string
}

// Reply carries the rendered markup, or an engine failure rendered as
// text. The wire format does not distinguish the two.
type Reply struct {
	Payload string
}

// Envelope wraps a Request with the correlation token the broker uses to
// route the eventual reply. Workers carry the token through untouched.
type Envelope struct {
	Token   string
	Request Request
}

// ReplyEnvelope pairs a Reply with the correlation token of the request
// that produced it.
type ReplyEnvelope struct {
	Token string
	Reply Reply
}
