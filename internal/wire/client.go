package wire

import (
	"bufio"
	"net"
)

// Client is a minimal synchronous client for the daemon. The protocol
// allows one request in flight per connection, so a Client must not be
// used concurrently.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to a daemon at addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Highlight sends one request and waits for its reply. The reply is
// rendered markup, or an engine error message distinguishable only by
// content.
func (c *Client) Highlight(language, source string) (string, error) {
	if err := WriteRequest(c.conn, language, source); err != nil {
		return "", err
	}
	return ReadReply(c.r)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
