// Package wire implements the framed request-reply protocol spoken on
// the public TCP endpoint.
//
// A frame is a 4-byte big-endian length followed by that many bytes of
// UTF-8 text. A request is exactly two frames, the language identifier
// and the source text. A reply is a single frame containing either
// rendered markup or an engine error message; the two are distinguished
// only by content. Connections follow a strict request-reply discipline:
// one request, one reply, repeat.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single frame, enforced on both read and write.
// A peer announcing a larger frame is violating the protocol and its
// connection is dropped; an oversized outgoing payload is rejected
// before any bytes hit the wire, keeping the stream in sync.
const MaxFrameSize = 64 << 20

func writeFrame(w io.Writer, p []byte) error {
	if len(p) > MaxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds limit of %d", len(p), MaxFrameSize)
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(p)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(p)
	return err
}

func readFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit of %d", n, MaxFrameSize)
	}
	p := make([]byte, n)
	if _, err := io.ReadFull(r, p); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return p, nil
}

// WriteRequest sends the two request frames.
func WriteRequest(w io.Writer, language, source string) error {
	if err := writeFrame(w, []byte(language)); err != nil {
		return fmt.Errorf("write language frame: %w", err)
	}
	if err := writeFrame(w, []byte(source)); err != nil {
		return fmt.Errorf("write source frame: %w", err)
	}
	return nil
}

// ReadRequest reads the two request frames. io.EOF is returned unwrapped
// when the peer closes the connection cleanly between requests.
func ReadRequest(r io.Reader) (language, source string, err error) {
	lang, err := readFrame(r)
	if err != nil {
		return "", "", err
	}
	src, err := readFrame(r)
	if err != nil {
		return "", "", fmt.Errorf("read source frame: %w", err)
	}
	return string(lang), string(src), nil
}

// WriteReply sends the single reply frame.
func WriteReply(w io.Writer, payload string) error {
	return writeFrame(w, []byte(payload))
}

// ReadReply reads the single reply frame.
func ReadReply(r io.Reader) (string, error) {
	p, err := readFrame(r)
	if err != nil {
		return "", err
	}
	return string(p), nil
}
