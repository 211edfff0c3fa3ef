package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"unicode/utf8"
)

// PrefixSize is the width of the big-endian length prefix. It is fixed by the
// protocol and does not depend on the host word size.
const PrefixSize = 8

// DefaultMaxFrameSize bounds the declared payload length a Decoder accepts.
const DefaultMaxFrameSize = 1 << 20

const readChunk = 4 * 1024

// Encode serializes m as prefix + header line + body. The length is always
// recomputed from the type and body, so a stale Length field never reaches the wire.
func Encode(m Message) []byte {
	hdr := headerLine(m.Type)
	n := len(hdr) + len(m.Body)
	buf := make([]byte, PrefixSize, PrefixSize+n)
	binary.BigEndian.PutUint64(buf, uint64(n))
	buf = append(buf, hdr...)
	buf = append(buf, m.Body...)
	return buf
}

// WriteMessage writes one encoded frame to w in a single call.
func WriteMessage(w io.Writer, m Message) error {
	_, err := w.Write(Encode(m))
	return err
}

// Decoder reads frames from a stream that may deliver partial data or time out.
// Bytes already received are kept between calls, so a frame split across many
// reads is decoded once its last byte arrives.
type Decoder struct {
	r       io.Reader
	maxSize uint64
	buf     []byte
	chunk   []byte
}

// NewDecoder wraps r. maxFrameSize <= 0 selects DefaultMaxFrameSize.
func NewDecoder(r io.Reader, maxFrameSize int) *Decoder {
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	return &Decoder{
		r:       r,
		maxSize: uint64(maxFrameSize),
		chunk:   make([]byte, readChunk),
	}
}

// Buffered reports how many bytes of an incomplete frame are held.
func (d *Decoder) Buffered() int { return len(d.buf) }

// Decode returns the next message.
//
// ErrTransient means the reader had no more data for now (a timeout or an empty
// read) and the call may be repeated. ErrInvalidFrame means the payload was
// malformed; the whole frame has been consumed. ErrConnectionClosed, ErrIO and
// ErrFrameTooLarge are fatal for the stream.
func (d *Decoder) Decode() (Message, error) {
	for {
		if m, ok, err := d.next(); ok {
			return m, err
		}
		n, rerr := d.r.Read(d.chunk)
		d.buf = append(d.buf, d.chunk[:n]...)
		if rerr == nil {
			if n == 0 {
				return Message{}, ErrTransient
			}
			continue
		}
		if m, ok, err := d.next(); ok {
			// the read error resurfaces on the following call
			return m, err
		}
		return Message{}, classifyReadError(rerr)
	}
}

// next tries to cut one frame out of the pending bytes.
func (d *Decoder) next() (Message, bool, error) {
	if len(d.buf) < PrefixSize {
		return Message{}, false, nil
	}
	declared := binary.BigEndian.Uint64(d.buf[:PrefixSize])
	if declared > d.maxSize {
		return Message{}, true, fmt.Errorf("%w: declared %d bytes, limit %d", ErrFrameTooLarge, declared, d.maxSize)
	}
	end := PrefixSize + int(declared)
	if len(d.buf) < end {
		return Message{}, false, nil
	}
	m, err := parsePayload(declared, d.buf[PrefixSize:end])
	d.buf = append(d.buf[:0], d.buf[end:]...)
	return m, true, err
}

// DecodeFrame decodes a single frame held entirely in memory, as carried by
// message-oriented transports.
func DecodeFrame(frame []byte) (Message, error) {
	if len(frame) < PrefixSize {
		return Message{}, fmt.Errorf("%w: %d bytes is shorter than the length prefix", ErrInvalidFrame, len(frame))
	}
	declared := binary.BigEndian.Uint64(frame[:PrefixSize])
	if declared != uint64(len(frame)-PrefixSize) {
		return Message{}, fmt.Errorf("%w: declared %d bytes, got %d", ErrInvalidFrame, declared, len(frame)-PrefixSize)
	}
	return parsePayload(declared, frame[PrefixSize:])
}

func parsePayload(declared uint64, payload []byte) (Message, error) {
	if !utf8.Valid(payload) {
		return Message{}, fmt.Errorf("%w: payload is not valid UTF-8", ErrInvalidFrame)
	}
	lines := splitLines(string(payload))
	if len(lines) < 2 {
		return Message{}, fmt.Errorf("%w: expected header and body lines, got %d", ErrInvalidFrame, len(lines))
	}
	if !strings.HasPrefix(lines[0], HeaderTag) {
		return Message{}, fmt.Errorf("%w: missing %q header", ErrInvalidFrame, HeaderTag)
	}
	token := strings.TrimSpace(strings.Split(lines[0], ":")[1])
	t, err := ParseMessageType(token)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	// 正文各行直接拼接，不插入分隔符
	return Message{Length: declared, Type: t, Body: strings.Join(lines[1:], "")}, nil
}

// splitLines splits on '\n', drops one trailing '\r' per line and does not
// produce an empty last line for a trailing newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func classifyReadError(err error) error {
	var ne net.Error
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return ErrTransient
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe):
		return fmt.Errorf("%w: %w", ErrConnectionClosed, err)
	default:
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
}
