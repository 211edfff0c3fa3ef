package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// trickleReader hands out queued chunks and reports a deadline timeout when
// nothing is queued, like a net.Conn with a short read deadline.
type trickleReader struct {
	chunks [][]byte
	err    error
}

func (r *trickleReader) feed(b []byte) { r.chunks = append(r.chunks, b) }

func (r *trickleReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, os.ErrDeadlineExceeded
	}
	n := copy(p, r.chunks[0])
	if n == len(r.chunks[0]) {
		r.chunks = r.chunks[1:]
	} else {
		r.chunks[0] = r.chunks[0][n:]
	}
	return n, nil
}

func rawFrame(payload string) []byte {
	buf := make([]byte, PrefixSize, PrefixSize+len(payload))
	binary.BigEndian.PutUint64(buf, uint64(len(payload)))
	return append(buf, payload...)
}

func TestEncode_WireFormat(t *testing.T) {
	got := Encode(NewMessage(ChatMessage, "hi"))
	payload := "Message-Type: CHAT_MESSAGE\nhi"
	want := append([]byte{0, 0, 0, 0, 0, 0, 0, byte(len(payload))}, payload...)
	require.Equal(t, want, got)
}

func TestEncode_RecomputesStaleLength(t *testing.T) {
	m := NewMessage(RegName, "Alice")
	m.Body = "Bob"
	frame := Encode(m)
	require.Equal(t, uint64(len(frame)-PrefixSize), binary.BigEndian.Uint64(frame[:PrefixSize]))
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"reg name", NewMessage(RegName, "Alice")},
		{"chat", NewMessage(ChatMessage, "hello world")},
		{"unicode", NewMessage(ChatMessage, "こんにちは 世界")},
		{"colons", NewMessage(ChatMessage, "[Alice]: a: b: c")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.msg.Validate())
			got, err := NewDecoder(bytes.NewReader(Encode(tt.msg)), 0).Decode()
			require.NoError(t, err)
			require.Equal(t, tt.msg, got)
			require.Equal(t, Encode(tt.msg), Encode(got))
		})
	}
}

func TestDecode_OneByteAtATime(t *testing.T) {
	want := NewMessage(ChatMessage, "[Alice]: hi")
	frame := Encode(want)

	r := &trickleReader{}
	dec := NewDecoder(r, 0)
	for i, b := range frame {
		r.feed([]byte{b})
		got, err := dec.Decode()
		if i < len(frame)-1 {
			require.ErrorIs(t, err, ErrTransient, "byte %d", i)
			require.True(t, IsTransient(err))
			continue
		}
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	require.Zero(t, dec.Buffered())
}

func TestDecode_SplitMatchesOneShot(t *testing.T) {
	msgs := []Message{NewMessage(RegName, "Alice"), NewMessage(ChatMessage, "hi there")}
	var stream []byte
	for _, m := range msgs {
		stream = append(stream, Encode(m)...)
	}

	for _, size := range []int{1, 2, 3, 7, 13, len(stream)} {
		r := &trickleReader{}
		for i := 0; i < len(stream); i += size {
			end := min(i+size, len(stream))
			r.feed(stream[i:end])
		}
		dec := NewDecoder(r, 0)
		var got []Message
		for len(got) < len(msgs) {
			m, err := dec.Decode()
			require.NoError(t, err, "chunk size %d", size)
			got = append(got, m)
		}
		require.Equal(t, msgs, got, "chunk size %d", size)
	}
}

func TestDecode_InvalidFrames(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"single line", "Message-Type: CHAT_MESSAGE\n"},
		{"empty payload", ""},
		{"missing tag", "Type: CHAT_MESSAGE\nhi"},
		{"unknown type", "Message-Type: SHOUT\nhi"},
		{"lowercase type", "Message-Type: chat_message\nhi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := NewMessage(ChatMessage, "after")
			stream := append(rawFrame(tt.payload), Encode(next)...)
			dec := NewDecoder(bytes.NewReader(stream), 0)

			_, err := dec.Decode()
			require.ErrorIs(t, err, ErrInvalidFrame)
			require.True(t, IsFatal(err))

			// the bad frame was consumed whole, the stream is still aligned
			got, err := dec.Decode()
			require.NoError(t, err)
			require.Equal(t, next, got)
		})
	}
}

func TestDecode_InvalidUTF8(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader(rawFrame("Message-Type: CHAT_MESSAGE\n\xff\xfe")), 0).Decode()
	require.ErrorIs(t, err, ErrInvalidFrame)
}

func TestDecode_BodyLinesRejoined(t *testing.T) {
	got, err := NewDecoder(bytes.NewReader(rawFrame("Message-Type: CHAT_MESSAGE\r\nfoo\r\nbar\n")), 0).Decode()
	require.NoError(t, err)
	require.Equal(t, ChatMessage, got.Type)
	require.Equal(t, "foobar", got.Body)
}

func TestDecode_HeaderWithoutSpace(t *testing.T) {
	got, err := NewDecoder(bytes.NewReader(rawFrame("Message-Type:REG_NAME\nAlice")), 0).Decode()
	require.NoError(t, err)
	require.Equal(t, RegName, got.Type)
	require.Equal(t, "Alice", got.Body)
}

func TestDecode_FrameTooLarge(t *testing.T) {
	frame := Encode(NewMessage(ChatMessage, "a body that is too long"))
	_, err := NewDecoder(bytes.NewReader(frame), 16).Decode()
	require.ErrorIs(t, err, ErrFrameTooLarge)
	require.True(t, IsFatal(err))
}

func TestDecode_ReadErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"eof", io.EOF, ErrConnectionClosed},
		{"closed", net.ErrClosed, ErrConnectionClosed},
		{"reset", errors.New("connection reset by peer"), ErrIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &trickleReader{err: tt.err}
			r.feed(Encode(NewMessage(ChatMessage, "x"))[:5])
			_, err := NewDecoder(r, 0).Decode()
			require.ErrorIs(t, err, tt.want)
			require.False(t, IsTransient(err))
		})
	}
}

func TestDecode_FrameBeforeEOF(t *testing.T) {
	want := NewMessage(RegName, "Alice")
	r := &trickleReader{err: io.EOF}
	r.feed(Encode(want))
	dec := NewDecoder(r, 0)

	got, err := dec.Decode()
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = dec.Decode()
	require.ErrorIs(t, err, ErrConnectionClosed)
}

func TestDecode_NetPipe(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	want := NewMessage(ChatMessage, "over the pipe")
	go func() {
		if err := WriteMessage(c1, want); err != nil {
			t.Errorf("write error: %v", err)
		}
	}()

	got, err := NewDecoder(c2, 0).Decode()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDecodeFrame(t *testing.T) {
	want := NewMessage(ChatMessage, "[Server]: Hello Alice!")
	got, err := DecodeFrame(Encode(want))
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = DecodeFrame([]byte{0, 1})
	require.ErrorIs(t, err, ErrInvalidFrame)

	_, err = DecodeFrame(append(Encode(want), 'x'))
	require.ErrorIs(t, err, ErrInvalidFrame)
}
