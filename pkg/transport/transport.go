// Package transport abstracts the byte-pipe a KrillClaw client speaks
// over: a plain HTTPS request/response for cloud deployments, or a
// length-prefixed frame over BLE-GATT or serial for embedded ones. This
// is the "vtable transports" re-expression spec §9 asks for: a small
// capability interface instead of a raw function-pointer table, with no
// dynamic allocation of the table itself.
package transport

import (
	"context"
	"errors"
	"strconv"
)

var (
	// ErrConnectionRefused surfaces a failure to establish the underlying pipe.
	ErrConnectionRefused = errors.New("transport: connection refused")
	// ErrConnectionClosed surfaces a peer-initiated close mid-read.
	ErrConnectionClosed = errors.New("transport: connection closed")
	// ErrMessageTooLarge is returned when a frame exceeds the reassembly buffer.
	// BLE multi-chunk reassembly is an explicit gap (spec §9); a response that
	// spans more than one MTU-sized chunk always returns this error rather
	// than guessing at a reassembly scheme.
	ErrMessageTooLarge = errors.New("transport: message too large")
)

// StatusError reports a non-2xx HTTP response. Carriers without a
// concept of status codes (BLE, Serial) never produce one; callers that
// care about the distinction (the LLM client's auth/rate-limit
// classification) type-assert for it.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return "transport: http status " + strconv.Itoa(e.Code)
}

// Transport is the capability set every carrier implements. On HTTP,
// Send is one POST and Write/Read carry the streamed SSE response; on
// BLE and Serial, Write and Read each move one framed payload and Send
// pairs them.
type Transport interface {
	// Send performs a one-shot request/response exchange.
	Send(ctx context.Context, body []byte) ([]byte, error)
	// Write pushes a framed payload without waiting for a response body.
	Write(ctx context.Context, body []byte) error
	// Read blocks for the next framed payload, filling buf and
	// returning the number of bytes read.
	Read(ctx context.Context, buf []byte) (int, error)
	// Close idempotently releases any held resources.
	Close() error
}

// MTU is the BLE 5.x payload assumption used for outbound chunking.
const MTU = 244

// FrameLengthPrefix returns body wrapped in the 2-byte big-endian
// length-prefixed frame shared by the BLE and Serial carriers.
func FrameLengthPrefix(body []byte) ([]byte, error) {
	if len(body) > 0xFFFF {
		return nil, ErrMessageTooLarge
	}
	out := make([]byte, 2+len(body))
	out[0] = byte(len(body) >> 8)
	out[1] = byte(len(body))
	copy(out[2:], body)
	return out, nil
}

// UnframeLengthPrefix reads one length-prefixed frame from the front of
// buf, returning the payload and the number of bytes of buf consumed.
func UnframeLengthPrefix(buf []byte) (payload []byte, consumed int, ok bool) {
	if len(buf) < 2 {
		return nil, 0, false
	}
	length := int(buf[0])<<8 | int(buf[1])
	if len(buf) < 2+length {
		return nil, 0, false
	}
	return buf[2 : 2+length], 2 + length, true
}
