package transport

import (
	"context"
	"io"
)

// BLE frames each message as a 2-byte length prefix like Serial, and
// additionally chunks outbound payloads exceeding the 244-byte MTU with
// a 2-byte [chunk_index, total_chunks] header per chunk (spec §4.3).
// Reassembly of a multi-chunk response is not implemented: the current
// build supports single-frame responses only, an acknowledged gap
// (spec §9) rather than a guessed-at protocol extension. Read returns
// ErrMessageTooLarge if the peer ever sends more than one chunk.
type BLE struct {
	conn Conn
}

// NewBLE wraps conn with BLE framing and MTU chunking.
func NewBLE(conn Conn) *BLE {
	return &BLE{conn: conn}
}

func (b *BLE) Send(ctx context.Context, body []byte) ([]byte, error) {
	if err := b.Write(ctx, body); err != nil {
		return nil, err
	}
	buf := make([]byte, MTU+2)
	n, err := b.Read(ctx, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Write frames body with the shared length prefix, then splits the
// resulting frame into MTU-sized chunks, each carrying a 2-byte
// [chunk_index, total_chunks] header.
func (b *BLE) Write(ctx context.Context, body []byte) error {
	framed, err := FrameLengthPrefix(body)
	if err != nil {
		return err
	}

	const payloadPerChunk = MTU - 2
	total := (len(framed) + payloadPerChunk - 1) / payloadPerChunk
	if total == 0 {
		total = 1
	}
	if total > 0xFF {
		return ErrMessageTooLarge
	}

	for i := 0; i < total; i++ {
		start := i * payloadPerChunk
		end := start + payloadPerChunk
		if end > len(framed) {
			end = len(framed)
		}
		chunk := make([]byte, 2+(end-start))
		chunk[0] = byte(i)
		chunk[1] = byte(total)
		copy(chunk[2:], framed[start:end])
		if _, err := b.conn.Write(chunk); err != nil {
			return ErrConnectionRefused
		}
	}
	return nil
}

// Read expects the whole framed message in a single BLE chunk
// (chunk_index=0, total_chunks=1); anything else is ErrMessageTooLarge.
func (b *BLE) Read(ctx context.Context, buf []byte) (int, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(b.conn, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, ErrConnectionClosed
		}
		return 0, err
	}
	chunkIndex, totalChunks := header[0], header[1]
	if chunkIndex != 0 || totalChunks != 1 {
		return 0, ErrMessageTooLarge
	}

	lengthPrefix := make([]byte, 2)
	if _, err := io.ReadFull(b.conn, lengthPrefix); err != nil {
		return 0, ErrConnectionClosed
	}
	length := int(lengthPrefix[0])<<8 | int(lengthPrefix[1])
	if length > len(buf) {
		return 0, ErrMessageTooLarge
	}
	if _, err := io.ReadFull(b.conn, buf[:length]); err != nil {
		return 0, ErrConnectionClosed
	}
	return length, nil
}

// Close closes the underlying connection. Idempotent if conn.Close() is.
func (b *BLE) Close() error {
	return b.conn.Close()
}
