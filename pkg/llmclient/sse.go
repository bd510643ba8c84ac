package llmclient

import (
	"bytes"
	"fmt"

	"github.com/bhardwajRahul/KrillClaw/pkg/content"
	"github.com/bhardwajRahul/KrillClaw/pkg/jsonlite"
)

// SSEDecoder incrementally decodes an Anthropic-flavored server-sent-event
// stream into the common content-block model (spec §4.4). It is fed
// arbitrary byte chunks as they arrive off the transport and maintains
// its own line buffer, so it does not require the caller to align reads
// to SSE event boundaries.
//
// Every string the decoder retains past the call that produced it (tool
// id/name, text, partial_json fragments) is copied out of the event
// buffer immediately, never aliased — the source commented this
// explicitly after a use-after-free fix, and the same discipline applies
// here since Feed's input slice may be reused by the caller between
// calls.
type SSEDecoder struct {
	lineBuf   []byte // bytes not yet forming a complete line
	dataBuf   []byte // accumulated "data:" payload for the in-progress event
	eventName string

	inToolUse bool
	textAcc   []byte
	inputAcc  []byte
	toolID    string
	toolName  string

	id           string
	stopReason   content.StopReason
	inputTokens  int64
	outputTokens int64
	blocks       []content.Block

	onTextDelta func(string)
	done        bool
	err         error
}

// NewSSEDecoder returns a decoder that invokes onTextDelta (if non-nil)
// with each text fragment as it is decoded.
func NewSSEDecoder(onTextDelta func(string)) *SSEDecoder {
	return &SSEDecoder{onTextDelta: onTextDelta, stopReason: content.StopUnknown}
}

// Feed processes another chunk of raw stream bytes. It returns an error
// only for malformed event data; a partial line at the end of chunk is
// buffered for the next call.
func (d *SSEDecoder) Feed(chunk []byte) error {
	if d.err != nil {
		return d.err
	}
	d.lineBuf = append(d.lineBuf, chunk...)
	for {
		i := bytes.IndexByte(d.lineBuf, '\n')
		if i < 0 {
			break
		}
		line := d.lineBuf[:i]
		d.lineBuf = d.lineBuf[i+1:]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if err := d.processLine(line); err != nil {
			d.err = err
			return err
		}
	}
	return nil
}

func (d *SSEDecoder) processLine(line []byte) error {
	switch {
	case len(line) == 0:
		return d.dispatchEvent()
	case line[0] == ':':
		return nil // SSE comment/keep-alive
	case hasPrefix(line, "event:"):
		d.eventName = string(bytes.TrimSpace(line[len("event:"):]))
		return nil
	case hasPrefix(line, "data:"):
		payload := bytes.TrimSpace(line[len("data:"):])
		if len(d.dataBuf) > 0 {
			d.dataBuf = append(d.dataBuf, '\n')
		}
		d.dataBuf = append(d.dataBuf, payload...)
		return nil
	default:
		return nil
	}
}

func (d *SSEDecoder) dispatchEvent() error {
	if len(d.dataBuf) == 0 {
		d.eventName = ""
		return nil
	}
	data := d.dataBuf
	d.dataBuf = nil
	eventType := d.eventName
	d.eventName = ""

	if typ, ok := jsonlite.String(data, "type"); ok {
		eventType = typ // data.type is authoritative when present.
	}

	switch eventType {
	case "message_start":
		if msg, ok := jsonlite.Object(data, "message"); ok {
			if id, ok := jsonlite.String(msg, "id"); ok {
				d.id = id
			}
			if usage, ok := jsonlite.Object(msg, "usage"); ok {
				if it, ok := jsonlite.Integer(usage, "input_tokens"); ok {
					d.inputTokens = it
				}
			}
		}
	case "content_block_start":
		block, ok := jsonlite.Object(data, "content_block")
		if !ok {
			return nil
		}
		typ, _ := jsonlite.String(block, "type")
		if typ == "tool_use" {
			d.flushText()
			d.inToolUse = true
			d.toolID, _ = jsonlite.String(block, "id")
			d.toolName, _ = jsonlite.String(block, "name")
			d.inputAcc = d.inputAcc[:0]
		}
	case "content_block_delta":
		delta, ok := jsonlite.Object(data, "delta")
		if !ok {
			return nil
		}
		deltaType, _ := jsonlite.String(delta, "type")
		switch deltaType {
		case "text_delta":
			if text, ok := jsonlite.String(delta, "text"); ok {
				text = jsonlite.Unescape(text)
				d.textAcc = append(d.textAcc, text...)
				if d.onTextDelta != nil {
					d.onTextDelta(text)
				}
			}
		case "input_json_delta":
			if pj, ok := jsonlite.String(delta, "partial_json"); ok {
				d.inputAcc = append(d.inputAcc, jsonlite.Unescape(pj)...)
			}
		}
	case "content_block_stop":
		if d.inToolUse {
			inputRaw := string(d.inputAcc)
			if inputRaw == "" {
				inputRaw = "{}"
			}
			d.blocks = append(d.blocks, content.ToolUseBlock(d.toolID, d.toolName, inputRaw))
			d.inToolUse = false
			d.toolID, d.toolName = "", ""
			d.inputAcc = nil
		} else {
			d.flushText()
		}
	case "message_delta":
		if delta, ok := jsonlite.Object(data, "delta"); ok {
			if stopStr, ok := jsonlite.String(delta, "stop_reason"); ok && stopStr != "" {
				d.stopReason = classifyStopReason(stopStr)
			}
		}
		if usage, ok := jsonlite.Object(data, "usage"); ok {
			if ot, ok := jsonlite.Integer(usage, "output_tokens"); ok {
				d.outputTokens = ot
			}
		}
	case "message_stop":
		d.done = true
	case "ping":
		// no-op keep-alive
	case "error":
		msg := "unknown error"
		if errObj, ok := jsonlite.Object(data, "error"); ok {
			if m, ok := jsonlite.String(errObj, "message"); ok {
				msg = m
			}
		}
		return fmt.Errorf("%w: %s", ErrParseError, msg)
	}
	return nil
}

func (d *SSEDecoder) flushText() {
	if len(d.textAcc) > 0 {
		d.blocks = append(d.blocks, content.TextBlock(string(d.textAcc)))
		d.textAcc = nil
	}
}

// Done reports whether a message_stop event has been decoded.
func (d *SSEDecoder) Done() bool { return d.done }

// Err returns the first parse error encountered, if any.
func (d *SSEDecoder) Err() error { return d.err }

// Response assembles the accumulated state into a content.ApiResponse.
// Any in-progress text block not yet closed by a content_block_stop is
// flushed first.
func (d *SSEDecoder) Response() *content.ApiResponse {
	d.flushText()
	stop := d.stopReason
	if stop == "" {
		stop = content.StopUnknown
	}
	// A response carrying tool-use blocks always classifies as
	// StopToolUse, matching the non-streaming parser and §4.7's
	// classify() contract.
	for _, b := range d.blocks {
		if b.Kind == content.KindToolUse {
			stop = content.StopToolUse
			break
		}
	}
	return &content.ApiResponse{
		ID:           d.id,
		StopReason:   stop,
		Blocks:       d.blocks,
		InputTokens:  d.inputTokens,
		OutputTokens: d.outputTokens,
	}
}

func hasPrefix(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == prefix
}
