package llmclient

import (
	"testing"

	"github.com/bhardwajRahul/KrillClaw/pkg/content"
)

// Scenario 1 (text round-trip): a sequence of Anthropic SSE events
// equivalent to a text-only response of body B must decode to
// accumulated text == B, on-delta callbacks concatenating to B, and
// stop_reason == end_turn.
func TestSSEDecoderTextRoundTrip(t *testing.T) {
	var deltas []string
	d := NewSSEDecoder(func(s string) { deltas = append(deltas, s) })

	stream := "" +
		"event: message_start\n" +
		`data: {"type":"message_start","message":{"id":"msg_1","usage":{"input_tokens":12}}}` + "\n\n" +
		"event: content_block_start\n" +
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}` + "\n\n" +
		"event: content_block_delta\n" +
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello, "}}` + "\n\n" +
		"event: content_block_delta\n" +
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"world!"}}` + "\n\n" +
		"event: content_block_stop\n" +
		`data: {"type":"content_block_stop","index":0}` + "\n\n" +
		"event: message_delta\n" +
		`data: {"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":8}}` + "\n\n" +
		"event: message_stop\n" +
		`data: {"type":"message_stop"}` + "\n\n"

	if err := d.Feed([]byte(stream)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Done() {
		t.Fatal("expected Done() after message_stop")
	}
	if d.Err() != nil {
		t.Fatalf("unexpected decoder error: %v", d.Err())
	}

	want := "Hello, world!"
	got := ""
	for _, part := range deltas {
		got += part
	}
	if got != want {
		t.Fatalf("delta concat: got %q want %q", got, want)
	}

	resp := d.Response()
	if resp.StopReason != content.StopEndTurn {
		t.Fatalf("expected StopEndTurn, got %v", resp.StopReason)
	}
	if resp.ID != "msg_1" {
		t.Fatalf("expected id msg_1, got %q", resp.ID)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 8 {
		t.Fatalf("unexpected token counts: in=%d out=%d", resp.InputTokens, resp.OutputTokens)
	}
	if len(resp.Blocks) != 1 || resp.Blocks[0].Kind != content.KindText || resp.Blocks[0].Text != want {
		t.Fatalf("unexpected blocks: %+v", resp.Blocks)
	}
}

// Scenario 2 (tool-use round-trip): a sequence of SSE events describing
// N tool-use blocks must decode to N ToolUse blocks with exactly the
// concatenated input strings and stop_reason == tool_use.
func TestSSEDecoderToolUseRoundTrip(t *testing.T) {
	d := NewSSEDecoder(nil)

	stream := "" +
		"event: message_start\n" +
		`data: {"type":"message_start","message":{"id":"msg_2","usage":{"input_tokens":20}}}` + "\n\n" +
		"event: content_block_start\n" +
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"call_1","name":"read_file"}}` + "\n\n" +
		"event: content_block_delta\n" +
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"path\":"}}` + "\n\n" +
		"event: content_block_delta\n" +
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"\"a.txt\"}"}}` + "\n\n" +
		"event: content_block_stop\n" +
		`data: {"type":"content_block_stop","index":0}` + "\n\n" +
		"event: content_block_start\n" +
		`data: {"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"call_2","name":"list_files"}}` + "\n\n" +
		"event: content_block_delta\n" +
		`data: {"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"path\":\"/tmp\"}"}}` + "\n\n" +
		"event: content_block_stop\n" +
		`data: {"type":"content_block_stop","index":1}` + "\n\n" +
		"event: message_delta\n" +
		`data: {"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":16}}` + "\n\n" +
		"event: message_stop\n" +
		`data: {"type":"message_stop"}` + "\n\n"

	// Feed byte-by-byte to exercise the partial-line buffering path.
	raw := []byte(stream)
	for i := 0; i < len(raw); i++ {
		if err := d.Feed(raw[i : i+1]); err != nil {
			t.Fatalf("feed byte %d: %v", i, err)
		}
	}

	if !d.Done() {
		t.Fatal("expected Done()")
	}
	resp := d.Response()
	if resp.StopReason != content.StopToolUse {
		t.Fatalf("expected StopToolUse, got %v", resp.StopReason)
	}
	if len(resp.Blocks) != 2 {
		t.Fatalf("expected 2 tool-use blocks, got %d", len(resp.Blocks))
	}

	b0, b1 := resp.Blocks[0], resp.Blocks[1]
	if b0.Kind != content.KindToolUse || b0.ToolUseID != "call_1" || b0.ToolUseName != "read_file" {
		t.Fatalf("unexpected block 0: %+v", b0)
	}
	if b0.ToolInputRaw != `{"path":"a.txt"}` {
		t.Fatalf("unexpected block 0 input: %q", b0.ToolInputRaw)
	}
	if b1.Kind != content.KindToolUse || b1.ToolUseID != "call_2" || b1.ToolUseName != "list_files" {
		t.Fatalf("unexpected block 1: %+v", b1)
	}
	if b1.ToolInputRaw != `{"path":"/tmp"}` {
		t.Fatalf("unexpected block 1 input: %q", b1.ToolInputRaw)
	}
}

func TestSSEDecoderTextThenToolUse(t *testing.T) {
	d := NewSSEDecoder(nil)
	stream := "" +
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}` + "\n\n" +
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"thinking..."}}` + "\n\n" +
		`data: {"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"c1","name":"bash"}}` + "\n\n" +
		`data: {"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{}"}}` + "\n\n" +
		`data: {"type":"content_block_stop","index":1}` + "\n\n" +
		`data: {"type":"message_stop"}` + "\n\n"
	if err := d.Feed([]byte(stream)); err != nil {
		t.Fatal(err)
	}
	resp := d.Response()
	if len(resp.Blocks) != 2 {
		t.Fatalf("expected text block flushed before tool_use start, got %d blocks", len(resp.Blocks))
	}
	if resp.Blocks[0].Kind != content.KindText || resp.Blocks[0].Text != "thinking..." {
		t.Fatalf("unexpected first block: %+v", resp.Blocks[0])
	}
	if resp.Blocks[1].Kind != content.KindToolUse {
		t.Fatalf("unexpected second block: %+v", resp.Blocks[1])
	}
}

func TestSSEDecoderErrorEvent(t *testing.T) {
	d := NewSSEDecoder(nil)
	stream := `data: {"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}` + "\n\n"
	err := d.Feed([]byte(stream))
	if err == nil {
		t.Fatal("expected error")
	}
	if d.Err() == nil {
		t.Fatal("expected Err() to be set")
	}
}

func TestSSEDecoderPingIgnored(t *testing.T) {
	d := NewSSEDecoder(nil)
	if err := d.Feed([]byte("event: ping\ndata: {\"type\":\"ping\"}\n\n")); err != nil {
		t.Fatal(err)
	}
	if d.Done() {
		t.Fatal("ping must not set Done")
	}
}
