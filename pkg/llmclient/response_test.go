package llmclient

import (
	"testing"

	"github.com/bhardwajRahul/KrillClaw/pkg/content"
)

func TestParseResponseClaudeText(t *testing.T) {
	body := []byte(`{
		"id": "msg_abc",
		"stop_reason": "end_turn",
		"input_tokens": 5,
		"output_tokens": 9,
		"content": [{"type":"text","text":"hello there"}]
	}`)
	resp, err := ParseResponse(Claude, body)
	if err != nil {
		t.Fatal(err)
	}
	if resp.ID != "msg_abc" || resp.StopReason != content.StopEndTurn {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Blocks) != 1 || resp.Blocks[0].Text != "hello there" {
		t.Fatalf("unexpected blocks: %+v", resp.Blocks)
	}
}

func TestParseResponseClaudeToolUse(t *testing.T) {
	body := []byte(`{
		"id": "msg_2",
		"stop_reason": "tool_use",
		"content": [
			{"type":"tool_use","id":"call_1","name":"bash","input":{"command":"ls"}}
		]
	}`)
	resp, err := ParseResponse(Claude, body)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StopReason != content.StopToolUse {
		t.Fatalf("expected StopToolUse, got %v", resp.StopReason)
	}
	if len(resp.Blocks) != 1 || resp.Blocks[0].ToolUseName != "bash" {
		t.Fatalf("unexpected blocks: %+v", resp.Blocks)
	}
	if resp.Blocks[0].ToolInputRaw != `{"command":"ls"}` {
		t.Fatalf("unexpected input: %q", resp.Blocks[0].ToolInputRaw)
	}
}

func TestParseResponseClaudeMissingContentIsInvalid(t *testing.T) {
	_, err := ParseResponse(Claude, []byte(`{"id":"x","stop_reason":"end_turn"}`))
	if err != ErrInvalidResponse {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestParseResponseOpenAIText(t *testing.T) {
	body := []byte(`{
		"id": "chatcmpl-1",
		"prompt_tokens": 4,
		"completion_tokens": 6,
		"choices": [{"finish_reason":"stop","message":{"role":"assistant","content":"hi there"}}]
	}`)
	resp, err := ParseResponse(OpenAIStyle, body)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StopReason != content.StopEndTurn {
		t.Fatalf("expected StopEndTurn, got %v", resp.StopReason)
	}
	if len(resp.Blocks) != 1 || resp.Blocks[0].Text != "hi there" {
		t.Fatalf("unexpected blocks: %+v", resp.Blocks)
	}
}

func TestParseResponseOpenAIToolCalls(t *testing.T) {
	body := []byte(`{
		"id": "chatcmpl-2",
		"choices": [{
			"finish_reason":"tool_calls",
			"message":{
				"role":"assistant",
				"tool_calls":[{"id":"call_1","function":{"name":"read_file","arguments":"{\"path\":\"a.txt\"}"}}]
			}
		}]
	}`)
	resp, err := ParseResponse(OpenAIStyle, body)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StopReason != content.StopToolUse {
		t.Fatalf("expected StopToolUse, got %v", resp.StopReason)
	}
	if len(resp.Blocks) != 1 || resp.Blocks[0].ToolUseID != "call_1" {
		t.Fatalf("unexpected blocks: %+v", resp.Blocks)
	}
	if resp.Blocks[0].ToolInputRaw != `{"path":"a.txt"}` {
		t.Fatalf("unexpected input: %q", resp.Blocks[0].ToolInputRaw)
	}
}

func TestParseResponseOpenAINoChoicesIsInvalid(t *testing.T) {
	_, err := ParseResponse(OpenAIStyle, []byte(`{"id":"x","choices":[]}`))
	if err != ErrInvalidResponse {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}
