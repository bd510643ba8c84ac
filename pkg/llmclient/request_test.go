package llmclient

import (
	"strings"
	"testing"

	"github.com/bhardwajRahul/KrillClaw/pkg/content"
	"github.com/bhardwajRahul/KrillClaw/pkg/jsonlite"
)

func TestBuildRequestClaudeShape(t *testing.T) {
	messages := []content.Message{
		{Role: content.RoleUser, Blocks: []content.Block{content.TextBlock("hi")}},
	}
	tools := []ToolDef{{Name: "bash", Description: "run a command", InputSchema: `{"type":"object"}`}}

	body := BuildRequest(messages, tools, RequestOptions{
		Provider:     Claude,
		Model:        "claude-3-opus",
		MaxTokens:    1024,
		SystemPrompt: "be terse",
		Stream:       true,
	})

	if model, ok := jsonlite.String(body, "model"); !ok || model != "claude-3-opus" {
		t.Fatalf("model: got %q ok=%v", model, ok)
	}
	if system, ok := jsonlite.String(body, "system"); !ok || system != "be terse" {
		t.Fatalf("system: got %q ok=%v", system, ok)
	}
	if stream, ok := jsonlite.Bool(body, "stream"); !ok || !stream {
		t.Fatalf("stream: got %v ok=%v", stream, ok)
	}
	toolsArr, ok := jsonlite.Array(body, "tools")
	if !ok {
		t.Fatal("expected top-level tools array")
	}
	elems := jsonlite.ArrayElements(toolsArr)
	if len(elems) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(elems))
	}
	if name, _ := jsonlite.String(elems[0], "name"); name != "bash" {
		t.Fatalf("tool name: got %q", name)
	}

	msgsArr, ok := jsonlite.Array(body, "messages")
	if !ok {
		t.Fatal("expected messages array")
	}
	msgElems := jsonlite.ArrayElements(msgsArr)
	if len(msgElems) != 1 {
		t.Fatalf("expected 1 message (system folded out), got %d", len(msgElems))
	}
}

func TestBuildRequestOpenAIShape(t *testing.T) {
	messages := []content.Message{
		{Role: content.RoleAssistant, Blocks: []content.Block{content.ToolUseBlock("call_1", "read_file", `{"path":"a.txt"}`)}},
		{Role: content.RoleUser, Blocks: []content.Block{content.ToolResultBlock("call_1", "file contents", false)}},
	}
	body := BuildRequest(messages, nil, RequestOptions{
		Provider:  OpenAIStyle,
		Model:     "gpt-4o",
		MaxTokens: 512,
		Stream:    true,
	})

	if model, ok := jsonlite.String(body, "model"); !ok || model != "gpt-4o" {
		t.Fatalf("model: got %q ok=%v", model, ok)
	}
	if !strings.Contains(string(body), `"tool_calls"`) {
		t.Fatal("expected tool_calls in assistant message")
	}
	if !strings.Contains(string(body), `"role":"tool"`) {
		t.Fatal("expected a tool-role message for the tool result")
	}
}

func TestBuildRequestOllamaForcesStreamOff(t *testing.T) {
	messages := []content.Message{{Role: content.RoleUser, Blocks: []content.Block{content.TextBlock("hi")}}}
	body := BuildRequest(messages, nil, RequestOptions{
		Provider: Ollama,
		Model:    "llama3",
		Stream:   true, // caller asked for streaming; Ollama dialect must refuse it.
	})
	if stream, ok := jsonlite.Bool(body, "stream"); !ok || stream {
		t.Fatalf("expected stream=false forced for ollama, got %v ok=%v", stream, ok)
	}
}

func TestBuildRequestEmptyToolInputDefaultsToEmptyObject(t *testing.T) {
	messages := []content.Message{
		{Role: content.RoleAssistant, Blocks: []content.Block{content.ToolUseBlock("c1", "estop", "")}},
	}
	body := BuildRequest(messages, nil, RequestOptions{Provider: Claude, Model: "m", MaxTokens: 10})
	if !strings.Contains(string(body), `"input":{}`) {
		t.Fatalf("expected empty-object default input, got %s", body)
	}
}
