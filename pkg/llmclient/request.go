package llmclient

import (
	"github.com/bhardwajRahul/KrillClaw/pkg/content"
	"github.com/bhardwajRahul/KrillClaw/pkg/jsonlite"
)

// RequestOptions configures one BuildRequest call.
type RequestOptions struct {
	Provider     Provider
	Model        string
	MaxTokens    int
	SystemPrompt string
	Stream       bool
	AnthropicAPIVersion string // not read by BuildRequest; Client always sends anthropic-version 2023-06-01 as a header
}

// BuildRequest assembles the provider-specific wire body for messages
// and tools (spec §4.4's request-assembly table), written through
// pkg/jsonlite rather than encoding/json to keep the same
// allocation-conscious, hand-rolled codec used elsewhere in the client.
func BuildRequest(messages []content.Message, tools []ToolDef, opts RequestOptions) []byte {
	switch opts.Provider {
	case Claude:
		return buildClaudeRequest(messages, tools, opts)
	default: // OpenAIStyle, Ollama share a body shape.
		return buildOpenAIRequest(messages, tools, opts)
	}
}

func buildClaudeRequest(messages []content.Message, tools []ToolDef, opts RequestOptions) []byte {
	w := jsonlite.NewWriter(1024)
	w.Byte('{')
	w.Key("model").QuotedString(opts.Model).Byte(',')
	w.Key("max_tokens").Int(int64(opts.MaxTokens)).Byte(',')
	if opts.SystemPrompt != "" {
		w.Key("system").QuotedString(opts.SystemPrompt).Byte(',')
	}
	w.Key("stream").Bool(opts.Stream).Byte(',')
	if len(tools) > 0 {
		w.Key("tools").Byte('[')
		for i, td := range tools {
			if i > 0 {
				w.Byte(',')
			}
			writeClaudeToolDef(w, td)
		}
		w.Byte(']').Byte(',')
	}
	w.Key("messages").Byte('[')
	first := true
	for _, m := range messages {
		if m.Role == content.RoleSystem {
			continue // not sent; the top-level "system" field above carries opts.SystemPrompt only.
		}
		if !first {
			w.Byte(',')
		}
		first = false
		writeClaudeMessage(w, m)
	}
	w.Byte(']')
	w.Byte('}')
	return w.Bytes()
}

func writeClaudeToolDef(w *jsonlite.Writer, td ToolDef) {
	w.Byte('{')
	w.Key("name").QuotedString(td.Name).Byte(',')
	w.Key("description").QuotedString(td.Description).Byte(',')
	w.Key("input_schema").Raw([]byte(nonEmptySchema(td.InputSchema)))
	w.Byte('}')
}

func nonEmptySchema(schema string) string {
	if schema == "" {
		return `{"type":"object","properties":{}}`
	}
	return schema
}

func writeClaudeMessage(w *jsonlite.Writer, m content.Message) {
	w.Byte('{')
	w.Key("role").QuotedString(string(m.Role)).Byte(',')
	w.Key("content").Byte('[')
	for i, b := range m.Blocks {
		if i > 0 {
			w.Byte(',')
		}
		switch b.Kind {
		case content.KindText:
			w.Byte('{')
			w.Key("type").QuotedString("text").Byte(',')
			w.Key("text").QuotedString(b.Text)
			w.Byte('}')
		case content.KindToolUse:
			w.Byte('{')
			w.Key("type").QuotedString("tool_use").Byte(',')
			w.Key("id").QuotedString(b.ToolUseID).Byte(',')
			w.Key("name").QuotedString(b.ToolUseName).Byte(',')
			w.Key("input").Raw([]byte(nonEmptySchema(b.ToolInputRaw)))
			w.Byte('}')
		case content.KindToolResult:
			w.Byte('{')
			w.Key("type").QuotedString("tool_result").Byte(',')
			w.Key("tool_use_id").QuotedString(b.ToolResultForID).Byte(',')
			w.Key("content").QuotedString(b.ToolResultText).Byte(',')
			w.Key("is_error").Bool(b.ToolResultError)
			w.Byte('}')
		}
	}
	w.Byte(']')
	w.Byte('}')
}

// buildOpenAIRequest builds the shape shared by the OpenAI-compatible
// and Ollama dialects: system prepended as a message, tool_calls on the
// assistant turn, and one "tool" role message per tool result, emitted
// immediately after the owning assistant message (spec §4.4).
func buildOpenAIRequest(messages []content.Message, tools []ToolDef, opts RequestOptions) []byte {
	w := jsonlite.NewWriter(1024)
	w.Byte('{')
	w.Key("model").QuotedString(opts.Model).Byte(',')
	stream := opts.Stream && opts.Provider != Ollama
	w.Key("stream").Bool(stream).Byte(',')
	if len(tools) > 0 {
		w.Key("tools").Byte('[')
		for i, td := range tools {
			if i > 0 {
				w.Byte(',')
			}
			writeOpenAIToolDef(w, td)
		}
		w.Byte(']').Byte(',')
	}
	w.Key("messages").Byte('[')
	wroteAny := false
	if opts.SystemPrompt != "" {
		w.Byte('{')
		w.Key("role").QuotedString("system").Byte(',')
		w.Key("content").QuotedString(opts.SystemPrompt)
		w.Byte('}')
		wroteAny = true
	}
	for _, m := range messages {
		if m.Role == content.RoleSystem {
			continue
		}
		wroteAny = writeOpenAIMessage(w, m, wroteAny)
	}
	w.Byte(']')
	w.Byte('}')
	return w.Bytes()
}

func writeOpenAIToolDef(w *jsonlite.Writer, td ToolDef) {
	w.Byte('{')
	w.Key("type").QuotedString("function").Byte(',')
	w.Key("function").Byte('{')
	w.Key("name").QuotedString(td.Name).Byte(',')
	w.Key("description").QuotedString(td.Description).Byte(',')
	w.Key("parameters").Raw([]byte(nonEmptySchema(td.InputSchema)))
	w.Byte('}')
	w.Byte('}')
}

// writeOpenAIMessage writes m as one assistant/user message, plus a
// trailing "tool" message per tool-result block if m carries any.
// Returns whether any message has been written so far (for comma
// placement across calls).
func writeOpenAIMessage(w *jsonlite.Writer, m content.Message, wroteAny bool) bool {
	toolResults := make([]content.Block, 0)
	var textParts string
	toolCalls := make([]content.Block, 0)
	for _, b := range m.Blocks {
		switch b.Kind {
		case content.KindText:
			textParts += b.Text
		case content.KindToolUse:
			toolCalls = append(toolCalls, b)
		case content.KindToolResult:
			toolResults = append(toolResults, b)
		}
	}

	if textParts != "" || len(toolCalls) > 0 {
		if wroteAny {
			w.Byte(',')
		}
		w.Byte('{')
		w.Key("role").QuotedString(string(m.Role)).Byte(',')
		w.Key("content")
		if textParts == "" {
			w.RawString("null")
		} else {
			w.QuotedString(textParts)
		}
		if len(toolCalls) > 0 {
			w.Byte(',')
			w.Key("tool_calls").Byte('[')
			for i, tc := range toolCalls {
				if i > 0 {
					w.Byte(',')
				}
				w.Byte('{')
				w.Key("id").QuotedString(tc.ToolUseID).Byte(',')
				w.Key("type").QuotedString("function").Byte(',')
				w.Key("function").Byte('{')
				w.Key("name").QuotedString(tc.ToolUseName).Byte(',')
				w.Key("arguments").QuotedString(nonEmptySchema(tc.ToolInputRaw))
				w.Byte('}')
				w.Byte('}')
			}
			w.Byte(']')
		}
		w.Byte('}')
		wroteAny = true
	}

	for _, tr := range toolResults {
		if wroteAny {
			w.Byte(',')
		}
		w.Byte('{')
		w.Key("role").QuotedString("tool").Byte(',')
		w.Key("tool_call_id").QuotedString(tr.ToolResultForID).Byte(',')
		w.Key("content").QuotedString(tr.ToolResultText)
		w.Byte('}')
		wroteAny = true
	}

	return wroteAny
}
