// Package tools implements the tool dispatcher (spec §4.5): a shared
// table of always-available tools consulted first, one compile-time
// selected profile table (coding / iot / robotics), and a fallthrough
// to the external bridge for anything neither table recognises.
package tools

import (
	"context"

	"github.com/bhardwajRahul/KrillClaw/pkg/content"
	"github.com/bhardwajRahul/KrillClaw/pkg/jsonlite"
)

// ToolDef is the wire-facing tool description handed to the LLM client:
// name, description, and a raw JSON Schema string embedded at build
// time (never parsed by this package — only forwarded verbatim into
// the provider request body).
type ToolDef struct {
	Name        string
	Description string
	InputSchema string
}

// ToolResult is the dispatcher's internal result shape, before it is
// wrapped into a content.Block by the caller.
type ToolResult struct {
	Output  string
	IsError bool
}

// OK builds a successful ToolResult.
func OK(output string) *ToolResult { return &ToolResult{Output: output} }

// Err builds a failed ToolResult. Per spec §7, tool failures are
// observations, not aborts: they flow back to the model as a
// tool-result block with IsError set, never as a Go error return.
func Err(output string) *ToolResult { return &ToolResult{Output: output, IsError: true} }

// Handler executes one tool call. inputRaw is the verbatim JSON object
// string from the tool-use block; handlers read it with pkg/jsonlite,
// never with encoding/json, per §4.2's domain constraint.
type Handler func(ctx context.Context, inputRaw string) *ToolResult

// entry pairs a definition with its handler.
type entry struct {
	def     ToolDef
	handler Handler
}

// ToBlock renders a ToolResult into the tool-result content block that
// answers the tool-use block with id toolUseID.
func (r *ToolResult) ToBlock(toolUseID string) content.Block {
	return content.ToolResultBlock(toolUseID, r.Output, r.IsError)
}

// argString reads a string argument out of a tool call's raw JSON input.
// Shared by every profile table (coding, iot), kept build-tag-free since
// profiles are mutually exclusive under compile-time selection.
func argString(inputRaw, key string) (string, bool) {
	v, ok := jsonlite.String([]byte(inputRaw), key)
	if !ok {
		return "", false
	}
	return jsonlite.Unescape(v), true
}
