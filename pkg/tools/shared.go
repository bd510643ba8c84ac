package tools

import (
	"context"
	"time"

	"github.com/bhardwajRahul/KrillClaw/pkg/jsonlite"
)

// NewSharedTable builds the table consulted before any profile table
// (spec §4.5): the current-time tool, the shared KV store, and the
// bridge-delegated tools (web_search, session_get/set, ota_check/apply)
// standing in for the spec's "session_*"/"ota_*" families. bridge may
// be nil, in which case the delegated tools report themselves
// unavailable rather than panicking — a Dispatcher without a transport
// (e.g. HTTP-only deployments) simply never has a bridge to reach.
func NewSharedTable(kv *KVStore, bridge BridgeFunc) *Table {
	t := NewTable()
	limiter := newBridgeLimiter(30)

	t.Register(ToolDef{
		Name:        "time",
		Description: "Return the current UTC time in RFC3339 form.",
		InputSchema: `{"type":"object","properties":{}}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		return OK(time.Now().UTC().Format(time.RFC3339))
	})

	t.Register(ToolDef{
		Name:        "kv_get",
		Description: "Read a value previously stored with kv_set.",
		InputSchema: `{"type":"object","properties":{"key":{"type":"string"}},"required":["key"]}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		key, ok := jsonlite.String([]byte(inputRaw), "key")
		if !ok {
			return Err("missing required parameter: key")
		}
		value, found, err := kv.Get(jsonlite.Unescape(key))
		if err != nil {
			return Err(err.Error())
		}
		if !found {
			return Err("key not found")
		}
		return OK(value)
	})

	t.Register(ToolDef{
		Name:        "kv_set",
		Description: "Store a value under a key for later retrieval with kv_get.",
		InputSchema: `{"type":"object","properties":{"key":{"type":"string"},"value":{"type":"string"}},"required":["key","value"]}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		key, ok := jsonlite.String([]byte(inputRaw), "key")
		if !ok {
			return Err("missing required parameter: key")
		}
		value, ok := jsonlite.String([]byte(inputRaw), "value")
		if !ok {
			return Err("missing required parameter: value")
		}
		if err := kv.Set(jsonlite.Unescape(key), jsonlite.Unescape(value)); err != nil {
			return Err(err.Error())
		}
		return OK("stored")
	})

	registerBridged := func(name, description string) {
		t.Register(ToolDef{Name: name, Description: description, InputSchema: `{"type":"object"}`},
			func(ctx context.Context, inputRaw string) *ToolResult {
				if bridge == nil {
					return Err(name + ": no bridge attached")
				}
				if !limiter.Allow() {
					return Err(name + ": bridge rate limit exceeded (30/min)")
				}
				return bridge(ctx, name, inputRaw)
			})
	}
	registerBridged("web_search", "Search the web via the bridge sidecar.")
	registerBridged("session_get", "Fetch bridge-side session state.")
	registerBridged("session_set", "Persist bridge-side session state.")
	registerBridged("ota_check", "Check for a pending over-the-air update via the bridge.")
	registerBridged("ota_apply", "Apply a pending over-the-air update via the bridge.")

	return t
}
