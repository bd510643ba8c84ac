package tools

import (
	"context"

	"github.com/bhardwajRahul/KrillClaw/pkg/content"
)

// BridgeFunc delegates a tool call the shared and profile tables don't
// recognise to the out-of-process bridge (§1, §4.3), encoding the
// `{"type":"tool",...}` RPC envelope and returning its reply. A nil
// BridgeFunc means no bridge is attached; the dispatcher then reports
// the tool as not found rather than blocking indefinitely.
type BridgeFunc func(ctx context.Context, name, inputRaw string) *ToolResult

// Dispatcher implements spec §4.5's three-level fallthrough: the
// shared table (time, KV, bridge-delegated web_search/session_*/ota_*)
// is consulted first, then the single compile-time-selected profile
// table, then the bridge for anything still unrecognised.
type Dispatcher struct {
	Shared  *Table
	Profile *Table
	Bridge  BridgeFunc
}

// NewDispatcher wires the shared table with the active profile's table.
func NewDispatcher(shared, profile *Table, bridge BridgeFunc) *Dispatcher {
	return &Dispatcher{Shared: shared, Profile: profile, Bridge: bridge}
}

// Definitions returns the tool list the LLM client should advertise:
// shared tools first, then the profile's own, both sorted by name
// within their table (duplicate names never occur across the two
// tables in a correctly-configured dispatcher).
func (d *Dispatcher) Definitions() []ToolDef {
	var defs []ToolDef
	if d.Shared != nil {
		defs = append(defs, d.Shared.Definitions()...)
	}
	if d.Profile != nil {
		defs = append(defs, d.Profile.Definitions()...)
	}
	return defs
}

// Execute dispatches a single tool-use block, in the order: shared
// table, profile table, bridge. An unrecognised name with no bridge
// attached becomes a tool error, never a Go error — per §7, tool
// failures are observations that keep the loop running.
func (d *Dispatcher) Execute(ctx context.Context, call content.Block) *ToolResult {
	name, inputRaw := call.ToolUseName, call.ToolInputRaw

	if d.Shared != nil && d.Shared.Has(name) {
		return d.Shared.Execute(ctx, name, inputRaw)
	}
	if d.Profile != nil && d.Profile.Has(name) {
		return d.Profile.Execute(ctx, name, inputRaw)
	}
	if d.Bridge != nil {
		return d.Bridge(ctx, name, inputRaw)
	}
	return Err("tool \"" + name + "\" not found")
}
