package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Table is a name-keyed set of tools, grounded on the teacher's
// pkg/tools/registry.go ToolRegistry: a map guarded by a mutex, with
// sorted-name iteration so tool definitions are emitted in a stable
// order every call (a non-deterministic order would perturb the
// system prompt's tool list on every turn for no reason).
type Table struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[string]entry)}
}

// Register adds or replaces the tool named def.Name.
func (t *Table) Register(def ToolDef, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[def.Name] = entry{def: def, handler: h}
}

// Has reports whether name is registered.
func (t *Table) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[name]
	return ok
}

// Execute runs the named tool, or reports it unknown.
func (t *Table) Execute(ctx context.Context, name, inputRaw string) *ToolResult {
	t.mu.RLock()
	e, ok := t.entries[name]
	t.mu.RUnlock()
	if !ok {
		return Err(fmt.Sprintf("tool %q not found", name))
	}
	return e.handler(ctx, inputRaw)
}

// Definitions returns every registered ToolDef, sorted by name for
// deterministic ordering.
func (t *Table) Definitions() []ToolDef {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]ToolDef, 0, len(names))
	for _, name := range names {
		defs = append(defs, t.entries[name].def)
	}
	return defs
}
