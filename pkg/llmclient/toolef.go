package llmclient

// ToolDef describes one tool exposed to the model. InputSchema is a raw
// JSON Schema document, embedded at build time from the active tool
// profile (spec §3, §4.5) and copied through unescaped when rendering
// the request body.
type ToolDef struct {
	Name        string
	Description string
	InputSchema string // raw JSON object, e.g. `{"type":"object",...}`
}
