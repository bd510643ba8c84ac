package transport

import "github.com/bhardwajRahul/KrillClaw/pkg/jsonlite"

// EnvelopeAPI builds the `{"type":"api","provider":...,"body":<raw>}` RPC
// envelope the bridge sidecar expects on non-HTTP carriers (spec §4.3,
// §6). body must already be a valid JSON value.
func EnvelopeAPI(provider string, body []byte) []byte {
	w := jsonlite.NewWriter(len(body) + 64)
	w.Byte('{')
	w.Key("type").QuotedString("api").Byte(',')
	w.Key("provider").QuotedString(provider).Byte(',')
	w.Key("body").Raw(body)
	w.Byte('}')
	return w.Bytes()
}

// EnvelopeTool builds the `{"type":"tool","name":...,"input":<raw>}` RPC
// envelope used to delegate a tool call to the bridge.
func EnvelopeTool(name string, input []byte) []byte {
	if len(input) == 0 {
		input = []byte("{}")
	}
	w := jsonlite.NewWriter(len(input) + 64)
	w.Byte('{')
	w.Key("type").QuotedString("tool").Byte(',')
	w.Key("name").QuotedString(name).Byte(',')
	w.Key("input").Raw(input)
	w.Byte('}')
	return w.Bytes()
}

// EnvelopeType returns the "type" discriminator of an RPC envelope.
func EnvelopeType(envelope []byte) (string, bool) {
	return jsonlite.String(envelope, "type")
}
