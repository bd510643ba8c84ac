package tools

import (
	"context"
	"fmt"

	"github.com/bhardwajRahul/KrillClaw/pkg/jsonlite"
	"github.com/bhardwajRahul/KrillClaw/pkg/transport"
)

// decodeBridgeReply pulls the bridge's tool-result fields back out of
// its response envelope: {"output":..., "is_error":...}.
func decodeBridgeReply(body []byte) *ToolResult {
	output, ok := jsonlite.String(body, "output")
	if !ok {
		return Err("bridge: malformed reply")
	}
	isErr, _ := jsonlite.Bool(body, "is_error")
	return &ToolResult{Output: jsonlite.Unescape(output), IsError: isErr}
}

// NewTransportBridge returns a BridgeFunc that encodes the tool-call
// envelope and round-trips it through open (typically a BLE or serial
// transport.Transport, per §4.3 — the bridge sidecar itself is out of
// scope per §1).
func NewTransportBridge(open func(ctx context.Context) (transport.Transport, error)) BridgeFunc {
	return func(ctx context.Context, name, inputRaw string) *ToolResult {
		tr, err := open(ctx)
		if err != nil {
			return Err(fmt.Sprintf("bridge: %v", err))
		}
		defer tr.Close()

		reply, err := tr.Send(ctx, transport.EnvelopeTool(name, []byte(inputRaw)))
		if err != nil {
			return Err(fmt.Sprintf("bridge: %v", err))
		}
		return decodeBridgeReply(reply)
	}
}
