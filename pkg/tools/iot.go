//go:build iot

package tools

import (
	"context"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/bhardwajRahul/KrillClaw/pkg/jsonlite"
)

// ProfileName identifies the compile-time-selected tool set.
const ProfileName = "iot"

// httpRequestCap bounds a fetched response body, matching the coding
// profile's bashOutputCap-style ceiling (§5: external I/O is bounded).
const httpRequestCap = 256 * 1024

// IoTOptions configures the IoT profile's tool table. Bash and file
// writes have no entry in this table at all — §4.5 says they are
// "rejected outright" for this profile, which this package models by
// simply never registering them, rather than registering and denying.
type IoTOptions struct {
	Bridge BridgeFunc
}

// NewProfileTable builds the IoT profile's tool table. publish_mqtt
// and subscribe_mqtt delegate to the bridge sidecar: §1 places actual
// MQTT broker I/O out of scope for this runtime ("the Python-side
// bridge that actually performs BLE scanning / MQTT / hardware I/O"),
// so this Go core only forwards the call, the same way it does for
// the shared web_search/session_*/ota_* tools.
func NewProfileTable(opts IoTOptions) *Table {
	t := NewTable()

	bridged := func(name, description string) {
		t.Register(ToolDef{Name: name, Description: description, InputSchema: `{"type":"object"}`},
			func(ctx context.Context, inputRaw string) *ToolResult {
				if opts.Bridge == nil {
					return Err(name + ": no bridge attached")
				}
				return opts.Bridge(ctx, name, inputRaw)
			})
	}
	bridged("publish_mqtt", "Publish a message to an MQTT topic via the bridge.")
	bridged("subscribe_mqtt", "Subscribe to an MQTT topic via the bridge.")

	t.Register(ToolDef{
		Name:        "http_request",
		Description: "Issue an HTTP GET request and return the response body, up to 256 KiB.",
		InputSchema: `{"type":"object","properties":{"url":{"type":"string"}},"required":["url"]}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		return httpRequest(ctx, inputRaw)
	})

	t.Register(ToolDef{
		Name:        "device_info",
		Description: "Report static information about the running device/process.",
		InputSchema: `{"type":"object","properties":{}}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		return deviceInfo()
	})

	return t
}

func httpRequest(ctx context.Context, inputRaw string) *ToolResult {
	url, ok := argString(inputRaw, "url")
	if !ok {
		return Err("missing required parameter: url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Err(err.Error())
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Err(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, httpRequestCap))
	if err != nil {
		return Err(err.Error())
	}

	var b strings.Builder
	b.WriteString("HTTP ")
	b.WriteString(resp.Status)
	b.WriteString("\n")
	b.Write(body)

	if resp.StatusCode >= 400 {
		return Err(b.String())
	}
	return OK(b.String())
}

func deviceInfo() *ToolResult {
	w := jsonlite.NewWriter(128)
	w.Byte('{')
	w.Key("profile").QuotedString(ProfileName).Byte(',')
	w.Key("go_version").QuotedString(runtime.Version()).Byte(',')
	w.Key("os").QuotedString(runtime.GOOS).Byte(',')
	w.Key("arch").QuotedString(runtime.GOARCH).Byte(',')
	w.Key("reported_at").QuotedString(time.Now().UTC().Format(time.RFC3339))
	w.Byte('}')
	return OK(w.String())
}
