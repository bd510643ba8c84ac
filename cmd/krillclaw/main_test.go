package main

import (
	"testing"

	"github.com/bhardwajRahul/KrillClaw/pkg/config"
)

func TestOverlayFlagsAppliesOnlySetFields(t *testing.T) {
	cfg := config.Default()
	overlayFlags(cfg, flags{model: "claude-3-5-haiku-latest"})

	if cfg.Model != "claude-3-5-haiku-latest" {
		t.Fatalf("expected model overlay to apply, got %q", cfg.Model)
	}
	if cfg.Provider != "claude" {
		t.Fatalf("expected provider to keep its default, got %q", cfg.Provider)
	}
}

func TestOverlayFlagsSerialPortImpliesTransport(t *testing.T) {
	cfg := config.Default()
	overlayFlags(cfg, flags{serialPort: "/dev/ttyUSB0"})

	if cfg.Transport != "serial" {
		t.Fatalf("expected --serial-port to imply transport=serial, got %q", cfg.Transport)
	}
	if cfg.SerialPort != "/dev/ttyUSB0" {
		t.Fatalf("expected serial port to be set, got %q", cfg.SerialPort)
	}
}

func TestOverlayFlagsBLEDeviceImpliesTransport(t *testing.T) {
	cfg := config.Default()
	overlayFlags(cfg, flags{bleDevice: "AA:BB:CC:DD:EE:FF"})

	if cfg.Transport != "ble" {
		t.Fatalf("expected --ble-device to imply transport=ble, got %q", cfg.Transport)
	}
}

func TestOverlayFlagsNoStreamDisablesStreaming(t *testing.T) {
	cfg := config.Default()
	if !cfg.Streaming {
		t.Fatal("expected default streaming to be on")
	}
	overlayFlags(cfg, flags{noStream: true})
	if cfg.Streaming {
		t.Fatal("expected --no-stream to disable streaming")
	}
}
