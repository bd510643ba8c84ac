// Command krillclaw is the one-shot/REPL driver for the ReAct agent
// core (spec §6). It loads configuration, builds the tool dispatcher
// for whichever profile this binary was built with, opens the
// selected transport, and runs the loop either once for -p/--prompt
// or interactively reading stdin lines, optionally re-entered on a
// schedule.
//
// Grounded on the teacher's cmd/picoclaw/main.go flag handling,
// re-expressed with spf13/cobra (already a teacher dependency) over
// manual os.Args scanning, since §6's flag table maps cleanly onto a
// single cobra command with bound flags.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bhardwajRahul/KrillClaw/pkg/agent"
	"github.com/bhardwajRahul/KrillClaw/pkg/config"
	"github.com/bhardwajRahul/KrillClaw/pkg/content"
	"github.com/bhardwajRahul/KrillClaw/pkg/llmclient"
	"github.com/bhardwajRahul/KrillClaw/pkg/logger"
	"github.com/bhardwajRahul/KrillClaw/pkg/scheduler"
	"github.com/bhardwajRahul/KrillClaw/pkg/tools"
)

var version = "dev"

// flags holds the CLI overlay (spec §6's table), applied after the
// config-file and environment layers.
type flags struct {
	model        string
	prompt       string
	provider     string
	baseURL      string
	noStream     bool
	transport    string
	serialPort   string
	bleDevice    string
	cronInterval int
	cronPrompt   string
	cronMaxRuns  int
	heartbeat    int
	showVersion  bool
}

func main() {
	var f flags

	root := &cobra.Command{
		Use:           "krillclaw [prompt]",
		Short:         "KrillClaw: a minimal ReAct agent runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.showVersion {
				fmt.Printf("krillclaw %s\n", version)
				return nil
			}
			if len(args) == 1 && f.prompt == "" {
				f.prompt = args[0]
			}
			return run(f)
		},
	}

	bindFlags(root, &f)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, hintFor(err))
		os.Exit(1)
	}
}

func bindFlags(cmd *cobra.Command, f *flags) {
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "model name")
	cmd.Flags().StringVarP(&f.prompt, "prompt", "p", "", "run one-shot with this prompt")
	cmd.Flags().StringVar(&f.provider, "provider", "", "claude|openai|ollama")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "override provider base URL")
	cmd.Flags().BoolVar(&f.noStream, "no-stream", false, "disable streaming")
	cmd.Flags().StringVar(&f.transport, "transport", "", "http|ble|serial")
	cmd.Flags().StringVar(&f.serialPort, "serial-port", "", "serial device path (implies --transport serial)")
	cmd.Flags().StringVar(&f.bleDevice, "ble-device", "", "BLE peer address (implies --transport ble)")
	cmd.Flags().IntVar(&f.cronInterval, "cron-interval", 0, "scheduler interval, seconds")
	cmd.Flags().StringVar(&f.cronPrompt, "cron-prompt", "", "scheduler canned prompt")
	cmd.Flags().IntVar(&f.cronMaxRuns, "cron-max-runs", 0, "scheduler max runs (0 = unlimited)")
	cmd.Flags().IntVar(&f.heartbeat, "heartbeat", 0, "heartbeat interval, seconds")
	cmd.Flags().BoolVarP(&f.showVersion, "version", "v", false, "print version and exit")
}

// run loads config, overlays flags, validates, and drives the loop
// either once (-p/positional prompt) or as a stdin REPL.
func run(f flags) error {
	cfg, err := config.Load(".krillclaw.json")
	if err != nil {
		return err
	}
	overlayFlags(cfg, f)

	if err := cfg.Validate(); err != nil {
		return err
	}

	provider, ok := llmclient.ParseProvider(cfg.Provider)
	if !ok {
		return fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	client := &llmclient.Client{
		Provider:  provider,
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
	}

	kv, err := tools.NewKVStore(".krillclaw/kv")
	if err != nil {
		return err
	}
	profile := buildProfileTable()
	dispatcher := tools.NewDispatcher(tools.NewSharedTable(kv, nil), profile, nil)

	loop := &agent.Loop{
		Client:           client,
		Dispatcher:       dispatcher,
		SystemPrompt:     cfg.SystemPrompt,
		MaxContextTokens: cfg.MaxContextTokens,
		MaxTokens:        cfg.MaxTokens,
		MaxTurns:         cfg.MaxTurns,
		Streaming:        cfg.Streaming,
		OnTextDelta: func(s string) {
			fmt.Print(s)
		},
	}

	ctx := context.Background()

	if cfg.Transport != "http" {
		logger.WarnC("cmd", "non-HTTP transport selected; the bridge sidecar that provides the underlying BLE/serial connection is out of scope for this binary")
	}

	sched := scheduler.New(scheduler.Config{
		IntervalS:  f.cronInterval,
		Prompt:     f.cronPrompt,
		HeartbeatS: f.heartbeat,
		MaxRuns:    f.cronMaxRuns,
	})

	if f.prompt != "" {
		return runOnce(ctx, loop, f.prompt)
	}
	if f.cronInterval > 0 {
		return runScheduled(ctx, loop, sched)
	}
	return runREPL(ctx, loop)
}

func overlayFlags(cfg *config.Config, f flags) {
	if f.model != "" {
		cfg.Model = f.model
	}
	if f.provider != "" {
		cfg.Provider = f.provider
	}
	if f.baseURL != "" {
		cfg.BaseURL = f.baseURL
	}
	if f.noStream {
		cfg.Streaming = false
	}
	if f.transport != "" {
		cfg.Transport = f.transport
	}
	if f.serialPort != "" {
		cfg.SerialPort = f.serialPort
		cfg.Transport = "serial"
	}
	if f.bleDevice != "" {
		cfg.BLEDevice = f.bleDevice
		cfg.Transport = "ble"
	}
}

var conversation []content.Message

func runOnce(ctx context.Context, loop *agent.Loop, prompt string) error {
	res, err := loop.Run(ctx, conversation, prompt)
	if err != nil {
		fmt.Fprintln(os.Stderr, hintFor(err))
		return nil // pre-loop config failures exit 1; loop aborts do not, per §6/§7.
	}
	conversation = res.Conversation
	printFinalText(res)
	if res.Warning != "" {
		logger.WarnC("cmd", res.Warning)
	}
	return nil
}

func runREPL(ctx context.Context, loop *agent.Loop) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			fmt.Print("> ")
			continue
		}
		res, err := loop.Run(ctx, conversation, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, hintFor(err))
		} else {
			conversation = res.Conversation
			printFinalText(res)
			if res.Warning != "" {
				logger.WarnC("cmd", res.Warning)
			}
		}
		fmt.Print("\n> ")
	}
	return nil
}

func runScheduled(ctx context.Context, loop *agent.Loop, sched *scheduler.Scheduler) error {
	for {
		if sched.ShouldRunAgent() {
			if err := runOnce(ctx, loop, sched.Prompt()); err != nil {
				return err
			}
		}
		if sched.ShouldHeartbeat() {
			logger.InfoC("cmd", "heartbeat")
		}
		sched.SleepUntilNext()
	}
}

// printFinalText writes the text blocks of the loop's last assistant
// message. When streaming is on this duplicates what OnTextDelta
// already printed incrementally; for non-streaming calls it is the
// only place the reply is shown.
func printFinalText(res *agent.Result) {
	if len(res.Conversation) == 0 {
		return
	}
	last := res.Conversation[len(res.Conversation)-1]
	if last.Role != content.RoleAssistant {
		return
	}
	for _, b := range last.Blocks {
		if b.Kind == content.KindText {
			fmt.Println(b.Text)
		}
	}
}

// hintFor renders err as a single coloured line prefixed "error:". Every
// error is rendered the same way; transport errors get no specific hint.
func hintFor(err error) string {
	switch {
	case err == nil:
		return ""
	default:
		return "\x1b[31merror:\x1b[0m " + err.Error()
	}
}
