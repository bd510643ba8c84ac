package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bhardwajRahul/KrillClaw/pkg/content"
	"github.com/bhardwajRahul/KrillClaw/pkg/ctxwindow"
	"github.com/bhardwajRahul/KrillClaw/pkg/llmclient"
	"github.com/bhardwajRahul/KrillClaw/pkg/logger"
	"github.com/bhardwajRahul/KrillClaw/pkg/tools"
)

// MaxIterations is the hard per-run iteration cap spec §4.7 fixes at
// 10, independent of config.max_turns (both bounds are checked, so the
// tighter of the two applies).
const MaxIterations = 10

// repeatedCallMessage is the tool-result body synthesised for a call
// that has already matched twice in the Loop's signature ring, which is
// kept across Run calls (spec §4.7, §7's RepeatedCall kind).
const repeatedCallMessage = "repeated identical tool call — try a different approach"

// Classification is the terminal verdict on one model turn.
type Classification int

const (
	NeedsObservation Classification = iota
	MaxTokens
	Done
)

// Classify implements spec §4.7's classify(response): NeedsObservation
// if any block is tool-use, else MaxTokens if the stop reason says so,
// else Done.
func Classify(resp *content.ApiResponse) Classification {
	for _, b := range resp.Blocks {
		if b.Kind == content.KindToolUse {
			return NeedsObservation
		}
	}
	if resp.StopReason == content.StopMaxTokens {
		return MaxTokens
	}
	return Done
}

// Loop drives the think → act → observe state machine (spec §4.7).
// It owns no conversation itself; Run mutates the slice the caller
// passes in-place through its returned value, the same append-and-
// truncate discipline spec §3 assigns to "the agent".
type Loop struct {
	Client     *llmclient.Client
	Dispatcher *tools.Dispatcher

	SystemPrompt     string
	MaxContextTokens int
	MaxTokens        int
	MaxTurns         int // config.max_turns; 0 means unbounded beyond MaxIterations
	Streaming        bool

	// OnTextDelta, if set, receives streamed text fragments as they
	// arrive during a streaming model call.
	OnTextDelta func(string)

	// SessionID scopes this Loop's log lines (e.g. the repeat-call
	// warning in observe). A blank SessionID is minted on first Run,
	// the same per-run correlation id the teacher's pkg/gateway mints
	// with google/uuid for each inbound session.
	SessionID string

	ring *signatureRing
}

// Result is what Run reports back to the driver once the loop ends.
type Result struct {
	Conversation []content.Message
	StopReason   content.StopReason
	Iterations   int
	Warning      string // non-empty when the loop hit MaxIterations/MaxTurns
}

// Run appends a user message carrying prompt to conversation, then
// iterates think/act/observe until the model reaches end_turn,
// max_tokens, or the loop's iteration bound.
func (l *Loop) Run(ctx context.Context, conversation []content.Message, prompt string) (*Result, error) {
	if l.ring == nil {
		l.ring = newSignatureRing()
	}
	if l.SessionID == "" {
		l.SessionID = uuid.New().String()
	}

	conversation = append(conversation, content.Message{
		Role:   content.RoleUser,
		Blocks: []content.Block{content.TextBlock(prompt)},
	})

	iterLimit := MaxIterations
	if l.MaxTurns > 0 && l.MaxTurns < iterLimit {
		iterLimit = l.MaxTurns
	}

	toolDefs := toLLMToolDefs(l.Dispatcher.Definitions())
	systemAndToolsEstimate := estimateSystemAndTools(l.SystemPrompt, toolDefs)

	for iter := 1; ; iter++ {
		budget := ctxwindow.Budget(l.MaxContextTokens, l.MaxTokens, systemAndToolsEstimate)
		conversation = ctxwindow.Truncate(conversation, budget)

		resp, err := l.call(ctx, conversation, toolDefs)
		if err != nil {
			return nil, err
		}

		assistantBlocks := resp.Blocks
		conversation = append(conversation, content.Message{Role: content.RoleAssistant, Blocks: assistantBlocks})

		switch Classify(resp) {
		case Done:
			return &Result{Conversation: conversation, StopReason: resp.StopReason, Iterations: iter}, nil
		case MaxTokens:
			return &Result{Conversation: conversation, StopReason: resp.StopReason, Iterations: iter}, nil
		case NeedsObservation:
			conversation = append(conversation, l.observe(ctx, resp.Blocks))
		}

		if iter >= iterLimit {
			return &Result{
				Conversation: conversation,
				StopReason:   resp.StopReason,
				Iterations:   iter,
				Warning:      fmt.Sprintf("stopped after %d iterations without reaching end_turn", iter),
			}, nil
		}
	}
}

func (l *Loop) call(ctx context.Context, conversation []content.Message, toolDefs []llmclient.ToolDef) (*content.ApiResponse, error) {
	if l.Streaming && l.Client.Provider.SupportsStreaming() {
		return l.Client.SendStreaming(ctx, conversation, toolDefs, l.SystemPrompt, l.onDelta)
	}
	return l.Client.Send(ctx, conversation, toolDefs, l.SystemPrompt)
}

func (l *Loop) onDelta(text string) {
	if l.OnTextDelta != nil {
		l.OnTextDelta(text)
	}
}

// observe executes every tool-use block in assistantBlocks, in order
// (spec §4.7's per-block procedure), and packs the results into a
// single user message in the same order.
func (l *Loop) observe(ctx context.Context, assistantBlocks []content.Block) content.Message {
	var resultBlocks []content.Block
	for _, call := range assistantBlocks {
		if call.Kind != content.KindToolUse {
			continue
		}

		sig := signatureOf(call.ToolUseName, call.ToolInputRaw)
		priorMatches := l.ring.countMatches(sig)
		l.ring.insert(sig)

		var result *tools.ToolResult
		if priorMatches >= 2 {
			logger.WarnCF("agent", "blocked repeated tool call", map[string]any{
				"session": l.SessionID,
				"tool":    call.ToolUseName,
			})
			result = tools.Err(repeatedCallMessage)
		} else {
			result = l.Dispatcher.Execute(ctx, call)
		}

		resultBlocks = append(resultBlocks, result.ToBlock(call.ToolUseID))
	}

	return content.Message{Role: content.RoleUser, Blocks: resultBlocks}
}

func toLLMToolDefs(defs []tools.ToolDef) []llmclient.ToolDef {
	out := make([]llmclient.ToolDef, 0, len(defs))
	for _, d := range defs {
		out = append(out, llmclient.ToolDef{Name: d.Name, Description: d.Description, InputSchema: d.InputSchema})
	}
	return out
}

// estimateSystemAndTools gives ctxwindow.Budget the same max(1,chars/4)
// estimate content.EstimateTokens uses for message blocks, applied to
// the system prompt and every tool schema/description.
func estimateSystemAndTools(systemPrompt string, defs []llmclient.ToolDef) int {
	total := charEstimate(len(systemPrompt))
	for _, d := range defs {
		total += charEstimate(len(d.Name) + len(d.Description) + len(d.InputSchema))
	}
	return total
}

func charEstimate(chars int) int {
	n := chars / 4
	if n < 1 {
		n = 1
	}
	return n
}
