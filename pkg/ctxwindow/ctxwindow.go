// Package ctxwindow prunes a conversation to fit a token budget (spec
// §4.6). It has no teacher analogue — picoclaw's much larger context
// compressor calls back into the model to summarize; this manager is
// pure arithmetic, no model call, matching the embedded-friendly scope
// of the runtime it prunes for.
package ctxwindow

import "github.com/bhardwajRahul/KrillClaw/pkg/content"

// MinTail is the number of most-recent messages every pruning pass
// preserves untouched, along with the first message.
const MinTail = 4

// Budget derives the token allowance available to the conversation body:
// the context window minus the per-response cap minus a fixed estimate
// of the system prompt and tool schemas.
func Budget(maxContextTokens, maxTokens, systemAndToolsEstimate int) int {
	b := maxContextTokens - maxTokens - systemAndToolsEstimate
	if b < 0 {
		b = 0
	}
	return b
}

// Truncate prunes messages in place (returning the pruned slice) to fit
// budget, in the three ordered passes spec §4.6 defines. It always
// preserves the first message and the last MinTail messages; if the
// conversation still exceeds budget after dropping everything else, the
// first message is replaced with a truncation marker rather than
// shrinking the preserved tail further.
func Truncate(messages []content.Message, budget int) []content.Message {
	if total(messages) <= budget {
		return messages
	}

	messages = dropWhere(messages, budget, func(m content.Message) bool {
		return m.Role == content.RoleAssistant && !m.HasToolUse()
	})
	if total(messages) <= budget {
		return messages
	}

	messages = dropWhere(messages, budget, func(m content.Message) bool {
		return m.Role == content.RoleUser && !m.HasToolResult()
	})
	if total(messages) <= budget {
		return messages
	}

	messages = dropOldestUntilUnderBudget(messages, budget)
	if total(messages) <= budget {
		return messages
	}

	// Everything droppable is gone (the conversation is now down to the
	// first message plus the preserved tail) and still over budget: the
	// best remaining move is the marker, per the truncation invariant's
	// second disjunct.
	return withTruncationMarker(messages)
}

// total sums the (possibly cached) token estimate of every message.
func total(messages []content.Message) int {
	sum := 0
	for _, m := range messages {
		sum += estimate(m)
	}
	return sum
}

func estimate(m content.Message) int {
	if m.TokenEstimate > 0 {
		return m.TokenEstimate
	}
	return content.EstimateMessage(m)
}

// middleRange returns [1, len-MinTail) — the indices eligible for
// dropping, excluding the always-kept first message and last-four tail.
func middleRange(n int) (start, end int) {
	start = 1
	end = n - MinTail
	if end < start {
		end = start
	}
	return start, end
}

// dropWhere removes middle messages matching pred, stopping as soon as
// the running total is under budget.
func dropWhere(messages []content.Message, budget int, pred func(content.Message) bool) []content.Message {
	start, end := middleRange(len(messages))
	kept := make([]content.Message, 0, len(messages))
	kept = append(kept, messages[:start]...)

	running := total(messages)
	for i := start; i < end; i++ {
		if running > budget && pred(messages[i]) {
			running -= estimate(messages[i])
			continue
		}
		kept = append(kept, messages[i])
	}
	kept = append(kept, messages[end:]...)
	return kept
}

// dropOldestUntilUnderBudget removes middle messages from the front,
// oldest first, until under budget or nothing left to drop.
func dropOldestUntilUnderBudget(messages []content.Message, budget int) []content.Message {
	start, end := middleRange(len(messages))
	for total(messages) > budget && start < end {
		messages = append(append([]content.Message{}, messages[:1]...), messages[start+1:]...)
		_, end = middleRange(len(messages))
	}
	return messages
}

// withTruncationMarker replaces the first message with a short
// truncation notice. The notice carries a number only when
// estimateDroppedCount returns one; see there.
func withTruncationMarker(messages []content.Message) []content.Message {
	dropped := estimateDroppedCount(messages)
	marker := content.Message{
		Role:   content.RoleUser,
		Blocks: []content.Block{content.TextBlock(markerText(dropped))},
	}
	out := make([]content.Message, 0, len(messages))
	out = append(out, marker)
	out = append(out, messages[1:]...)
	return out
}

// estimateDroppedCount counts the messages beyond the first one and the
// MinTail tail. Truncate adds the marker only after the third pass has
// removed all of those, so the count is 0 there and the notice reads
// "[earlier conversation truncated]" without a number. The manager does
// not track the original conversation length, so the number of messages
// actually dropped is not reported.
func estimateDroppedCount(messages []content.Message) int {
	if len(messages) <= MinTail+1 {
		return 0
	}
	return len(messages) - (MinTail + 1)
}

func markerText(dropped int) string {
	if dropped <= 0 {
		return "[earlier conversation truncated]"
	}
	return "[" + itoa(dropped) + " earlier messages truncated]"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
