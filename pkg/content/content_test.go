package content

import "testing"

func TestToolUseBlockDefaultsEmptyInput(t *testing.T) {
	b := ToolUseBlock("id1", "bash", "")
	if b.ToolInputRaw != "{}" {
		t.Fatalf("expected {} default, got %q", b.ToolInputRaw)
	}
}

func TestMessageHasToolUseAndResult(t *testing.T) {
	m := Message{Role: RoleAssistant, Blocks: []Block{
		TextBlock("thinking"),
		ToolUseBlock("t1", "bash", `{"command":"ls"}`),
	}}
	if !m.HasToolUse() {
		t.Fatal("expected HasToolUse true")
	}
	if m.HasToolResult() {
		t.Fatal("expected HasToolResult false")
	}

	u := Message{Role: RoleUser, Blocks: []Block{
		ToolResultBlock("t1", "file listing", false),
	}}
	if !u.HasToolResult() {
		t.Fatal("expected HasToolResult true")
	}
}

func TestToolUseBlocksOrderPreserved(t *testing.T) {
	m := Message{Blocks: []Block{
		ToolUseBlock("a", "n1", "{}"),
		TextBlock("x"),
		ToolUseBlock("b", "n2", "{}"),
	}}
	got := m.ToolUseBlocks()
	if len(got) != 2 || got[0].ToolUseID != "a" || got[1].ToolUseID != "b" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestEstimateTokensMinimumOne(t *testing.T) {
	if EstimateTokens(TextBlock("")) != 1 {
		t.Fatal("expected minimum estimate of 1")
	}
	if EstimateTokens(TextBlock("abcd")) != 1 {
		t.Fatal("expected 4 chars => 1 token")
	}
	if EstimateTokens(TextBlock("abcdefgh")) != 2 {
		t.Fatal("expected 8 chars => 2 tokens")
	}
}
