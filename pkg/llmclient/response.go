package llmclient

import (
	"github.com/bhardwajRahul/KrillClaw/pkg/content"
	"github.com/bhardwajRahul/KrillClaw/pkg/jsonlite"
)

// ParseResponse parses a single complete JSON document from provider
// into a content.ApiResponse (the non-streaming half of spec §4.4;
// SSEDecoder handles the streamed half).
func ParseResponse(provider Provider, body []byte) (*content.ApiResponse, error) {
	if provider == Claude {
		return parseClaudeResponse(body)
	}
	return parseOpenAIResponse(body)
}

func parseClaudeResponse(body []byte) (*content.ApiResponse, error) {
	id, _ := jsonlite.String(body, "id")
	stopStr, _ := jsonlite.String(body, "stop_reason")
	inTok, _ := jsonlite.Integer(body, "input_tokens")
	outTok, _ := jsonlite.Integer(body, "output_tokens")

	arr, ok := jsonlite.Array(body, "content")
	if !ok {
		return nil, ErrInvalidResponse
	}

	var blocks []content.Block
	for _, elem := range jsonlite.ArrayElements(arr) {
		typ, _ := jsonlite.String(elem, "type")
		switch typ {
		case "text":
			text, _ := jsonlite.String(elem, "text")
			blocks = append(blocks, content.TextBlock(jsonlite.Unescape(text)))
		case "tool_use":
			id, _ := jsonlite.String(elem, "id")
			name, _ := jsonlite.String(elem, "name")
			input, ok := jsonlite.Object(elem, "input")
			inputRaw := "{}"
			if ok {
				inputRaw = string(input)
			}
			blocks = append(blocks, content.ToolUseBlock(id, name, inputRaw))
		}
	}

	return &content.ApiResponse{
		ID:           id,
		StopReason:   classifyStopReason(stopStr),
		Blocks:       blocks,
		InputTokens:  inTok,
		OutputTokens: outTok,
	}, nil
}

func parseOpenAIResponse(body []byte) (*content.ApiResponse, error) {
	id, _ := jsonlite.String(body, "id")
	inTok, _ := jsonlite.Integer(body, "prompt_tokens")
	outTok, _ := jsonlite.Integer(body, "completion_tokens")

	choicesArr, ok := jsonlite.Array(body, "choices")
	if !ok {
		return nil, ErrInvalidResponse
	}
	choices := jsonlite.ArrayElements(choicesArr)
	if len(choices) == 0 {
		return nil, ErrInvalidResponse
	}
	choice := choices[0]

	finishReason, _ := jsonlite.String(choice, "finish_reason")
	message, ok := jsonlite.Object(choice, "message")
	if !ok {
		return nil, ErrInvalidResponse
	}

	var blocks []content.Block
	if text, ok := jsonlite.String(message, "content"); ok && text != "" {
		blocks = append(blocks, content.TextBlock(jsonlite.Unescape(text)))
	}
	if callsArr, ok := jsonlite.Array(message, "tool_calls"); ok {
		for _, call := range jsonlite.ArrayElements(callsArr) {
			id, _ := jsonlite.String(call, "id")
			fn, ok := jsonlite.Object(call, "function")
			if !ok {
				continue
			}
			name, _ := jsonlite.String(fn, "name")
			argsStr, _ := jsonlite.String(fn, "arguments")
			inputRaw := jsonlite.Unescape(argsStr)
			if inputRaw == "" {
				inputRaw = "{}"
			}
			blocks = append(blocks, content.ToolUseBlock(id, name, inputRaw))
		}
	}

	stop := content.StopEndTurn
	switch finishReason {
	case "tool_calls":
		stop = content.StopToolUse
	case "length":
		stop = content.StopMaxTokens
	case "stop", "":
		stop = content.StopEndTurn
	default:
		stop = content.StopUnknown
	}
	// A message carrying tool_calls always reports StopToolUse even if
	// finish_reason is momentarily empty, matching classify()'s
	// block-driven rule in the ReAct loop.
	for _, b := range blocks {
		if b.Kind == content.KindToolUse {
			stop = content.StopToolUse
			break
		}
	}

	return &content.ApiResponse{
		ID:           id,
		StopReason:   stop,
		Blocks:       blocks,
		InputTokens:  inTok,
		OutputTokens: outTok,
	}, nil
}

func classifyStopReason(s string) content.StopReason {
	switch s {
	case "end_turn", "stop_sequence":
		return content.StopEndTurn
	case "tool_use":
		return content.StopToolUse
	case "max_tokens":
		return content.StopMaxTokens
	default:
		return content.StopUnknown
	}
}
