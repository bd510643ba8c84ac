package llmclient

import "errors"

// The client's error taxonomy (spec §4.4, §7). Only these (plus
// transport-level errors they wrap) ever abort the ReAct loop; tool
// failures never do.
var (
	ErrConnectionRefused     = errors.New("llmclient: connection refused")
	ErrAuthError             = errors.New("llmclient: authentication failed")
	ErrRateLimited           = errors.New("llmclient: rate limited")
	ErrServerError           = errors.New("llmclient: server error")
	ErrHttpError             = errors.New("llmclient: http error")
	ErrInvalidResponse       = errors.New("llmclient: invalid response")
	ErrParseError            = errors.New("llmclient: parse error")
	ErrOutOfMemory           = errors.New("llmclient: out of memory")
	ErrStreamingUnsupported  = errors.New("llmclient: provider does not support streaming")
)

// classifyStatus maps an HTTP status code to the taxonomy above. The
// client never retries internally; callers (the ReAct loop's driver)
// decide whether and how.
func classifyStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrAuthError
	case status == 429:
		return ErrRateLimited
	case status >= 500:
		return ErrServerError
	case status >= 400:
		return ErrHttpError
	default:
		return nil
	}
}
