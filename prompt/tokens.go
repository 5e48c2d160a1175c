package prompt

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// EstimateTokens approximates how many tokens a composed prompt will cost.
// The cl100k_base encoding is not the Gemini tokenizer, but it is close
// enough for the size accounting the gateway logs per request. Falls back
// to a bytes/4 heuristic when the encoding cannot be loaded.
func EstimateTokens(s string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})

	if encoding == nil {
		return len(s) / 4
	}
	return len(encoding.Encode(s, nil, nil))
}
