// Package extract converts a raw model result into the capability's final
// payload, enforcing "exactly one usable result or fail".
package extract

import (
	"encoding/base64"

	"github.com/sweetpotato0/dealsense/capability"
	"github.com/sweetpotato0/dealsense/errors"
	"github.com/sweetpotato0/dealsense/generation"
)

// NoSummaryFallback is the literal summary used when a grounded result
// carries no text.
const NoSummaryFallback = "No summary generated."

// GroundedPayload is the answer shape of search-grounded capabilities.
type GroundedPayload struct {
	Summary string                `json:"summary"`
	Sources []generation.Citation `json:"sources"`
}

// ImagePayload is the answer shape of media capabilities.
type ImagePayload struct {
	Image string `json:"image"`
}

// Structured returns the arguments of the single expected tool call. The
// model is trusted to respect the declared argument types, but the call
// must be present and carry the declared name.
func Structured(decl *capability.Declaration, result *generation.Result) (map[string]any, error) {
	if result == nil || result.ToolCall == nil || result.ToolCall.Name != decl.Tool {
		return nil, errors.Generation(decl.FailureMessage)
	}

	args := result.ToolCall.Args
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// Grounded returns the result text with its web citations. An empty text
// yields the literal fallback summary; the citation list is always a
// non-nil array and may legitimately be empty.
func Grounded(result *generation.Result) *GroundedPayload {
	payload := &GroundedPayload{
		Summary: NoSummaryFallback,
		Sources: []generation.Citation{},
	}

	if result == nil {
		return payload
	}
	if result.Text != "" {
		payload.Summary = result.Text
	}
	if len(result.Citations) > 0 {
		payload.Sources = result.Citations
	}
	return payload
}

// Image returns the first inline blob as base64, or fails when the model
// produced none.
func Image(decl *capability.Declaration, result *generation.Result) (*ImagePayload, error) {
	if result == nil || result.Image == nil || len(result.Image.Data) == 0 {
		return nil, errors.Generation(decl.FailureMessage)
	}

	return &ImagePayload{
		Image: base64.StdEncoding.EncodeToString(result.Image.Data),
	}, nil
}
