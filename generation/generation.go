// Package generation defines the contract between the request gateway and
// the generative-AI backend: one request in, one raw result out. The
// concrete backend lives in the gemini package; handlers and tests only
// depend on the Generator interface.
package generation

import (
	"context"

	"github.com/sweetpotato0/dealsense/capability"
)

// Request bundles inputs for a single backend invocation.
type Request struct {
	// Capability selects the tool configuration and output contract.
	Capability *capability.Declaration

	// Prompt is the composed instruction string.
	Prompt string

	// Media carries image-specific inputs for media capabilities. Nil
	// otherwise.
	Media *MediaSpec
}

// MediaSpec configures image generation and editing.
type MediaSpec struct {
	// AspectRatio such as "1:1" or "16:9". Empty means model default.
	AspectRatio string

	// InputImage is the source image for edit operations, nil for pure
	// generation.
	InputImage []byte

	// InputMIME is the media type of InputImage.
	InputMIME string
}

// ToolCall is the single structured invocation a model emits for a
// structured-extraction capability.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Citation is one grounded web source.
type Citation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Blob is inline binary media returned by the model.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Result is the raw model output as a tagged union: a structured
// capability fills ToolCall, a grounded capability fills Text and
// Citations, a media capability fills Image. The extract package
// validates it field by field rather than trusting it blindly.
type Result struct {
	ToolCall  *ToolCall
	Text      string
	Citations []Citation
	Image     *Blob
}

// Generator performs exactly one backend call per request: no retries, no
// streaming, no caching.
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Result, error)
}
