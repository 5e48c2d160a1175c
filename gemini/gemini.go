// Package gemini implements the generation.Generator contract on top of
// the Gemini API. Each request performs exactly one GenerateContent call
// with the tool configuration the capability declares: a function
// declaration for structured extraction, Google Search for grounding,
// both combined, or image response modalities for media.
package gemini

import (
	"context"
	"log/slog"
	"sync"

	"google.golang.org/genai"

	"github.com/sweetpotato0/dealsense/capability"
	"github.com/sweetpotato0/dealsense/errors"
	"github.com/sweetpotato0/dealsense/generation"
	"github.com/sweetpotato0/dealsense/pkg/logging"
)

// Config holds the backend configuration.
type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
}

// Client is a generation.Generator backed by the Gemini API. The inner
// SDK client is created lazily on the first authenticated request so a
// missing credential surfaces as a configuration error instead of a
// startup crash.
type Client struct {
	cfg    Config
	logger *slog.Logger

	once    sync.Once
	client  *genai.Client
	initErr error
}

// New creates a Gemini-backed generator.
func New(cfg Config) *Client {
	return &Client{
		cfg:    cfg,
		logger: logging.WithComponent("gemini"),
	}
}

// Generate performs a single backend call. It fails with a configuration
// error before any network activity when the API key is absent, and
// propagates backend failures unmodified.
func (c *Client) Generate(ctx context.Context, req *generation.Request) (*generation.Result, error) {
	if c.cfg.APIKey == "" {
		return nil, errors.Configuration("GEMINI_API_KEY is not set")
	}

	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, errors.Backend("failed to initialize Gemini client", err)
	}

	decl := req.Capability
	model := c.cfg.TextModel
	if decl.Mode == capability.ModeMedia {
		model = c.cfg.ImageModel
	}

	contents := buildContents(req)
	cfg := buildConfig(decl, req.Media)

	c.logger.Debug("invoking model", "capability", decl.ID, "model", model, "mode", string(decl.Mode))

	resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, errors.Backend("Gemini API error", err)
	}

	return toResult(resp), nil
}

func (c *Client) ensureClient(ctx context.Context) (*genai.Client, error) {
	c.once.Do(func() {
		c.client, c.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return c.client, c.initErr
}

// buildContents assembles the user turn: the prompt, plus the source image
// for edit operations.
func buildContents(req *generation.Request) []*genai.Content {
	parts := []*genai.Part{{Text: req.Prompt}}

	if req.Media != nil && len(req.Media.InputImage) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: req.Media.InputMIME,
				Data:     req.Media.InputImage,
			},
		})
	}

	return []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
}

// buildConfig selects the tool configuration the capability declares.
func buildConfig(decl *capability.Declaration, media *generation.MediaSpec) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	var tools []*genai.Tool

	if decl.Structured() {
		tools = append(tools, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:                 decl.Tool,
				Description:          decl.Description,
				ParametersJsonSchema: decl.ParametersSchema(),
			}},
		})
		cfg.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{decl.Tool},
			},
		}
	}

	if decl.Grounded() {
		tools = append(tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}

	if len(tools) > 0 {
		cfg.Tools = tools
	}

	if decl.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(decl.ThinkingBudget),
		}
	}

	if decl.Mode == capability.ModeMedia {
		cfg.ResponseModalities = []string{"TEXT", "IMAGE"}
		if media != nil && media.AspectRatio != "" {
			cfg.ImageConfig = &genai.ImageConfig{AspectRatio: media.AspectRatio}
		}
	}

	return cfg
}

// toResult converts the SDK response into the extractor's tagged union:
// the first function call, all text parts concatenated, the first inline
// blob, and every grounding chunk with a usable web reference.
func toResult(resp *genai.GenerateContentResponse) *generation.Result {
	result := &generation.Result{}

	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}

		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part == nil {
					continue
				}
				switch {
				case part.FunctionCall != nil:
					if result.ToolCall == nil {
						result.ToolCall = &generation.ToolCall{
							Name: part.FunctionCall.Name,
							Args: part.FunctionCall.Args,
						}
					}
				case part.InlineData != nil:
					if result.Image == nil {
						result.Image = &generation.Blob{
							MIMEType: part.InlineData.MIMEType,
							Data:     part.InlineData.Data,
						}
					}
				default:
					result.Text += part.Text
				}
			}
		}

		if candidate.GroundingMetadata != nil {
			for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
				if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
					continue
				}
				result.Citations = append(result.Citations, generation.Citation{
					Title: chunk.Web.Title,
					URI:   chunk.Web.URI,
				})
			}
		}
	}

	return result
}
