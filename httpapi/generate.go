package httpapi

import (
	"encoding/base64"

	"github.com/gin-gonic/gin"

	"github.com/sweetpotato0/dealsense/capability"
	"github.com/sweetpotato0/dealsense/errors"
	"github.com/sweetpotato0/dealsense/extract"
	"github.com/sweetpotato0/dealsense/generation"
	"github.com/sweetpotato0/dealsense/prompt"
)

// bind parses the request body into the capability's expected shape. The
// generation endpoints are permissive: a missing field degrades the
// prompt, only an unparsable body fails.
func (s *Server) bind(c *gin.Context, out any) error {
	if err := c.ShouldBindJSON(out); err != nil {
		return errors.Validation("Invalid request body.")
	}
	return nil
}

// invoke runs the shared composition -> generation pipeline for one
// capability and returns the raw result.
func (s *Server) invoke(c *gin.Context, decl *capability.Declaration, promptText string, media *generation.MediaSpec) (*generation.Result, error) {
	if s.cfg.GeminiAPIKey == "" {
		return nil, errors.Configuration("GEMINI_API_KEY is not set")
	}

	s.logger.Debug("composed prompt",
		"capability", decl.ID,
		"estimated_tokens", prompt.EstimateTokens(promptText),
	)

	return s.generator.Generate(c.Request.Context(), &generation.Request{
		Capability: decl,
		Prompt:     promptText,
		Media:      media,
	})
}

// structured runs the full pipeline for a structured-extraction capability.
func (s *Server) structured(c *gin.Context, capID string, compose func() (string, error)) {
	decl, err := capability.Get(capID)
	if err != nil {
		s.fail(c, err)
		return
	}

	promptText, err := compose()
	if err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.invoke(c, decl, promptText, nil)
	if err != nil {
		s.fail(c, err)
		return
	}

	payload, err := extract.Structured(decl, result)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.respond(c, payload)
}

func (s *Server) scoreDeal(c *gin.Context) {
	var in prompt.DealScoreInput
	if err := s.bind(c, &in); err != nil {
		s.fail(c, err)
		return
	}
	s.structured(c, capability.DealScore, func() (string, error) {
		return prompt.DealScore(in)
	})
}

func (s *Server) accountHealth(c *gin.Context) {
	var in prompt.AccountHealthInput
	if err := s.bind(c, &in); err != nil {
		s.fail(c, err)
		return
	}
	s.structured(c, capability.AccountHealth, func() (string, error) {
		return prompt.AccountHealth(in)
	})
}

func (s *Server) crmInsights(c *gin.Context) {
	var in prompt.CRMInsightsInput
	if err := s.bind(c, &in); err != nil {
		s.fail(c, err)
		return
	}
	s.structured(c, capability.CRMInsights, func() (string, error) {
		return prompt.CRMInsights(in)
	})
}

func (s *Server) battlecard(c *gin.Context) {
	var in prompt.BattlecardInput
	if err := s.bind(c, &in); err != nil {
		s.fail(c, err)
		return
	}
	s.structured(c, capability.Battlecard, func() (string, error) {
		return prompt.Battlecard(in)
	})
}

func (s *Server) coldEmail(c *gin.Context) {
	var in prompt.ColdEmailInput
	if err := s.bind(c, &in); err != nil {
		s.fail(c, err)
		return
	}
	s.structured(c, capability.ColdEmail, func() (string, error) {
		return prompt.ColdEmail(in)
	})
}

func (s *Server) findLeads(c *gin.Context) {
	var in struct {
		Criteria prompt.LeadCriteria `json:"criteria"`
	}
	if err := s.bind(c, &in); err != nil {
		s.fail(c, err)
		return
	}
	s.structured(c, capability.LeadFinder, func() (string, error) {
		return prompt.LeadFinder(in.Criteria)
	})
}

func (s *Server) research(c *gin.Context) {
	var in struct {
		Query string `json:"query"`
	}
	if err := s.bind(c, &in); err != nil {
		s.fail(c, err)
		return
	}

	decl, err := capability.Get(capability.Research)
	if err != nil {
		s.fail(c, err)
		return
	}

	promptText, err := prompt.Research(in.Query)
	if err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.invoke(c, decl, promptText, nil)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.respond(c, extract.Grounded(result))
}

// imageRequest covers both generation ("generate") and editing ("edit");
// edit additionally carries the source image as base64.
type imageRequest struct {
	Action      string `json:"action"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
	Image       string `json:"image"`
	MimeType    string `json:"mimeType"`
}

func (s *Server) generateImage(c *gin.Context) {
	var in imageRequest
	if err := s.bind(c, &in); err != nil {
		s.fail(c, err)
		return
	}

	decl, err := capability.Get(capability.Image)
	if err != nil {
		s.fail(c, err)
		return
	}

	media := &generation.MediaSpec{AspectRatio: in.AspectRatio}
	if in.Action == "edit" && in.Image != "" {
		data, err := base64.StdEncoding.DecodeString(in.Image)
		if err != nil {
			s.fail(c, errors.Validation("Invalid image data."))
			return
		}
		media.InputImage = data
		media.InputMIME = in.MimeType
	}

	result, err := s.invoke(c, decl, in.Prompt, media)
	if err != nil {
		s.fail(c, err)
		return
	}

	payload, err := extract.Image(decl, result)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.respond(c, payload)
}
