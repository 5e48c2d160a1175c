package capability

// Capability ids. One per generation endpoint.
const (
	DealScore     = "deal_score"
	AccountHealth = "account_health"
	CRMInsights   = "crm_insights"
	Battlecard    = "battlecard"
	ColdEmail     = "cold_email"
	LeadFinder    = "lead_finder"
	Research      = "research"
	Image         = "image"
)

var declarations = map[string]*Declaration{
	DealScore: {
		ID:             DealScore,
		Tool:           "analyzeDealScore",
		Description:    "Record the win-probability score for a sales deal together with the reasoning behind it.",
		Mode:           ModeStructured,
		FailureMessage: "AI failed to generate deal score.",
		Parameters: []Parameter{
			{Name: "score", Type: "number", Description: "Win probability from 0 to 100.", Required: true},
			{Name: "reasoning", Type: "string", Description: "Short explanation of the score.", Required: true},
		},
	},

	AccountHealth: {
		ID:             AccountHealth,
		Tool:           "assessAccountHealth",
		Description:    "Record the health assessment for a customer account.",
		Mode:           ModeStructured,
		FailureMessage: "AI failed to generate account health.",
		Parameters: []Parameter{
			{Name: "score", Type: "number", Description: "Health score from 0 to 100.", Required: true},
			{Name: "status", Type: "string", Required: true, Enum: []string{"Healthy", "Neutral", "At Risk"}},
			{Name: "factors", Type: "array", Description: "Key factors driving the assessment.", Required: true,
				Items: &Parameter{Type: "string"}},
			{Name: "recommendation", Type: "string", Description: "Next best action for the account team.", Required: true},
		},
	},

	CRMInsights: {
		ID:             CRMInsights,
		Tool:           "generateCRMInsights",
		Description:    "Record exactly 3 actionable insights derived from the CRM portfolio.",
		Mode:           ModeStructured,
		FailureMessage: "AI failed to generate CRM insights.",
		Parameters: []Parameter{
			{Name: "insights", Type: "array", Description: "Exactly 3 insights.", Required: true,
				Items: &Parameter{Type: "object", Fields: []Parameter{
					{Name: "type", Type: "string", Required: true, Enum: []string{"risk", "opportunity", "info"}},
					{Name: "message", Type: "string", Description: "What was observed.", Required: true},
					{Name: "action", Type: "string", Description: "What to do about it.", Required: true},
				}}},
		},
	},

	Battlecard: {
		ID:             Battlecard,
		Tool:           "buildBattlecard",
		Description:    "Record a competitive battlecard for the given company based on current market research.",
		Mode:           ModeGroundedStructured,
		ThinkingBudget: 2048,
		FailureMessage: "AI failed to generate battlecard.",
		Parameters: []Parameter{
			{Name: "competitors", Type: "array", Required: true,
				Items: &Parameter{Type: "object", Fields: []Parameter{
					{Name: "name", Type: "string", Required: true},
					{Name: "strengths", Type: "array", Required: true, Items: &Parameter{Type: "string"}},
					{Name: "weaknesses", Type: "array", Required: true, Items: &Parameter{Type: "string"}},
					{Name: "pricing_model", Type: "string", Required: true},
					{Name: "kill_points", Type: "array", Description: "Talking points that win against this competitor.", Required: true,
						Items: &Parameter{Type: "string"}},
				}}},
			{Name: "our_advantages", Type: "array", Required: true, Items: &Parameter{Type: "string"}},
			{Name: "objection_handling", Type: "array", Required: true,
				Items: &Parameter{Type: "object", Fields: []Parameter{
					{Name: "objection", Type: "string", Required: true},
					{Name: "counter", Type: "string", Required: true},
				}}},
		},
	},

	ColdEmail: {
		ID:             ColdEmail,
		Tool:           "draftColdEmail",
		Description:    "Record a personalized cold outreach email.",
		Mode:           ModeStructured,
		FailureMessage: "AI failed to generate cold email.",
		Parameters: []Parameter{
			{Name: "subject", Type: "string", Description: "Subject line, at most 60 characters.", Required: true},
			{Name: "body", Type: "string", Description: "Email body, at most 150 words.", Required: true},
		},
	},

	LeadFinder: {
		ID:             LeadFinder,
		Tool:           "findLeads",
		Description:    "Record companies matching the lead criteria, ranked by fit.",
		Mode:           ModeGroundedStructured,
		ThinkingBudget: 2048,
		FailureMessage: "AI failed to generate leads.",
		Parameters: []Parameter{
			{Name: "leads", Type: "array", Required: true,
				Items: &Parameter{Type: "object", Fields: []Parameter{
					{Name: "name", Type: "string", Required: true},
					{Name: "description", Type: "string", Required: true},
					{Name: "fitScore", Type: "number", Description: "Fit from 0 to 100.", Required: true},
					{Name: "reason", Type: "string", Description: "Why this lead fits the criteria.", Required: true},
					{Name: "website", Type: "string"},
					{Name: "location", Type: "string"},
					{Name: "industry", Type: "string"},
				}}},
		},
	},

	// Research returns grounded free text, no tool schema.
	Research: {
		ID:             Research,
		Mode:           ModeGrounded,
		FailureMessage: "AI failed to complete research.",
	},

	// Image returns inline binary media, no tool schema.
	Image: {
		ID:             Image,
		Mode:           ModeMedia,
		FailureMessage: "no image generated",
	},
}
