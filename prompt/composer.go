package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Interaction is one logged touchpoint with a customer. Only the most
// recent maxInteractions entries make it into a prompt.
type Interaction struct {
	Date string `json:"date"`
	Type string `json:"type"`
	Note string `json:"note"`
}

// maxInteractions caps the interaction digest at the 5 most recent entries.
const maxInteractions = 5

// noDataPlaceholder renders wherever a payload section is missing, so the
// model sees an explicit statement instead of an empty block.
const noDataPlaceholder = "Not provided."

// Composer inputs. Handlers parse request bodies straight into these; any
// field the caller omitted degrades the prompt rather than failing the
// request.
type (
	DealScoreInput struct {
		Deal         map[string]any `json:"deal"`
		Customer     map[string]any `json:"customer"`
		Interactions []Interaction  `json:"interactions"`
	}

	AccountHealthInput struct {
		Account map[string]any `json:"account"`
	}

	CRMInsightsInput struct {
		Accounts []map[string]any `json:"accounts"`
	}

	BattlecardInput struct {
		CompanyName string `json:"companyName"`
		Website     string `json:"website"`
	}

	ColdEmailInput struct {
		RecipientName string `json:"recipientName"`
		CompanyName   string `json:"companyName"`
		Context       string `json:"context"`
		Tone          string `json:"tone"`
	}

	LeadCriteria struct {
		Industry string   `json:"industry"`
		Location string   `json:"location"`
		Stage    string   `json:"stage,omitempty"`
		Keywords []string `json:"keywords,omitempty"`
	}
)

var manager = NewManager()

func init() {
	mustRegister("deal_score", dealScoreTemplate)
	mustRegister("account_health", accountHealthTemplate)
	mustRegister("crm_insights", crmInsightsTemplate)
	mustRegister("battlecard", battlecardTemplate)
	mustRegister("cold_email", coldEmailTemplate)
	mustRegister("lead_finder", leadFinderTemplate)
	mustRegister("research", researchTemplate)
}

func mustRegister(name, content string) {
	if err := manager.RegisterString(name, content); err != nil {
		panic(fmt.Sprintf("prompt: register %s: %v", name, err))
	}
}

const dealScoreTemplate = `You are an experienced sales operations analyst scoring the likelihood that a deal closes.

Deal:
{{.Deal}}

Customer:
{{.Customer}}

Recent interactions (newest first):
{{.Interactions}}

Weigh deal size against stage, momentum of recent interactions, and customer engagement. Frequent recent positive touchpoints raise the score; stalled stages and long silences lower it.

Record the score and reasoning in the required structure.`

const accountHealthTemplate = `You are a customer success analyst assessing the health of an account.

Account:
{{.Account}}

Consider renewal proximity, support ticket volume, product usage trend, and breadth of stakeholder engagement. Declining usage or an approaching renewal without engagement signals risk.

Record the assessment in the required structure.`

const crmInsightsTemplate = `You are a revenue operations advisor reviewing a CRM portfolio.

Accounts:
{{.Accounts}}

Identify the single biggest risk, the single biggest opportunity, and one further notable observation. Each insight must state what was observed and a concrete next action.

Record exactly 3 insights in the required structure.`

const battlecardTemplate = `You are a competitive intelligence analyst preparing a sales battlecard for {{.CompanyName}}{{if .Website}} ({{.Website}}){{end}}.

Use web search to research the company's current main competitors. For each competitor capture strengths, weaknesses, pricing model, and the kill points our sellers can use. Then list our own advantages and the most common objections with effective counters.

Record the battlecard in the required structure.`

const coldEmailTemplate = `You are a sales development representative writing a cold outreach email.

Recipient: {{.RecipientName}}
Company: {{.CompanyName}}
Context: {{.Context}}
Tone: {{.Tone}}

Keep the subject under 60 characters and the body under 150 words. Open with something specific to the recipient, state one clear value proposition, and close with a low-friction ask.

Record the email in the required structure.`

const leadFinderTemplate = `You are a B2B prospecting researcher finding companies that match a lead profile.

Criteria:
{{.Criteria}}

Use web search to find real companies matching the criteria. Score each from 0 to 100 on fit, favoring companies in the named industry and location{{if .Stage}} at the {{.Stage}} stage{{end}}. Include website, location, and industry where known.

Record the leads in the required structure.`

const researchTemplate = `You are a market research assistant. Use web search to answer the question below with current information, and keep the answer concise and factual.

Question: {{.Query}}`

// DealScore composes the deal scoring prompt.
func DealScore(in DealScoreInput) (string, error) {
	return manager.Render("deal_score", map[string]any{
		"Deal":         serialize(in.Deal),
		"Customer":     serialize(in.Customer),
		"Interactions": digestInteractions(in.Interactions),
	})
}

// AccountHealth composes the account health prompt.
func AccountHealth(in AccountHealthInput) (string, error) {
	return manager.Render("account_health", map[string]any{
		"Account": serialize(in.Account),
	})
}

// CRMInsights composes the portfolio insights prompt.
func CRMInsights(in CRMInsightsInput) (string, error) {
	var accounts any
	if len(in.Accounts) > 0 {
		accounts = in.Accounts
	}
	return manager.Render("crm_insights", map[string]any{
		"Accounts": serialize(accounts),
	})
}

// Battlecard composes the competitor battlecard prompt.
func Battlecard(in BattlecardInput) (string, error) {
	name := in.CompanyName
	if name == "" {
		name = "the company"
	}
	return manager.Render("battlecard", map[string]any{
		"CompanyName": name,
		"Website":     in.Website,
	})
}

// ColdEmail composes the cold outreach prompt.
func ColdEmail(in ColdEmailInput) (string, error) {
	tone := in.Tone
	if tone == "" {
		tone = "professional"
	}
	return manager.Render("cold_email", map[string]any{
		"RecipientName": orPlaceholder(in.RecipientName),
		"CompanyName":   orPlaceholder(in.CompanyName),
		"Context":       orPlaceholder(in.Context),
		"Tone":          tone,
	})
}

// LeadFinder composes the lead search prompt.
func LeadFinder(criteria LeadCriteria) (string, error) {
	return manager.Render("lead_finder", map[string]any{
		"Criteria": serialize(criteria),
		"Stage":    criteria.Stage,
	})
}

// Research composes the grounded research prompt.
func Research(query string) (string, error) {
	return manager.Render("research", map[string]any{
		"Query": query,
	})
}

// serialize renders a payload value as indented JSON. encoding/json sorts
// map keys, which keeps the output byte-identical for identical payloads.
func serialize(v any) string {
	if isEmpty(v) {
		return noDataPlaceholder
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return noDataPlaceholder
	}
	return string(b)
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(x) == 0
	case []map[string]any:
		return len(x) == 0
	}
	return false
}

func orPlaceholder(s string) string {
	if s == "" {
		return noDataPlaceholder
	}
	return s
}

// digestInteractions renders the newest maxInteractions entries as a
// bulleted list. Ties on date keep their incoming order.
func digestInteractions(interactions []Interaction) string {
	if len(interactions) == 0 {
		return "No recent interactions have been recorded."
	}

	sorted := make([]Interaction, len(interactions))
	copy(sorted, interactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	if len(sorted) > maxInteractions {
		sorted = sorted[:maxInteractions]
	}

	var b strings.Builder
	for i, it := range sorted {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- [%s] %s: %s", it.Date, it.Type, it.Note)
	}
	return b.String()
}
