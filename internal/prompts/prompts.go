// Package prompts holds the instructions sent to the text generator. Each
// prompt is an instruction followed by task content in a fixed layout that
// the stub server and the parsers rely on.
package prompts

import (
	"fmt"
	"strings"
)

// Set is the instruction text for each generation step.
type Set struct {
	Extract  string
	Insights string
	Scoring  string
	Message  string
}

// Default returns the built-in instructions.
func Default() Set {
	return Set{
		Extract:  "Read the following text. Identify specific company names mentioned. Return ONLY a comma-separated list of names.",
		Insights: "You are a business analyst. Read the following text from a company's website and summarize their core business in 2-3 concise bullet points. Focus on what they sell and who their customers are. Output ONLY the bullet points.",
		Scoring:  "You are a sales development representative for a computer hardware store. Read the following business insights. On a scale of 1-10, how strong of a fit is this company for our services (high-performance workstations, servers), where 10 is a perfect fit? Look for signals like company growth, complex operations, or a large technical team. Return ONLY the number and a one-sentence justification. Example: '8/10: Their focus on AI-driven logistics suggests a need for powerful processing hardware.'",
		Message:  "You are a B2B sales expert for a computer hardware store. Your goal is to write a personalized outreach email. Use the following key points and lead score to make your message highly relevant and specific. Reference one of the key points directly. Conclude with a clear call to action.",
	}
}

// Markers separating instructions from task content.
const (
	ArticleMarker  = "ARTICLE TEXT:"
	WebsiteMarker  = "WEBSITE TEXT:"
	InsightsMarker = "BUSINESS INSIGHTS:"
	EmailMarker    = "YOUR PERSONALIZED EMAIL:"
)

// WithOverrides replaces instructions with the non-blank values in o.
func (s Set) WithOverrides(o Set) Set {
	pick := func(cur, over string) string {
		if strings.TrimSpace(over) != "" {
			return strings.TrimSpace(over)
		}
		return cur
	}
	return Set{
		Extract:  pick(s.Extract, o.Extract),
		Insights: pick(s.Insights, o.Insights),
		Scoring:  pick(s.Scoring, o.Scoring),
		Message:  pick(s.Message, o.Message),
	}
}

// ExtractNames asks for the company names mentioned in an article.
func (s Set) ExtractNames(articleText string) string {
	return fmt.Sprintf("%s\n\n%s\n%s", s.Extract, ArticleMarker, articleText)
}

// SummarizeSite asks for a bullet summary of a company website.
func (s Set) SummarizeSite(siteText string) string {
	return fmt.Sprintf("%s\n\n%s '%s'", s.Insights, WebsiteMarker, siteText)
}

// ScoreLead asks for a 1-10 fit score with a justification.
func (s Set) ScoreLead(insights string) string {
	return fmt.Sprintf("%s\n\n%s\n%s", s.Scoring, InsightsMarker, insights)
}

// DraftMessage asks for a personalized outreach email.
func (s Set) DraftMessage(name, insights, score string) string {
	return fmt.Sprintf("%s\n\nCOMPANY NAME: %s\nKEY INSIGHTS:\n%s\nLEAD SCORE: %s\n\n%s", s.Message, name, insights, score, EmailMarker)
}

// DiscoveryQuery is the search for pages that list candidate companies. The
// location clause is left out when location is empty.
func DiscoveryQuery(industry, size, location string) string {
	q := fmt.Sprintf("top %s companies of size %s", industry, size)
	if strings.TrimSpace(location) != "" {
		q += " in " + strings.TrimSpace(location)
	}
	return q
}

// WebsiteQuery is the search used to find a company's own site.
func WebsiteQuery(name string) string {
	return name + " official website"
}
