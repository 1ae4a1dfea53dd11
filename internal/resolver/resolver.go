// Package resolver asks the reasoning backend questions about sanitized page markup:
// where to click, what the page says, which links are jobs and what a posting contains.
//
// Every operation degrades instead of failing hard. A malformed model answer turns into an
// error string, an empty slice or an empty map so the agent loop always gets an observation.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go-careers-agent/internal/ai"
	"go-careers-agent/internal/sanitizer"

	"github.com/charmbracelet/log"
)

// prompt budgets, in characters of sanitized markup
const (
	locatorChars  = 20000
	questionChars = 15000
	extractChars  = 30000
	maxLinks      = 30
)

type Locator struct {
	Selector  string `json:"selector"`
	Reasoning string `json:"reasoning"`
}

type JobLink struct {
	URL      string `json:"url"`
	JobTitle string `json:"job_title"`
}

type Resolver struct {
	llm    ai.Completer
	logger *log.Logger
}

func New(llm ai.Completer, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		llm:    llm,
		logger: logger.With("component", "resolver"),
	}
}

// ResolveLocator asks for a CSS selector matching description. Decode failures are returned, not retried.
func (r *Resolver) ResolveLocator(ctx context.Context, markup, description string) (Locator, error) {
	cleaned := sanitizer.CleanLimit(markup, locatorChars)
	prompt := fmt.Sprintf(`Find the element to interact with based on this description: "%s"

Page HTML: %s

Return ONLY a JSON object:
{"selector": "CSS selector for the element", "reasoning": "why this element"}`, description, cleaned)

	raw, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		return Locator{}, fmt.Errorf("locator request failed: %w", err)
	}

	var loc Locator
	if err := json.Unmarshal([]byte(ai.CleanMarkdownJSON(raw)), &loc); err != nil {
		return Locator{}, fmt.Errorf("invalid locator response: %w", err)
	}
	loc.Selector = strings.TrimSpace(loc.Selector)
	if loc.Selector == "" {
		return Locator{}, errors.New("model returned an empty selector")
	}
	r.logger.Debug("resolved locator", "description", description, "selector", loc.Selector, "reasoning", loc.Reasoning)
	return loc, nil
}

// AnswerQuestion returns the model's free text answer about the content. No parsing.
func (r *Resolver) AnswerQuestion(ctx context.Context, content, question string) string {
	prompt := fmt.Sprintf(`Analyze this content and answer the question.

Content: %s

Question: %s

Provide a clear, actionable answer.`, sanitizer.CleanLimit(content, questionChars), question)

	answer, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		r.logger.Warn("⚠️ analysis failed", "err", err)
		return fmt.Sprintf("Analysis failed: %v", err)
	}
	return answer
}

// ExtractLinks returns job links matching criteria, or an empty slice when the answer is unusable.
func (r *Resolver) ExtractLinks(ctx context.Context, markup, criteria string) []JobLink {
	empty := make([]JobLink, 0)

	cleaned := sanitizer.CleanLimit(markup, extractChars)
	candidates, err := json.MarshalIndent(sanitizer.Links(markup, maxLinks), "", "  ")
	if err != nil {
		candidates = []byte("[]")
	}

	prompt := fmt.Sprintf(`Find ALL job posting links matching: "%s"

HTML content:
%s

Look for:
- Links in job cards/listings
- "Apply", "View details", "Learn more" buttons near job titles
- Links with job titles in nearby text

All links found on page (use these if they match):
%s

Return JSON array:
[{"url": "full URL", "job_title": "inferred job title from context"}]

IMPORTANT:
- Return actual URLs from the page
- Include ALL matching jobs
- Return ONLY valid JSON, no explanation`, criteria, cleaned, candidates)

	raw, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		r.logger.Error("❌ link extraction failed", "err", err)
		return empty
	}
	r.logger.Debug("link extraction raw response", "response", sanitizer.Truncate(raw, 500))

	var links []JobLink
	if err := json.Unmarshal([]byte(ai.CleanMarkdownJSON(raw)), &links); err != nil {
		r.logger.Warn("⚠️ returning empty link list, response is not a JSON array", "err", err, "response", sanitizer.Truncate(raw, 200))
		return empty
	}
	if links == nil {
		return empty
	}
	r.logger.Info("🔗 extracted job links", "count", len(links))
	return links
}

// ExtractFields returns an object with every field of schema, nil when not found.
// An unusable answer yields an empty map.
func (r *Resolver) ExtractFields(ctx context.Context, markup, schema string) map[string]any {
	cleaned := sanitizer.CleanLimit(markup, extractChars)
	prompt := fmt.Sprintf(`Extract data from this content according to the schema.

Content:
%s

Schema/Fields to extract: %s

Return ONLY a JSON object with the requested fields. Set fields to null if not found.
Example format: {"title": "...", "location": "...", "description": "...", ...}`, cleaned, schema)

	raw, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		r.logger.Error("❌ data extraction failed", "err", err)
		return map[string]any{}
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(ai.CleanMarkdownJSON(raw)), &fields); err != nil || fields == nil {
		r.logger.Warn("⚠️ returning empty object, response is not a JSON object", "response", sanitizer.Truncate(raw, 200))
		return map[string]any{}
	}
	for _, name := range SchemaFields(schema) {
		if _, ok := fields[name]; !ok {
			fields[name] = nil
		}
	}
	return fields
}

// SchemaFields splits a comma separated field list like "title, company, salary".
func SchemaFields(schema string) []string {
	var names []string
	for _, part := range strings.Split(schema, ",") {
		name := strings.TrimSpace(part)
		if name == "" || strings.ContainsAny(name, " {}[]\"") {
			continue
		}
		names = append(names, name)
	}
	return names
}
