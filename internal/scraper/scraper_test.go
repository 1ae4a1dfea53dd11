package scraper_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-careers-agent/internal/agent"
	"go-careers-agent/internal/ai"
	"go-careers-agent/internal/ai/aitest"
	"go-careers-agent/internal/browser"
	"go-careers-agent/internal/browser/browsertest"
	"go-careers-agent/internal/models"
	"go-careers-agent/internal/output"
	"go-careers-agent/internal/resolver"
	"go-careers-agent/internal/retry"
	"go-careers-agent/internal/scraper"
	"go-careers-agent/internal/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// siteCompleter answers resolver prompts the way a cooperative model would for the fake site
type siteCompleter struct{}

func (siteCompleter) Complete(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "Find the element"):
		return `{"selector": "input[name=q]", "reasoning": "the only search input"}`, nil
	case strings.Contains(prompt, "Find ALL job posting links"):
		return "```json\n[{\"url\": \"https://example.com/jobs/1\", \"job_title\": \"Backend Engineer\"}]\n```", nil
	case strings.Contains(prompt, "Extract data from this content"):
		return `{"title": "Backend Engineer", "company": "Example", "location": "Remote", "salary": null}`, nil
	default:
		return "The careers page is https://example.com/careers", nil
	}
}

var sitePages = map[string]string{
	"https://www.duckduckgo.com":  `<form><input name="q"></form>`,
	"https://example.com":         `<a href="/careers">Careers</a>`,
	"https://acme.io":             `<a href="/careers">Careers</a>`,
	"https://example.com/careers": `<ul><li><a href="/jobs/1">Backend Engineer</a></li></ul>`,
	"https://example.com/jobs/1":  `<h1>Backend Engineer</h1><p>Go, Postgres</p>`,
}

type harness struct {
	frame    *browsertest.Frame
	reasoner *aitest.ScriptedReasoner
	scraper  *scraper.Scraper
}

func newHarness(steps []aitest.Step, fallback aitest.Step, maxTurns int) *harness {
	frame := browsertest.New("main", "")
	frame.Pages = sitePages

	res := resolver.New(siteCompleter{}, nil)
	surface := browser.NewSurface(frame, res, browser.NewFrameLocator(res, nil), browser.SurfaceOptions{}, nil, nil, nil)
	registry := tools.Default(surface, res, io.Discard, nil)
	reasoner := &aitest.ScriptedReasoner{Steps: steps, Fallback: fallback}
	ag := agent.New(reasoner, registry, agent.Config{MaxTurns: maxTurns}, nil)

	policy := retry.DefaultPolicy()
	policy.Sleep = func(context.Context, time.Duration) error { return nil }
	return &harness{frame: frame, reasoner: reasoner, scraper: scraper.New(ag, surface, policy, nil)}
}

func nav(id, url string) ai.ToolCall {
	return aitest.Call(id, tools.NavigateTool, map[string]string{"url": url})
}

func logStep(id, step string) ai.ToolCall {
	return aitest.Call(id, tools.LogProgressTool, map[string]string{"step": step, "details": "ok"})
}

func searchEngineVisits(visits []string) int {
	n := 0
	for _, v := range visits {
		if tools.IsSearchEngine(v, tools.DefaultSearchEngines) {
			n++
		}
	}
	return n
}

func readOutput(t *testing.T, out models.Output) map[string]any {
	t.Helper()
	path := filepath.Join(t.TempDir(), "output.json")
	require.NoError(t, output.WriteAtomic(path, out))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestScenarioA_DomainKnownSkipsSearch(t *testing.T) {
	h := newHarness([]aitest.Step{
		//a model that ignores the instructions and tries the search engine anyway
		aitest.Tools("", nav("1", "www.duckduckgo.com")),
		aitest.Tools("", nav("2", "example.com"), logStep("3", "Found company site")),
		aitest.Tools("", aitest.Call("4", tools.ContentTool, nil), aitest.Call("5", tools.AnalyzeTool, map[string]string{"question": "What is the URL/link to the careers or jobs page?"})),
		aitest.Tools("", nav("6", "https://example.com/careers"), logStep("7", "On careers page")),
		aitest.Tools("", aitest.Call("8", tools.ExtractLinksTool, map[string]string{"criteria": "job posting links that match title: Backend Engineer"}), logStep("9", "Found jobs")),
		aitest.Tools("", nav("10", "https://example.com/jobs/1"), aitest.Call("11", tools.ExtractDataTool, map[string]string{"schema": "title, company, location, salary"}), logStep("12", "Scraped jobs")),
		func(history []ai.Message) (ai.Message, error) {
			//the final answer is built from the last extract_data observation
			var job map[string]any
			for i := len(history) - 1; i >= 0; i-- {
				if history[i].Name == tools.ExtractDataTool {
					if err := json.Unmarshal([]byte(history[i].Content), &job); err != nil {
						return ai.Message{}, err
					}
					break
				}
			}
			job["url"] = "https://example.com/jobs/1"
			data, _ := json.Marshal(map[string]any{"jobs": []any{job}, "total_found": 1})
			return ai.Message{Role: ai.RoleAssistant, Content: string(data)}, nil
		},
	}, nil, 0)

	req := models.NewSearchRequest("Backend Engineer", "", "example.com", "")
	out, res, err := h.scraper.Run(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Exhausted)
	assert.Zero(t, res.Searches)

	assert.Zero(t, searchEngineVisits(h.frame.Visits))
	assert.Equal(t, []string{"https://example.com", "https://example.com/careers", "https://example.com/jobs/1"}, h.frame.Visits)

	//the refusal reached the model as an observation
	assert.Contains(t, aitest.LastToolResult(h.reasoner.Histories[1]), "Refused: the company domain is known")

	result, ok := out.Result.(*models.ScrapeResult)
	require.True(t, ok, "result is %T", out.Result)
	require.Len(t, result.Jobs, 1)
	assert.Equal(t, "Backend Engineer", result.Jobs[0].Title)
	assert.Nil(t, result.Jobs[0].Salary)

	doc := readOutput(t, out)
	assert.Equal(t, true, doc["success"])
	assert.Contains(t, doc["result"].(map[string]any)["search_query"], "Backend Engineer")
	assert.Equal(t, "example.com", doc["job_params"].(map[string]any)["company_domain"])
}

func TestScenarioB_SingleSearchEngineNavigation(t *testing.T) {
	h := newHarness([]aitest.Step{
		aitest.Tools("", nav("1", "www.duckduckgo.com"), aitest.Call("2", tools.FillTool, map[string]string{"field_description": "search box", "value": "Acme"})),
		aitest.Tools("", aitest.Call("3", tools.ExtractLinksTool, map[string]string{"criteria": "candidate company domains"}), logStep("4", "Searched")),
		//second lookup on the same engine and on another one, both must be refused
		aitest.Tools("", nav("5", "https://duckduckgo.com/?q=acme+careers"), nav("6", "bing.com")),
		aitest.Tools("", logStep("7", "Search engine refused")),
		aitest.Tools("", nav("8", "acme.io"), logStep("9", "Found company site")),
		aitest.Tools("", nav("10", "example.com"), logStep("11", "Tried the other candidate domain")),
		aitest.Answer(`{"jobs": [], "total_found": 0, "search_query": "Backend Engineer at Acme"}`),
	}, nil, 0)

	req := models.NewSearchRequest("Backend Engineer", "Acme", "", "")
	out, res, err := h.scraper.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, searchEngineVisits(h.frame.Visits))
	assert.Equal(t, 1, res.Searches)
	assert.Equal(t, []string{"https://www.duckduckgo.com", "https://acme.io", "https://example.com"}, h.frame.Visits)
	assert.Equal(t, "Acme", h.frame.Fills["input[name=q]"])

	refusals := 0
	for _, m := range h.reasoner.Histories[3] {
		if m.Role == ai.RoleTool && strings.HasPrefix(m.Content, "Refused:") {
			refusals++
		}
	}
	assert.Equal(t, 2, refusals)

	result := out.Result.(*models.ScrapeResult)
	assert.Empty(t, result.Jobs)
	assert.NotNil(t, result.Jobs)
	assert.Equal(t, "Backend Engineer at Acme", result.SearchQuery)
}

func TestScenarioC_TurnBudgetExhaustedStillSucceeds(t *testing.T) {
	turn := 0
	h := newHarness(nil, func([]ai.Message) (ai.Message, error) {
		turn++
		return ai.Message{
			Role:      ai.RoleAssistant,
			Content:   fmt.Sprintf("Still looking, found 2 jobs so far (turn %d)", turn),
			ToolCalls: []ai.ToolCall{aitest.Call("c", tools.ContentTool, nil), logStep("l", "reading")},
		}, nil
	}, 5)

	req := models.NewSearchRequest("Backend Engineer", "", "example.com", "")
	out, res, err := h.scraper.Run(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Exhausted)
	assert.Equal(t, 5, h.reasoner.Calls())

	doc := readOutput(t, out)
	assert.Equal(t, true, doc["success"])
	assert.Equal(t, "Still looking, found 2 jobs so far (turn 5)", doc["result"])
}
