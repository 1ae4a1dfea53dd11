// Package scraper coordinates one scrape: it validates the request, runs the agent
// under the retry policy and turns the final answer into the output document.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"

	"go-careers-agent/internal/agent"
	"go-careers-agent/internal/ai"
	"go-careers-agent/internal/models"
	"go-careers-agent/internal/retry"

	"github.com/charmbracelet/log"
)

// Runner runs one agent attempt
type Runner interface {
	Run(ctx context.Context, req models.SearchRequest) (agent.Result, error)
}

// Resetter puts the browsing context back on the main frame
type Resetter interface {
	Reset()
}

type Scraper struct {
	runner  Runner
	surface Resetter
	policy  retry.Policy
	logger  *log.Logger
}

func New(runner Runner, surface Resetter, policy retry.Policy, logger *log.Logger) *Scraper {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("component", "scraper")
	if policy.Logger == nil {
		policy.Logger = logger
	}
	return &Scraper{runner: runner, surface: surface, policy: policy, logger: logger}
}

// Run scrapes with rate limit retries. Every attempt starts from the main frame with fresh guards.
// A turn budget exhaustion is a success with partial output.
func (s *Scraper) Run(ctx context.Context, req models.SearchRequest) (models.Output, agent.Result, error) {
	if err := req.Validate(); err != nil {
		return models.Output{}, agent.Result{}, err
	}
	s.logger.Info("🚀 Starting scrape", "query", req.Query())

	res, err := retry.Do(ctx, s.policy, func(ctx context.Context, attempt int) (agent.Result, error) {
		if attempt > 0 {
			s.logger.Info("🔁 Retrying scrape", "attempt", attempt+1)
		}
		if s.surface != nil {
			s.surface.Reset()
		}
		return s.runner.Run(ctx, req)
	})
	if err != nil {
		s.logger.Error("❌ Scraping failed", "err", err)
		return models.Output{}, res, err
	}

	if res.Exhausted {
		s.logger.Warn("⚠️ Agent ran out of turns, saving partial output", "turns", res.Turns)
	}
	out := models.Output{
		Success:   true,
		JobParams: req,
		Result:    ParseResult(res.FinalText, req),
	}
	s.logger.Info("✅ Scraping completed", "turns", res.Turns)
	return out, res, nil
}

// ParseResult decodes the agent's final answer. An object with a jobs list becomes a
// *models.ScrapeResult (search_query defaults to the request query), other JSON is kept
// as decoded and anything else is returned verbatim.
func ParseResult(text string, req models.SearchRequest) any {
	cleaned := ai.CleanMarkdownJSON(text)

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return text
	}
	obj, isObject := decoded.(map[string]any)
	if !isObject {
		return decoded
	}
	if _, hasJobs := obj["jobs"]; !hasJobs {
		return decoded
	}

	var result models.ScrapeResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return decoded
	}
	if result.Jobs == nil {
		result.Jobs = []models.JobRecord{}
	}
	if result.SearchQuery == "" {
		result.SearchQuery = req.Query()
	}
	return &result
}

// Summary is a one line description of an output, used for notifications and the CLI
func Summary(out models.Output) string {
	switch r := out.Result.(type) {
	case *models.ScrapeResult:
		return fmt.Sprintf("%d job(s) found for %q", len(r.Jobs), r.SearchQuery)
	case string:
		return fmt.Sprintf("unstructured answer for %q", out.JobParams.Query())
	default:
		return fmt.Sprintf("structured answer for %q", out.JobParams.Query())
	}
}
