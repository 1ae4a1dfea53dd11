package tools

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go-careers-agent/internal/browser"
)

const (
	DefaultMaxUnlogged = 6
	// MaxFailuresPerStep is the original attempt plus one alternative
	MaxFailuresPerStep = 2
)

var DefaultSearchEngines = []string{"duckduckgo", "google", "bing", "yahoo", "startpage", "ecosia"}

// Guard enforces the run rules the instructions only ask for:
// a single search engine lookup (none when the domain is known), a log_progress call
// after every few steps, and one alternative per failed step.
// One Guard per run attempt.
type Guard struct {
	searchBudget int
	searches     int
	maxUnlogged  int
	unlogged     int
	failures     int
	engines      []string
}

// NewGuard allows one search engine navigation when only the company name is known, none otherwise
func NewGuard(domainKnown bool, maxUnlogged int, engines []string) *Guard {
	budget := 1
	if domainKnown {
		budget = 0
	}
	if maxUnlogged <= 0 {
		maxUnlogged = DefaultMaxUnlogged
	}
	if len(engines) == 0 {
		engines = DefaultSearchEngines
	}
	return &Guard{searchBudget: budget, maxUnlogged: maxUnlogged, engines: engines}
}

func (g *Guard) Searches() int { return g.searches }

// Admit decides whether a call may run. Admitted search engine navigations use up the budget.
func (g *Guard) Admit(t Tool, args json.RawMessage) (string, bool) {
	if t.Kind == KindLog {
		return "", true
	}
	if g.unlogged >= g.maxUnlogged {
		return fmt.Sprintf("Refused: %d steps since the last log_progress. Call log_progress(step, details) before continuing.", g.unlogged), false
	}
	if t.Kind == KindInteract && g.failures >= MaxFailuresPerStep {
		return "Refused: this step already failed and one alternative was tried. Call log_progress with the outcome and move on to the next step.", false
	}
	if t.Name == NavigateTool {
		a, err := decode[navigateArgs](args)
		if err == nil && IsSearchEngine(a.URL, g.engines) {
			if g.searches >= g.searchBudget {
				if g.searchBudget == 0 {
					return "Refused: the company domain is known. Navigate to it directly, search engines are not allowed in this run.", false
				}
				return "Refused: the search engine was already used once in this run. Navigate to one of the candidate domains instead.", false
			}
			g.searches++
		}
	}
	return "", true
}

// Record updates the counters after a call ran
func (g *Guard) Record(t Tool, obs Observation) {
	if t.Kind == KindLog {
		//a rejected log entry logs nothing
		if !obs.Failed {
			g.unlogged = 0
			g.failures = 0
		}
		return
	}
	g.unlogged++
	if obs.Failed {
		g.failures++
	}
}

// IsSearchEngine reports whether rawURL points at a general search engine,
// e.g. duckduckgo.com, www.google.co.uk or html.duckduckgo.com, but not careers.google.com
func IsSearchEngine(rawURL string, engines []string) bool {
	u, err := url.Parse(browser.NormalizeURL(rawURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "html.", "lite.", "search."} {
		host = strings.TrimPrefix(host, prefix)
	}
	first, _, _ := strings.Cut(host, ".")
	for _, e := range engines {
		if first == strings.ToLower(e) {
			return true
		}
	}
	return false
}
