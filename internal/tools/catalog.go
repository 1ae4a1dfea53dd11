package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go-careers-agent/internal/resolver"

	"github.com/charmbracelet/log"
)

const (
	NavigateTool     = "navigate_to_url"
	ContentTool      = "get_page_content"
	AnalyzeTool      = "analyze_content"
	ClickTool        = "click_element"
	FillTool         = "fill_input"
	ExtractLinksTool = "extract_links"
	ExtractDataTool  = "extract_data"
	LogProgressTool  = "log_progress"
	JobIframeTool    = "check_and_enter_job_iframe"
)

// Browser is the control surface the tools drive
type Browser interface {
	Navigate(ctx context.Context, url string) (string, error)
	Content(ctx context.Context) (string, error)
	RawContent() (string, error)
	Click(ctx context.Context, description string) (string, error)
	Fill(ctx context.Context, description, value string) (string, error)
	SwitchToJobFrame(ctx context.Context) (string, error)
}

// Resolver is the semantic side: questions and structured extraction
type Resolver interface {
	AnswerQuestion(ctx context.Context, content, question string) string
	ExtractLinks(ctx context.Context, markup, criteria string) []resolver.JobLink
	ExtractFields(ctx context.Context, markup, schema string) map[string]any
}

type navigateArgs struct {
	URL string `json:"url"`
}

type analyzeArgs struct {
	Content  string `json:"content"`
	Question string `json:"question"`
}

type clickArgs struct {
	ElementDescription string `json:"element_description"`
}

type fillArgs struct {
	FieldDescription string `json:"field_description"`
	Value            string `json:"value"`
}

type extractLinksArgs struct {
	Content  string `json:"content"`
	Criteria string `json:"criteria"`
}

type extractDataArgs struct {
	Content string `json:"content"`
	Schema  string `json:"schema"`
}

type logArgs struct {
	Step    string `json:"step"`
	Details string `json:"details"`
}

// Default builds the agent's tool set. Progress lines go to progress (usually stdout).
func Default(b Browser, r Resolver, progress io.Writer, logger *log.Logger) *Registry {
	if progress == nil {
		progress = io.Discard
	}
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("component", "agent")

	// content falls back to the live page when the model sends none
	pageContent := func(given string) (string, error) {
		if strings.TrimSpace(given) != "" {
			return given, nil
		}
		return b.RawContent()
	}

	return NewRegistry(logger,
		Tool{
			Name:        NavigateTool,
			Description: "Navigate the browser to a URL. A missing scheme defaults to https.",
			Parameters:  object([]string{"url"}, map[string]any{"url": str("URL or domain to open")}),
			Kind:        KindInteract,
			Invoke: func(ctx context.Context, raw json.RawMessage) Observation {
				a, err := decode[navigateArgs](raw)
				if err != nil || strings.TrimSpace(a.URL) == "" {
					return failed("Navigation failed: a url is required")
				}
				msg, err := b.Navigate(ctx, a.URL)
				return Observation{Text: msg, Failed: err != nil}
			},
		},
		Tool{
			Name:        ContentTool,
			Description: "Return the cleaned HTML of the current page or iframe.",
			Parameters:  object(nil, map[string]any{}),
			Kind:        KindRead,
			Invoke: func(ctx context.Context, _ json.RawMessage) Observation {
				msg, err := b.Content(ctx)
				return Observation{Text: msg, Failed: err != nil}
			},
		},
		Tool{
			Name:        AnalyzeTool,
			Description: "Ask a question about page content, e.g. where the careers page link is.",
			Parameters: object([]string{"question"}, map[string]any{
				"content":  str("content to analyze, empty for the current page"),
				"question": str("question to answer"),
			}),
			Kind: KindRead,
			Invoke: func(ctx context.Context, raw json.RawMessage) Observation {
				a, err := decode[analyzeArgs](raw)
				if err != nil {
					return failed(fmt.Sprintf("Error: %v", err))
				}
				content, err := pageContent(a.Content)
				if err != nil {
					return failed(fmt.Sprintf("Error: %v", err))
				}
				answer := r.AnswerQuestion(ctx, content, a.Question)
				return Observation{Text: answer, Failed: strings.HasPrefix(answer, "Analysis failed")}
			},
		},
		Tool{
			Name:        ClickTool,
			Description: "Click the element matching a natural language description.",
			Parameters: object([]string{"element_description"}, map[string]any{
				"element_description": str("what to click, e.g. 'view all jobs link'"),
			}),
			Kind: KindInteract,
			Invoke: func(ctx context.Context, raw json.RawMessage) Observation {
				a, err := decode[clickArgs](raw)
				if err != nil {
					return failed(fmt.Sprintf("Click failed: %v", err))
				}
				msg, err := b.Click(ctx, a.ElementDescription)
				return Observation{Text: msg, Failed: err != nil}
			},
		},
		Tool{
			Name:        FillTool,
			Description: "Type a value into the input matching a description, then press Enter.",
			Parameters: object([]string{"field_description", "value"}, map[string]any{
				"field_description": str("which input, e.g. 'job search input'"),
				"value":             str("text to type"),
			}),
			Kind: KindInteract,
			Invoke: func(ctx context.Context, raw json.RawMessage) Observation {
				a, err := decode[fillArgs](raw)
				if err != nil {
					return failed(fmt.Sprintf("Fill failed: %v", err))
				}
				msg, err := b.Fill(ctx, a.FieldDescription, a.Value)
				return Observation{Text: msg, Failed: err != nil}
			},
		},
		Tool{
			Name:        ExtractLinksTool,
			Description: "Extract job posting links matching the criteria. Returns a JSON array of {url, job_title}.",
			Parameters: object([]string{"criteria"}, map[string]any{
				"content":  str("page HTML, empty for the current page"),
				"criteria": str("which links, e.g. 'job posting links that match title: Backend Engineer'"),
			}),
			Kind: KindRead,
			Invoke: func(ctx context.Context, raw json.RawMessage) Observation {
				a, err := decode[extractLinksArgs](raw)
				if err != nil {
					return failed(fmt.Sprintf("Error: %v", err))
				}
				content, err := pageContent(a.Content)
				if err != nil {
					return failed(fmt.Sprintf("Error: %v", err))
				}
				return ok(toJSON(r.ExtractLinks(ctx, content, a.Criteria), "[]"))
			},
		},
		Tool{
			Name:        ExtractDataTool,
			Description: "Extract a JSON object with the comma separated schema fields from content. Missing fields are null.",
			Parameters: object([]string{"schema"}, map[string]any{
				"content": str("page HTML, empty for the current page"),
				"schema":  str("fields, e.g. 'title, company, location'"),
			}),
			Kind: KindRead,
			Invoke: func(ctx context.Context, raw json.RawMessage) Observation {
				a, err := decode[extractDataArgs](raw)
				if err != nil {
					return failed(fmt.Sprintf("Error: %v", err))
				}
				content, err := pageContent(a.Content)
				if err != nil {
					return failed(fmt.Sprintf("Error: %v", err))
				}
				return ok(toJSON(r.ExtractFields(ctx, content, a.Schema), "{}"))
			},
		},
		Tool{
			Name:        LogProgressTool,
			Description: "Record the step you just finished. Required after every step.",
			Parameters: object([]string{"step"}, map[string]any{
				"step":    str("short step name"),
				"details": str("what happened"),
			}),
			Kind: KindLog,
			Invoke: func(_ context.Context, raw json.RawMessage) Observation {
				a, err := decode[logArgs](raw)
				if err != nil {
					return failed(fmt.Sprintf("Error: %v", err))
				}
				if strings.TrimSpace(a.Step) == "" {
					return failed("Error: a step is required")
				}
				logger.Info("📍 Agent step", "step", a.Step, "details", a.Details)
				fmt.Fprintf(progress, "\n>>> AGENT: %s\n    %s\n", a.Step, a.Details)
				return ok("Logged: " + a.Step)
			},
		},
		Tool{
			Name:        JobIframeTool,
			Description: "Scan the iframes of the current page and switch into the one holding job listings.",
			Parameters:  object(nil, map[string]any{}),
			Kind:        KindInteract,
			Invoke: func(ctx context.Context, _ json.RawMessage) Observation {
				msg, err := b.SwitchToJobFrame(ctx)
				return Observation{Text: msg, Failed: err != nil || !strings.HasPrefix(msg, "Switched")}
			},
		},
	)
}

func toJSON(v any, fallback string) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(data)
}
